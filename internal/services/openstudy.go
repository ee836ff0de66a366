package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/studyx/internal/models"
)

// OpenRoomFilter narrows the open room list.
type OpenRoomFilter struct {
	StudyField string
	Page       int
}

// OpenStudyService covers /api/open-study/rooms.
type OpenStudyService struct {
	api Requester
}

// NewOpenStudyService creates an [OpenStudyService].
func NewOpenStudyService(api Requester) *OpenStudyService {
	return &OpenStudyService{api: api}
}

// List returns one page of active rooms. Backends that return a bare array yield a single page.
func (s *OpenStudyService) List(ctx context.Context, filter OpenRoomFilter) (models.Page[models.OpenStudyRoom], error) {
	q := url.Values{}
	if filter.StudyField != "" {
		q.Set("studyField", filter.StudyField)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	return decodePageAt[models.OpenStudyRoom](ctx, s.api, withQuery("/api/open-study/rooms", q))
}

// Get fetches room details.
func (s *OpenStudyService) Get(ctx context.Context, id models.ID) (*models.OpenStudyRoom, error) {
	if err := requireID("room", id); err != nil {
		return nil, err
	}
	var room models.OpenStudyRoom
	if err := s.api.Do(ctx, http.MethodGet, "/api/open-study/rooms/"+escape(id), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create opens a new room and returns its id. The request is not validated here.
func (s *OpenStudyService) Create(ctx context.Context, req models.CreateOpenRoom) (models.ID, error) {
	var resp models.CreateRoomResponse
	if err := s.api.Do(ctx, http.MethodPost, "/api/open-study/rooms", req, &resp); err != nil {
		return "", err
	}
	return resp.RoomID, nil
}

// Join enters a room.
func (s *OpenStudyService) Join(ctx context.Context, id models.ID) error {
	if err := requireID("room", id); err != nil {
		return err
	}
	return s.api.Do(ctx, http.MethodPost, "/api/open-study/rooms/"+escape(id)+"/join", nil, nil)
}

// Leave exits a room.
func (s *OpenStudyService) Leave(ctx context.Context, id models.ID) error {
	if err := requireID("room", id); err != nil {
		return err
	}
	return s.api.Do(ctx, http.MethodPost, "/api/open-study/rooms/"+escape(id)+"/leave", nil, nil)
}

// Delete removes a room (creator only).
func (s *OpenStudyService) Delete(ctx context.Context, id models.ID) error {
	if err := requireID("room", id); err != nil {
		return err
	}
	return s.api.Do(ctx, http.MethodDelete, "/api/open-study/rooms/"+escape(id), nil, nil)
}

// LeavePath is the leave endpoint of a room, for keep-alive notifications.
func (s *OpenStudyService) LeavePath(id models.ID) string {
	return "/api/open-study/rooms/" + escape(id) + "/leave"
}
