package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/desertthunder/studyx/internal/models"
)

// StudyRoomService covers the group-scoped rooms under /api/study-rooms.
type StudyRoomService struct {
	api Requester
}

// NewStudyRoomService creates a [StudyRoomService].
func NewStudyRoomService(api Requester) *StudyRoomService {
	return &StudyRoomService{api: api}
}

// List returns every group room.
func (s *StudyRoomService) List(ctx context.Context) ([]models.StudyRoom, error) {
	return decodeList[models.StudyRoom](ctx, s.api, "/api/study-rooms")
}

// ByGroup returns the rooms of one group.
func (s *StudyRoomService) ByGroup(ctx context.Context, groupID models.ID) ([]models.StudyRoom, error) {
	if err := requireID("group", groupID); err != nil {
		return nil, err
	}
	return decodeList[models.StudyRoom](ctx, s.api, "/api/study-rooms/group/"+escape(groupID))
}

// Get fetches room details.
func (s *StudyRoomService) Get(ctx context.Context, id models.ID) (*models.StudyRoom, error) {
	if err := requireID("room", id); err != nil {
		return nil, err
	}
	var room models.StudyRoom
	if err := s.api.Do(ctx, http.MethodGet, "/api/study-rooms/"+escape(id), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create opens a room inside a group.
func (s *StudyRoomService) Create(ctx context.Context, req models.CreateStudyRoom) (*models.StudyRoom, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var room models.StudyRoom
	if err := s.api.Do(ctx, http.MethodPost, "/api/study-rooms", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Join enters a room as memberID.
func (s *StudyRoomService) Join(ctx context.Context, id, memberID models.ID) error {
	if err := requireID("room", id); err != nil {
		return err
	}
	return s.api.Do(ctx, http.MethodPost, s.memberPath(id, "join", memberID), nil, nil)
}

// Leave exits a room as memberID.
func (s *StudyRoomService) Leave(ctx context.Context, id, memberID models.ID) error {
	if err := requireID("room", id); err != nil {
		return err
	}
	return s.api.Do(ctx, http.MethodPost, s.memberPath(id, "leave", memberID), nil, nil)
}

// End closes the room for everyone.
func (s *StudyRoomService) End(ctx context.Context, id models.ID) error {
	if err := requireID("room", id); err != nil {
		return err
	}
	return s.api.Do(ctx, http.MethodPost, "/api/study-rooms/"+escape(id)+"/end", nil, nil)
}

// Delete removes a room.
func (s *StudyRoomService) Delete(ctx context.Context, id models.ID) error {
	if err := requireID("room", id); err != nil {
		return err
	}
	return s.api.Do(ctx, http.MethodDelete, "/api/study-rooms/"+escape(id), nil, nil)
}

// Participants lists who is present and their timers.
func (s *StudyRoomService) Participants(ctx context.Context, id models.ID) ([]models.Participant, error) {
	if err := requireID("room", id); err != nil {
		return nil, err
	}
	return decodeList[models.Participant](ctx, s.api, "/api/study-rooms/"+escape(id)+"/participants")
}

// LeavePath is the leave endpoint of a room, for keep-alive notifications.
func (s *StudyRoomService) LeavePath(id, memberID models.ID) string {
	return s.memberPath(id, "leave", memberID)
}

func (s *StudyRoomService) memberPath(id models.ID, action string, memberID models.ID) string {
	q := url.Values{}
	if memberID != "" {
		q.Set("memberId", memberID.String())
	}
	return withQuery("/api/study-rooms/"+escape(id)+"/"+action, q)
}
