package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
)

// GroupService covers /api/groups.
type GroupService struct {
	api Requester
}

// NewGroupService creates a [GroupService].
func NewGroupService(api Requester) *GroupService {
	return &GroupService{api: api}
}

// List returns every group.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	return decodeList[models.Group](ctx, s.api, "/api/groups")
}

// Mine returns the caller's groups, optionally narrowed to those led by leaderID.
func (s *GroupService) Mine(ctx context.Context, leaderID models.ID) ([]models.Group, error) {
	q := url.Values{}
	if leaderID != "" {
		q.Set("leaderId", leaderID.String())
	}
	return decodeList[models.Group](ctx, s.api, withQuery("/api/groups/my", q))
}

// Get fetches one group.
func (s *GroupService) Get(ctx context.Context, id models.ID) (*models.Group, error) {
	if err := requireID("group", id); err != nil {
		return nil, err
	}
	var group models.Group
	if err := s.api.Do(ctx, http.MethodGet, "/api/groups/"+escape(id), nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Create makes a new group led by req.LeaderID.
func (s *GroupService) Create(ctx context.Context, req models.CreateGroup) (*models.Group, error) {
	req.GroupName = strings.TrimSpace(req.GroupName)
	if req.GroupName == "" {
		return nil, fmt.Errorf("%w: group name is required", shared.ErrInvalidInput)
	}
	var group models.Group
	if err := s.api.Do(ctx, http.MethodPost, "/api/groups", req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Delete removes a group. Some backends require the acting user's id for authorization.
func (s *GroupService) Delete(ctx context.Context, id, actingUserID models.ID) error {
	if err := requireID("group", id); err != nil {
		return err
	}
	q := url.Values{}
	if actingUserID != "" {
		q.Set("userId", actingUserID.String())
	}
	return s.api.Do(ctx, http.MethodDelete, withQuery("/api/groups/"+escape(id), q), nil, nil)
}

// Members lists the members of a group.
func (s *GroupService) Members(ctx context.Context, id models.ID) ([]models.GroupMember, error) {
	if err := requireID("group", id); err != nil {
		return nil, err
	}
	return decodeList[models.GroupMember](ctx, s.api, "/api/groups/"+escape(id)+"/members")
}

// AddMember adds memberID to a group.
func (s *GroupService) AddMember(ctx context.Context, id, memberID models.ID) error {
	if err := requireID("group", id); err != nil {
		return err
	}
	if err := requireID("member", memberID); err != nil {
		return err
	}
	return s.api.Do(ctx, http.MethodPost, "/api/groups/"+escape(id)+"/members",
		map[string]string{"memberId": memberID.String()}, nil)
}

// RemoveMember removes memberID from a group.
func (s *GroupService) RemoveMember(ctx context.Context, id, memberID models.ID) error {
	if err := requireID("group", id); err != nil {
		return err
	}
	if err := requireID("member", memberID); err != nil {
		return err
	}
	return s.api.Do(ctx, http.MethodDelete, "/api/groups/"+escape(id)+"/members/"+escape(memberID), nil, nil)
}

// decodeList fetches path and normalizes either list shape into a slice.
func decodeList[T any](ctx context.Context, api Requester, path string) ([]T, error) {
	page, err := decodePageAt[T](ctx, api, path)
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

func decodePageAt[T any](ctx context.Context, api Requester, path string) (models.Page[T], error) {
	var raw []byte
	if err := api.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return models.Page[T]{}, err
	}
	return models.DecodePage[T](raw)
}
