package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/studyx/internal/models"
)

// TimerService covers the caller's personal study timer.
type TimerService struct {
	api Requester
}

// NewTimerService creates a [TimerService].
func NewTimerService(api Requester) *TimerService {
	return &TimerService{api: api}
}

// Status fetches the current timer snapshot.
func (s *TimerService) Status(ctx context.Context) (*models.TimerStatus, error) {
	var status models.TimerStatus
	if err := s.api.Do(ctx, http.MethodGet, "/api/timer/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Start starts the timer for a group room.
func (s *TimerService) Start(ctx context.Context, roomID models.ID, isCreator bool) (*models.TimerStatus, error) {
	n, err := roomID.Int64()
	if err != nil {
		return nil, fmt.Errorf("room id %q is not numeric: %w", roomID, err)
	}

	var status models.TimerStatus
	if err := s.api.Do(ctx, http.MethodPost, "/api/timer/start", models.TimerStart{RoomID: n, IsCreator: isCreator}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// End stops the timer.
func (s *TimerService) End(ctx context.Context) error {
	return s.api.Do(ctx, http.MethodPost, "/api/timer/end", nil, nil)
}

// EndPath is the end endpoint, for keep-alive notifications.
func (s *TimerService) EndPath() string {
	return "/api/timer/end"
}
