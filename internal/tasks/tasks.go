package tasks

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/services"
)

// Confirmer asks the user a yes/no question before a destructive or disruptive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// RoomStore is the durable current-room pointer (see repositories.CurrentRoomRepository).
type RoomStore interface {
	Load() (*models.CurrentRoom, error)
	Save(room *models.CurrentRoom) error
	Clear() error
}

// RoomAPI is the HTTP client surface the room tasks need: regular requests plus keep-alive notifications.
type RoomAPI interface {
	services.Requester
	Beacon(method, path string)
}

// roomBackend is the kind-specific half of the room lifecycle.
type roomBackend interface {
	detail(ctx context.Context, id models.ID) (models.RoomSummary, error)
	list(ctx context.Context) ([]models.RoomSummary, error)
	join(ctx context.Context, room models.RoomSummary) error
	leave(ctx context.Context, id models.ID) error
	remove(ctx context.Context, id models.ID) error
	beaconLeave(id models.ID)
}

type openBackend struct {
	api   RoomAPI
	rooms *services.OpenStudyService
}

func newOpenBackend(api RoomAPI) *openBackend {
	return &openBackend{api: api, rooms: services.NewOpenStudyService(api)}
}

func (b *openBackend) detail(ctx context.Context, id models.ID) (models.RoomSummary, error) {
	room, err := b.rooms.Get(ctx, id)
	if err != nil {
		return models.RoomSummary{}, err
	}
	return room.Summary(), nil
}

func (b *openBackend) list(ctx context.Context) ([]models.RoomSummary, error) {
	page, err := b.rooms.List(ctx, services.OpenRoomFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]models.RoomSummary, 0, len(page.Content))
	for _, r := range page.Content {
		out = append(out, r.Summary())
	}
	return out, nil
}

func (b *openBackend) join(ctx context.Context, room models.RoomSummary) error {
	return b.rooms.Join(ctx, room.ID)
}

func (b *openBackend) leave(ctx context.Context, id models.ID) error {
	return b.rooms.Leave(ctx, id)
}

func (b *openBackend) remove(ctx context.Context, id models.ID) error {
	return b.rooms.Delete(ctx, id)
}

func (b *openBackend) beaconLeave(id models.ID) {
	b.api.Beacon(http.MethodPost, b.rooms.LeavePath(id))
}

// groupBackend joins group rooms as the session member and drives the personal study timer alongside.
type groupBackend struct {
	api      RoomAPI
	rooms    *services.StudyRoomService
	timer    *services.TimerService
	memberID func() models.ID
	logger   *log.Logger
}

func newGroupBackend(api RoomAPI, memberID func() models.ID, logger *log.Logger) *groupBackend {
	if memberID == nil {
		memberID = func() models.ID { return "" }
	}
	return &groupBackend{
		api:      api,
		rooms:    services.NewStudyRoomService(api),
		timer:    services.NewTimerService(api),
		memberID: memberID,
		logger:   logger,
	}
}

func (b *groupBackend) detail(ctx context.Context, id models.ID) (models.RoomSummary, error) {
	room, err := b.rooms.Get(ctx, id)
	if err != nil {
		return models.RoomSummary{}, err
	}
	return room.Summary(), nil
}

func (b *groupBackend) list(ctx context.Context) ([]models.RoomSummary, error) {
	rooms, err := b.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	return out, nil
}

// join enters the room, then starts the timer. A timer failure is only logged.
func (b *groupBackend) join(ctx context.Context, room models.RoomSummary) error {
	member := b.memberID()
	if err := b.rooms.Join(ctx, room.ID, member); err != nil {
		return err
	}

	isCreator := member != "" && room.Creator == member.String()
	if _, err := b.timer.Start(ctx, room.ID, isCreator); err != nil {
		b.logger.Warn("timer start failed", "room", room.ID, "error", err)
	}
	return nil
}

// leave ends the timer first (best effort), then leaves the room.
func (b *groupBackend) leave(ctx context.Context, id models.ID) error {
	if err := b.timer.End(ctx); err != nil {
		b.logger.Debug("timer end failed", "room", id, "error", err)
	}
	return b.rooms.Leave(ctx, id, b.memberID())
}

func (b *groupBackend) remove(ctx context.Context, id models.ID) error {
	return b.rooms.Delete(ctx, id)
}

func (b *groupBackend) beaconLeave(id models.ID) {
	b.api.Beacon(http.MethodPost, b.timer.EndPath())
	b.api.Beacon(http.MethodPost, b.rooms.LeavePath(id, b.memberID()))
}

// isRoomConflict reports whether a join failed because the user is already in a room.
func isRoomConflict(err error) bool {
	var apiErr *services.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status == http.StatusConflict {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "already") || strings.Contains(msg, "이미")
}
