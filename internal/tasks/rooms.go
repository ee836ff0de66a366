package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/services"
	"github.com/desertthunder/studyx/internal/shared"
)

// RoomState is the membership state of one room as seen by a [RoomController].
type RoomState int

const (
	NotJoined RoomState = iota
	Joined
	Left
)

func (s RoomState) String() string {
	switch s {
	case Joined:
		return "joined"
	case Left:
		return "left"
	default:
		return "not_joined"
	}
}

// RoomControllerOpts configures a [RoomController].
type RoomControllerOpts struct {
	Kind      models.RoomKind       // kind of the rooms this controller joins (default open)
	API       RoomAPI               // HTTP client
	Store     RoomStore             // durable current-room pointer
	Confirmer Confirmer             // asked before switching rooms and before deleting
	MemberID  func() models.ID      // session member, required by group room endpoints
	Logger    *log.Logger           // optional
	Progress  chan<- ProgressUpdate // optional, never blocks
}

// RoomController joins, leaves, creates and deletes rooms and is the only writer of the current-room pointer.
//
// The pointer is kept in memory and mirrored to the [RoomStore]; when memory holds none the store is consulted,
// so a fresh controller sees the pointer written by an earlier run.
type RoomController struct {
	kind     models.RoomKind
	open     *openBackend
	group    *groupBackend
	backends map[models.RoomKind]roomBackend
	store    RoomStore
	confirm  Confirmer
	logger   *log.Logger
	progress chan<- ProgressUpdate

	mu      sync.Mutex
	current *models.CurrentRoom
	states  map[models.ID]RoomState
}

// NewRoomController creates a [RoomController].
func NewRoomController(opts RoomControllerOpts) *RoomController {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	kind := opts.Kind
	if kind == "" {
		kind = models.RoomKindOpen
	}

	open := newOpenBackend(opts.API)
	group := newGroupBackend(opts.API, opts.MemberID, logger)
	return &RoomController{
		kind:  kind,
		open:  open,
		group: group,
		backends: map[models.RoomKind]roomBackend{
			models.RoomKindOpen:  open,
			models.RoomKindGroup: group,
		},
		store:    opts.Store,
		confirm:  opts.Confirmer,
		logger:   logger,
		progress: opts.Progress,
		states:   make(map[models.ID]RoomState),
	}
}

// Kind returns the room kind the controller manages.
func (c *RoomController) Kind() models.RoomKind { return c.kind }

// State returns the membership state of a room.
func (c *RoomController) State(id models.ID) RoomState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[id]
}

// Joined reports whether the room has been joined and not left.
func (c *RoomController) Joined(id models.ID) bool {
	return c.State(id) == Joined
}

// Current returns a copy of the current-room pointer, recovering it from the store if needed.
func (c *RoomController) Current() (*models.CurrentRoom, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recoverLocked()
}

// Detail fetches the summary of a room of the controller's kind.
func (c *RoomController) Detail(ctx context.Context, id models.ID) (models.RoomSummary, error) {
	return c.backend().detail(ctx, id)
}

// Create validates req locally, creates the open room, and records it as the current room.
func (c *RoomController) Create(ctx context.Context, req models.CreateOpenRoom) (*models.CurrentRoom, error) {
	if c.kind != models.RoomKindOpen {
		return nil, fmt.Errorf("%w: only open rooms can be created here", shared.ErrInvalidInput)
	}

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	id, err := c.open.rooms.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: create response carried no room id", shared.ErrAPIRequest)
	}

	room := models.NewCurrentRoom(id, req.Title, models.RoomKindOpen)
	c.markJoined(room)
	return copyRoom(room), nil
}

// Join enters a room. When the backend reports the user is already in a room, the pointer decides: the same
// room is treated as joined, another room is left after confirmation, and no pointer is an error.
func (c *RoomController) Join(ctx context.Context, id models.ID) (*models.CurrentRoom, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: room id is required", shared.ErrMissingArgument)
	}

	backend := c.backend()
	room, err := backend.detail(ctx, id)
	if err != nil {
		return nil, err
	}

	sendProgress(c.progress, joiningUpdate(id))
	err = backend.join(ctx, room)
	if err == nil {
		return c.joined(room), nil
	}
	if !isRoomConflict(err) {
		return nil, err
	}

	c.mu.Lock()
	previous, loadErr := c.recoverLocked()
	c.mu.Unlock()
	if loadErr != nil {
		c.logger.Warn("could not read current room", "error", loadErr)
	}

	switch {
	case previous == nil:
		return nil, fmt.Errorf("%w: %s", shared.ErrLeaveCurrentRoomFirst, err)
	case previous.Is(c.kind, id):
		c.logger.Debug("already in room", "room", id)
		return c.joined(room), nil
	}

	ok, confirmErr := c.ask(ctx, fmt.Sprintf("You are already in %q. Leave it and join %q?", previous.Title, room.Title))
	if confirmErr != nil {
		return nil, confirmErr
	}
	if !ok {
		return nil, fmt.Errorf("%w: still in %q", shared.ErrSwitchDeclined, previous.Title)
	}

	sendProgress(c.progress, switchingUpdate(previous, id))
	if err := c.leaveRoom(ctx, previous.Kind, previous.RoomID); err != nil {
		c.logger.Warn("leave before switch failed", "room", previous.RoomID, "error", err)
	}

	if err := backend.join(ctx, room); err != nil {
		return nil, err
	}
	return c.joined(room), nil
}

// Leave notifies the backend and clears the pointer whatever the outcome. The returned error is informational.
func (c *RoomController) Leave(ctx context.Context, id models.ID) error {
	err := c.leaveRoom(ctx, c.kind, id)
	if err != nil {
		c.logger.Warn("leave failed", "room", id, "error", err)
	}
	sendProgress(c.progress, leftUpdate(id))
	return err
}

// LeaveOnExit sends a keep-alive leave notification and clears the pointer without waiting. It is a no-op
// unless the room is joined.
func (c *RoomController) LeaveOnExit(id models.ID) {
	if !c.Joined(id) {
		return
	}
	c.backend().beaconLeave(id)
	c.markLeft(c.kind, id)
}

// Delete removes a room after confirmation and returns the refreshed room list.
func (c *RoomController) Delete(ctx context.Context, id models.ID) ([]models.RoomSummary, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: room id is required", shared.ErrMissingArgument)
	}

	ok, err := c.ask(ctx, fmt.Sprintf("Delete room %s? Everyone in it will be removed.", id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrNotConfirmed
	}

	backend := c.backend()
	if err := backend.remove(ctx, id); err != nil {
		return nil, err
	}
	c.markLeft(c.kind, id)

	rooms, err := backend.list(ctx)
	if err != nil {
		c.logger.Warn("room list refresh failed", "error", err)
		return nil, nil
	}
	return rooms, nil
}

// End closes a group room for everyone and clears the pointer.
func (c *RoomController) End(ctx context.Context, id models.ID) error {
	if c.kind != models.RoomKindGroup {
		return fmt.Errorf("%w: only group rooms can be ended", shared.ErrInvalidInput)
	}

	if err := c.group.timer.End(ctx); err != nil {
		c.logger.Debug("timer end failed", "room", id, "error", err)
	}
	if err := c.group.rooms.End(ctx, id); err != nil {
		return err
	}
	c.markLeft(c.kind, id)
	return nil
}

func (c *RoomController) backend() roomBackend {
	return c.backends[c.kind]
}

func (c *RoomController) ask(ctx context.Context, prompt string) (bool, error) {
	if c.confirm == nil {
		return false, fmt.Errorf("%w: %s", shared.ErrNotConfirmed, prompt)
	}
	return c.confirm.Confirm(ctx, prompt)
}

func (c *RoomController) leaveRoom(ctx context.Context, kind models.RoomKind, id models.ID) error {
	backend, ok := c.backends[kind]
	if !ok {
		return fmt.Errorf("%w: unknown room kind %q", shared.ErrInvalidInput, kind)
	}
	err := backend.leave(ctx, id)
	c.markLeft(kind, id)
	return err
}

func (c *RoomController) joined(room models.RoomSummary) *models.CurrentRoom {
	current := models.NewCurrentRoom(room.ID, room.Title, c.kind)
	c.markJoined(current)
	sendProgress(c.progress, joinedUpdate(current))
	return copyRoom(current)
}

func (c *RoomController) markJoined(room *models.CurrentRoom) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = copyRoom(room)
	c.states[room.RoomID] = Joined
	if c.store != nil {
		if err := c.store.Save(room); err != nil {
			c.logger.Warn("failed to save current room", "room", room.RoomID, "error", err)
		}
	}
}

// markLeft clears the pointer if it references the room.
func (c *RoomController) markLeft(kind models.RoomKind, id models.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if kind == c.kind {
		c.states[id] = Left
	}

	current, err := c.recoverLocked()
	if err != nil {
		c.logger.Warn("could not read current room", "error", err)
	}
	if current != nil && !current.Is(kind, id) {
		return
	}

	c.current = nil
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.logger.Warn("failed to clear current room", "error", err)
		}
	}
}

// recoverLocked returns the in-memory pointer, falling back to the store.
func (c *RoomController) recoverLocked() (*models.CurrentRoom, error) {
	if c.current == nil && c.store != nil {
		room, err := c.store.Load()
		if err != nil {
			return nil, err
		}
		c.current = room
	}
	return copyRoom(c.current), nil
}

func copyRoom(room *models.CurrentRoom) *models.CurrentRoom {
	if room == nil {
		return nil
	}
	r := *room
	return &r
}

var _ RoomAPI = (*services.APIClient)(nil)
