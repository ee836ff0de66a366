package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/services"
	"github.com/desertthunder/studyx/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimerInterval       = time.Second
	DefaultParticipantInterval = 5 * time.Second
)

// Presence is a snapshot of a joined room as last reported by the backend.
type Presence struct {
	RoomID       models.ID
	Kind         models.RoomKind
	Room         *models.RoomSummary // open rooms only
	Participants []models.Participant
	Timer        *models.TimerStatus
	LastError    error
	UpdatedAt    time.Time
}

func (p Presence) clone() Presence {
	if p.Room != nil {
		r := *p.Room
		p.Room = &r
	}
	if p.Timer != nil {
		t := *p.Timer
		p.Timer = &t
	}
	if p.Participants != nil {
		p.Participants = append([]models.Participant(nil), p.Participants...)
	}
	return p
}

// JoinChecker reports whether a room has been joined. [*RoomController] implements it.
type JoinChecker interface {
	Joined(id models.ID) bool
}

// PresencePollerOpts configures a [PresencePoller].
type PresencePollerOpts struct {
	API                 services.Requester
	Rooms               JoinChecker
	RoomID              models.ID
	Kind                models.RoomKind
	TimerInterval       time.Duration // default 1s
	ParticipantInterval time.Duration // default 5s
	Logger              *log.Logger
	OnUpdate            func(Presence) // called after every applied tick, outside the lock
}

// PresencePoller refreshes participants and timer status of a joined room on two fixed intervals.
//
// Every tick replaces the snapshot wholesale. Failed ticks are logged and retried on the next interval;
// there is no backoff.
type PresencePoller struct {
	roomID              models.ID
	kind                models.RoomKind
	rooms               JoinChecker
	openRooms           *services.OpenStudyService
	groupRooms          *services.StudyRoomService
	timer               *services.TimerService
	timerInterval       time.Duration
	participantInterval time.Duration
	logger              *log.Logger
	onUpdate            func(Presence)

	mu   sync.RWMutex
	snap Presence

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPresencePoller creates a stopped [PresencePoller].
func NewPresencePoller(opts PresencePollerOpts) *PresencePoller {
	if opts.TimerInterval <= 0 {
		opts.TimerInterval = DefaultTimerInterval
	}
	if opts.ParticipantInterval <= 0 {
		opts.ParticipantInterval = DefaultParticipantInterval
	}
	if opts.Kind == "" {
		opts.Kind = models.RoomKindOpen
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &PresencePoller{
		roomID:              opts.RoomID,
		kind:                opts.Kind,
		rooms:               opts.Rooms,
		openRooms:           services.NewOpenStudyService(opts.API),
		groupRooms:          services.NewStudyRoomService(opts.API),
		timer:               services.NewTimerService(opts.API),
		timerInterval:       opts.TimerInterval,
		participantInterval: opts.ParticipantInterval,
		logger:              shared.WithLogger(logger, "room", opts.RoomID),
		onUpdate:            opts.OnUpdate,
		snap:                Presence{RoomID: opts.RoomID, Kind: opts.Kind},
	}
}

// Start launches both loops. It refuses to start before the room has been joined and is a no-op while running.
func (p *PresencePoller) Start(ctx context.Context) error {
	if p.rooms == nil || !p.rooms.Joined(p.roomID) {
		return fmt.Errorf("%w: %s", shared.ErrNotJoined, p.roomID)
	}

	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p.loop(gctx, p.participantInterval, true, p.refreshParticipants)
		return nil
	})
	if p.kind == models.RoomKindGroup {
		g.Go(func() error {
			p.loop(gctx, p.timerInterval, false, p.refreshTimer)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	p.cancel = cancel
	p.done = done
	return nil
}

// Stop cancels both loops and waits for them to exit. It is safe to call more than once.
func (p *PresencePoller) Stop() {
	p.runMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loops are active.
func (p *PresencePoller) Running() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.cancel != nil
}

// Snapshot returns a copy of the latest state.
func (p *PresencePoller) Snapshot() Presence {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap.clone()
}

func (p *PresencePoller) loop(ctx context.Context, interval time.Duration, immediate bool, refresh func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if immediate {
		refresh(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh(ctx)
		}
	}
}

// refreshParticipants replaces the participant list, or for open rooms the room detail.
func (p *PresencePoller) refreshParticipants(ctx context.Context) {
	if p.kind == models.RoomKindOpen {
		room, err := p.openRooms.Get(ctx, p.roomID)
		if err != nil {
			p.fail(ctx, "room poll failed", err)
			return
		}
		summary := room.Summary()
		p.update(func(s *Presence) { s.Room = &summary })
		return
	}

	list, err := p.groupRooms.Participants(ctx, p.roomID)
	if err != nil {
		p.fail(ctx, "participant poll failed", err)
		return
	}
	p.update(func(s *Presence) { s.Participants = list })
}

func (p *PresencePoller) refreshTimer(ctx context.Context) {
	status, err := p.timer.Status(ctx)
	if err != nil {
		p.fail(ctx, "timer poll failed", err)
		return
	}
	p.update(func(s *Presence) { s.Timer = status })
}

func (p *PresencePoller) fail(ctx context.Context, msg string, err error) {
	if ctx.Err() != nil {
		return
	}
	p.logger.Warn(msg, "error", err)
	p.update(func(s *Presence) { s.LastError = err })
}

func (p *PresencePoller) update(fn func(*Presence)) {
	p.mu.Lock()
	fn(&p.snap)
	p.snap.UpdatedAt = time.Now()
	snap := p.snap.clone()
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(snap)
	}
}
