package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/desertthunder/studyx/internal/tasks"
	"github.com/desertthunder/studyx/internal/ui"
	"github.com/urfave/cli/v3"
)

// RoomView joins a room and shows its participants and timer until the user quits.
// Quitting leaves the room; an interrupt sends a keep-alive leave instead.
func (r *Runner) RoomView(ctx context.Context, cmd *cli.Command) error {
	kind, err := models.ParseRoomKind(cmd.StringArg("kind"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	if kind == models.RoomKindGroup {
		if _, err := r.requireUser(ctx); err != nil {
			return err
		}
	}

	// Logs go to a file while the view owns the terminal
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	prompter := ui.NewPrompter()
	progress := make(chan tasks.ProgressUpdate, 8)
	rooms := tasks.NewRoomController(tasks.RoomControllerOpts{
		Kind:      kind,
		API:       r.client,
		Store:     r.rooms,
		Confirmer: prompter,
		MemberID:  r.memberID,
		Logger:    r.logger,
		Progress:  progress,
	})

	model := ui.NewModel(ctx, ui.Options{
		Rooms:  rooms,
		RoomID: id,
		Poller: tasks.PresencePollerOpts{
			API:                 r.client,
			TimerInterval:       r.config.Polling.TimerInterval.Duration,
			ParticipantInterval: r.config.Polling.ParticipantInterval.Duration,
			Logger:              r.logger,
		},
		Prompter: prompter,
		Progress: progress,
	})

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	_, runErr := p.Run()
	model.Close()
	if !r.client.WaitBeacons(2 * time.Second) {
		r.logger.Warn("leave notification still in flight", "room", id)
	}

	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("error running room view: %w", runErr)
	}
	return model.Err()
}
