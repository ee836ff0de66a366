package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/studyx/internal/formatter"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/services"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/urfave/cli/v3"
)

// OpenList lists one page of open study rooms.
func (r *Runner) OpenList(ctx context.Context, cmd *cli.Command) error {
	page, err := services.NewOpenStudyService(r.client).List(ctx, services.OpenRoomFilter{
		StudyField: cmd.String("field"),
		Page:       int(cmd.Int("page")),
	})
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	rooms := make([]models.RoomSummary, len(page.Content))
	for i, room := range page.Content {
		rooms[i] = room.Summary()
	}
	r.writePlain("%s", formatter.RoomsTable(rooms))
	if page.TotalPages > 1 {
		r.writePlain("Page %d of %d (%d rooms)\n", page.CurrentPage+1, page.TotalPages, page.TotalElements)
	}
	return nil
}

// OpenShow prints one open room.
func (r *Runner) OpenShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	room, err := services.NewOpenStudyService(r.client).Get(ctx, id)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(room, true)
	}
	r.writePlain("%s", formatter.RoomDetail(room.Summary()))
	if room.Description != "" {
		r.writePlain("%s\n", room.Description)
	}
	return nil
}

// OpenCreate creates an open room. The creator is seated by the backend, so no join call follows.
func (r *Runner) OpenCreate(ctx context.Context, cmd *cli.Command) error {
	rooms, err := r.roomController(ctx, cmd, models.RoomKindOpen)
	if err != nil {
		return err
	}
	room, err := rooms.Create(ctx, models.CreateOpenRoom{
		Title:           cmd.String("title"),
		Description:     cmd.String("description"),
		MaxParticipants: int(cmd.Int("max")),
		StudyField:      cmd.String("field"),
	})
	if err != nil {
		return err
	}
	return r.writePlain("✓ Created room %s (#%s)\n", room.Title, room.RoomID)
}

// OpenJoin joins an open room.
func (r *Runner) OpenJoin(ctx context.Context, cmd *cli.Command) error {
	return r.join(ctx, cmd, models.RoomKindOpen)
}

// OpenLeave leaves an open room.
func (r *Runner) OpenLeave(ctx context.Context, cmd *cli.Command) error {
	return r.leave(ctx, cmd, models.RoomKindOpen)
}

// OpenDelete deletes an open room after confirmation.
func (r *Runner) OpenDelete(ctx context.Context, cmd *cli.Command) error {
	return r.remove(ctx, cmd, models.RoomKindOpen)
}

// OpenCurrent prints the room recorded as current, of either kind.
func (r *Runner) OpenCurrent(ctx context.Context, cmd *cli.Command) error {
	rooms, err := r.roomController(ctx, cmd, models.RoomKindOpen)
	if err != nil {
		return err
	}
	current, err := rooms.Current()
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(current, true)
	}
	if current == nil {
		return r.writePlain("Not in a room.\n")
	}
	return r.writePlain("%s (%s #%s) since %s\n",
		current.Title, current.Kind, current.RoomID, current.JoinedAt.Local().Format("2006-01-02 15:04"))
}

func (r *Runner) join(ctx context.Context, cmd *cli.Command, kind models.RoomKind) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	rooms, err := r.roomController(ctx, cmd, kind)
	if err != nil {
		return err
	}
	room, err := rooms.Join(ctx, id)
	switch {
	case errors.Is(err, shared.ErrSwitchDeclined):
		return r.writePlain("Staying in your current room.\n")
	case err != nil:
		return err
	}
	return r.writePlain("✓ Joined %s (#%s)\n", room.Title, room.RoomID)
}

// leave falls back to the current room when no id is given.
func (r *Runner) leave(ctx context.Context, cmd *cli.Command, kind models.RoomKind) error {
	rooms, err := r.roomController(ctx, cmd, kind)
	if err != nil {
		return err
	}

	id := models.ID(cmd.StringArg("id"))
	if id == "" {
		current, err := rooms.Current()
		if err != nil {
			return err
		}
		if current == nil || current.Kind != kind {
			return fmt.Errorf("%w: not in a %s room", shared.ErrNotJoined, kind)
		}
		id = current.RoomID
	}

	if err := rooms.Leave(ctx, id); err != nil {
		r.writePlain("Left room %s locally; the server did not confirm: %v\n", id, err)
		return nil
	}
	return r.writePlain("✓ Left room %s\n", id)
}

func (r *Runner) remove(ctx context.Context, cmd *cli.Command, kind models.RoomKind) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	rooms, err := r.roomController(ctx, cmd, kind)
	if err != nil {
		return err
	}
	remaining, err := rooms.Delete(ctx, id)
	if err != nil {
		return err
	}
	r.writePlain("✓ Deleted room %s\n", id)
	if remaining != nil {
		r.writePlain("%s", formatter.RoomsTable(remaining))
	}
	return nil
}
