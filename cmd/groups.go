package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/studyx/internal/formatter"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/services"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/urfave/cli/v3"
)

func requiredID(cmd *cli.Command, name string) (models.ID, error) {
	id := models.ID(cmd.StringArg(name))
	if id == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return id, nil
}

// GroupsList lists every group.
func (r *Runner) GroupsList(ctx context.Context, cmd *cli.Command) error {
	groups, err := services.NewGroupService(r.client).List(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(groups, true)
	}
	return r.writePlain("%s", formatter.GroupsTable(groups))
}

// GroupsMine lists the groups led by the logged-in user.
func (r *Runner) GroupsMine(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	groups, err := services.NewGroupService(r.client).Mine(ctx, user.ID)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(groups, true)
	}
	return r.writePlain("%s", formatter.GroupsTable(groups))
}

// GroupsShow prints one group with its members.
func (r *Runner) GroupsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	svc := services.NewGroupService(r.client)
	group, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(group, true)
	}

	r.writePlainHeader(group.GroupName)
	if group.Description != "" {
		r.writePlain("%s\n", group.Description)
	}
	r.writePlain("Leader: #%s\n", group.LeaderID)

	members, err := svc.Members(ctx, id)
	if err != nil {
		r.logger.Warn("could not load members", "group", id, "error", err)
		return nil
	}
	r.writePlainln("Members")
	return r.writePlain("%s", formatter.MembersText(members))
}

// GroupsCreate creates a group led by the logged-in user.
func (r *Runner) GroupsCreate(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	group, err := services.NewGroupService(r.client).Create(ctx, models.CreateGroup{
		GroupName:   cmd.String("name"),
		Description: cmd.String("description"),
		LeaderID:    user.ID,
	})
	if err != nil {
		return err
	}
	return r.writePlain("✓ Created group %s (#%s)\n", group.GroupName, group.ID)
}

// GroupsDelete deletes a group after confirmation.
func (r *Runner) GroupsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	user, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	ok, err := r.confirmer(cmd).Confirm(ctx, fmt.Sprintf("Delete group %s?", id))
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrNotConfirmed
	}
	if err := services.NewGroupService(r.client).Delete(ctx, id, user.ID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted group %s\n", id)
}

// GroupsMembers lists the members of a group.
func (r *Runner) GroupsMembers(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	members, err := services.NewGroupService(r.client).Members(ctx, id)
	if err != nil {
		return err
	}
	return r.writePlain("%s", formatter.MembersText(members))
}

// GroupsAddMember adds a member to a group.
func (r *Runner) GroupsAddMember(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	member, err := requiredID(cmd, "member")
	if err != nil {
		return err
	}
	if err := services.NewGroupService(r.client).AddMember(ctx, id, member); err != nil {
		return err
	}
	return r.writePlain("✓ Added #%s to group %s\n", member, id)
}

// GroupsRemoveMember removes a member from a group.
func (r *Runner) GroupsRemoveMember(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	member, err := requiredID(cmd, "member")
	if err != nil {
		return err
	}
	if err := services.NewGroupService(r.client).RemoveMember(ctx, id, member); err != nil {
		return err
	}
	return r.writePlain("✓ Removed #%s from group %s\n", member, id)
}

func summarizeGroupRooms(rooms []models.StudyRoom) []models.RoomSummary {
	out := make([]models.RoomSummary, len(rooms))
	for i, room := range rooms {
		out[i] = room.Summary()
	}
	return out
}

// RoomsList lists group study rooms.
func (r *Runner) RoomsList(ctx context.Context, cmd *cli.Command) error {
	rooms, err := services.NewStudyRoomService(r.client).List(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(rooms, true)
	}
	return r.writePlain("%s", formatter.RoomsTable(summarizeGroupRooms(rooms)))
}

// RoomsGroup lists the study rooms of one group.
func (r *Runner) RoomsGroup(ctx context.Context, cmd *cli.Command) error {
	groupID, err := requiredID(cmd, "group")
	if err != nil {
		return err
	}
	rooms, err := services.NewStudyRoomService(r.client).ByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(rooms, true)
	}
	return r.writePlain("%s", formatter.RoomsTable(summarizeGroupRooms(rooms)))
}

// RoomsShow prints one study room.
func (r *Runner) RoomsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	room, err := services.NewStudyRoomService(r.client).Get(ctx, id)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(room, true)
	}
	r.writePlain("%s", formatter.RoomDetail(room.Summary()))
	if room.RemainingMinutes > 0 {
		r.writePlain("Remaining: %d min\n", room.RemainingMinutes)
	}
	return nil
}

// RoomsCreate creates a study room in a group. Joining is a separate step.
func (r *Runner) RoomsCreate(ctx context.Context, cmd *cli.Command) error {
	room, err := services.NewStudyRoomService(r.client).Create(ctx, models.CreateStudyRoom{
		GroupID:    models.ID(cmd.String("group")),
		RoomName:   cmd.String("name"),
		StudyField: cmd.String("field"),
		StudyHours: int(cmd.Int("hours")),
		MaxMembers: int(cmd.Int("max")),
	})
	if err != nil {
		return err
	}
	r.writePlain("✓ Created room %s (#%s)\n", room.RoomName, room.ID)
	return r.writePlain("Run 'studyx rooms join %s' to enter it.\n", room.ID)
}

// RoomsJoin joins a study room and starts the study timer.
func (r *Runner) RoomsJoin(ctx context.Context, cmd *cli.Command) error {
	return r.join(ctx, cmd, models.RoomKindGroup)
}

// RoomsLeave ends the timer and leaves a study room.
func (r *Runner) RoomsLeave(ctx context.Context, cmd *cli.Command) error {
	return r.leave(ctx, cmd, models.RoomKindGroup)
}

// RoomsEnd ends a study room for everyone.
func (r *Runner) RoomsEnd(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	rooms, err := r.roomController(ctx, cmd, models.RoomKindGroup)
	if err != nil {
		return err
	}
	if err := rooms.End(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Ended room %s\n", id)
}

// RoomsDelete deletes a study room after confirmation.
func (r *Runner) RoomsDelete(ctx context.Context, cmd *cli.Command) error {
	return r.remove(ctx, cmd, models.RoomKindGroup)
}

// RoomsParticipants lists the participants of a study room.
func (r *Runner) RoomsParticipants(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	list, err := services.NewStudyRoomService(r.client).Participants(ctx, id)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(list, true)
	}
	return r.writePlain("%s", formatter.ParticipantsText(list))
}
