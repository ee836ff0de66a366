package tasks

import (
	"fmt"

	"github.com/desertthunder/studyx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	JoinRoom Phase = iota
	SwitchRoom
	LeaveRoom
	DeleteChecklist
)

func (p Phase) String() string {
	switch p {
	case JoinRoom:
		return "join_room"
	case SwitchRoom:
		return "switch_room"
	case LeaveRoom:
		return "leave_room"
	case DeleteChecklist:
		return "delete_checklist"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func joiningUpdate(id models.ID) ProgressUpdate {
	return ProgressUpdate{Phase: JoinRoom, Step: 1, Total: 1, Message: fmt.Sprintf("Joining room %s...", id)}
}

func switchingUpdate(from *models.CurrentRoom, to models.ID) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SwitchRoom,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Leaving %q before joining room %s...", from.Title, to),
		Data:    from,
	}
}

func joinedUpdate(room *models.CurrentRoom) ProgressUpdate {
	return ProgressUpdate{
		Phase:   JoinRoom,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Joined %s", room.Title),
		Data:    room,
	}
}

func leftUpdate(id models.ID) ProgressUpdate {
	return ProgressUpdate{Phase: LeaveRoom, Step: 1, Total: 1, Message: fmt.Sprintf("Left room %s", id)}
}

func deleteCompletedUpdate(step, total int, id models.ID) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeleteChecklist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, id),
	}
}

func deleteFailedUpdate(step, total int, id models.ID, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeleteChecklist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
	}
}
