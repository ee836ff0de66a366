package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/studyx/internal/formatter"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
)

var _ list.Item = participantItem{}

// participantItem wraps [models.Participant] to implement [list.Item].
type participantItem struct {
	participant models.Participant
}

func (i participantItem) FilterValue() string { return i.participant.Username }
func (i participantItem) Title() string       { return i.participant.Username }
func (i participantItem) Description() string {
	t := i.participant.TimerStatus
	return fmt.Sprintf("%s • %s studied", formatter.TimerLabel(t), shared.FormatElapsed(t.StudySeconds))
}

func participantItems(participants []models.Participant) []list.Item {
	items := make([]list.Item, len(participants))
	for i, p := range participants {
		items[i] = participantItem{participant: p}
	}
	return items
}
