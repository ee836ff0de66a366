package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgJoined MsgKind = iota
	MsgPresence
	MsgProgressUpdate
	MsgPrompt
	MsgLeft
)

// joinedMsg is the constructor for [MsgJoined]
func joinedMsg(room *models.CurrentRoom, err error) Msg {
	return Msg{
		kind: MsgJoined,
		data: struct {
			room *models.CurrentRoom
			err  error
		}{room, err},
	}
}

// presenceMsg is the constructor for [MsgPresence]
func presenceMsg(snap tasks.Presence) Msg {
	return Msg{kind: MsgPresence, data: snap}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// promptMsg is the constructor for [MsgPrompt]
func promptMsg(req promptRequest) Msg {
	return Msg{kind: MsgPrompt, data: req}
}

// leftMsg is the constructor for [MsgLeft]
func leftMsg(err error) Msg {
	return Msg{kind: MsgLeft, data: err}
}
