package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/studyx/internal/formatter"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/desertthunder/studyx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	JoiningView ViewState = iota
	RoomView
	ErrorView
)

// Rooms is the part of [tasks.RoomController] the view drives.
type Rooms interface {
	tasks.JoinChecker
	Kind() models.RoomKind
	Join(ctx context.Context, id models.ID) (*models.CurrentRoom, error)
	Leave(ctx context.Context, id models.ID) error
	LeaveOnExit(id models.ID)
}

// Options wires a [Model]. Poller carries the API, intervals and logger; the model fills in the room.
type Options struct {
	Rooms    Rooms
	RoomID   models.ID
	Poller   tasks.PresencePollerOpts
	Prompter *Prompter
	Progress <-chan tasks.ProgressUpdate
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	rooms        Rooms
	roomID       models.ID
	pollerOpts   tasks.PresencePollerOpts
	poller       *tasks.PresencePoller
	prompter     *Prompter
	prompt       *promptRequest
	progressChan <-chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	updates      chan tasks.Presence
	room         *models.CurrentRoom
	presence     tasks.Presence
	participants list.Model
	studying     bool
	leaving      bool
	width        int
	height       int
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Prompter == nil {
		opts.Prompter = NewPrompter()
	}
	participants := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	participants.Title = "Participants"
	participants.SetShowStatusBar(false)
	participants.SetFilteringEnabled(false)

	return &Model{
		ctx:          ctx,
		view:         JoiningView,
		rooms:        opts.Rooms,
		roomID:       opts.RoomID,
		pollerOpts:   opts.Poller,
		prompter:     opts.Prompter,
		progressChan: opts.Progress,
		updates:      make(chan tasks.Presence, 1),
		participants: participants,
		studying:     true,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init joins the room and starts listening for prompts and progress.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.join(), m.waitForPrompt(), m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.participants.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		if m.prompt != nil {
			return m.handlePromptKeys(msg)
		}
		switch m.view {
		case RoomView:
			return m.handleRoomKeys(msg)
		default:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.participants, cmd = m.participants.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgJoined:
		data := msg.data.(struct {
			room *models.CurrentRoom
			err  error
		})
		if data.err != nil {
			m.err = data.err
			m.view = ErrorView
			return m, nil
		}
		m.room = data.room
		m.view = RoomView
		if err := m.startPoller(); err != nil {
			m.err = err
			return m, nil
		}
		return m, m.waitForPresence()

	case MsgPresence:
		m.presence = msg.data.(tasks.Presence)
		m.participants.SetItems(participantItems(m.presence.Participants))
		return m, m.waitForPresence()

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgPrompt:
		req := msg.data.(promptRequest)
		m.prompt = &req
		return m, nil

	case MsgLeft:
		if err, _ := msg.data.(error); err != nil {
			m.err = err
		}
		return m, tea.Quit
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case JoiningView:
		return m.renderJoining()
	case RoomView:
		return m.renderRoom()
	case ErrorView:
		return styles.err.Render(fmt.Sprintf("Could not join room %s: %v\n\nPress q to quit", m.roomID, m.err))
	default:
		return ""
	}
}

// Close stops polling and, when the room is still joined, sends a best-effort leave. It is meant to run after
// the program exits, including on interrupt.
func (m *Model) Close() {
	if m.poller != nil {
		m.poller.Stop()
	}
	if m.rooms.Joined(m.roomID) {
		m.rooms.LeaveOnExit(m.roomID)
	}
}

// Studying reports the local study/rest mode.
func (m *Model) Studying() bool { return m.studying }

// Err returns the error that ended the session, if any.
func (m *Model) Err() error { return m.err }

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch {
	case key.Matches(msg, m.keys.yes):
		answer = true
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		answer = false
	default:
		return m, nil
	}
	m.prompt.reply <- answer
	m.prompt = nil
	return m, m.waitForPrompt()
}

func (m *Model) handleRoomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		if m.leaving {
			return m, tea.Quit
		}
		m.leaving = true
		return m, m.leave()
	case key.Matches(msg, m.keys.toggle):
		m.studying = !m.studying
		return m, nil
	}

	var cmd tea.Cmd
	m.participants, cmd = m.participants.Update(msg)
	return m, cmd
}

func (m *Model) startPoller() error {
	opts := m.pollerOpts
	opts.Rooms = m.rooms
	opts.RoomID = m.roomID
	opts.Kind = m.rooms.Kind()
	opts.OnUpdate = m.publish
	m.poller = tasks.NewPresencePoller(opts)
	return m.poller.Start(m.ctx)
}

// publish keeps only the newest snapshot in the buffer.
func (m *Model) publish(snap tasks.Presence) {
	for {
		select {
		case m.updates <- snap:
			return
		default:
		}
		select {
		case <-m.updates:
		default:
		}
	}
}

func (m *Model) join() tea.Cmd {
	return func() tea.Msg {
		room, err := m.rooms.Join(m.ctx, m.roomID)
		return joinedMsg(room, err)
	}
}

func (m *Model) leave() tea.Cmd {
	poller := m.poller
	return func() tea.Msg {
		if poller != nil {
			poller.Stop()
		}
		return leftMsg(m.rooms.Leave(m.ctx, m.roomID))
	}
}

func (m *Model) waitForPrompt() tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-m.prompter.requests:
			return promptMsg(req)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	if m.progressChan == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update, ok := <-m.progressChan:
			if !ok {
				return nil
			}
			return progressUpdateMsg(update)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForPresence() tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-m.updates:
			return presenceMsg(snap)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) renderJoining() string {
	title := styles.title.Render(fmt.Sprintf("Joining %s room %s", m.rooms.Kind(), m.roomID))
	body := m.progress.Message
	if body == "" {
		body = "Connecting..."
	}
	if m.prompt != nil {
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
		return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, body, styles.warn.Render(m.prompt.prompt), helpView)
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (m *Model) renderRoom() string {
	var b strings.Builder

	name := string(m.roomID)
	if m.room != nil && m.room.Title != "" {
		name = m.room.Title
	}
	b.WriteString(styles.title.Render(fmt.Sprintf("%s (%s #%s)", name, m.rooms.Kind(), m.roomID)))
	b.WriteString("\n")

	b.WriteString(styles.badge(m.studying))
	if t := m.presence.Timer; t != nil {
		fmt.Fprintf(&b, "  %s study / %s rest", shared.FormatElapsed(t.StudySeconds), shared.FormatElapsed(t.RestSeconds))
	}
	b.WriteString("\n\n")

	if m.rooms.Kind() == models.RoomKindOpen {
		if m.presence.Room != nil {
			b.WriteString(formatter.RoomDetail(*m.presence.Room))
		}
	} else {
		b.WriteString(m.participants.View())
	}
	b.WriteString("\n")

	if m.leaving {
		b.WriteString(styles.help.Render("Leaving room..."))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(styles.err.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.presence.LastError != nil {
		b.WriteString(styles.warn.Render("last refresh failed: " + m.presence.LastError.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}
