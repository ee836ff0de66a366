package ui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/repositories"
	"github.com/desertthunder/studyx/internal/services"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/desertthunder/studyx/internal/tasks"
	tu "github.com/desertthunder/studyx/internal/testing"
)

type viewFixture struct {
	backend  *tu.FakeBackend
	client   *services.APIClient
	rooms    *tasks.RoomController
	prompter *Prompter
	roomID   models.ID
}

func newViewFixture(t *testing.T) *viewFixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	backend := tu.NewFakeBackend(t)
	client := services.NewAPIClient(services.ClientOptions{BaseURL: backend.URL(), Logger: tu.DiscardLogger()})
	if err := client.SetCookies([]*http.Cookie{backend.LogIn()}); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}

	prompter := NewPrompter()
	rooms := tasks.NewRoomController(tasks.RoomControllerOpts{
		Kind:      models.RoomKindGroup,
		API:       client,
		Store:     repositories.NewCurrentRoomRepository(db),
		Confirmer: prompter,
		MemberID:  func() models.ID { return backend.User.ID },
		Logger:    tu.DiscardLogger(),
	})

	return &viewFixture{
		backend:  backend,
		client:   client,
		rooms:    rooms,
		prompter: prompter,
		roomID:   backend.AddGroupRoom(models.StudyRoom{GroupID: "5", RoomName: "Night", MaxMembers: 4}),
	}
}

func (f *viewFixture) model(ctx context.Context) *Model {
	return NewModel(ctx, Options{
		Rooms:    f.rooms,
		RoomID:   f.roomID,
		Prompter: f.prompter,
		Poller: tasks.PresencePollerOpts{
			API:                 f.client,
			TimerInterval:       time.Hour,
			ParticipantInterval: time.Hour,
			Logger:              tu.DiscardLogger(),
		},
	})
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func joinedModel(t *testing.T, f *viewFixture, ctx context.Context) *Model {
	t.Helper()
	m := f.model(ctx)
	_, cmd := m.Update(m.join()())
	if m.view != RoomView {
		t.Fatalf("expected room view, got %v (err %v)", m.view, m.err)
	}
	if cmd == nil {
		t.Fatal("expected presence listener")
	}
	m.Update(cmd())
	return m
}

func TestModel(t *testing.T) {
	t.Run("Join Poll Leave", func(t *testing.T) {
		f := newViewFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		m := joinedModel(t, f, ctx)
		if f.backend.CurrentGroupRoom() != f.roomID {
			t.Fatal("server should have the user in the room")
		}
		if n := len(m.participants.Items()); n != 1 {
			t.Errorf("expected 1 participant, got %d", n)
		}
		if !strings.Contains(m.View(), "Night (group #"+f.roomID.String()+")") {
			t.Errorf("unexpected view:\n%s", m.View())
		}

		_, cmd := m.Update(keyPress("q"))
		if cmd == nil || !m.leaving {
			t.Fatal("quit should start leaving")
		}
		_, cmd = m.Update(cmd())
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg after leaving")
		}
		if f.backend.CurrentGroupRoom() != "" {
			t.Error("server should no longer have the user in the room")
		}
		if f.rooms.Joined(f.roomID) {
			t.Error("controller pointer should be cleared")
		}

		f.backend.ResetCalls()
		m.Close()
		if n := len(f.backend.Calls()); n != 0 {
			t.Errorf("close after leave should not call the server, got %d calls", n)
		}
	})

	t.Run("Toggle Study Rest", func(t *testing.T) {
		f := newViewFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		m := joinedModel(t, f, ctx)
		defer m.Close()

		if !m.Studying() {
			t.Fatal("should start studying")
		}
		f.backend.ResetCalls()
		m.Update(keyPress("s"))
		if m.Studying() {
			t.Error("toggle should switch to resting")
		}
		if !strings.Contains(m.View(), "resting") {
			t.Error("view should show resting")
		}
		if n := len(f.backend.Calls()); n != 0 {
			t.Errorf("toggle is local only, got %d calls", n)
		}
	})

	t.Run("Close Beacons Leave", func(t *testing.T) {
		f := newViewFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		m := joinedModel(t, f, ctx)
		m.Close()
		if !f.client.WaitBeacons(2 * time.Second) {
			t.Fatal("beacon did not finish")
		}
		if f.backend.Count(http.MethodPost, "/api/study-rooms/"+f.roomID.String()+"/leave") != 1 {
			t.Error("expected a leave beacon")
		}
		if f.rooms.Joined(f.roomID) {
			t.Error("pointer should be cleared on exit")
		}
	})

	t.Run("Join Failure", func(t *testing.T) {
		f := newViewFixture(t)
		f.backend.Fail(http.MethodGet, "/api/study-rooms/"+f.roomID.String(), http.StatusNotFound, "room not found")

		m := f.model(context.Background())
		m.Update(m.join()())
		if m.view != ErrorView {
			t.Fatalf("expected error view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "room not found") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestPrompter(t *testing.T) {
	for _, answer := range []bool{true, false} {
		name := "No"
		press := "n"
		if answer {
			name, press = "Yes", "y"
		}

		t.Run(name, func(t *testing.T) {
			f := newViewFixture(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			m := f.model(ctx)

			got := make(chan bool, 1)
			go func() {
				ok, _ := f.prompter.Confirm(ctx, "Leave room A and join room B?")
				got <- ok
			}()

			m.Update(m.waitForPrompt()())
			if m.prompt == nil || !strings.Contains(m.View(), "Leave room A and join room B?") {
				t.Fatalf("prompt not shown:\n%s", m.View())
			}
			m.Update(keyPress(press))

			select {
			case ok := <-got:
				if ok != answer {
					t.Errorf("expected %v, got %v", answer, ok)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("confirm did not return")
			}
			if m.prompt != nil {
				t.Error("prompt should be cleared")
			}
		})
	}

	t.Run("Cancelled", func(t *testing.T) {
		p := NewPrompter()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := p.Confirm(ctx, "?"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
