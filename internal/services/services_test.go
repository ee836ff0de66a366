package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
	tu "github.com/desertthunder/studyx/internal/testing"
)

func loggedInClient(t *testing.T, backend *tu.FakeBackend) *APIClient {
	t.Helper()
	c := newTestClient(backend.URL(), NewRouteNavigator("/", nil))
	if err := c.SetCookies([]*http.Cookie{backend.LogIn()}); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return c
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("Login Then Profile", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		auth := NewAuthService(newTestClient(backend.URL(), nil))

		if _, err := auth.Login(ctx, models.Credentials{Email: backend.Email, Password: backend.Password}); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		user, err := auth.Profile(ctx)
		if err != nil {
			t.Fatalf("profile failed: %v", err)
		}
		if user.Username != "student" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("Invalid Credentials", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		auth := NewAuthService(newTestClient(backend.URL(), nil))

		_, err := auth.Login(ctx, models.Credentials{Email: backend.Email, Password: "wrong"})
		apiErr, ok := AsAPIError(err)
		if !ok || !apiErr.HasCode(CodeInvalidCredentials) {
			t.Errorf("expected INVALID_CREDENTIALS, got %v", err)
		}
	})

	t.Run("Register JSON", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		auth := NewAuthService(newTestClient(backend.URL(), nil))

		err := auth.Register(ctx, models.RegisterRequest{Username: "new", Email: "new@example.com", Password: "pw"})
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		call := backend.CallsTo(http.MethodPost, "/api/registerAct")[0]
		if ct := call.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON body, got %s", ct)
		}
	})

	t.Run("Register Multipart", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		auth := NewAuthService(newTestClient(backend.URL(), nil))

		image := filepath.Join(t.TempDir(), "me.jpg")
		if err := os.WriteFile(image, []byte("jpg"), 0644); err != nil {
			t.Fatalf("failed to write image: %v", err)
		}

		err := auth.Register(ctx, models.RegisterRequest{
			Username: "new", Email: "new@example.com", Password: "pw", ProfileImage: image,
		})
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		call := backend.CallsTo(http.MethodPost, "/api/registerAct")[0]
		if ct := call.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/form-data") {
			t.Errorf("expected multipart body, got %s", ct)
		}
	})

	t.Run("Register Conflicts", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		auth := NewAuthService(newTestClient(backend.URL(), nil))

		err := auth.Register(ctx, models.RegisterRequest{Username: "x", Email: backend.Email, Password: "pw"})
		if apiErr, ok := AsAPIError(err); !ok || !apiErr.HasCode(CodeEmailExists) {
			t.Errorf("expected EMAIL_EXISTS, got %v", err)
		}

		err = auth.Register(ctx, models.RegisterRequest{Username: "student", Email: "other@example.com", Password: "pw"})
		if apiErr, ok := AsAPIError(err); !ok || !apiErr.HasCode(CodeUsernameExists) {
			t.Errorf("expected USERNAME_EXISTS, got %v", err)
		}
	})

	t.Run("Profile Mutations", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		auth := NewAuthService(loggedInClient(t, backend))

		bio := "studying for finals"
		user, err := auth.UpdateProfile(ctx, models.UserPatch{Bio: &bio})
		if err != nil || user.Bio != bio {
			t.Fatalf("update profile failed: %v %+v", err, user)
		}
		if err := auth.ChangeEmail(ctx, "n@example.com"); err != nil {
			t.Errorf("change email failed: %v", err)
		}
		if err := auth.ChangeEmail(ctx, ""); err == nil {
			t.Error("expected error for empty email")
		}
		if err := auth.ChangePassword(ctx, models.PasswordChange{CurrentPassword: "a", NewPassword: "b"}); err != nil {
			t.Errorf("change password failed: %v", err)
		}
		if backend.Count(http.MethodPatch, "/api/update/password") != 1 {
			t.Error("expected one password change call")
		}
	})
}

func TestOpenStudyService(t *testing.T) {
	ctx := context.Background()
	backend := tu.NewFakeBackend(t)
	svc := NewOpenStudyService(loggedInClient(t, backend))

	t.Run("Create And List", func(t *testing.T) {
		id, err := svc.Create(ctx, models.CreateOpenRoom{Title: "Go", MaxParticipants: 4, StudyField: "CS"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if id == "" {
			t.Fatal("expected room id")
		}

		page, err := svc.List(ctx, OpenRoomFilter{StudyField: "CS"})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(page.Content) != 1 || page.Content[0].ID != id {
			t.Errorf("unexpected page %+v", page)
		}

		call := backend.CallsTo(http.MethodGet, "/api/open-study/rooms")[0]
		if call.Query != "studyField=CS" {
			t.Errorf("unexpected query %q", call.Query)
		}
	})

	t.Run("Join Leave", func(t *testing.T) {
		backend := tu.NewFakeBackend(t)
		svc := NewOpenStudyService(loggedInClient(t, backend))
		id := backend.AddOpenRoom(models.OpenStudyRoom{Title: "Math", MaxParticipants: 2, StudyField: "Math"})
		if err := svc.Join(ctx, id); err != nil {
			t.Fatalf("join failed: %v", err)
		}
		room, err := svc.Get(ctx, id)
		if err != nil || room.CurrentParticipants != 1 {
			t.Fatalf("unexpected room %+v %v", room, err)
		}
		if err := svc.Leave(ctx, id); err != nil {
			t.Fatalf("leave failed: %v", err)
		}
		if got := svc.LeavePath(id); got != "/api/open-study/rooms/"+id.String()+"/leave" {
			t.Errorf("unexpected leave path %s", got)
		}
	})

	t.Run("Requires ID", func(t *testing.T) {
		if err := svc.Join(ctx, ""); err == nil {
			t.Error("expected error for empty id")
		}
	})
}

func TestStudyRoomService(t *testing.T) {
	ctx := context.Background()
	backend := tu.NewFakeBackend(t)
	client := loggedInClient(t, backend)
	svc := NewStudyRoomService(client)
	timer := NewTimerService(client)

	room, err := svc.Create(ctx, models.CreateStudyRoom{GroupID: "5", RoomName: "Night owls", StudyField: "CS", StudyHours: 2, MaxMembers: 4})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	t.Run("Join With Member Query", func(t *testing.T) {
		if err := svc.Join(ctx, room.ID, "1"); err != nil {
			t.Fatalf("join failed: %v", err)
		}
		call := backend.CallsTo(http.MethodPost, "/api/study-rooms/"+room.ID.String()+"/join")[0]
		if call.Query != "memberId=1" {
			t.Errorf("expected memberId query, got %q", call.Query)
		}

		participants, err := svc.Participants(ctx, room.ID)
		if err != nil || len(participants) != 1 {
			t.Fatalf("unexpected participants %+v %v", participants, err)
		}
	})

	t.Run("Timer", func(t *testing.T) {
		status, err := timer.Start(ctx, room.ID, true)
		if err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if !status.IsRunning {
			t.Error("expected running timer")
		}

		call := backend.CallsTo(http.MethodPost, "/api/timer/start")[0]
		var body models.TimerStart
		if err := json.Unmarshal(call.Body, &body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body.IsCreator != true || body.RoomID == 0 {
			t.Errorf("unexpected timer start body %+v", body)
		}

		if _, err := timer.Start(ctx, "abc", false); err == nil {
			t.Error("expected error for non-numeric room id")
		}
	})

	t.Run("By Group", func(t *testing.T) {
		rooms, err := svc.ByGroup(ctx, "5")
		if err != nil || len(rooms) != 1 {
			t.Fatalf("unexpected rooms %+v %v", rooms, err)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		if _, err := svc.Create(ctx, models.CreateStudyRoom{RoomName: "x"}); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestChecklistService(t *testing.T) {
	ctx := context.Background()
	backend := tu.NewFakeBackend(t)
	svc := NewChecklistService(loggedInClient(t, backend))

	t.Run("CRUD", func(t *testing.T) {
		item, err := svc.Create(ctx, "2025-06-03", "  read chapter 3 ")
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if item.Content != "read chapter 3" || item.TargetDate != "2025-06-03" {
			t.Errorf("unexpected item %+v", item)
		}

		updated, err := svc.Update(ctx, item.ID, "read chapter 4")
		if err != nil || updated.Content != "read chapter 4" {
			t.Fatalf("update failed: %v %+v", err, updated)
		}

		toggled, err := svc.Toggle(ctx, item.ID)
		if err != nil || !toggled.Completed {
			t.Fatalf("toggle failed: %v %+v", err, toggled)
		}

		items, err := svc.List(ctx, "2025-06-03")
		if err != nil || len(items) != 1 {
			t.Fatalf("list failed: %v %+v", err, items)
		}

		if err := svc.Delete(ctx, item.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
	})

	t.Run("Rejects Bad Dates", func(t *testing.T) {
		if _, err := svc.List(ctx, "June 3"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Rejects Empty Content", func(t *testing.T) {
		if _, err := svc.Create(ctx, "2025-06-03", "   "); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Month Summary", func(t *testing.T) {
		backend.AddChecklist(models.Checklist{Content: "a", TargetDate: "2025-06-10"})
		backend.AddChecklist(models.Checklist{Content: "b", TargetDate: "2025-07-01"})

		summary, err := svc.MonthSummary(ctx, 2025, 6)
		if err != nil {
			t.Fatalf("month summary failed: %v", err)
		}
		if len(summary.Dates) != 1 || summary.Dates[0] != "2025-06-10" {
			t.Errorf("unexpected summary %+v", summary)
		}

		if _, err := svc.MonthSummary(ctx, 2025, 13); err == nil {
			t.Error("expected error for month 13")
		}
	})
}

func TestGroupService(t *testing.T) {
	ctx := context.Background()
	backend := tu.NewFakeBackend(t)
	svc := NewGroupService(loggedInClient(t, backend))

	group, err := svc.Create(ctx, models.CreateGroup{GroupName: " Algorithms ", LeaderID: "1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if group.GroupName != "Algorithms" {
		t.Errorf("expected trimmed name, got %q", group.GroupName)
	}

	if err := svc.AddMember(ctx, group.ID, "9"); err != nil {
		t.Fatalf("add member failed: %v", err)
	}
	members, err := svc.Members(ctx, group.ID)
	if err != nil || len(members) != 1 || members[0].MemberID != "9" {
		t.Fatalf("unexpected members %+v %v", members, err)
	}

	if _, err := svc.Mine(ctx, "1"); err != nil {
		t.Fatalf("mine failed: %v", err)
	}
	if call := backend.CallsTo(http.MethodGet, "/api/groups/my")[0]; call.Query != "leaderId=1" {
		t.Errorf("unexpected query %q", call.Query)
	}

	if err := svc.Delete(ctx, group.ID, "1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, group.ID); err == nil {
		t.Error("expected deleted group to be missing")
	}
}

func TestChatService(t *testing.T) {
	ctx := context.Background()
	backend := tu.NewFakeBackend(t)
	backend.Chat = []models.ChatMessage{
		{ID: "1", Type: models.ChatTalk, RoomType: models.ChatRoomOpen, RoomID: "3", Sender: "kim", Message: "hi"},
		{ID: "2", Type: models.ChatTalk, RoomType: models.ChatRoomGroup, RoomID: "3", Sender: "lee", Message: "yo"},
	}
	svc := NewChatService(loggedInClient(t, backend))

	msgs, err := svc.History(ctx, "3", models.RoomKindOpen, 0, 0)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Sender != "kim" {
		t.Errorf("unexpected messages %+v", msgs)
	}
	if call := backend.CallsTo(http.MethodGet, "/api/chat/room/3")[0]; !strings.Contains(call.Query, "size=20") {
		t.Errorf("expected default page size, got %q", call.Query)
	}

	image := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(image, []byte("png"), 0644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	url, err := svc.UploadImage(ctx, image)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if url != "https://cdn.example.com/chat/shot.png" {
		t.Errorf("unexpected url %s", url)
	}
}
