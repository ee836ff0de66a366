package testing

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/studyx/internal/models"
	"github.com/go-chi/chi/v5"
)

// SessionCookie is the cookie the fake backend issues on login.
const SessionCookie = "JSESSIONID"

// Call is one request received by [FakeBackend].
type Call struct {
	Method string
	Path   string
	Query  string
	Body   []byte
	Header http.Header
}

// String renders "METHOD /path".
func (c Call) String() string {
	return c.Method + " " + c.Path
}

type failure struct {
	status  int
	message string
}

// FakeBackend emulates the subset of the study REST API used by the client and records every call.
type FakeBackend struct {
	Server *httptest.Server

	mu        sync.Mutex
	calls     []Call
	failures  map[string]failure
	nextID    int
	sessionID string

	Email    string
	Password string
	User     models.User
	Token    string // issued by login when set

	OpenRooms   map[models.ID]*models.OpenStudyRoom
	GroupRooms  map[models.ID]*models.StudyRoom
	Groups      map[models.ID]*models.Group
	Members     map[models.ID][]models.GroupMember
	Checklists  map[models.ID]*models.Checklist
	Participant map[models.ID][]models.Participant
	Timer       models.TimerStatus
	Chat        []models.ChatMessage

	currentOpen  models.ID
	currentGroup models.ID
}

// NewFakeBackend starts a backend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		failures:    make(map[string]failure),
		nextID:      100,
		Email:       "student@example.com",
		Password:    "secret",
		User:        models.User{ID: "1", Username: "student", Email: "student@example.com"},
		OpenRooms:   make(map[models.ID]*models.OpenStudyRoom),
		GroupRooms:  make(map[models.ID]*models.StudyRoom),
		Groups:      make(map[models.ID]*models.Group),
		Members:     make(map[models.ID][]models.GroupMember),
		Checklists:  make(map[models.ID]*models.Checklist),
		Participant: make(map[models.ID][]models.Participant),
		Timer:       models.TimerStatus{Status: models.TimerStudying, IsRunning: true},
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the base URL of the backend.
func (b *FakeBackend) URL() string { return b.Server.URL }

// Calls returns every recorded call in order.
func (b *FakeBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsTo returns the recorded calls matching method and path exactly.
func (b *FakeBackend) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many calls matched method and path.
func (b *FakeBackend) Count(method, path string) int {
	return len(b.CallsTo(method, path))
}

// ResetCalls forgets the recorded calls.
func (b *FakeBackend) ResetCalls() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

// Fail makes every request to method+path answer with status and a JSON message.
func (b *FakeBackend) Fail(method, path string, status int, message string) {
	b.mu.Lock()
	b.failures[method+" "+path] = failure{status: status, message: message}
	b.mu.Unlock()
}

// Recover removes a failure installed by [FakeBackend.Fail].
func (b *FakeBackend) Recover(method, path string) {
	b.mu.Lock()
	delete(b.failures, method+" "+path)
	b.mu.Unlock()
}

// LogIn issues a session without a login call and returns its cookie.
func (b *FakeBackend) LogIn() *http.Cookie {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionID = "session-" + strconv.Itoa(b.nextID)
	b.nextID++
	return &http.Cookie{Name: SessionCookie, Value: b.sessionID, Path: "/"}
}

// ExpireSession invalidates the current session so protected endpoints answer 401.
func (b *FakeBackend) ExpireSession() {
	b.mu.Lock()
	b.sessionID = ""
	b.mu.Unlock()
}

// AddOpenRoom registers an open room and returns its id.
func (b *FakeBackend) AddOpenRoom(room models.OpenStudyRoom) models.ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room.ID == "" {
		room.ID = b.newID()
	}
	room.IsActive = true
	b.OpenRooms[room.ID] = &room
	return room.ID
}

// AddGroupRoom registers a group room and returns its id.
func (b *FakeBackend) AddGroupRoom(room models.StudyRoom) models.ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room.ID == "" {
		room.ID = b.newID()
	}
	b.GroupRooms[room.ID] = &room
	return room.ID
}

// AddChecklist registers a checklist item and returns its id.
func (b *FakeBackend) AddChecklist(item models.Checklist) models.ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if item.ID == "" {
		item.ID = b.newID()
	}
	b.Checklists[item.ID] = &item
	return item.ID
}

// PutInOpenRoom marks the user as already present in an open room, as if joined from another device.
func (b *FakeBackend) PutInOpenRoom(id models.ID) {
	b.mu.Lock()
	b.currentOpen = id
	b.mu.Unlock()
}

// CurrentOpenRoom returns the open room the server believes the user is in.
func (b *FakeBackend) CurrentOpenRoom() models.ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentOpen
}

// CurrentGroupRoom returns the group room the server believes the user is in.
func (b *FakeBackend) CurrentGroupRoom() models.ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentGroup
}

// Checklist returns a copy of a stored item.
func (b *FakeBackend) Checklist(id models.ID) (models.Checklist, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.Checklists[id]
	if !ok {
		return models.Checklist{}, false
	}
	return *item, true
}

func (b *FakeBackend) newID() models.ID {
	b.nextID++
	return models.ID(strconv.Itoa(b.nextID))
}

func (b *FakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Use(b.inject)

	r.Route("/api", func(api chi.Router) {
		api.Post("/loginAct", b.login)
		api.Post("/registerAct", b.register)
		api.Post("/logout", b.logout)

		api.Group(func(p chi.Router) {
			p.Use(b.requireSession)

			p.Get("/profile", b.profile)
			p.Patch("/update/profile", b.updateProfile)
			p.Put("/update/email", b.ok)
			p.Patch("/update/password", b.ok)
			p.Delete("/delete/account", b.deleteAccount)

			p.Get("/groups", b.listGroups)
			p.Get("/groups/my", b.listGroups)
			p.Post("/groups", b.createGroup)
			p.Get("/groups/{id}", b.getGroup)
			p.Delete("/groups/{id}", b.deleteGroup)
			p.Get("/groups/{id}/members", b.listMembers)
			p.Post("/groups/{id}/members", b.addMember)
			p.Delete("/groups/{id}/members/{memberId}", b.ok)

			p.Get("/open-study/rooms", b.listOpenRooms)
			p.Post("/open-study/rooms", b.createOpenRoom)
			p.Get("/open-study/rooms/{id}", b.getOpenRoom)
			p.Delete("/open-study/rooms/{id}", b.deleteOpenRoom)
			p.Post("/open-study/rooms/{id}/join", b.joinOpenRoom)
			p.Post("/open-study/rooms/{id}/leave", b.leaveOpenRoom)

			p.Get("/study-rooms", b.listGroupRooms)
			p.Post("/study-rooms", b.createGroupRoom)
			p.Get("/study-rooms/group/{groupId}", b.listGroupRooms)
			p.Get("/study-rooms/{id}", b.getGroupRoom)
			p.Delete("/study-rooms/{id}", b.ok)
			p.Post("/study-rooms/{id}/join", b.joinGroupRoom)
			p.Post("/study-rooms/{id}/leave", b.leaveGroupRoom)
			p.Post("/study-rooms/{id}/end", b.ok)
			p.Get("/study-rooms/{id}/participants", b.participants)

			p.Get("/timer/status", b.timerStatus)
			p.Post("/timer/start", b.timerStatus)
			p.Post("/timer/end", b.ok)

			p.Get("/checklist", b.listChecklists)
			p.Post("/checklist", b.createChecklist)
			p.Get("/checklist/month-summary", b.monthSummary)
			p.Put("/checklist/{id}", b.updateChecklist)
			p.Patch("/checklist/{id}/toggle", b.toggleChecklist)
			p.Delete("/checklist/{id}", b.deleteChecklist)

			p.Get("/chat/room/{id}", b.chatHistory)
			p.Post("/chat/image", b.uploadImage)
		})
	})
	return r
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body, Header: r.Header.Clone(),
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		f, ok := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if ok {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		session, token := b.sessionID, b.Token
		b.mu.Unlock()

		if c, err := r.Cookie(SessionCookie); err == nil && session != "" && c.Value == session {
			next.ServeHTTP(w, r)
			return
		}
		if token != "" && session != "" && r.Header.Get("Authorization") == "Bearer "+token {
			next.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func (b *FakeBackend) ok(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.Message{Success: true, Message: "ok"})
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	b.mu.Lock()
	if creds.Email != b.Email || creds.Password != b.Password {
		b.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS")
		return
	}
	b.sessionID = "session-" + strconv.Itoa(b.nextID)
	b.nextID++
	session, token := b.sessionID, b.Token
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: session, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, models.LoginResponse{AccessToken: token, Message: "login ok"})
}

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "malformed multipart body")
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("data")), &req); err != nil {
			writeError(w, http.StatusBadRequest, "missing data part")
			return
		}
		if _, _, err := r.FormFile("profileImage"); err != nil {
			writeError(w, http.StatusBadRequest, "missing profile image")
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case req.Email == b.Email:
		writeError(w, http.StatusConflict, "EMAIL_EXISTS")
	case req.Username == b.User.Username:
		writeError(w, http.StatusConflict, "USERNAME_EXISTS")
	default:
		writeJSON(w, http.StatusCreated, models.Message{Success: true, Message: "registered"})
	}
}

func (b *FakeBackend) logout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.sessionID = ""
	b.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, models.Message{Success: true})
}

func (b *FakeBackend) profile(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	user := b.User
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, user)
}

func (b *FakeBackend) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	b.mu.Lock()
	b.User = patch.Apply(b.User)
	user := b.User
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, user)
}

func (b *FakeBackend) deleteAccount(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.sessionID = ""
	b.mu.Unlock()
	b.ok(w, r)
}

func (b *FakeBackend) listGroups(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	groups := make([]models.Group, 0, len(b.Groups))
	for _, g := range b.Groups {
		groups = append(groups, *g)
	}
	b.mu.Unlock()
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	writeJSON(w, http.StatusOK, groups)
}

func (b *FakeBackend) createGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroup
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	b.mu.Lock()
	g := &models.Group{ID: b.newID(), GroupName: req.GroupName, LeaderID: req.LeaderID}
	b.Groups[g.ID] = g
	out := *g
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (b *FakeBackend) getGroup(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	g, ok := b.Groups[models.ID(chi.URLParam(r, "id"))]
	var out models.Group
	if ok {
		out = *g
	}
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) deleteGroup(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	delete(b.Groups, models.ID(chi.URLParam(r, "id")))
	b.mu.Unlock()
	b.ok(w, r)
}

func (b *FakeBackend) listMembers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	members := append([]models.GroupMember{}, b.Members[models.ID(chi.URLParam(r, "id"))]...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, members)
}

func (b *FakeBackend) addMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID models.ID `json:"memberId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	b.Members[id] = append(b.Members[id], models.GroupMember{ID: b.newID(), MemberID: req.MemberID, Role: "MEMBER"})
	b.mu.Unlock()
	b.ok(w, r)
}

// listOpenRooms answers with the paginated envelope.
func (b *FakeBackend) listOpenRooms(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("studyField")
	b.mu.Lock()
	rooms := make([]models.OpenStudyRoom, 0, len(b.OpenRooms))
	for _, room := range b.OpenRooms {
		if field == "" || room.StudyField == field {
			rooms = append(rooms, *room)
		}
	}
	b.mu.Unlock()
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	writeJSON(w, http.StatusOK, models.Page[models.OpenStudyRoom]{
		Content: rooms, CurrentPage: 0, TotalPages: 1, TotalElements: len(rooms),
	})
}

// createOpenRoom seats the creator in the new room.
func (b *FakeBackend) createOpenRoom(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOpenRoom
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	b.mu.Lock()
	room := &models.OpenStudyRoom{
		ID: b.newID(), Title: req.Title, Description: req.Description, MaxParticipants: req.MaxParticipants,
		StudyField: req.StudyField, CreatorUsername: b.User.Username, IsActive: true, CurrentParticipants: 1,
	}
	b.OpenRooms[room.ID] = room
	b.currentOpen = room.ID
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, models.CreateRoomResponse{Success: true, Message: "created", RoomID: room.ID})
}

func (b *FakeBackend) getOpenRoom(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	room, ok := b.OpenRooms[models.ID(chi.URLParam(r, "id"))]
	var out models.OpenStudyRoom
	if ok {
		out = *room
	}
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "방을 찾을 수 없습니다")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) deleteOpenRoom(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	_, ok := b.OpenRooms[id]
	delete(b.OpenRooms, id)
	if b.currentOpen == id {
		b.currentOpen = ""
	}
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "방을 찾을 수 없습니다")
		return
	}
	b.ok(w, r)
}

// joinOpenRoom enforces one open room per user.
func (b *FakeBackend) joinOpenRoom(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()

	room, ok := b.OpenRooms[id]
	switch {
	case !ok:
		writeError(w, http.StatusNotFound, "방을 찾을 수 없습니다")
	case b.currentOpen == id:
		writeError(w, http.StatusBadRequest, "이미 참여 중인 방입니다")
	case b.currentOpen != "":
		writeError(w, http.StatusBadRequest, "이미 다른 방에 참여 중입니다")
	case room.CurrentParticipants >= room.MaxParticipants && room.MaxParticipants > 0:
		writeError(w, http.StatusBadRequest, "방이 가득 찼습니다")
	default:
		b.currentOpen = id
		room.CurrentParticipants++
		room.IsFull = room.CurrentParticipants >= room.MaxParticipants
		writeJSON(w, http.StatusOK, models.Message{Success: true, Message: "joined"})
	}
}

func (b *FakeBackend) leaveOpenRoom(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.currentOpen != id {
		writeError(w, http.StatusBadRequest, "참여하지 않은 방입니다")
		return
	}
	b.currentOpen = ""
	if room, ok := b.OpenRooms[id]; ok && room.CurrentParticipants > 0 {
		room.CurrentParticipants--
		room.IsFull = false
	}
	writeJSON(w, http.StatusOK, models.Message{Success: true, Message: "left"})
}

func (b *FakeBackend) listGroupRooms(w http.ResponseWriter, r *http.Request) {
	groupID := models.ID(chi.URLParam(r, "groupId"))
	b.mu.Lock()
	rooms := make([]models.StudyRoom, 0, len(b.GroupRooms))
	for _, room := range b.GroupRooms {
		if groupID == "" || room.GroupID == groupID {
			rooms = append(rooms, *room)
		}
	}
	b.mu.Unlock()
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	writeJSON(w, http.StatusOK, rooms)
}

func (b *FakeBackend) createGroupRoom(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStudyRoom
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	b.mu.Lock()
	room := &models.StudyRoom{
		ID: b.newID(), GroupID: req.GroupID, RoomName: req.RoomName, StudyField: req.StudyField,
		StudyHours: req.StudyHours, MaxMembers: req.MaxMembers, CreatorID: b.User.ID, Status: "ACTIVE",
		RemainingMinutes: req.StudyHours * 60,
	}
	b.GroupRooms[room.ID] = room
	out := *room
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (b *FakeBackend) getGroupRoom(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	room, ok := b.GroupRooms[models.ID(chi.URLParam(r, "id"))]
	var out models.StudyRoom
	if ok {
		out = *room
	}
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) joinGroupRoom(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()

	room, ok := b.GroupRooms[id]
	switch {
	case !ok:
		writeError(w, http.StatusNotFound, "room not found")
	case b.currentGroup == id:
		writeError(w, http.StatusConflict, "already joined")
	case b.currentGroup != "":
		writeError(w, http.StatusConflict, "already in another room")
	default:
		b.currentGroup = id
		room.CurrentMembers++
		b.Participant[id] = append(b.Participant[id], models.Participant{
			MemberID: b.User.ID, Username: b.User.Username, TimerStatus: b.Timer,
		})
		writeJSON(w, http.StatusOK, models.Message{Success: true})
	}
}

func (b *FakeBackend) leaveGroupRoom(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.currentGroup != id {
		writeError(w, http.StatusBadRequest, "not a member of this room")
		return
	}
	b.currentGroup = ""
	if room, ok := b.GroupRooms[id]; ok && room.CurrentMembers > 0 {
		room.CurrentMembers--
	}
	kept := b.Participant[id][:0]
	for _, p := range b.Participant[id] {
		if p.MemberID != b.User.ID {
			kept = append(kept, p)
		}
	}
	b.Participant[id] = kept
	writeJSON(w, http.StatusOK, models.Message{Success: true})
}

func (b *FakeBackend) participants(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	list := append([]models.Participant{}, b.Participant[models.ID(chi.URLParam(r, "id"))]...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (b *FakeBackend) timerStatus(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.Timer.StudySeconds++
	status := b.Timer
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, status)
}

func (b *FakeBackend) listChecklists(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	b.mu.Lock()
	items := make([]models.Checklist, 0)
	for _, item := range b.Checklists {
		if item.TargetDate == date {
			items = append(items, *item)
		}
	}
	b.mu.Unlock()
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	writeJSON(w, http.StatusOK, items)
}

func (b *FakeBackend) createChecklist(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChecklist
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	b.mu.Lock()
	item := &models.Checklist{ID: b.newID(), Content: req.Content, TargetDate: req.TargetDate}
	b.Checklists[item.ID] = item
	out := *item
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (b *FakeBackend) updateChecklist(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateChecklist
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	b.withChecklist(w, r, func(item *models.Checklist) { item.Content = req.Content })
}

func (b *FakeBackend) toggleChecklist(w http.ResponseWriter, r *http.Request) {
	b.withChecklist(w, r, func(item *models.Checklist) { item.Completed = !item.Completed })
}

func (b *FakeBackend) withChecklist(w http.ResponseWriter, r *http.Request, fn func(item *models.Checklist)) {
	b.mu.Lock()
	item, ok := b.Checklists[models.ID(chi.URLParam(r, "id"))]
	var out models.Checklist
	if ok {
		fn(item)
		out = *item
	}
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "checklist not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) deleteChecklist(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	b.mu.Lock()
	_, ok := b.Checklists[id]
	delete(b.Checklists, id)
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "checklist not found")
		return
	}
	b.ok(w, r)
}

func (b *FakeBackend) monthSummary(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	prefix := fmt.Sprintf("%04d-%02d-", year, month)

	b.mu.Lock()
	seen := map[string]bool{}
	dates := []string{}
	for _, item := range b.Checklists {
		if strings.HasPrefix(item.TargetDate, prefix) && !seen[item.TargetDate] {
			seen[item.TargetDate] = true
			dates = append(dates, item.TargetDate)
		}
	}
	b.mu.Unlock()
	sort.Strings(dates)
	writeJSON(w, http.StatusOK, models.MonthSummary{Dates: dates})
}

func (b *FakeBackend) chatHistory(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	roomType := r.URL.Query().Get("roomType")
	b.mu.Lock()
	out := []models.ChatMessage{}
	for _, m := range b.Chat {
		if m.RoomID == id && (roomType == "" || m.RoomType == roomType) {
			out = append(out, m)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) uploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}
	_, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "https://cdn.example.com/chat/"+header.Filename)
}
