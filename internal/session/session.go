// package session holds the authenticated identity of the CLI user.
//
// The [Holder] is the only owner of the current [models.User]. Every network response that carries a user
// replaces the cached copy and bumps the state version; local edits made with [Holder.UpdateUser] are
// optimistic and are overwritten by the next network response.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/services"
	"github.com/desertthunder/studyx/internal/shared"
)

// Status is the position of the holder in its loading -> authenticated | anonymous state machine.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "loading"
	}
}

// State is an immutable snapshot handed to callers and listeners.
type State struct {
	Status  Status
	User    *models.User
	Version uint64
}

// Authenticated reports whether a user is known.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// AuthAPI is the subset of [services.AuthService] the holder calls.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error)
	ChangeEmail(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, change models.PasswordChange) error
	DeleteAccount(ctx context.Context, req models.AccountDeletion) error
}

// Credentials is the cookie jar and token slot of the HTTP client.
type Credentials interface {
	BaseURL() string
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie) error
	Token() string
	SetToken(token string) error
	ClearSession()
}

// Store persists credentials between runs.
type Store interface {
	GetByBaseURL(baseURL string) (*models.StoredSession, error)
	Save(session *models.StoredSession) error
	DeleteByBaseURL(baseURL string) error
}

// PointerClearer drops the durable current-room pointer.
type PointerClearer interface {
	Clear() error
}

// Options configures a [Holder]. Store and Rooms are optional.
type Options struct {
	Auth   AuthAPI
	Client Credentials
	Store  Store
	Rooms  PointerClearer
	Logger *log.Logger
}

// Holder caches the current user and coordinates login, logout and profile changes.
type Holder struct {
	auth   AuthAPI
	client Credentials
	store  Store
	rooms  PointerClearer
	logger *log.Logger

	mu        sync.RWMutex
	state     State
	issued    uint64 // tickets handed to in-flight network requests
	applied   uint64 // ticket of the last applied network response
	listeners []func(State)
}

// New creates a [Holder] in the loading state.
func New(opts Options) *Holder {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Holder{
		auth:   opts.Auth,
		client: opts.Client,
		store:  opts.Store,
		rooms:  opts.Rooms,
		logger: logger,
		state:  State{Status: StatusLoading},
	}
}

// NewFromClient wires a [Holder] to an [services.APIClient] and its [services.AuthService].
func NewFromClient(client *services.APIClient, store Store, rooms PointerClearer, logger *log.Logger) *Holder {
	return New(Options{
		Auth:   services.NewAuthService(client),
		Client: client,
		Store:  store,
		Rooms:  rooms,
		Logger: logger,
	})
}

// State returns the current snapshot.
func (h *Holder) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot()
}

// User returns a copy of the cached user, or nil.
func (h *Holder) User() *models.User {
	return h.State().User
}

// OnChange registers a listener called after every state transition.
func (h *Holder) OnChange(fn func(State)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Restore loads stored cookies and token into the client. An expired token is dropped and the stored copy
// rewritten without it.
func (h *Holder) Restore() error {
	if h.store == nil {
		return nil
	}

	stored, err := h.store.GetByBaseURL(h.client.BaseURL())
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load stored session: %w", err)
	}

	if err := h.client.SetCookies(stored.Cookies); err != nil {
		return err
	}
	if err := h.client.SetToken(stored.AccessToken); err != nil {
		h.logger.Warn("dropping stored access token", "error", err)
		stored.AccessToken = ""
		if err := h.store.Save(stored); err != nil {
			h.logger.Warn("failed to rewrite stored session", "error", err)
		}
	}
	return nil
}

// Init restores stored credentials and fetches the profile. Failure leaves the holder anonymous and is not
// an error.
func (h *Holder) Init(ctx context.Context) State {
	if err := h.Restore(); err != nil {
		h.logger.Warn("could not restore session", "error", err)
	}

	ticket := h.ticket()
	user, err := h.auth.Profile(ctx)
	if err != nil {
		h.logger.Debug("no active session", "error", err)
		h.applyAnonymous(ticket)
		return h.State()
	}
	h.applyUser(ticket, user)
	return h.State()
}

// Login posts credentials, then fetches the profile in a second round trip.
func (h *Holder) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrInvalidInput)
	}

	resp, err := h.auth.Login(ctx, creds)
	if err != nil {
		return nil, classifyLogin(err)
	}

	if token := resp.BearerToken(); token != "" {
		if err := h.client.SetToken(token); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
		}
	}

	ticket := h.ticket()
	user, err := h.auth.Profile(ctx)
	if err != nil {
		h.applyAnonymous(ticket)
		return nil, fmt.Errorf("%w: could not load profile after login: %w", shared.ErrAuthFailed, err)
	}
	h.applyUser(ticket, user)
	h.persist()
	return h.User(), nil
}

// Register creates an account. It does not log in.
func (h *Holder) Register(ctx context.Context, req models.RegisterRequest) error {
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return fmt.Errorf("%w: username, email and password are required", shared.ErrInvalidInput)
	}
	if err := h.auth.Register(ctx, req); err != nil {
		return classifyRegister(err)
	}
	return nil
}

// Logout notifies the backend and always clears local identity, credentials and the current-room pointer.
func (h *Holder) Logout(ctx context.Context) {
	if err := h.auth.Logout(ctx); err != nil {
		h.logger.Debug("logout request failed", "error", err)
	}
	h.forget()
}

// Forget clears local identity and credentials without contacting the backend.
func (h *Holder) Forget() {
	h.forget()
}

// UpdateUser merges a local edit into the cached user without a round trip.
func (h *Holder) UpdateUser(patch models.UserPatch) error {
	h.mu.Lock()
	if h.state.User == nil {
		h.mu.Unlock()
		return shared.ErrNotAuthenticated
	}
	merged := patch.Apply(*h.state.User)
	h.state.User = &merged
	h.state.Version++
	snap := h.snapshot()
	listeners := h.listeners
	h.mu.Unlock()

	notify(listeners, snap)
	return nil
}

// RefreshUser re-fetches the profile. Failure is treated as session expiry.
func (h *Holder) RefreshUser(ctx context.Context) (*models.User, error) {
	ticket := h.ticket()
	user, err := h.auth.Profile(ctx)
	if err != nil {
		h.logger.Warn("profile refresh failed", "error", err)
		h.applyAnonymous(ticket)
		return nil, fmt.Errorf("%w: %w", shared.ErrSessionExpired, err)
	}
	h.applyUser(ticket, user)
	return h.User(), nil
}

// UpdateProfile sends patch to the backend and applies the stored result.
func (h *Holder) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	if !h.State().Authenticated() {
		return nil, shared.ErrNotAuthenticated
	}

	ticket := h.ticket()
	user, err := h.auth.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == "" {
		return h.RefreshUser(ctx)
	}
	h.applyUser(ticket, user)
	return h.User(), nil
}

// ChangeEmail updates the login email and refreshes the profile.
func (h *Holder) ChangeEmail(ctx context.Context, email string) (*models.User, error) {
	if !h.State().Authenticated() {
		return nil, shared.ErrNotAuthenticated
	}
	if err := h.auth.ChangeEmail(ctx, email); err != nil {
		return nil, err
	}
	return h.RefreshUser(ctx)
}

// ChangePassword updates the password.
func (h *Holder) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	if !h.State().Authenticated() {
		return shared.ErrNotAuthenticated
	}
	return h.auth.ChangePassword(ctx, change)
}

// DeleteAccount removes the account and clears the session like [Holder.Logout].
func (h *Holder) DeleteAccount(ctx context.Context, password string) error {
	if !h.State().Authenticated() {
		return shared.ErrNotAuthenticated
	}
	if err := h.auth.DeleteAccount(ctx, models.AccountDeletion{Password: password}); err != nil {
		return err
	}
	h.forget()
	return nil
}

func (h *Holder) ticket() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.issued++
	return h.issued
}

// applyUser installs a network response unless a response to a later request was already applied.
func (h *Holder) applyUser(ticket uint64, user *models.User) {
	h.apply(ticket, State{Status: StatusAuthenticated, User: user})
}

func (h *Holder) applyAnonymous(ticket uint64) {
	h.apply(ticket, State{Status: StatusAnonymous})
}

func (h *Holder) apply(ticket uint64, next State) {
	h.mu.Lock()
	if ticket < h.applied {
		h.mu.Unlock()
		h.logger.Debug("discarding stale profile response", "ticket", ticket, "applied", h.applied)
		return
	}
	h.applied = ticket
	if next.User != nil {
		u := *next.User
		next.User = &u
	}
	next.Version = h.state.Version + 1
	h.state = next
	snap := h.snapshot()
	listeners := h.listeners
	h.mu.Unlock()

	notify(listeners, snap)
}

func (h *Holder) forget() {
	h.client.ClearSession()

	if h.store != nil {
		if err := h.store.DeleteByBaseURL(h.client.BaseURL()); err != nil {
			h.logger.Warn("failed to delete stored session", "error", err)
		}
	}
	if h.rooms != nil {
		if err := h.rooms.Clear(); err != nil {
			h.logger.Warn("failed to clear current room", "error", err)
		}
	}

	h.applyAnonymous(h.ticket())
}

// persist writes the client's current cookies and token to the store.
func (h *Holder) persist() {
	if h.store == nil {
		return
	}
	stored := models.NewStoredSession(h.client.BaseURL())
	stored.AccessToken = h.client.Token()
	stored.Cookies = h.client.Cookies()
	if err := h.store.Save(stored); err != nil {
		h.logger.Warn("failed to store session", "error", err)
	}
}

// Persist stores the client's credentials, e.g. after a cookie import.
func (h *Holder) Persist() {
	h.persist()
}

func (h *Holder) snapshot() State {
	s := h.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}

func classifyLogin(err error) error {
	if apiErr, ok := services.AsAPIError(err); ok && apiErr.HasCode(services.CodeInvalidCredentials) {
		return fmt.Errorf("%w: check your email or password", shared.ErrAuthFailed)
	}
	return fmt.Errorf("%w: login failed, please try again: %w", shared.ErrAuthFailed, err)
}

func classifyRegister(err error) error {
	if apiErr, ok := services.AsAPIError(err); ok {
		switch {
		case apiErr.HasCode(services.CodeEmailExists):
			return fmt.Errorf("%w: this email is already registered", shared.ErrRegisterFailed)
		case apiErr.HasCode(services.CodeUsernameExists):
			return fmt.Errorf("%w: this username is already taken", shared.ErrRegisterFailed)
		}
	}
	return fmt.Errorf("%w: %w", shared.ErrRegisterFailed, err)
}
