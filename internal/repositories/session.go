package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/jmoiron/sqlx"
)

// SessionRepository implements [models.Repository] for [models.StoredSession] persistence.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

type cookieRow struct {
	ID        string       `db:"id"`
	SessionID string       `db:"session_id"`
	Name      string       `db:"name"`
	Value     string       `db:"value"`
	Path      string       `db:"path"`
	Domain    string       `db:"domain"`
	ExpiresAt sql.NullTime `db:"expires_at"`
	Secure    bool         `db:"secure"`
	HTTPOnly  bool         `db:"http_only"`
}

func (c cookieRow) cookie() *http.Cookie {
	cookie := &http.Cookie{
		Name: c.Name, Value: c.Value, Path: c.Path, Domain: c.Domain, Secure: c.Secure, HttpOnly: c.HTTPOnly,
	}
	if c.ExpiresAt.Valid {
		cookie.Expires = c.ExpiresAt.Time
	}
	return cookie
}

func newCookieRow(sessionID string, c *http.Cookie) cookieRow {
	row := cookieRow{
		ID: shared.GenerateID(), SessionID: sessionID, Name: c.Name, Value: c.Value,
		Path: c.Path, Domain: c.Domain, Secure: c.Secure, HTTPOnly: c.HttpOnly,
	}
	if row.Path == "" {
		row.Path = "/"
	}
	if !c.Expires.IsZero() {
		row.ExpiresAt = sql.NullTime{Time: c.Expires.UTC(), Valid: true}
	}
	return row
}

// Create inserts a new session with a generated ID together with its cookies.
func (r *SessionRepository) Create(session *models.StoredSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	session.SetID(shared.GenerateID())

	return inTx(r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO sessions (id, base_url, access_token, created_at, updated_at)
			VALUES (:id, :base_url, :access_token, :created_at, :updated_at)
		`
		if _, err := tx.NamedExec(query, session); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return insertCookies(tx, session)
	})
}

// Get retrieves a session and its unexpired cookies by ID.
func (r *SessionRepository) Get(id string) (*models.StoredSession, error) {
	return r.getWhere("id = ?", id)
}

// GetByBaseURL retrieves the session stored for a backend.
func (r *SessionRepository) GetByBaseURL(baseURL string) (*models.StoredSession, error) {
	return r.getWhere("base_url = ?", strings.TrimRight(baseURL, "/"))
}

func (r *SessionRepository) getWhere(cond string, arg any) (*models.StoredSession, error) {
	var session models.StoredSession
	query := `SELECT id, base_url, access_token, created_at, updated_at FROM sessions WHERE ` + cond
	err := r.db.Get(&session, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %v", shared.ErrNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	cookies, err := r.cookies(session.SessionID)
	if err != nil {
		return nil, err
	}
	session.Cookies = cookies
	return &session, nil
}

func (r *SessionRepository) cookies(sessionID string) ([]*http.Cookie, error) {
	var rows []cookieRow
	query := `
		SELECT id, session_id, name, value, path, domain, expires_at, secure, http_only
		FROM session_cookies
		WHERE session_id = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY name ASC
	`
	if err := r.db.Select(&rows, query, sessionID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to query cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(rows))
	for _, row := range rows {
		cookies = append(cookies, row.cookie())
	}
	return cookies, nil
}

// Update replaces the token and the full cookie set of a session.
func (r *SessionRepository) Update(session *models.StoredSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	session.Touch()

	return inTx(r.db, func(tx *sqlx.Tx) error {
		result, err := tx.NamedExec(`UPDATE sessions SET access_token = :access_token, updated_at = :updated_at WHERE id = :id`, session)
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		if err := mustAffect(result, "session "+session.ID()); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM session_cookies WHERE session_id = ?`, session.ID()); err != nil {
			return fmt.Errorf("failed to replace cookies: %w", err)
		}
		return insertCookies(tx, session)
	})
}

// Save creates or updates the session stored for session.BaseURL.
func (r *SessionRepository) Save(session *models.StoredSession) error {
	existing, err := r.GetByBaseURL(session.BaseURL)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return r.Create(session)
	case err != nil:
		return err
	}

	session.SetID(existing.ID())
	session.Created = existing.Created
	return r.Update(session)
}

// Delete removes a session; its cookies cascade.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return mustAffect(result, "session "+id)
}

// DeleteByBaseURL removes the session of a backend. A missing session is not an error.
func (r *SessionRepository) DeleteByBaseURL(baseURL string) error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE base_url = ?`, strings.TrimRight(baseURL, "/")); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List retrieves all sessions matching the given criteria ("base_url").
func (r *SessionRepository) List(criteria map[string]any) ([]*models.StoredSession, error) {
	query := `SELECT id, base_url, access_token, created_at, updated_at FROM sessions WHERE 1 = 1`
	args := []any{}

	if baseURL, ok := criteria["base_url"].(string); ok && baseURL != "" {
		query += " AND base_url = ?"
		args = append(args, strings.TrimRight(baseURL, "/"))
	}
	query += " ORDER BY updated_at DESC"

	var sessions []*models.StoredSession
	if err := r.db.Select(&sessions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	for _, s := range sessions {
		cookies, err := r.cookies(s.SessionID)
		if err != nil {
			return nil, err
		}
		s.Cookies = cookies
	}
	return sessions, nil
}

func insertCookies(tx *sqlx.Tx, session *models.StoredSession) error {
	query := `
		INSERT INTO session_cookies (id, session_id, name, value, path, domain, expires_at, secure, http_only)
		VALUES (:id, :session_id, :name, :value, :path, :domain, :expires_at, :secure, :http_only)
		ON CONFLICT(session_id, name, path) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`
	for _, c := range session.Cookies {
		if _, err := tx.NamedExec(query, newCookieRow(session.ID(), c)); err != nil {
			return fmt.Errorf("failed to insert cookie %s: %w", c.Name, err)
		}
	}
	return nil
}
