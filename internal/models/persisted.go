package models

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CurrentRoom is the durable pointer to the room the user believes they are joined to.
// At most one exists; it is written only by the room lifecycle controller.
type CurrentRoom struct {
	RoomID   ID        `db:"room_id" json:"roomId"`
	Title    string    `db:"title" json:"title"`
	Kind     RoomKind  `db:"kind" json:"kind"`
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
}

// NewCurrentRoom builds a pointer stamped with the current time.
func NewCurrentRoom(id ID, title string, kind RoomKind) *CurrentRoom {
	return &CurrentRoom{RoomID: id, Title: title, Kind: kind, JoinedAt: time.Now().UTC()}
}

func (c *CurrentRoom) ID() string           { return c.RoomID.String() }
func (c *CurrentRoom) CreatedAt() time.Time { return c.JoinedAt }
func (c *CurrentRoom) UpdatedAt() time.Time { return c.JoinedAt }

// Is reports whether the pointer references the given room.
func (c *CurrentRoom) Is(kind RoomKind, id ID) bool {
	return c != nil && c.Kind == kind && c.RoomID == id
}

// Validate checks required fields.
func (c *CurrentRoom) Validate() error {
	if c.RoomID == "" {
		return fmt.Errorf("room id is required")
	}
	if _, err := ParseRoomKind(string(c.Kind)); err != nil {
		return err
	}
	return nil
}

// StoredSession holds the credentials of one backend, keyed by base URL.
type StoredSession struct {
	SessionID   string    `db:"id"`
	BaseURL     string    `db:"base_url"`
	AccessToken string    `db:"access_token"`
	Created     time.Time `db:"created_at"`
	Updated     time.Time `db:"updated_at"`
	Cookies     []*http.Cookie
}

// NewStoredSession creates an unsaved session for baseURL.
func NewStoredSession(baseURL string) *StoredSession {
	now := time.Now().UTC()
	return &StoredSession{BaseURL: strings.TrimRight(baseURL, "/"), Created: now, Updated: now}
}

func (s *StoredSession) ID() string           { return s.SessionID }
func (s *StoredSession) CreatedAt() time.Time { return s.Created }
func (s *StoredSession) UpdatedAt() time.Time { return s.Updated }

// SetID assigns the identifier.
func (s *StoredSession) SetID(id string) { s.SessionID = id }

// Touch updates the modification time.
func (s *StoredSession) Touch() { s.Updated = time.Now().UTC() }

// Empty reports whether the session carries no credentials.
func (s *StoredSession) Empty() bool {
	return s.AccessToken == "" && len(s.Cookies) == 0
}

// Validate checks required fields.
func (s *StoredSession) Validate() error {
	if strings.TrimSpace(s.BaseURL) == "" {
		return fmt.Errorf("base url is required")
	}
	for _, c := range s.Cookies {
		if c.Name == "" {
			return fmt.Errorf("cookie without name")
		}
	}
	return nil
}
