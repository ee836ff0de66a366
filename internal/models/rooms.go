package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Open room creation limits.
const (
	MinRoomTitle        = 1
	MaxRoomTitle        = 30
	MinRoomParticipants = 2
	MaxRoomParticipants = 10
)

// RoomKind distinguishes open rooms from group rooms.
type RoomKind string

const (
	RoomKindOpen  RoomKind = "open"
	RoomKindGroup RoomKind = "group"
)

// ParseRoomKind validates a user supplied kind.
func ParseRoomKind(s string) (RoomKind, error) {
	switch k := RoomKind(strings.ToLower(strings.TrimSpace(s))); k {
	case RoomKindOpen, RoomKindGroup:
		return k, nil
	default:
		return "", fmt.Errorf("unknown room kind %q (want open or group)", s)
	}
}

// Group is a study group led by one member.
type Group struct {
	ID          ID     `json:"id"`
	GroupName   string `json:"groupName"`
	Description string `json:"description,omitempty"`
	LeaderID    ID     `json:"leaderId"`
	MemberCount int    `json:"memberCount,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// CreateGroup is the body of POST /api/groups.
type CreateGroup struct {
	GroupName   string `json:"groupName"`
	Description string `json:"description,omitempty"`
	LeaderID    ID     `json:"leaderId,omitempty"`
}

// GroupMember is a membership row of a group.
type GroupMember struct {
	ID       ID     `json:"id"`
	MemberID ID     `json:"memberId"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	JoinedAt string `json:"joinedAt,omitempty"`
}

// StudyRoom is a time-boxed room inside a group.
type StudyRoom struct {
	ID               ID     `json:"id"`
	GroupID          ID     `json:"groupId"`
	RoomName         string `json:"roomName"`
	StudyField       string `json:"studyField"`
	StudyHours       int    `json:"studyHours"`
	MaxMembers       int    `json:"maxMembers"`
	CurrentMembers   int    `json:"currentMembers"`
	CreatorID        ID     `json:"creatorId"`
	CreatedAt        string `json:"createdAt,omitempty"`
	EndTime          string `json:"endTime,omitempty"`
	Status           string `json:"status,omitempty"`
	RemainingMinutes int    `json:"remainingMinutes"`
}

// IsFull reports whether no seat is left.
func (r StudyRoom) IsFull() bool {
	return r.MaxMembers > 0 && r.CurrentMembers >= r.MaxMembers
}

// Validate checks the member count against capacity.
func (r StudyRoom) Validate() error {
	if r.CurrentMembers < 0 {
		return fmt.Errorf("room %s has negative member count", r.ID)
	}
	if r.MaxMembers > 0 && r.CurrentMembers > r.MaxMembers {
		return fmt.Errorf("room %s has %d members but allows %d", r.ID, r.CurrentMembers, r.MaxMembers)
	}
	return nil
}

// CreateStudyRoom is the body of POST /api/study-rooms.
type CreateStudyRoom struct {
	GroupID    ID     `json:"groupId"`
	RoomName   string `json:"roomName"`
	StudyField string `json:"studyField"`
	StudyHours int    `json:"studyHours"`
	MaxMembers int    `json:"maxMembers"`
}

// Validate checks the request before it is sent.
func (c CreateStudyRoom) Validate() error {
	switch {
	case c.GroupID == "":
		return fmt.Errorf("group id is required")
	case strings.TrimSpace(c.RoomName) == "":
		return fmt.Errorf("room name is required")
	case c.StudyHours <= 0:
		return fmt.Errorf("study hours must be positive")
	case c.MaxMembers < MinRoomParticipants:
		return fmt.Errorf("max members must be at least %d", MinRoomParticipants)
	}
	return nil
}

// OpenStudyRoom is a capacity-limited room with no end time.
type OpenStudyRoom struct {
	ID                  ID     `json:"id"`
	Title               string `json:"title"`
	Description         string `json:"description,omitempty"`
	MaxParticipants     int    `json:"maxParticipants"`
	CurrentParticipants int    `json:"currentParticipants"`
	StudyField          string `json:"studyField"`
	IsFull              bool   `json:"isFull"`
	CreatorUsername     string `json:"creatorUsername,omitempty"`
	CreatedAt           string `json:"createdAt,omitempty"`
	IsActive            bool   `json:"isActive"`
}

// CreateOpenRoom is the body of POST /api/open-study/rooms.
type CreateOpenRoom struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	MaxParticipants int    `json:"maxParticipants"`
	StudyField      string `json:"studyField"`
}

// Normalize trims the free-text fields.
func (c CreateOpenRoom) Normalize() CreateOpenRoom {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.StudyField = strings.TrimSpace(c.StudyField)
	return c
}

// Validate enforces the creation limits. Title length is counted in runes after trimming.
func (c CreateOpenRoom) Validate() error {
	c = c.Normalize()
	if n := utf8.RuneCountInString(c.Title); n < MinRoomTitle || n > MaxRoomTitle {
		return fmt.Errorf("title must be %d-%d characters, got %d", MinRoomTitle, MaxRoomTitle, n)
	}
	if c.MaxParticipants < MinRoomParticipants || c.MaxParticipants > MaxRoomParticipants {
		return fmt.Errorf("participants must be between %d and %d, got %d",
			MinRoomParticipants, MaxRoomParticipants, c.MaxParticipants)
	}
	if c.StudyField == "" {
		return fmt.Errorf("study field is required")
	}
	return nil
}

// CreateRoomResponse is returned by the open room create endpoint.
type CreateRoomResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	RoomID  ID     `json:"roomId"`
}

// RoomSummary is the kind-independent view of a room used by the lifecycle controller and renderers.
type RoomSummary struct {
	ID       ID
	Kind     RoomKind
	Title    string
	Field    string
	Current  int
	Capacity int
	Creator  string
	Status   string
}

// Summary converts an open room.
func (r OpenStudyRoom) Summary() RoomSummary {
	return RoomSummary{
		ID: r.ID, Kind: RoomKindOpen, Title: r.Title, Field: r.StudyField,
		Current: r.CurrentParticipants, Capacity: r.MaxParticipants, Creator: r.CreatorUsername,
		Status: activeLabel(r.IsActive),
	}
}

// Summary converts a group room.
func (r StudyRoom) Summary() RoomSummary {
	return RoomSummary{
		ID: r.ID, Kind: RoomKindGroup, Title: r.RoomName, Field: r.StudyField,
		Current: r.CurrentMembers, Capacity: r.MaxMembers, Creator: r.CreatorID.String(),
		Status: r.Status,
	}
}

func activeLabel(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "CLOSED"
}
