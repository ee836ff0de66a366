package models

// Chat room types accepted by the history endpoint.
const (
	ChatRoomOpen  = "OPEN"
	ChatRoomGroup = "GROUP"
)

// Chat message types. An IMAGE message carries the image URL in Message.
const (
	ChatTalk  = "TALK"
	ChatImage = "IMAGE"
	ChatEnter = "ENTER"
	ChatLeave = "LEAVE"
)

// ChatRoomType maps a room kind to the history endpoint's roomType parameter.
func ChatRoomType(kind RoomKind) string {
	if kind == RoomKindGroup {
		return ChatRoomGroup
	}
	return ChatRoomOpen
}

// ChatMessage is a stored chat line.
type ChatMessage struct {
	ID        ID     `json:"id"`
	Type      string `json:"type"`
	RoomType  string `json:"roomType"`
	RoomID    ID     `json:"roomId"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt,omitempty"`
}
