package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/studyx/internal/models"
)

const defaultChatPageSize = 20

// ChatService reads stored chat history and uploads chat images.
type ChatService struct {
	api Requester
}

// NewChatService creates a [ChatService].
func NewChatService(api Requester) *ChatService {
	return &ChatService{api: api}
}

// History returns one page of messages of a room, newest page first.
func (s *ChatService) History(ctx context.Context, roomID models.ID, kind models.RoomKind, page, size int) ([]models.ChatMessage, error) {
	if err := requireID("room", roomID); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultChatPageSize
	}
	q := pageQuery(page, size)
	q.Set("roomType", models.ChatRoomType(kind))
	return decodeList[models.ChatMessage](ctx, s.api, withQuery("/api/chat/room/"+escape(roomID), q))
}

// UploadImage uploads the file at path and returns its public URL.
func (s *ChatService) UploadImage(ctx context.Context, path string) (string, error) {
	body := &Multipart{Files: []MultipartFile{{Field: "file", Path: path}}}

	var imageURL string
	if err := s.api.Do(ctx, http.MethodPost, "/api/chat/image", body, &imageURL); err != nil {
		return "", err
	}
	imageURL = strings.Trim(strings.TrimSpace(imageURL), `"`)
	if imageURL == "" {
		return "", fmt.Errorf("upload returned no image url")
	}
	return imageURL, nil
}
