// file: internals/features/messages/dto/message_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	m "sekolahku_backend/internals/features/messages/model"
)

/* =============== REQUESTS =============== */

type SendMessageRequest struct {
	RecipientID uuid.UUID  `json:"recipient_id" validate:"required"`
	ReplyToID   *uuid.UUID `json:"reply_to_id" validate:"omitempty"`
	Body        string     `json:"body" validate:"required,min=1,max=4000"`
}

func (r *SendMessageRequest) Normalize() {
	r.Body = strings.TrimSpace(r.Body)
}

/* =============== RESPONSES =============== */

type MessageResponse struct {
	MessageID        uuid.UUID  `json:"message_id"`
	SenderID         uuid.UUID  `json:"sender_id"`
	RecipientID      uuid.UUID  `json:"recipient_id"`
	ConversationID   uuid.UUID  `json:"conversation_id"`
	ReplyToID        *uuid.UUID `json:"reply_to_id,omitempty"`
	Body             string     `json:"body"`
	IsRead           bool       `json:"is_read"`
	MessageCreatedAt time.Time  `json:"message_created_at"`
}

func FromMessageModel(x m.MessageModel) MessageResponse {
	return MessageResponse{
		MessageID:        x.MessageID,
		SenderID:         x.MessageSenderID,
		RecipientID:      x.MessageRecipientID,
		ConversationID:   x.ConversationKey(),
		ReplyToID:        x.MessageReplyToID,
		Body:             x.MessageBody,
		IsRead:           x.MessageIsRead,
		MessageCreatedAt: x.MessageCreatedAt,
	}
}

func FromMessageModels(list []m.MessageModel) []MessageResponse {
	out := make([]MessageResponse, 0, len(list))
	for _, it := range list {
		out = append(out, FromMessageModel(it))
	}
	return out
}

// ConversationSummary = satu entri daftar percakapan: pesan terakhir + unread viewer.
type ConversationSummary struct {
	ConversationID uuid.UUID       `json:"conversation_id"`
	LastMessage    MessageResponse `json:"last_message"`
	UnreadCount    int64           `json:"unread_count"`
}
