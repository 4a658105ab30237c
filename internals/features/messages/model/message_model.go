package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageModel = pesan point-to-point dengan threading opsional.
// Conversation key efektif = conversation_id, fallback ke message_id sendiri
// untuk pesan tanpa thread.
type MessageModel struct {
	MessageID uuid.UUID `gorm:"column:message_id;type:uuid;primaryKey" json:"message_id"`

	MessageInstituteID uuid.UUID `gorm:"column:message_institute_id;type:uuid;not null;index" json:"message_institute_id"`
	MessageSenderID    uuid.UUID `gorm:"column:message_sender_id;type:uuid;not null;index" json:"message_sender_id"`
	MessageRecipientID uuid.UUID `gorm:"column:message_recipient_id;type:uuid;not null;index" json:"message_recipient_id"`

	MessageConversationID *uuid.UUID `gorm:"column:message_conversation_id;type:uuid;index" json:"message_conversation_id,omitempty"`
	MessageReplyToID      *uuid.UUID `gorm:"column:message_reply_to_id;type:uuid" json:"message_reply_to_id,omitempty"`

	MessageBody   string `gorm:"column:message_body;type:text;not null" json:"message_body"`
	MessageIsRead bool   `gorm:"column:message_is_read;not null;default:false" json:"message_is_read"`

	MessageCreatedAt time.Time `gorm:"column:message_created_at;autoCreateTime" json:"message_created_at"`
}

func (MessageModel) TableName() string { return "messages" }

func (m *MessageModel) BeforeCreate(tx *gorm.DB) error {
	if m.MessageID == uuid.Nil {
		m.MessageID = uuid.New()
	}
	return nil
}

// ConversationKey: id percakapan efektif untuk grouping.
func (m *MessageModel) ConversationKey() uuid.UUID {
	if m.MessageConversationID != nil && *m.MessageConversationID != uuid.Nil {
		return *m.MessageConversationID
	}
	return m.MessageID
}
