// file: internals/features/messages/controller/message_controller.go
package controller

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	messageDTO "sekolahku_backend/internals/features/messages/dto"
	messageModel "sekolahku_backend/internals/features/messages/model"
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

type MessageController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewMessageController(db *gorm.DB) *MessageController {
	return &MessageController{DB: db, Validate: validator.New()}
}

// POST /api/u/messages — reply mewarisi conversation id parent;
// pesan tanpa thread memulai percakapan dengan key = id dirinya.
func (ctrl *MessageController) Send(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	senderID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req messageDTO.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	req.Normalize()

	if req.RecipientID == senderID {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tidak bisa mengirim pesan ke diri sendiri")
	}

	var out messageModel.MessageModel
	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&userModel.UserModel{}).
			Where("user_id = ? AND user_institute_id = ? AND user_is_active = ?",
				req.RecipientID, instituteID, true).
			Count(&n).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal validasi penerima")
		}
		if n == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Penerima tidak ditemukan")
		}

		msg := messageModel.MessageModel{
			MessageInstituteID: instituteID,
			MessageSenderID:    senderID,
			MessageRecipientID: req.RecipientID,
			MessageReplyToID:   req.ReplyToID,
			MessageBody:        req.Body,
		}

		if req.ReplyToID != nil {
			var parent messageModel.MessageModel
			if err := tx.Where("message_id = ? AND message_institute_id = ?",
				*req.ReplyToID, instituteID).
				Take(&parent).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Pesan yang dibalas tidak ditemukan")
				}
				return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil pesan induk")
			}
			if parent.MessageSenderID != senderID && parent.MessageRecipientID != senderID {
				return fiber.NewError(fiber.StatusForbidden, "Pesan ini bukan percakapan Anda")
			}
			key := parent.ConversationKey()
			msg.MessageConversationID = &key
		}

		if err := tx.Create(&msg).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengirim pesan")
		}
		out = msg
		return nil
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.JsonCreated(c, "Pesan terkirim", messageDTO.FromMessageModel(out))
}

// GET /api/u/messages/conversations — dikelompokkan per conversation key efektif,
// diurutkan per pesan terakhir terbaru.
func (ctrl *MessageController) ListConversations(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var rows []messageModel.MessageModel
	if err := ctrl.DB.
		Where("message_institute_id = ?", instituteID).
		Where("message_sender_id = ? OR message_recipient_id = ?", uid, uid).
		Order("message_created_at ASC").
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil pesan")
	}

	type bucket struct {
		last   messageModel.MessageModel
		unread int64
	}
	buckets := make(map[uuid.UUID]*bucket)
	for _, msg := range rows {
		key := msg.ConversationKey()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.last = msg
		if msg.MessageRecipientID == uid && !msg.MessageIsRead {
			b.unread++
		}
	}

	out := make([]messageDTO.ConversationSummary, 0, len(buckets))
	for key, b := range buckets {
		out = append(out, messageDTO.ConversationSummary{
			ConversationID: key,
			LastMessage:    messageDTO.FromMessageModel(b.last),
			UnreadCount:    b.unread,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.MessageCreatedAt.After(out[j].LastMessage.MessageCreatedAt)
	})

	return helper.JsonOK(c, "ok", out)
}

// GET /api/u/messages/conversations/:id — isi satu percakapan, urut kronologis.
func (ctrl *MessageController) GetConversation(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	conversationID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Conversation ID tidak valid")
	}

	var rows []messageModel.MessageModel
	if err := ctrl.DB.
		Where("message_institute_id = ?", instituteID).
		Where("message_sender_id = ? OR message_recipient_id = ?", uid, uid).
		Where("message_conversation_id = ? OR message_id = ?", conversationID, conversationID).
		Order("message_created_at ASC").
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil percakapan")
	}
	if len(rows) == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Percakapan tidak ditemukan")
	}
	return helper.JsonOK(c, "ok", messageDTO.FromMessageModels(rows))
}

// POST /api/u/messages/conversations/:id/read — tandai semua pesan masuk pada
// percakapan ini sebagai dibaca; idempoten.
func (ctrl *MessageController) MarkConversationRead(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	conversationID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Conversation ID tidak valid")
	}

	res := ctrl.DB.Model(&messageModel.MessageModel{}).
		Where("message_institute_id = ? AND message_recipient_id = ? AND message_is_read = ?",
			instituteID, uid, false).
		Where("message_conversation_id = ? OR message_id = ?", conversationID, conversationID).
		UpdateColumn("message_is_read", true)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menandai pesan")
	}

	return helper.JsonOK(c, "Percakapan ditandai sudah dibaca", fiber.Map{
		"conversation_id": conversationID,
		"marked":          res.RowsAffected,
	})
}

// GET /api/u/messages/unread-count — pesan ke saya yang belum dibaca.
func (ctrl *MessageController) UnreadCount(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var count int64
	if err := ctrl.DB.Model(&messageModel.MessageModel{}).
		Where("message_institute_id = ? AND message_recipient_id = ? AND message_is_read = ?",
			instituteID, uid, false).
		Count(&count).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal hitung pesan")
	}
	return helper.JsonOK(c, "ok", fiber.Map{"unread_count": count})
}
