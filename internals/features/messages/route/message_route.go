package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	messageCtl "sekolahku_backend/internals/features/messages/controller"
)

// Authenticated (semua role).
func MessageUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := messageCtl.NewMessageController(db)

	messages := r.Group("/messages")
	messages.Post("/", ctl.Send)
	messages.Get("/conversations", ctl.ListConversations)
	messages.Get("/conversations/:id", ctl.GetConversation)
	messages.Post("/conversations/:id/read", ctl.MarkConversationRead)
	messages.Get("/unread-count", ctl.UnreadCount)
}
