package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	subscriptionCtl "sekolahku_backend/internals/features/subscription/controller"
	subscriptionService "sekolahku_backend/internals/features/subscription/service"
)

// Webhook Midtrans: dipasang di area public, tanpa auth.
func SubscriptionWebhookRoutes(r fiber.Router, db *gorm.DB, payments *subscriptionService.PaymentService) {
	ctl := subscriptionCtl.NewSubscriptionController(db, payments)
	r.Post("/subscriptions/notification", ctl.HandleNotification)
}

// Administrasi billing: {OWNER, ADMIN} (upgrade/cancel owner-only di controller).
func SubscriptionAdminRoutes(r fiber.Router, db *gorm.DB, payments *subscriptionService.PaymentService) {
	ctl := subscriptionCtl.NewSubscriptionController(db, payments)

	subscriptions := r.Group("/subscriptions")
	subscriptions.Get("/", ctl.GetCurrent)
	subscriptions.Post("/upgrade", ctl.Upgrade)
	subscriptions.Delete("/", ctl.Cancel)
}
