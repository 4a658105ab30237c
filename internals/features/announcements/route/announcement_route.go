package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	announcementCtl "sekolahku_backend/internals/features/announcements/controller"
)

// Authenticated (semua role): list + mark read.
func AnnouncementUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := announcementCtl.NewAnnouncementController(db)

	announcements := r.Group("/announcements")
	announcements.Get("/", ctl.List)
	announcements.Post("/:id/read", ctl.MarkRead)
}

// Authoring: {OWNER, ADMIN, TEACHER}; moderasi dicek per item di controller.
func AnnouncementAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := announcementCtl.NewAnnouncementController(db)

	announcements := r.Group("/announcements")
	announcements.Post("/", ctl.Create)
	announcements.Patch("/:id", ctl.Update)
	announcements.Post("/:id/pin", ctl.TogglePin)
	announcements.Delete("/:id", ctl.Delete)
}
