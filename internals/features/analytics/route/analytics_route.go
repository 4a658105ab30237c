package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	analyticsCtl "sekolahku_backend/internals/features/analytics/controller"
)

// {OWNER, ADMIN, TEACHER}; teacher hanya melihat agregat kelasnya sendiri.
func AnalyticsAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := analyticsCtl.NewAnalyticsController(db)

	analytics := r.Group("/analytics")
	analytics.Get("/dashboard", ctl.Dashboard)
	analytics.Get("/attendance", ctl.AttendanceReport)
	analytics.Get("/homework", ctl.HomeworkReport)
	analytics.Post("/reports", ctl.GenerateReport)
}
