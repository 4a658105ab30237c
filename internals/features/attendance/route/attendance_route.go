package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceCtl "sekolahku_backend/internals/features/attendance/controller"
	"sekolahku_backend/internals/middlewares"
)

// Authenticated (semua role): redeem & riwayat sendiri.
func AttendanceUserRoutes(r fiber.Router, db *gorm.DB) {
	qr := attendanceCtl.NewQRSessionController(db)
	att := attendanceCtl.NewAttendanceController(db)

	attendance := r.Group("/attendance")
	attendance.Post("/redeem", middlewares.RedeemRateLimiter(), qr.Redeem)
	attendance.Get("/me", att.MyHistory)
}

// Authoring: {OWNER, ADMIN, TEACHER}.
func AttendanceAdminRoutes(r fiber.Router, db *gorm.DB) {
	qr := attendanceCtl.NewQRSessionController(db)
	att := attendanceCtl.NewAttendanceController(db)

	attendance := r.Group("/attendance")
	attendance.Post("/sessions", qr.Generate)
	attendance.Post("/sessions/regenerate", qr.Regenerate)
	attendance.Get("/sessions/active", qr.GetActive)
	attendance.Get("/roster", att.Roster)
	attendance.Post("/records", att.BatchSave)
}
