package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	classCtl "sekolahku_backend/internals/features/classes/controller"
)

// Authenticated (semua role): read.
func ClassUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := classCtl.NewClassController(db)
	enr := classCtl.NewEnrollmentController(db)

	classes := r.Group("/classes")
	classes.Get("/", ctl.List)
	classes.Get("/:id", ctl.GetByID)
	classes.Get("/:id/students", enr.Roster)
}

// Authoring: {OWNER, ADMIN, TEACHER}.
func ClassAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := classCtl.NewClassController(db)
	enr := classCtl.NewEnrollmentController(db)

	classes := r.Group("/classes")
	classes.Post("/", ctl.Create)
	classes.Patch("/:id", ctl.Update)
	classes.Delete("/:id", ctl.Delete)
	classes.Post("/:id/students", enr.Enroll)
	classes.Delete("/:id/students/:student_id", enr.Unenroll)
}
