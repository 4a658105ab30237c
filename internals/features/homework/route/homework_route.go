package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	homeworkCtl "sekolahku_backend/internals/features/homework/controller"
)

// Authenticated (semua role): read + submit.
func HomeworkUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := homeworkCtl.NewHomeworkController(db)

	homeworks := r.Group("/homeworks")
	homeworks.Get("/", ctl.List)
	homeworks.Get("/:id", ctl.GetByID)
	homeworks.Post("/:id/submit", ctl.Submit)
	homeworks.Get("/:id/my-submission", ctl.MySubmission)
}

// Authoring: {OWNER, ADMIN, TEACHER}.
func HomeworkAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := homeworkCtl.NewHomeworkController(db)

	homeworks := r.Group("/homeworks")
	homeworks.Post("/", ctl.Create)
	homeworks.Patch("/:id", ctl.Update)
	homeworks.Post("/:id/publish", ctl.Publish)
	homeworks.Post("/:id/close", ctl.Close)
	homeworks.Get("/:id/submissions", ctl.ListSubmissions)
	homeworks.Patch("/:id/submissions/:submission_id/grade", ctl.Grade)
}
