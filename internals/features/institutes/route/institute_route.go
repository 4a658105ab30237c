package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	instituteCtl "sekolahku_backend/internals/features/institutes/controller"
)

// Public (root domain): registrasi tenant baru.
func InstitutePublicRoutes(r fiber.Router, db *gorm.DB) {
	ctl := instituteCtl.NewInstituteController(db)
	r.Post("/institutes/register", ctl.Register)
}

// Admin (tenant scoped): pengaturan institute.
func InstituteAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := instituteCtl.NewInstituteController(db)
	r.Get("/institute", ctl.GetSettings)
	r.Patch("/institute", ctl.UpdateSettings)
}
