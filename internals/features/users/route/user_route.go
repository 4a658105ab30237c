package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userCtl "sekolahku_backend/internals/features/users/controller"
	"sekolahku_backend/internals/middlewares"
)

// Tenant scoped, tanpa auth: login. Dipasang di bawah prefix /api/auth.
func AuthRoutes(r fiber.Router, db *gorm.DB) {
	ctl := userCtl.NewAuthController(db)
	r.Post("/login", middlewares.LoginRateLimiter(), ctl.Login)
}

// Authenticated (semua role): profil sendiri.
func UserSelfRoutes(r fiber.Router, db *gorm.DB) {
	ctl := userCtl.NewAuthController(db)
	r.Get("/me", ctl.Me)
}

// Admin (tenant scoped): manajemen user.
func UserAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := userCtl.NewUserAdminController(db)
	users := r.Group("/users")
	users.Post("/", ctl.Create)
	users.Get("/", ctl.List)
}
