// file: internals/route/index.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	analyticsRoute "sekolahku_backend/internals/features/analytics/route"
	announcementRoute "sekolahku_backend/internals/features/announcements/route"
	attendanceRoute "sekolahku_backend/internals/features/attendance/route"
	classRoute "sekolahku_backend/internals/features/classes/route"
	homeworkRoute "sekolahku_backend/internals/features/homework/route"
	instituteRoute "sekolahku_backend/internals/features/institutes/route"
	messageRoute "sekolahku_backend/internals/features/messages/route"
	subscriptionRoute "sekolahku_backend/internals/features/subscription/route"
	subscriptionService "sekolahku_backend/internals/features/subscription/service"
	userRoute "sekolahku_backend/internals/features/users/route"
	authMw "sekolahku_backend/internals/middlewares/auth"
	"sekolahku_backend/internals/middlewares/tenant"
)

// SetupRoutes memasang seluruh route dalam empat area:
//
//	/api          → public root-domain (registrasi tenant, webhook Midtrans)
//	/api/auth     → tenant-scoped tanpa token (login)
//	/api/u        → tenant-scoped + token (semua role; handler cek role sendiri)
//	/api/a        → tenant-scoped + token + tenant-match (authoring & administrasi)
func SetupRoutes(app *fiber.App, db *gorm.DB, payments *subscriptionService.PaymentService) {
	// ---------- Public (root domain) ----------
	public := app.Group("/api")
	instituteRoute.InstitutePublicRoutes(public, db)
	subscriptionRoute.SubscriptionWebhookRoutes(public, db, payments)

	// ---------- Tenant scoped, tanpa token ----------
	authArea := app.Group("/api/auth", tenant.UseInstituteScope(db))
	userRoute.AuthRoutes(authArea, db)

	// ---------- Tenant scoped + token ----------
	userArea := app.Group("/api/u",
		authMw.AuthMiddleware(db),
		tenant.UseInstituteScope(db),
		tenant.RequireTenantMatch(),
	)
	userRoute.UserSelfRoutes(userArea, db)
	classRoute.ClassUserRoutes(userArea, db)
	attendanceRoute.AttendanceUserRoutes(userArea, db)
	homeworkRoute.HomeworkUserRoutes(userArea, db)
	announcementRoute.AnnouncementUserRoutes(userArea, db)
	messageRoute.MessageUserRoutes(userArea, db)

	// ---------- Authoring & administrasi ----------
	adminArea := app.Group("/api/a",
		authMw.AuthMiddleware(db),
		tenant.UseInstituteScope(db),
		tenant.RequireTenantMatch(),
	)
	instituteRoute.InstituteAdminRoutes(adminArea, db)
	userRoute.UserAdminRoutes(adminArea, db)
	classRoute.ClassAdminRoutes(adminArea, db)
	attendanceRoute.AttendanceAdminRoutes(adminArea, db)
	homeworkRoute.HomeworkAdminRoutes(adminArea, db)
	announcementRoute.AnnouncementAdminRoutes(adminArea, db)
	subscriptionRoute.SubscriptionAdminRoutes(adminArea, db, payments)
	analyticsRoute.AnalyticsAdminRoutes(adminArea, db)
}
