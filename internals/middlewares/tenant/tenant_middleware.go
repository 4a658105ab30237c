// internals/middlewares/tenant/tenant_middleware.go
package tenant

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	instituteModel "sekolahku_backend/internals/features/institutes/model"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

// UseInstituteScope me-resolve tenant dari subdomain (atau header/query eksplisit)
// dan menyimpan identitasnya ke locals untuk seluruh handler downstream.
//
// Subdomain yang parse tapi tidak match institute manapun → 404, request berhenti
// di sini. Route root-domain (marketing, login) tidak lewat middleware ini.
func UseInstituteScope(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// DB context untuk resolver slug
		c.Locals("DB", db)

		ic, err := helperAuth.ResolveInstituteContext(c, configs.BaseDomain)
		if err != nil {
			return err
		}

		q := db.Model(&instituteModel.InstituteModel{})
		switch {
		case ic.ID != uuid.Nil:
			q = q.Where("institute_id = ?", ic.ID)
		case strings.TrimSpace(ic.Slug) != "":
			q = q.Where("LOWER(institute_slug) = LOWER(?)", strings.TrimSpace(ic.Slug))
		default:
			return helperAuth.ErrInstituteContextMissing
		}

		var inst instituteModel.InstituteModel
		if err := q.Take(&inst).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helperAuth.ErrInstituteNotFound
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal resolve institute")
		}

		c.Locals("institute_id", inst.InstituteID.String())
		c.Locals("institute_slug", inst.InstituteSlug)
		c.Locals("institute_name", inst.InstituteName)
		return c.Next()
	}
}

// RequireTenantMatch memastikan institute pada token sama dengan tenant aktif.
// Dipasang setelah AuthMiddleware + UseInstituteScope.
func RequireTenantMatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := helperAuth.EnsureSameTenant(c); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireRoles membatasi group route pada allowed-set role.
func RequireRoles(feature string, allowed []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return chain(helperAuth.RequireRoles(c, allowed, feature), c)
	}
}

func chain(err error, c *fiber.Ctx) error {
	if err != nil {
		return err
	}
	return c.Next()
}
