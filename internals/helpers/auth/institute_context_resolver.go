// file: internals/helpers/auth/institute_context_resolver.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstituteContext struct {
	ID   uuid.UUID
	Slug string
}

var (
	ErrInstituteContextMissing = fiber.NewError(fiber.StatusBadRequest,
		"Institute context tidak ditemukan. Akses via subdomain institute atau sertakan header X-Active-Institute-ID.")
	ErrInstituteNotFound = fiber.NewError(fiber.StatusNotFound, "Institute tidak ditemukan")
)

/* ============================
   Resolver slug → ID (via DB)
============================ */
func GetInstituteIDBySlug(c *fiber.Ctx, slug string) (uuid.UUID, error) {
	dbAny := c.Locals("DB")
	if dbAny == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusInternalServerError, "DB context tidak tersedia")
	}
	db, ok := dbAny.(*gorm.DB)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusInternalServerError, "DB context invalid")
	}

	var id uuid.UUID
	// case-insensitive & only alive
	if err := db.Raw(`
		SELECT institute_id
		FROM institutes
		WHERE LOWER(institute_slug) = LOWER(?) AND institute_deleted_at IS NULL
		LIMIT 1
	`, strings.TrimSpace(slug)).Scan(&id).Error; err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return id, nil
}

// SubdomainFromHost memotong token subdomain dari hostname terhadap base domain.
// Return "" bila request mengarah ke root domain (marketing/login) atau www/app.
func SubdomainFromHost(host, baseDomain string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	baseDomain = strings.ToLower(strings.TrimSpace(baseDomain))
	if host == baseDomain || baseDomain == "" {
		return ""
	}
	if !strings.HasSuffix(host, "."+baseDomain) {
		return ""
	}
	sub := strings.TrimSuffix(host, "."+baseDomain)
	if sub == "" || sub == "www" || sub == "app" || strings.Contains(sub, ".") {
		return ""
	}
	return sub
}

/* ==========================================
   Resolve context: path → header → query → host
========================================== */
func ResolveInstituteContext(c *fiber.Ctx, baseDomain string) (InstituteContext, error) {
	// 1) path
	if id := strings.TrimSpace(c.Params("institute_id")); id != "" {
		if uid, err := uuid.Parse(id); err == nil {
			return InstituteContext{ID: uid}, nil
		}
	}
	if slug := strings.TrimSpace(c.Params("institute_slug")); slug != "" {
		return InstituteContext{Slug: slug}, nil
	}

	// 2) header
	if h := strings.TrimSpace(c.Get("X-Active-Institute-ID")); h != "" {
		if uid, err := uuid.Parse(h); err == nil {
			return InstituteContext{ID: uid}, nil
		}
	}
	if h := strings.TrimSpace(c.Get("X-Active-Institute-Slug")); h != "" {
		return InstituteContext{Slug: h}, nil
	}

	// 3) query
	if v := strings.TrimSpace(c.Query("institute_id")); v != "" {
		if uid, err := uuid.Parse(v); err == nil {
			return InstituteContext{ID: uid}, nil
		}
	}
	if v := strings.TrimSpace(c.Query("institute_slug")); v != "" {
		return InstituteContext{Slug: v}, nil
	}

	// 4) host/subdomain
	if sub := SubdomainFromHost(c.Hostname(), baseDomain); sub != "" {
		return InstituteContext{Slug: sub}, nil
	}

	return InstituteContext{}, ErrInstituteContextMissing
}

// GetActiveInstituteID membaca institute aktif hasil resolve middleware tenant.
func GetActiveInstituteID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("institute_id").(string)
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, ErrInstituteContextMissing
	}
	return uuid.Parse(raw)
}

// EnsureSameTenant memastikan tenant pada token sama dengan tenant hasil resolve.
// Mismatch = akses lintas tenant → 403.
func EnsureSameTenant(c *fiber.Ctx) (uuid.UUID, error) {
	active, err := GetActiveInstituteID(c)
	if err != nil {
		return uuid.Nil, err
	}
	fromToken, err := GetInstituteIDFromToken(c)
	if err != nil {
		return uuid.Nil, err
	}
	if active != fromToken {
		return uuid.Nil, fiber.NewError(fiber.StatusForbidden, "Institute pada token tidak cocok dengan tenant request")
	}
	return active, nil
}
