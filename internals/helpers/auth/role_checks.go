// file: internals/helpers/auth/role_checks.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/constants"
)

/* ============================
   Locals getters (diisi AuthMiddleware)
============================ */

func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("user_id").(string)
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User ID tidak ditemukan di token")
	}
	return uuid.Parse(raw)
}

func GetRoleFromToken(c *fiber.Ctx) string {
	role, _ := c.Locals("user_role").(string)
	return role
}

func GetInstituteIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("token_institute_id").(string)
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Institute ID tidak ditemukan di token")
	}
	return uuid.Parse(raw)
}

/* ============================
   Role predicates
============================ */

func IsOwner(c *fiber.Ctx) bool   { return GetRoleFromToken(c) == constants.RoleOwner }
func IsAdmin(c *fiber.Ctx) bool   { return GetRoleFromToken(c) == constants.RoleAdmin }
func IsTeacher(c *fiber.Ctx) bool { return GetRoleFromToken(c) == constants.RoleTeacher }
func IsStudent(c *fiber.Ctx) bool { return GetRoleFromToken(c) == constants.RoleStudent }
func IsParent(c *fiber.Ctx) bool  { return GetRoleFromToken(c) == constants.RoleParent }

// IsOwnerOrAdmin: administrasi tenant-wide & billing.
func IsOwnerOrAdmin(c *fiber.Ctx) bool { return IsOwner(c) || IsAdmin(c) }

// CanAuthor: authoring kelas/homework/attendance.
func CanAuthor(c *fiber.Ctx) bool { return IsOwner(c) || IsAdmin(c) || IsTeacher(c) }

// RequireRoles mengembalikan 403 bila role token tidak termasuk allowed-set.
func RequireRoles(c *fiber.Ctx, allowed []string, feature string) error {
	if constants.RoleIn(GetRoleFromToken(c), allowed) {
		return nil
	}
	return fiber.NewError(fiber.StatusForbidden, "Role Anda tidak diizinkan mengakses fitur "+feature)
}
