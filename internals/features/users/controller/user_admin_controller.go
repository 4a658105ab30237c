// file: internals/features/users/controller/user_admin_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	subscriptionModel "sekolahku_backend/internals/features/subscription/model"
	userDTO "sekolahku_backend/internals/features/users/dto"
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

type UserAdminController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewUserAdminController(db *gorm.DB) *UserAdminController {
	return &UserAdminController{DB: db, Validate: validator.New()}
}

// POST /api/a/users — {OWNER, ADMIN}. Membuat STUDENT dihitung ke limit tier.
func (ctrl *UserAdminController) Create(c *fiber.Ctx) error {
	if !helperAuth.IsOwnerOrAdmin(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorAdmin("manajemen user"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req userDTO.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var created userModel.UserModel
	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		// Email unik per tenant
		var n int64
		if err := tx.Model(&userModel.UserModel{}).
			Where("user_institute_id = ? AND LOWER(user_email) = ?", instituteID, req.UserEmail).
			Count(&n).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal cek email")
		}
		if n > 0 {
			return fiber.NewError(fiber.StatusConflict, "Email sudah terdaftar pada institute ini")
		}

		// STUDENT kena limit tier; role lain bebas
		if req.UserRole == constants.RoleStudent {
			var sub subscriptionModel.SubscriptionModel
			if err := tx.Where("subscription_institute_id = ?", instituteID).Take(&sub).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil subscription")
			}
			tier, ok := subscriptionModel.TierByCode(sub.SubscriptionTier)
			if !ok {
				return fiber.NewError(fiber.StatusInternalServerError, "Tier tidak dikenal")
			}
			if sub.SubscriptionStudentsUsed >= tier.StudentLimit {
				return fiber.NewError(fiber.StatusConflict,
					"Kuota student tier "+tier.Name+" sudah penuh. Silakan upgrade paket.")
			}
			if err := tx.Model(&subscriptionModel.SubscriptionModel{}).
				Where("subscription_id = ?", sub.SubscriptionID).
				UpdateColumn("subscription_students_used", gorm.Expr("subscription_students_used + 1")).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Gagal update counter student")
			}
		}

		created = userModel.UserModel{
			UserInstituteID: instituteID,
			UserName:        req.UserName,
			UserEmail:       req.UserEmail,
			UserRole:        req.UserRole,
			UserIsActive:    true,
		}
		if err := created.SetPassword(req.UserPassword); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal hash password")
		}
		if err := tx.Create(&created).Error; err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique") {
				return fiber.NewError(fiber.StatusConflict, "Email sudah terdaftar pada institute ini")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat user")
		}
		return nil
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.JsonCreated(c, "User berhasil dibuat", userDTO.FromUserModel(created))
}

// GET /api/a/users — {OWNER, ADMIN}, filter ?role= & ?q=, paging.
func (ctrl *UserAdminController) List(c *fiber.Ctx) error {
	if !helperAuth.IsOwnerOrAdmin(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorAdmin("manajemen user"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.Model(&userModel.UserModel{}).
		Where("user_institute_id = ?", instituteID)

	if role := strings.TrimSpace(c.Query("role")); role != "" {
		if !constants.ValidRole(role) {
			return helper.JsonError(c, fiber.StatusBadRequest, "Role tidak dikenal: "+role)
		}
		q = q.Where("user_role = ?", role)
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(user_name) LIKE ? OR LOWER(user_email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal hitung user")
	}

	var rows []userModel.UserModel
	if err := q.Order("user_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil user")
	}

	p := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "ok", userDTO.FromUserModels(rows), &p)
}
