// file: internals/features/institutes/controller/institute_controller.go
package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	instituteDTO "sekolahku_backend/internals/features/institutes/dto"
	instituteModel "sekolahku_backend/internals/features/institutes/model"
	subscriptionModel "sekolahku_backend/internals/features/subscription/model"
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"

	"sekolahku_backend/internals/constants"
)

type InstituteController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewInstituteController(db *gorm.DB) *InstituteController {
	return &InstituteController{DB: db, Validate: validator.New()}
}

// POST /api/institutes/register — public (root domain), setup tenant baru.
func (ctrl *InstituteController) Register(c *fiber.Ctx) error {
	var req instituteDTO.RegisterInstituteRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	basic, _ := subscriptionModel.TierByCode(subscriptionModel.TierBasic)

	var inst instituteModel.InstituteModel
	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		// Slug harus unik (live rows)
		var n int64
		if err := tx.Model(&instituteModel.InstituteModel{}).
			Where("LOWER(institute_slug) = ?", req.InstituteSlug).
			Count(&n).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal cek slug")
		}
		if n > 0 {
			return fiber.NewError(fiber.StatusConflict, "Subdomain sudah dipakai institute lain")
		}

		inst = instituteModel.InstituteModel{
			InstituteName:         req.InstituteName,
			InstituteSlug:         req.InstituteSlug,
			InstituteTier:         basic.Code,
			InstituteStudentLimit: basic.StudentLimit,
		}
		if err := tx.Create(&inst).Error; err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique") {
				return fiber.NewError(fiber.StatusConflict, "Subdomain sudah dipakai institute lain")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat institute")
		}

		owner := userModel.UserModel{
			UserInstituteID: inst.InstituteID,
			UserName:        req.OwnerName,
			UserEmail:       req.OwnerEmail,
			UserRole:        constants.RoleOwner,
			UserIsActive:    true,
		}
		if err := owner.SetPassword(req.OwnerPassword); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal hash password")
		}
		if err := tx.Create(&owner).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat user owner")
		}

		now := time.Now()
		sub := subscriptionModel.SubscriptionModel{
			SubscriptionInstituteID: inst.InstituteID,
			SubscriptionTier:        basic.Code,
			SubscriptionCycleStart:  now,
			SubscriptionCycleEnd:    now.AddDate(0, 1, 0),
		}
		if err := tx.Create(&sub).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat subscription")
		}
		return nil
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.JsonCreated(c, "Institute berhasil didaftarkan", instituteDTO.FromInstituteModel(inst))
}

// GET /api/a/institute — profil tenant aktif ({OWNER, ADMIN}).
func (ctrl *InstituteController) GetSettings(c *fiber.Ctx) error {
	if !helperAuth.IsOwnerOrAdmin(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorAdmin("pengaturan institute"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var inst instituteModel.InstituteModel
	if err := ctrl.DB.Where("institute_id = ?", instituteID).Take(&inst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Institute tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil institute")
	}
	return helper.JsonOK(c, "ok", instituteDTO.FromInstituteModel(inst))
}

// PATCH /api/a/institute — update settings ({OWNER, ADMIN}).
func (ctrl *InstituteController) UpdateSettings(c *fiber.Ctx) error {
	if !helperAuth.IsOwnerOrAdmin(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorAdmin("pengaturan institute"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req instituteDTO.UpdateInstituteRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var inst instituteModel.InstituteModel
	if err := ctrl.DB.Where("institute_id = ?", instituteID).Take(&inst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Institute tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil institute")
	}

	req.ApplyTo(&inst)
	if err := ctrl.DB.Save(&inst).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan institute")
	}
	return helper.JsonUpdated(c, "Pengaturan institute diperbarui", instituteDTO.FromInstituteModel(inst))
}
