// file: internals/features/classes/controller/class_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	classDTO "sekolahku_backend/internals/features/classes/dto"
	classModel "sekolahku_backend/internals/features/classes/model"
	subscriptionModel "sekolahku_backend/internals/features/subscription/model"
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

type ClassController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewClassController(db *gorm.DB) *ClassController {
	return &ClassController{DB: db, Validate: validator.New()}
}

// loadTenantClass mengambil kelas milik tenant; cross-tenant = 404, bukan 403.
func loadTenantClass(tx *gorm.DB, instituteID, classID uuid.UUID) (*classModel.ClassModel, error) {
	var cls classModel.ClassModel
	if err := tx.Where("class_id = ? AND class_institute_id = ?", classID, instituteID).
		Take(&cls).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Kelas tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil kelas")
	}
	return &cls, nil
}

// POST /api/a/classes — {OWNER, ADMIN, TEACHER}.
func (ctrl *ClassController) Create(c *fiber.Ctx) error {
	if !helperAuth.CanAuthor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorTeacher("kelas"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req classDTO.CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if req.ClassSchedule != nil {
		if err := classDTO.ValidateSchedule(req.ClassSchedule); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	// TEACHER hanya boleh membuat kelas untuk dirinya sendiri
	if helperAuth.IsTeacher(c) {
		uid, _ := helperAuth.GetUserIDFromToken(c)
		if req.ClassTeacherID != uid {
			return helper.JsonError(c, fiber.StatusForbidden, "Teacher hanya boleh membuat kelas untuk dirinya sendiri")
		}
	}

	var created *classModel.ClassModel
	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		// Guru pada payload harus user TEACHER milik tenant
		var n int64
		if err := tx.Model(&userModel.UserModel{}).
			Where("user_id = ? AND user_institute_id = ? AND user_role = ?",
				req.ClassTeacherID, instituteID, constants.RoleTeacher).
			Count(&n).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal validasi guru")
		}
		if n == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Guru tidak ditemukan pada institute ini")
		}

		// Limit jumlah kelas per tier
		var sub subscriptionModel.SubscriptionModel
		if err := tx.Where("subscription_institute_id = ?", instituteID).Take(&sub).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil subscription")
		}
		tier, ok := subscriptionModel.TierByCode(sub.SubscriptionTier)
		if !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "Tier tidak dikenal")
		}
		if sub.SubscriptionClassesCreated >= tier.ClassLimit {
			return fiber.NewError(fiber.StatusConflict,
				"Kuota kelas tier "+tier.Name+" sudah penuh. Silakan upgrade paket.")
		}
		if err := tx.Model(&subscriptionModel.SubscriptionModel{}).
			Where("subscription_id = ?", sub.SubscriptionID).
			UpdateColumn("subscription_classes_created", gorm.Expr("subscription_classes_created + 1")).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal update counter kelas")
		}

		created = req.ToModel(instituteID)
		if err := tx.Create(created).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat kelas")
		}
		return nil
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.JsonCreated(c, "Kelas berhasil dibuat", classDTO.FromClassModel(*created))
}

// GET /api/u/classes — semua role; TEACHER/STUDENT difilter ke kelas miliknya.
func (ctrl *ClassController) List(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.Model(&classModel.ClassModel{}).
		Where("class_institute_id = ?", instituteID)

	switch {
	case helperAuth.IsTeacher(c):
		uid, _ := helperAuth.GetUserIDFromToken(c)
		q = q.Where("class_teacher_id = ?", uid)
	case helperAuth.IsStudent(c):
		uid, _ := helperAuth.GetUserIDFromToken(c)
		q = q.Where("class_id IN (?)", ctrl.DB.Model(&classModel.ClassStudentModel{}).
			Select("class_student_class_id").
			Where("class_student_student_id = ?", uid))
	}

	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(class_name) LIKE ? OR LOWER(class_subject) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal hitung kelas")
	}

	var rows []classModel.ClassModel
	if err := q.Order("class_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil kelas")
	}

	p := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "ok", classDTO.FromClassModels(rows), &p)
}

// GET /api/u/classes/:id
func (ctrl *ClassController) GetByID(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Class ID tidak valid")
	}

	cls, ferr := loadTenantClass(ctrl.DB, instituteID, classID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}

	resp := classDTO.FromClassModel(*cls)
	ctrl.DB.Model(&classModel.ClassStudentModel{}).
		Where("class_student_class_id = ?", classID).
		Count(&resp.EnrolledCount)

	return helper.JsonOK(c, "ok", resp)
}

// PATCH /api/a/classes/:id — {OWNER, ADMIN, TEACHER pemilik}.
func (ctrl *ClassController) Update(c *fiber.Ctx) error {
	if !helperAuth.CanAuthor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorTeacher("kelas"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Class ID tidak valid")
	}

	var req classDTO.UpdateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if req.ClassSchedule != nil {
		if err := classDTO.ValidateSchedule(*req.ClassSchedule); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	cls, ferr := loadTenantClass(ctrl.DB, instituteID, classID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if helperAuth.IsTeacher(c) {
		uid, _ := helperAuth.GetUserIDFromToken(c)
		if cls.ClassTeacherID != uid {
			return helper.JsonError(c, fiber.StatusForbidden, "Kelas ini bukan milik Anda")
		}
	}

	req.ApplyTo(cls)
	if err := ctrl.DB.Save(cls).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan kelas")
	}
	return helper.JsonUpdated(c, "Kelas diperbarui", classDTO.FromClassModel(*cls))
}

// DELETE /api/a/classes/:id — {OWNER, ADMIN} (soft delete).
func (ctrl *ClassController) Delete(c *fiber.Ctx) error {
	if !helperAuth.IsOwnerOrAdmin(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorAdmin("hapus kelas"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Class ID tidak valid")
	}

	cls, ferr := loadTenantClass(ctrl.DB, instituteID, classID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if err := ctrl.DB.Delete(cls).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus kelas")
	}
	return helper.JsonDeleted(c, "Kelas dihapus", fiber.Map{"class_id": classID})
}
