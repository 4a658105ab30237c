// file: internals/features/classes/controller/enrollment_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sekolahku_backend/internals/constants"
	classDTO "sekolahku_backend/internals/features/classes/dto"
	classModel "sekolahku_backend/internals/features/classes/model"
	userDTO "sekolahku_backend/internals/features/users/dto"
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

type EnrollmentController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewEnrollmentController(db *gorm.DB) *EnrollmentController {
	return &EnrollmentController{DB: db, Validate: validator.New()}
}

// POST /api/a/classes/:id/students — {OWNER, ADMIN, TEACHER}.
// Kapasitas di-soft-enforce di sini (add-time).
func (ctrl *EnrollmentController) Enroll(c *fiber.Ctx) error {
	if !helperAuth.CanAuthor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorTeacher("enrolment"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Class ID tidak valid")
	}

	var req classDTO.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		cls, ferr := loadTenantClass(tx, instituteID, classID)
		if ferr != nil {
			return ferr
		}

		// Student harus user role student milik tenant
		var n int64
		if err := tx.Model(&userModel.UserModel{}).
			Where("user_id = ? AND user_institute_id = ? AND user_role = ?",
				req.StudentID, instituteID, constants.RoleStudent).
			Count(&n).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal validasi student")
		}
		if n == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Student tidak ditemukan pada institute ini")
		}

		// Soft check kapasitas
		var enrolled int64
		if err := tx.Model(&classModel.ClassStudentModel{}).
			Where("class_student_class_id = ?", classID).
			Count(&enrolled).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal hitung enrolment")
		}
		if enrolled >= int64(cls.ClassCapacity) {
			return fiber.NewError(fiber.StatusConflict, "Kapasitas kelas sudah penuh")
		}

		row := classModel.ClassStudentModel{
			ClassStudentInstituteID: instituteID,
			ClassStudentClassID:     classID,
			ClassStudentStudentID:   req.StudentID,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan enrolment")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Student sudah terdaftar di kelas ini")
		}
		return nil
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.JsonCreated(c, "Student berhasil didaftarkan ke kelas", fiber.Map{
		"class_id":   classID,
		"student_id": req.StudentID,
	})
}

// DELETE /api/a/classes/:id/students/:student_id — {OWNER, ADMIN, TEACHER}.
func (ctrl *EnrollmentController) Unenroll(c *fiber.Ctx) error {
	if !helperAuth.CanAuthor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorTeacher("enrolment"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Class ID tidak valid")
	}
	studentID, err := uuid.Parse(strings.TrimSpace(c.Params("student_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Student ID tidak valid")
	}

	res := ctrl.DB.Where(`
			class_student_institute_id = ?
			AND class_student_class_id = ?
			AND class_student_student_id = ?
		`, instituteID, classID, studentID).
		Delete(&classModel.ClassStudentModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus enrolment")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Enrolment tidak ditemukan")
	}
	return helper.JsonDeleted(c, "Student dikeluarkan dari kelas", fiber.Map{
		"class_id":   classID,
		"student_id": studentID,
	})
}

// GET /api/u/classes/:id/students — roster (read untuk semua role tenant).
func (ctrl *EnrollmentController) Roster(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Class ID tidak valid")
	}

	if _, ferr := loadTenantClass(ctrl.DB, instituteID, classID); ferr != nil {
		return helper.FromFiberError(c, ferr)
	}

	var students []userModel.UserModel
	if err := ctrl.DB.
		Joins("JOIN class_students ON class_student_student_id = user_id").
		Where("class_student_class_id = ? AND user_deleted_at IS NULL", classID).
		Order("user_name ASC").
		Find(&students).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil roster")
	}

	return helper.JsonOK(c, "ok", userDTO.FromUserModels(students))
}
