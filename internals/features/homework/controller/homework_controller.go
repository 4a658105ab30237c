// file: internals/features/homework/controller/homework_controller.go
package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	classModel "sekolahku_backend/internals/features/classes/model"
	homeworkDTO "sekolahku_backend/internals/features/homework/dto"
	homeworkModel "sekolahku_backend/internals/features/homework/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

type HomeworkController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewHomeworkController(db *gorm.DB) *HomeworkController {
	return &HomeworkController{DB: db, Validate: validator.New()}
}

func loadTenantHomework(tx *gorm.DB, instituteID, homeworkID uuid.UUID) (*homeworkModel.HomeworkModel, error) {
	var hw homeworkModel.HomeworkModel
	if err := tx.Where("homework_id = ? AND homework_institute_id = ?", homeworkID, instituteID).
		Take(&hw).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Homework tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil homework")
	}
	return &hw, nil
}

// ensureHomeworkAuthor: OWNER/ADMIN bebas, TEACHER hanya untuk kelas miliknya.
func ensureHomeworkAuthor(c *fiber.Ctx, tx *gorm.DB, instituteID, classID uuid.UUID) error {
	if helperAuth.IsOwnerOrAdmin(c) {
		return nil
	}
	if !helperAuth.IsTeacher(c) {
		return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorTeacher("homework"))
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var n int64
	if err := tx.Model(&classModel.ClassModel{}).
		Where("class_id = ? AND class_institute_id = ? AND class_teacher_id = ?",
			classID, instituteID, uid).
		Count(&n).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal validasi kelas")
	}
	if n == 0 {
		return fiber.NewError(fiber.StatusForbidden, "Kelas ini bukan milik Anda")
	}
	return nil
}

// POST /api/a/homeworks — dibuat sebagai DRAFT.
func (ctrl *HomeworkController) Create(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req homeworkDTO.CreateHomeworkRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var n int64
	if err := ctrl.DB.Model(&classModel.ClassModel{}).
		Where("class_id = ? AND class_institute_id = ?", req.HomeworkClassID, instituteID).
		Count(&n).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal validasi kelas")
	}
	if n == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Kelas tidak ditemukan")
	}
	if err := ensureHomeworkAuthor(c, ctrl.DB, instituteID, req.HomeworkClassID); err != nil {
		return helper.FromFiberError(c, err)
	}

	uid, _ := helperAuth.GetUserIDFromToken(c)
	hw := req.ToModel(instituteID, uid)
	if err := ctrl.DB.Create(hw).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat homework")
	}
	return helper.JsonCreated(c, "Homework dibuat sebagai draft", homeworkDTO.FromHomeworkModel(*hw))
}

// PATCH /api/a/homeworks/:id — tidak boleh setelah CLOSED.
func (ctrl *HomeworkController) Update(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	homeworkID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Homework ID tidak valid")
	}

	var req homeworkDTO.UpdateHomeworkRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	hw, ferr := loadTenantHomework(ctrl.DB, instituteID, homeworkID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if err := ensureHomeworkAuthor(c, ctrl.DB, instituteID, hw.HomeworkClassID); err != nil {
		return helper.FromFiberError(c, err)
	}
	if hw.HomeworkStatus == homeworkModel.HomeworkClosed {
		return helper.JsonError(c, fiber.StatusConflict, "Homework sudah ditutup, tidak bisa diubah")
	}

	req.ApplyTo(hw)
	if err := ctrl.DB.Save(hw).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan homework")
	}
	return helper.JsonUpdated(c, "Homework diperbarui", homeworkDTO.FromHomeworkModel(*hw))
}

// POST /api/a/homeworks/:id/publish — DRAFT → PUBLISHED.
func (ctrl *HomeworkController) Publish(c *fiber.Ctx) error {
	return ctrl.transition(c, homeworkModel.HomeworkDraft, homeworkModel.HomeworkPublished,
		"Homework dipublish", "Hanya homework draft yang bisa dipublish")
}

// POST /api/a/homeworks/:id/close — PUBLISHED → CLOSED.
func (ctrl *HomeworkController) Close(c *fiber.Ctx) error {
	return ctrl.transition(c, homeworkModel.HomeworkPublished, homeworkModel.HomeworkClosed,
		"Homework ditutup", "Hanya homework published yang bisa ditutup")
}

func (ctrl *HomeworkController) transition(c *fiber.Ctx, from, to, okMsg, conflictMsg string) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	homeworkID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Homework ID tidak valid")
	}

	hw, ferr := loadTenantHomework(ctrl.DB, instituteID, homeworkID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if err := ensureHomeworkAuthor(c, ctrl.DB, instituteID, hw.HomeworkClassID); err != nil {
		return helper.FromFiberError(c, err)
	}
	if hw.HomeworkStatus != from {
		return helper.JsonError(c, fiber.StatusConflict, conflictMsg)
	}

	hw.HomeworkStatus = to
	if err := ctrl.DB.Save(hw).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengubah status homework")
	}
	return helper.JsonUpdated(c, okMsg, homeworkDTO.FromHomeworkModel(*hw))
}

// GET /api/u/homeworks?class_id=... — STUDENT hanya melihat yang bukan draft.
func (ctrl *HomeworkController) List(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.Model(&homeworkModel.HomeworkModel{}).
		Where("homework_institute_id = ?", instituteID)

	if raw := strings.TrimSpace(c.Query("class_id")); raw != "" {
		classID, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Class ID tidak valid")
		}
		q = q.Where("homework_class_id = ?", classID)
	}

	if helperAuth.IsStudent(c) {
		uid, _ := helperAuth.GetUserIDFromToken(c)
		q = q.Where("homework_status <> ?", homeworkModel.HomeworkDraft).
			Where("homework_class_id IN (?)", ctrl.DB.Model(&classModel.ClassStudentModel{}).
				Select("class_student_class_id").
				Where("class_student_student_id = ?", uid))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal hitung homework")
	}
	var rows []homeworkModel.HomeworkModel
	if err := q.Order("homework_due_date ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil homework")
	}

	p := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "ok", homeworkDTO.FromHomeworkModels(rows), &p)
}

// GET /api/u/homeworks/:id — draft tidak terlihat oleh STUDENT.
func (ctrl *HomeworkController) GetByID(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	homeworkID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Homework ID tidak valid")
	}

	hw, ferr := loadTenantHomework(ctrl.DB, instituteID, homeworkID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if helperAuth.IsStudent(c) && hw.HomeworkStatus == homeworkModel.HomeworkDraft {
		return helper.JsonError(c, fiber.StatusNotFound, "Homework tidak ditemukan")
	}
	return helper.JsonOK(c, "ok", homeworkDTO.FromHomeworkModel(*hw))
}

// POST /api/u/homeworks/:id/submit — STUDENT only.
// Due date bersifat advisory: submit setelah due tetap diterima dengan is_late=true.
// Resubmit sebelum dinilai menimpa jawaban; setelah dinilai ditolak.
func (ctrl *HomeworkController) Submit(c *fiber.Ctx) error {
	if !helperAuth.IsStudent(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorStudent("submit homework"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	studentID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	homeworkID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Homework ID tidak valid")
	}

	var req homeworkDTO.SubmitHomeworkRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	now := time.Now()
	var out homeworkModel.SubmissionModel

	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		hw, ferr := loadTenantHomework(tx, instituteID, homeworkID)
		if ferr != nil {
			return ferr
		}
		switch hw.HomeworkStatus {
		case homeworkModel.HomeworkDraft:
			return fiber.NewError(fiber.StatusNotFound, "Homework tidak ditemukan")
		case homeworkModel.HomeworkClosed:
			return fiber.NewError(fiber.StatusConflict, "Homework sudah ditutup")
		}

		var enrolled int64
		if err := tx.Model(&classModel.ClassStudentModel{}).
			Where("class_student_class_id = ? AND class_student_student_id = ?",
				hw.HomeworkClassID, studentID).
			Count(&enrolled).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal validasi enrolment")
		}
		if enrolled == 0 {
			return fiber.NewError(fiber.StatusForbidden, "Anda bukan peserta kelas ini")
		}

		var existing homeworkModel.SubmissionModel
		err := tx.Where("submission_homework_id = ? AND submission_student_id = ?",
			homeworkID, studentID).
			Take(&existing).Error
		switch {
		case err == nil:
			if existing.SubmissionStatus == homeworkModel.SubmissionGraded {
				return fiber.NewError(fiber.StatusConflict, "Submission sudah dinilai, tidak bisa dikirim ulang")
			}
			existing.SubmissionAnswer = req.SubmissionAnswer
			existing.SubmissionSubmittedAt = now
			existing.SubmissionIsLate = now.After(hw.HomeworkDueDate)
			if err := tx.Save(&existing).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan submission")
			}
			out = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub := homeworkModel.SubmissionModel{
				SubmissionInstituteID: instituteID,
				SubmissionHomeworkID:  homeworkID,
				SubmissionStudentID:   studentID,
				SubmissionAnswer:      req.SubmissionAnswer,
				SubmissionSubmittedAt: now,
				SubmissionIsLate:      now.After(hw.HomeworkDueDate),
				SubmissionStatus:      homeworkModel.SubmissionSubmitted,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan submission")
			}
			out = sub
			return nil
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil submission")
		}
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	msg := "Submission diterima"
	if out.SubmissionIsLate {
		msg = "Submission diterima (terlambat)"
	}
	return helper.JsonOK(c, msg, homeworkDTO.FromSubmissionModel(out))
}

// GET /api/a/homeworks/:id/submissions — author roles.
func (ctrl *HomeworkController) ListSubmissions(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	homeworkID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Homework ID tidak valid")
	}

	hw, ferr := loadTenantHomework(ctrl.DB, instituteID, homeworkID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if err := ensureHomeworkAuthor(c, ctrl.DB, instituteID, hw.HomeworkClassID); err != nil {
		return helper.FromFiberError(c, err)
	}

	var rows []homeworkModel.SubmissionModel
	if err := ctrl.DB.Where("submission_homework_id = ?", homeworkID).
		Order("submission_submitted_at ASC").
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil submission")
	}
	return helper.JsonOK(c, "ok", homeworkDTO.FromSubmissionModels(rows))
}

// PATCH /api/a/homeworks/:id/submissions/:submission_id/grade
// 0 <= grade <= total_points; re-grade diperbolehkan dan tetap GRADED.
func (ctrl *HomeworkController) Grade(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	homeworkID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Homework ID tidak valid")
	}
	submissionID, err := uuid.Parse(strings.TrimSpace(c.Params("submission_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Submission ID tidak valid")
	}

	var req homeworkDTO.GradeSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var out homeworkModel.SubmissionModel
	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		hw, ferr := loadTenantHomework(tx, instituteID, homeworkID)
		if ferr != nil {
			return ferr
		}
		if err := ensureHomeworkAuthor(c, tx, instituteID, hw.HomeworkClassID); err != nil {
			return err
		}
		if req.SubmissionGrade < 0 || req.SubmissionGrade > hw.HomeworkTotalPoints {
			return fiber.NewError(fiber.StatusBadRequest, "Nilai harus di antara 0 dan total poin homework")
		}

		var sub homeworkModel.SubmissionModel
		if err := tx.Where("submission_id = ? AND submission_homework_id = ?",
			submissionID, homeworkID).
			Take(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Submission tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil submission")
		}

		now := time.Now()
		grader, _ := helperAuth.GetUserIDFromToken(c)
		grade := req.SubmissionGrade
		sub.SubmissionGrade = &grade
		sub.SubmissionFeedback = req.SubmissionFeedback
		sub.SubmissionStatus = homeworkModel.SubmissionGraded
		sub.SubmissionGradedAt = &now
		sub.SubmissionGradedBy = &grader
		if err := tx.Save(&sub).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan nilai")
		}
		out = sub
		return nil
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.JsonUpdated(c, "Submission dinilai", homeworkDTO.FromSubmissionModel(out))
}

// GET /api/u/homeworks/:id/my-submission — submission milik sendiri.
func (ctrl *HomeworkController) MySubmission(c *fiber.Ctx) error {
	if !helperAuth.IsStudent(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorStudent("submission"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	studentID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	homeworkID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Homework ID tidak valid")
	}
	if _, ferr := loadTenantHomework(ctrl.DB, instituteID, homeworkID); ferr != nil {
		return helper.FromFiberError(c, ferr)
	}

	var sub homeworkModel.SubmissionModel
	if err := ctrl.DB.Where("submission_homework_id = ? AND submission_student_id = ?",
		homeworkID, studentID).
		Take(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Belum ada submission")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil submission")
	}
	return helper.JsonOK(c, "ok", homeworkDTO.FromSubmissionModel(sub))
}
