// file: internals/features/attendance/controller/qr_session_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sekolahku_backend/internals/constants"
	attendanceDTO "sekolahku_backend/internals/features/attendance/dto"
	attendanceModel "sekolahku_backend/internals/features/attendance/model"
	classModel "sekolahku_backend/internals/features/classes/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

type QRSessionController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewQRSessionController(db *gorm.DB) *QRSessionController {
	return &QRSessionController{DB: db, Validate: validator.New()}
}

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

// canManageClassSession: OWNER/ADMIN bebas, TEACHER hanya kelas miliknya.
func canManageClassSession(c *fiber.Ctx, cls *classModel.ClassModel) error {
	if helperAuth.IsOwnerOrAdmin(c) {
		return nil
	}
	if helperAuth.IsTeacher(c) {
		uid, err := helperAuth.GetUserIDFromToken(c)
		if err != nil {
			return err
		}
		if cls.ClassTeacherID == uid {
			return nil
		}
		return fiber.NewError(fiber.StatusForbidden, "Kelas ini bukan milik Anda")
	}
	return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorTeacher("sesi kehadiran"))
}

// mintSession membuat sesi baru dengan kode acak; retry sekali kalau tabrakan kode.
func mintSession(tx *gorm.DB, instituteID, classID, createdBy uuid.UUID, durationMinutes int, now time.Time) (*attendanceModel.QRSessionModel, error) {
	for attempt := 0; attempt < 2; attempt++ {
		code, err := helper.GenerateSessionCode(8)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal generate kode sesi")
		}
		ses := attendanceModel.QRSessionModel{
			QRSessionInstituteID:     instituteID,
			QRSessionClassID:         classID,
			QRSessionCode:            code,
			QRSessionDurationMinutes: durationMinutes,
			QRSessionExpiresAt:       now.Add(time.Duration(durationMinutes) * time.Minute),
			QRSessionCreatedBy:       createdBy,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "qr_session_code"}},
			DoNothing: true,
		}).Create(&ses)
		if res.Error != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat sesi")
		}
		if res.RowsAffected > 0 {
			return &ses, nil
		}
		log.Printf("[ATTENDANCE] ⚠️ kode sesi tabrakan, retry (attempt=%d)", attempt+1)
	}
	return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat sesi")
}

// POST /api/a/attendance/sessions — idempotent: sesi aktif dipakai ulang.
func (ctrl *QRSessionController) Generate(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req attendanceDTO.GenerateQRSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	req.Normalize()

	cls, ferr := loadTenantClass(ctrl.DB, instituteID, req.ClassID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if err := canManageClassSession(c, cls); err != nil {
		return helper.FromFiberError(c, err)
	}

	now := time.Now()

	// Sesi aktif yang ada dikembalikan apa adanya
	var active attendanceModel.QRSessionModel
	err = ctrl.DB.Where("qr_session_class_id = ? AND qr_session_expires_at > ?", req.ClassID, now).
		Order("qr_session_expires_at DESC").
		Take(&active).Error
	if err == nil {
		return helper.JsonOK(c, "Sesi aktif masih berjalan", attendanceDTO.FromQRSessionModel(active))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil sesi")
	}

	uid, _ := helperAuth.GetUserIDFromToken(c)
	ses, ferr := mintSession(ctrl.DB, instituteID, req.ClassID, uid, req.DurationMinutes, now)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	return helper.JsonCreated(c, "Sesi kehadiran dibuat", attendanceDTO.FromQRSessionModel(*ses))
}

// POST /api/a/attendance/sessions/regenerate — selalu mint sesi baru.
func (ctrl *QRSessionController) Regenerate(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req attendanceDTO.GenerateQRSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	req.Normalize()

	cls, ferr := loadTenantClass(ctrl.DB, instituteID, req.ClassID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if err := canManageClassSession(c, cls); err != nil {
		return helper.FromFiberError(c, err)
	}

	uid, _ := helperAuth.GetUserIDFromToken(c)
	ses, ferr := mintSession(ctrl.DB, instituteID, req.ClassID, uid, req.DurationMinutes, time.Now())
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	return helper.JsonCreated(c, "Sesi kehadiran baru dibuat", attendanceDTO.FromQRSessionModel(*ses))
}

// GET /api/a/attendance/sessions/active?class_id=...
func (ctrl *QRSessionController) GetActive(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classID, err := uuid.Parse(strings.TrimSpace(c.Query("class_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Class ID tidak valid")
	}

	cls, ferr := loadTenantClass(ctrl.DB, instituteID, classID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if err := canManageClassSession(c, cls); err != nil {
		return helper.FromFiberError(c, err)
	}

	var active attendanceModel.QRSessionModel
	err = ctrl.DB.Where("qr_session_class_id = ? AND qr_session_expires_at > ?", classID, time.Now()).
		Order("qr_session_expires_at DESC").
		Take(&active).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "Tidak ada sesi aktif untuk kelas ini")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil sesi")
	}
	return helper.JsonOK(c, "ok", attendanceDTO.FromQRSessionModel(active))
}

// POST /api/u/attendance/redeem — STUDENT only; exactly-once per (session, student).
func (ctrl *QRSessionController) Redeem(c *fiber.Ctx) error {
	if !helperAuth.IsStudent(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorStudent("redeem kode kehadiran"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	studentID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req attendanceDTO.RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	req.Normalize()

	now := time.Now()
	var resp attendanceDTO.RedeemResponse

	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var ses attendanceModel.QRSessionModel
		if err := tx.Where("qr_session_code = ? AND qr_session_institute_id = ?", req.SessionCode, instituteID).
			Take(&ses).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Kode sesi tidak dikenal")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil sesi")
		}
		if ses.IsExpired(now) {
			return fiber.NewError(fiber.StatusGone, "Sesi sudah kedaluwarsa")
		}

		// Hanya peserta kelas yang boleh redeem
		var enrolled int64
		if err := tx.Model(&classModel.ClassStudentModel{}).
			Where("class_student_class_id = ? AND class_student_student_id = ?",
				ses.QRSessionClassID, studentID).
			Count(&enrolled).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal validasi enrolment")
		}
		if enrolled == 0 {
			return fiber.NewError(fiber.StatusForbidden, "Anda bukan peserta kelas ini")
		}

		red := attendanceModel.QRSessionRedemptionModel{
			QRSessionRedemptionInstituteID: instituteID,
			QRSessionRedemptionSessionID:   ses.QRSessionID,
			QRSessionRedemptionStudentID:   studentID,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&red)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mencatat redemption")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Kehadiran Anda sudah tercatat untuk sesi ini")
		}

		rec := attendanceModel.AttendanceRecordModel{
			AttendanceRecordInstituteID: instituteID,
			AttendanceRecordClassID:     ses.QRSessionClassID,
			AttendanceRecordStudentID:   studentID,
			AttendanceRecordDate:        attendanceModel.NormalizeDate(now),
			AttendanceRecordStatus:      attendanceModel.AttendancePresent,
			AttendanceRecordMarkedAt:    now,
			AttendanceRecordMarkedBy:    studentID,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "attendance_record_class_id"},
				{Name: "attendance_record_student_id"},
				{Name: "attendance_record_date"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"attendance_record_status":    attendanceModel.AttendancePresent,
				"attendance_record_marked_at": now,
				"attendance_record_marked_by": studentID,
			}),
		}).Create(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan kehadiran")
		}

		var cls classModel.ClassModel
		if err := tx.Select("class_id", "class_name", "class_subject").
			Where("class_id = ?", ses.QRSessionClassID).
			Take(&cls).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil kelas")
		}

		resp = attendanceDTO.RedeemResponse{
			ClassID:      cls.ClassID,
			ClassName:    cls.ClassName,
			ClassSubject: cls.ClassSubject,
			Status:       attendanceModel.AttendancePresent,
			MarkedAt:     now,
		}
		return nil
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.JsonOK(c, "Kehadiran tercatat", resp)
}
