// file: internals/features/attendance/controller/attendance_controller.go
package controller

import (
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
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

const attendanceStatusNotMarked = "not_marked"

type AttendanceController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db, Validate: validator.New()}
}

// GET /api/a/attendance/roster?class_id=...&date=YYYY-MM-DD
// Roster = semua student terdaftar + status record hari itu (not_marked jika kosong).
func (ctrl *AttendanceController) Roster(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classID, err := uuid.Parse(strings.TrimSpace(c.Query("class_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Class ID tidak valid")
	}
	dateStr := strings.TrimSpace(c.Query("date"))
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tanggal tidak valid (format YYYY-MM-DD)")
	}

	cls, ferr := loadTenantClass(ctrl.DB, instituteID, classID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if err := canManageClassSession(c, cls); err != nil {
		return helper.FromFiberError(c, err)
	}

	var students []userModel.UserModel
	if err := ctrl.DB.
		Joins("JOIN class_students ON class_student_student_id = user_id").
		Where("class_student_class_id = ? AND user_deleted_at IS NULL", classID).
		Order("user_name ASC").
		Find(&students).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil roster")
	}

	var records []attendanceModel.AttendanceRecordModel
	if err := ctrl.DB.
		Where("attendance_record_class_id = ? AND attendance_record_date = ?",
			classID, attendanceModel.NormalizeDate(date)).
		Find(&records).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil record kehadiran")
	}
	byStudent := make(map[uuid.UUID]attendanceModel.AttendanceRecordModel, len(records))
	for _, r := range records {
		byStudent[r.AttendanceRecordStudentID] = r
	}

	entries := make([]attendanceDTO.RosterEntry, 0, len(students))
	for _, s := range students {
		e := attendanceDTO.RosterEntry{
			StudentID:   s.UserID,
			StudentName: s.UserName,
			Status:      attendanceStatusNotMarked,
		}
		if rec, ok := byStudent[s.UserID]; ok {
			e.Status = rec.AttendanceRecordStatus
			markedAt := rec.AttendanceRecordMarkedAt
			e.MarkedAt = &markedAt
		}
		entries = append(entries, e)
	}

	return helper.JsonOK(c, "ok", attendanceDTO.RosterResponse{
		ClassID: classID,
		Date:    dateStr,
		Entries: entries,
	})
}

// POST /api/a/attendance/records — batch upsert dalam satu transaksi,
// sukses semua atau gagal semua.
func (ctrl *AttendanceController) BatchSave(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req attendanceDTO.BatchMarkRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tanggal tidak valid (format YYYY-MM-DD)")
	}

	cls, ferr := loadTenantClass(ctrl.DB, instituteID, req.ClassID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if err := canManageClassSession(c, cls); err != nil {
		return helper.FromFiberError(c, err)
	}

	markedBy, _ := helperAuth.GetUserIDFromToken(c)
	now := time.Now()
	day := attendanceModel.NormalizeDate(date)

	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range req.Records {
			if !attendanceModel.ValidAttendanceStatus(item.Status) {
				return fiber.NewError(fiber.StatusBadRequest, "Status kehadiran tidak valid: "+item.Status)
			}

			var enrolled int64
			if err := tx.Table("class_students").
				Where("class_student_class_id = ? AND class_student_student_id = ?",
					req.ClassID, item.StudentID).
				Count(&enrolled).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Gagal validasi enrolment")
			}
			if enrolled == 0 {
				return fiber.NewError(fiber.StatusBadRequest,
					"Student "+item.StudentID.String()+" tidak terdaftar pada kelas ini")
			}

			rec := attendanceModel.AttendanceRecordModel{
				AttendanceRecordInstituteID: instituteID,
				AttendanceRecordClassID:     req.ClassID,
				AttendanceRecordStudentID:   item.StudentID,
				AttendanceRecordDate:        day,
				AttendanceRecordStatus:      item.Status,
				AttendanceRecordMarkedAt:    now,
				AttendanceRecordMarkedBy:    markedBy,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "attendance_record_class_id"},
					{Name: "attendance_record_student_id"},
					{Name: "attendance_record_date"},
				},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"attendance_record_status":    item.Status,
					"attendance_record_marked_at": now,
					"attendance_record_marked_by": markedBy,
				}),
			}).Create(&rec).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan kehadiran batch")
			}
		}
		return nil
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.JsonOK(c, "Kehadiran tersimpan", fiber.Map{
		"class_id": req.ClassID,
		"date":     req.Date,
		"saved":    len(req.Records),
	})
}

// GET /api/u/attendance/me?class_id=...&from=...&to=... — riwayat milik sendiri.
func (ctrl *AttendanceController) MyHistory(c *fiber.Ctx) error {
	if !helperAuth.IsStudent(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorStudent("riwayat kehadiran"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	studentID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	q := ctrl.DB.Model(&attendanceModel.AttendanceRecordModel{}).
		Where("attendance_record_institute_id = ? AND attendance_record_student_id = ?",
			instituteID, studentID)

	if raw := strings.TrimSpace(c.Query("class_id")); raw != "" {
		classID, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Class ID tidak valid")
		}
		q = q.Where("attendance_record_class_id = ?", classID)
	}
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Tanggal from tidak valid")
		}
		q = q.Where("attendance_record_date >= ?", attendanceModel.NormalizeDate(from))
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Tanggal to tidak valid")
		}
		q = q.Where("attendance_record_date <= ?", attendanceModel.NormalizeDate(to))
	}

	var rows []attendanceModel.AttendanceRecordModel
	if err := q.Order("attendance_record_date DESC").Limit(200).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil riwayat")
	}
	return helper.JsonOK(c, "ok", rows)
}
