// file: internals/features/analytics/controller/analytics_controller.go
package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	analyticsDTO "sekolahku_backend/internals/features/analytics/dto"
	announcementModel "sekolahku_backend/internals/features/announcements/model"
	attendanceModel "sekolahku_backend/internals/features/attendance/model"
	classModel "sekolahku_backend/internals/features/classes/model"
	subscriptionModel "sekolahku_backend/internals/features/subscription/model"
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

type AnalyticsController struct {
	DB *gorm.DB
}

func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{DB: db}
}

// visibleClassIDs: OWNER/ADMIN melihat semua kelas tenant, TEACHER hanya
// kelas miliknya. Dipakai sebagai set untuk raw SQL (pq.Array).
func (ctrl *AnalyticsController) visibleClassIDs(c *fiber.Ctx, instituteID uuid.UUID) ([]string, error) {
	q := ctrl.DB.Model(&classModel.ClassModel{}).
		Where("class_institute_id = ?", instituteID)
	if helperAuth.IsTeacher(c) {
		uid, err := helperAuth.GetUserIDFromToken(c)
		if err != nil {
			return nil, err
		}
		q = q.Where("class_teacher_id = ?", uid)
	}
	var ids []string
	if err := q.Pluck("class_id", &ids).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil daftar kelas")
	}
	return ids, nil
}

func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "Tanggal from tidak valid")
		}
		from = t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "Tanggal to tidak valid")
		}
		to = t
	}
	if to.Before(from) {
		return from, to, fiber.NewError(fiber.StatusBadRequest, "Rentang tanggal terbalik")
	}
	return from, to, nil
}

func (ctrl *AnalyticsController) buildDashboard(c *fiber.Ctx, instituteID uuid.UUID) (analyticsDTO.DashboardResponse, error) {
	var out analyticsDTO.DashboardResponse

	countRole := func(role string, dst *int64) error {
		return ctrl.DB.Model(&userModel.UserModel{}).
			Where("user_institute_id = ? AND user_role = ? AND user_is_active = ?",
				instituteID, role, true).
			Count(dst).Error
	}
	if err := countRole(constants.RoleTeacher, &out.Teachers); err != nil {
		return out, err
	}
	if err := countRole(constants.RoleStudent, &out.Students); err != nil {
		return out, err
	}
	if err := countRole(constants.RoleParent, &out.Parents); err != nil {
		return out, err
	}
	if err := ctrl.DB.Model(&classModel.ClassModel{}).
		Where("class_institute_id = ?", instituteID).
		Count(&out.Classes).Error; err != nil {
		return out, err
	}
	if err := ctrl.DB.Model(&announcementModel.AnnouncementModel{}).
		Where("announcement_institute_id = ?", instituteID).
		Count(&out.Announcements).Error; err != nil {
		return out, err
	}
	if err := ctrl.DB.Model(&attendanceModel.AttendanceRecordModel{}).
		Where("attendance_record_institute_id = ? AND attendance_record_date = ? AND attendance_record_status = ?",
			instituteID, attendanceModel.NormalizeDate(time.Now()), attendanceModel.AttendancePresent).
		Count(&out.PresentToday).Error; err != nil {
		return out, err
	}
	return out, nil
}

func (ctrl *AnalyticsController) buildAttendanceReport(classIDs []string, from, to time.Time) (analyticsDTO.AttendanceReportResponse, error) {
	out := analyticsDTO.AttendanceReportResponse{
		From:    from.Format("2006-01-02"),
		To:      to.Format("2006-01-02"),
		Classes: []analyticsDTO.ClassAttendanceRate{},
	}
	if len(classIDs) == 0 {
		return out, nil
	}

	type row struct {
		ClassID      uuid.UUID
		ClassName    string
		PresentCount int64
		LateCount    int64
		AbsentCount  int64
		TotalRecords int64
	}
	var rows []row
	if err := ctrl.DB.Raw(`
		SELECT
			c.class_id                                                          AS class_id,
			c.class_name                                                        AS class_name,
			COUNT(ar.attendance_record_id) FILTER (WHERE ar.attendance_record_status = 'present') AS present_count,
			COUNT(ar.attendance_record_id) FILTER (WHERE ar.attendance_record_status = 'late')    AS late_count,
			COUNT(ar.attendance_record_id) FILTER (WHERE ar.attendance_record_status = 'absent')  AS absent_count,
			COUNT(ar.attendance_record_id)                                      AS total_records
		FROM classes c
		LEFT JOIN attendance_records ar
			ON ar.attendance_record_class_id = c.class_id
			AND ar.attendance_record_date BETWEEN ? AND ?
		WHERE c.class_id = ANY(?)
			AND c.class_deleted_at IS NULL
		GROUP BY c.class_id, c.class_name
		ORDER BY c.class_name ASC
	`, from, to, pq.Array(classIDs)).Scan(&rows).Error; err != nil {
		return out, fiber.NewError(fiber.StatusInternalServerError, "Gagal agregasi kehadiran")
	}

	for _, r := range rows {
		rate := 0.0
		if r.TotalRecords > 0 {
			rate = float64(r.PresentCount+r.LateCount) / float64(r.TotalRecords)
		}
		out.Classes = append(out.Classes, analyticsDTO.ClassAttendanceRate{
			ClassID:        r.ClassID,
			ClassName:      r.ClassName,
			PresentCount:   r.PresentCount,
			LateCount:      r.LateCount,
			AbsentCount:    r.AbsentCount,
			TotalRecords:   r.TotalRecords,
			AttendanceRate: rate,
		})
	}
	return out, nil
}

func (ctrl *AnalyticsController) buildHomeworkReport(classIDs []string) (analyticsDTO.HomeworkReportResponse, error) {
	out := analyticsDTO.HomeworkReportResponse{Homeworks: []analyticsDTO.HomeworkCompletion{}}
	if len(classIDs) == 0 {
		return out, nil
	}

	type row struct {
		HomeworkID     uuid.UUID
		HomeworkTitle  string
		ClassID        uuid.UUID
		EnrolledCount  int64
		SubmittedCount int64
		GradedCount    int64
		AverageGrade   *float64
	}
	var rows []row
	if err := ctrl.DB.Raw(`
		SELECT
			h.homework_id                                                   AS homework_id,
			h.homework_title                                                AS homework_title,
			h.homework_class_id                                             AS class_id,
			(SELECT COUNT(*) FROM class_students cs
				WHERE cs.class_student_class_id = h.homework_class_id)      AS enrolled_count,
			COUNT(s.submission_id)                                          AS submitted_count,
			COUNT(s.submission_id) FILTER (WHERE s.submission_status = 'graded') AS graded_count,
			AVG(s.submission_grade) FILTER (WHERE s.submission_status = 'graded') AS average_grade
		FROM homeworks h
		LEFT JOIN submissions s ON s.submission_homework_id = h.homework_id
		WHERE h.homework_class_id = ANY(?)
			AND h.homework_status <> 'draft'
			AND h.homework_deleted_at IS NULL
		GROUP BY h.homework_id, h.homework_title, h.homework_class_id
		ORDER BY h.homework_created_at DESC
	`, pq.Array(classIDs)).Scan(&rows).Error; err != nil {
		return out, fiber.NewError(fiber.StatusInternalServerError, "Gagal agregasi homework")
	}

	for _, r := range rows {
		rate := 0.0
		if r.EnrolledCount > 0 {
			rate = float64(r.SubmittedCount) / float64(r.EnrolledCount)
		}
		out.Homeworks = append(out.Homeworks, analyticsDTO.HomeworkCompletion{
			HomeworkID:     r.HomeworkID,
			HomeworkTitle:  r.HomeworkTitle,
			ClassID:        r.ClassID,
			EnrolledCount:  r.EnrolledCount,
			SubmittedCount: r.SubmittedCount,
			GradedCount:    r.GradedCount,
			SubmissionRate: rate,
			AverageGrade:   r.AverageGrade,
		})
	}
	return out, nil
}

// GET /api/a/analytics/dashboard — {OWNER, ADMIN, TEACHER}.
func (ctrl *AnalyticsController) Dashboard(c *fiber.Ctx) error {
	if !helperAuth.CanAuthor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorTeacher("analytics"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	dash, err := ctrl.buildDashboard(c, instituteID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal agregasi dashboard")
	}
	return helper.JsonOK(c, "ok", dash)
}

// GET /api/a/analytics/attendance?from=&to= — attendance rate per kelas.
func (ctrl *AnalyticsController) AttendanceReport(c *fiber.Ctx) error {
	if !helperAuth.CanAuthor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorTeacher("analytics"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classIDs, err := ctrl.visibleClassIDs(c, instituteID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	report, err := ctrl.buildAttendanceReport(classIDs, from, to)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", report)
}

// GET /api/a/analytics/homework — progres pengumpulan & penilaian.
func (ctrl *AnalyticsController) HomeworkReport(c *fiber.Ctx) error {
	if !helperAuth.CanAuthor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorTeacher("analytics"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classIDs, err := ctrl.visibleClassIDs(c, instituteID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	report, err := ctrl.buildHomeworkReport(classIDs)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", report)
}

// POST /api/a/analytics/reports — report gabungan; gated fitur reports per
// tier dan menambah counter reports_generated.
func (ctrl *AnalyticsController) GenerateReport(c *fiber.Ctx) error {
	if !helperAuth.CanAuthor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorTeacher("reports"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var sub subscriptionModel.SubscriptionModel
	if err := ctrl.DB.Where("subscription_institute_id = ?", instituteID).
		Take(&sub).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil subscription")
	}
	tier, ok := subscriptionModel.TierByCode(sub.SubscriptionTier)
	if !ok {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Tier tidak dikenal")
	}
	if !tier.ReportsEnabled {
		return helper.JsonError(c, fiber.StatusForbidden,
			"Fitur reports tidak tersedia di tier "+tier.Name+". Silakan upgrade paket.")
	}

	classIDs, err := ctrl.visibleClassIDs(c, instituteID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	dash, err := ctrl.buildDashboard(c, instituteID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal agregasi dashboard")
	}
	attendance, err := ctrl.buildAttendanceReport(classIDs, from, to)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	homework, err := ctrl.buildHomeworkReport(classIDs)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := ctrl.DB.Model(&subscriptionModel.SubscriptionModel{}).
		Where("subscription_id = ?", sub.SubscriptionID).
		UpdateColumn("subscription_reports_generated",
			gorm.Expr("subscription_reports_generated + 1")).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal update counter reports")
	}

	return helper.JsonOK(c, "Report dibuat", analyticsDTO.GeneratedReport{
		GeneratedAt: time.Now(),
		Dashboard:   dash,
		Attendance:  attendance,
		Homework:    homework,
	})
}
