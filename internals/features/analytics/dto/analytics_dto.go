// file: internals/features/analytics/dto/analytics_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type DashboardResponse struct {
	Teachers      int64 `json:"teachers"`
	Students      int64 `json:"students"`
	Parents       int64 `json:"parents"`
	Classes       int64 `json:"classes"`
	Announcements int64 `json:"announcements"`
	PresentToday  int64 `json:"present_today"`
}

// ClassAttendanceRate = agregat kehadiran satu kelas pada rentang tanggal.
type ClassAttendanceRate struct {
	ClassID        uuid.UUID `json:"class_id"`
	ClassName      string    `json:"class_name"`
	PresentCount   int64     `json:"present_count"`
	LateCount      int64     `json:"late_count"`
	AbsentCount    int64     `json:"absent_count"`
	TotalRecords   int64     `json:"total_records"`
	AttendanceRate float64   `json:"attendance_rate"` // (present+late)/total, 0..1
}

type AttendanceReportResponse struct {
	From    string                `json:"from"`
	To      string                `json:"to"`
	Classes []ClassAttendanceRate `json:"classes"`
}

// HomeworkCompletion = progres pengumpulan & penilaian satu homework.
type HomeworkCompletion struct {
	HomeworkID     uuid.UUID `json:"homework_id"`
	HomeworkTitle  string    `json:"homework_title"`
	ClassID        uuid.UUID `json:"class_id"`
	EnrolledCount  int64     `json:"enrolled_count"`
	SubmittedCount int64     `json:"submitted_count"`
	GradedCount    int64     `json:"graded_count"`
	SubmissionRate float64   `json:"submission_rate"` // submitted/enrolled, 0..1
	AverageGrade   *float64  `json:"average_grade,omitempty"`
}

type HomeworkReportResponse struct {
	Homeworks []HomeworkCompletion `json:"homeworks"`
}

type GeneratedReport struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Dashboard   DashboardResponse        `json:"dashboard"`
	Attendance  AttendanceReportResponse `json:"attendance"`
	Homework    HomeworkReportResponse   `json:"homework"`
}
