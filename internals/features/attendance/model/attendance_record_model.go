package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

func ValidAttendanceStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// AttendanceRecordModel: maksimal satu record per (class, student, date);
// ditulis oleh save manual guru atau redemption QR yang sukses.
type AttendanceRecordModel struct {
	AttendanceRecordID uuid.UUID `gorm:"column:attendance_record_id;type:uuid;primaryKey" json:"attendance_record_id"`

	AttendanceRecordInstituteID uuid.UUID `gorm:"column:attendance_record_institute_id;type:uuid;not null;index" json:"attendance_record_institute_id"`
	AttendanceRecordClassID     uuid.UUID `gorm:"column:attendance_record_class_id;type:uuid;not null;uniqueIndex:uq_attendance_records,priority:1" json:"attendance_record_class_id"`
	AttendanceRecordStudentID   uuid.UUID `gorm:"column:attendance_record_student_id;type:uuid;not null;uniqueIndex:uq_attendance_records,priority:2" json:"attendance_record_student_id"`
	AttendanceRecordDate        time.Time `gorm:"column:attendance_record_date;type:date;not null;uniqueIndex:uq_attendance_records,priority:3" json:"attendance_record_date"`

	AttendanceRecordStatus   string    `gorm:"column:attendance_record_status;type:varchar(10);not null" json:"attendance_record_status"`
	AttendanceRecordMarkedAt time.Time `gorm:"column:attendance_record_marked_at;not null" json:"attendance_record_marked_at"`
	AttendanceRecordMarkedBy uuid.UUID `gorm:"column:attendance_record_marked_by;type:uuid;not null" json:"attendance_record_marked_by"`
}

func (AttendanceRecordModel) TableName() string { return "attendance_records" }

func (m *AttendanceRecordModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceRecordID == uuid.Nil {
		m.AttendanceRecordID = uuid.New()
	}
	return nil
}

// NormalizeDate memotong komponen jam supaya unik per hari kalender.
func NormalizeDate(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
