package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

// SubmissionModel: satu per (homework, student). Resubmit sebelum dinilai
// menimpa jawaban; is_late dihitung sekali saat submit dan tidak pernah
// dihitung ulang.
type SubmissionModel struct {
	SubmissionID uuid.UUID `gorm:"column:submission_id;type:uuid;primaryKey" json:"submission_id"`

	SubmissionInstituteID uuid.UUID `gorm:"column:submission_institute_id;type:uuid;not null;index" json:"submission_institute_id"`
	SubmissionHomeworkID  uuid.UUID `gorm:"column:submission_homework_id;type:uuid;not null;uniqueIndex:uq_submissions,priority:1" json:"submission_homework_id"`
	SubmissionStudentID   uuid.UUID `gorm:"column:submission_student_id;type:uuid;not null;uniqueIndex:uq_submissions,priority:2" json:"submission_student_id"`

	SubmissionAnswer      string    `gorm:"column:submission_answer;type:text;not null" json:"submission_answer"`
	SubmissionSubmittedAt time.Time `gorm:"column:submission_submitted_at;not null" json:"submission_submitted_at"`
	SubmissionIsLate      bool      `gorm:"column:submission_is_late;not null;default:false" json:"submission_is_late"`

	SubmissionStatus   string     `gorm:"column:submission_status;type:varchar(12);not null;default:'submitted'" json:"submission_status"`
	SubmissionGrade    *float64   `gorm:"column:submission_grade" json:"submission_grade,omitempty"`
	SubmissionFeedback *string    `gorm:"column:submission_feedback;type:text" json:"submission_feedback,omitempty"`
	SubmissionGradedAt *time.Time `gorm:"column:submission_graded_at" json:"submission_graded_at,omitempty"`
	SubmissionGradedBy *uuid.UUID `gorm:"column:submission_graded_by;type:uuid" json:"submission_graded_by,omitempty"`
}

func (SubmissionModel) TableName() string { return "submissions" }

func (m *SubmissionModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubmissionID == uuid.Nil {
		m.SubmissionID = uuid.New()
	}
	return nil
}
