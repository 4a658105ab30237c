package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClassStudentModel = join enrolment kelas ↔ student.
type ClassStudentModel struct {
	ClassStudentID uuid.UUID `gorm:"column:class_student_id;type:uuid;primaryKey" json:"class_student_id"`

	ClassStudentInstituteID uuid.UUID `gorm:"column:class_student_institute_id;type:uuid;not null;index" json:"class_student_institute_id"`
	ClassStudentClassID     uuid.UUID `gorm:"column:class_student_class_id;type:uuid;not null;uniqueIndex:uq_class_students,priority:1" json:"class_student_class_id"`
	ClassStudentStudentID   uuid.UUID `gorm:"column:class_student_student_id;type:uuid;not null;uniqueIndex:uq_class_students,priority:2" json:"class_student_student_id"`

	ClassStudentCreatedAt time.Time `gorm:"column:class_student_created_at;autoCreateTime" json:"class_student_created_at"`
}

func (ClassStudentModel) TableName() string { return "class_students" }

func (m *ClassStudentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassStudentID == uuid.Nil {
		m.ClassStudentID = uuid.New()
	}
	return nil
}
