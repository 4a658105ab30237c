package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ClassModel struct {
	ClassID uuid.UUID `gorm:"column:class_id;type:uuid;primaryKey" json:"class_id"`

	ClassInstituteID uuid.UUID `gorm:"column:class_institute_id;type:uuid;not null;index" json:"class_institute_id"`
	ClassTeacherID   uuid.UUID `gorm:"column:class_teacher_id;type:uuid;not null;index" json:"class_teacher_id"`

	ClassName    string `gorm:"column:class_name;type:text;not null" json:"class_name"`
	ClassSubject string `gorm:"column:class_subject;type:text;not null" json:"class_subject"`

	// Kapasitas di-soft-enforce saat enroll
	ClassCapacity int `gorm:"column:class_capacity;not null;default:30" json:"class_capacity"`

	// Jadwal mingguan terstruktur (mis. {"monday":[{"start":"07:30","end":"09:00"}]}),
	// divalidasi di boundary DTO, bukan string bebas.
	ClassSchedule datatypes.JSONMap `gorm:"column:class_schedule;type:jsonb" json:"class_schedule,omitempty"`

	ClassCreatedAt time.Time      `gorm:"column:class_created_at;autoCreateTime" json:"class_created_at"`
	ClassUpdatedAt *time.Time     `gorm:"column:class_updated_at;autoUpdateTime" json:"class_updated_at,omitempty"`
	ClassDeletedAt gorm.DeletedAt `gorm:"column:class_deleted_at;index" json:"class_deleted_at,omitempty"`
}

func (ClassModel) TableName() string { return "classes" }

func (m *ClassModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassID == uuid.Nil {
		m.ClassID = uuid.New()
	}
	return nil
}
