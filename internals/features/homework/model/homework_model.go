package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	HomeworkDraft     = "draft"
	HomeworkPublished = "published"
	HomeworkClosed    = "closed"
)

type HomeworkModel struct {
	HomeworkID uuid.UUID `gorm:"column:homework_id;type:uuid;primaryKey" json:"homework_id"`

	HomeworkInstituteID uuid.UUID `gorm:"column:homework_institute_id;type:uuid;not null;index" json:"homework_institute_id"`
	HomeworkClassID     uuid.UUID `gorm:"column:homework_class_id;type:uuid;not null;index" json:"homework_class_id"`

	HomeworkTitle       string  `gorm:"column:homework_title;type:text;not null" json:"homework_title"`
	HomeworkDescription *string `gorm:"column:homework_description;type:text" json:"homework_description,omitempty"`

	HomeworkDueDate     time.Time `gorm:"column:homework_due_date;not null" json:"homework_due_date"`
	HomeworkTotalPoints float64   `gorm:"column:homework_total_points;not null" json:"homework_total_points"`

	// draft → published → closed; draft tidak terlihat student
	HomeworkStatus string `gorm:"column:homework_status;type:varchar(12);not null;default:'draft'" json:"homework_status"`

	HomeworkCreatedBy uuid.UUID      `gorm:"column:homework_created_by;type:uuid;not null" json:"homework_created_by"`
	HomeworkCreatedAt time.Time      `gorm:"column:homework_created_at;autoCreateTime" json:"homework_created_at"`
	HomeworkUpdatedAt *time.Time     `gorm:"column:homework_updated_at;autoUpdateTime" json:"homework_updated_at,omitempty"`
	HomeworkDeletedAt gorm.DeletedAt `gorm:"column:homework_deleted_at;index" json:"homework_deleted_at,omitempty"`
}

func (HomeworkModel) TableName() string { return "homeworks" }

func (m *HomeworkModel) BeforeCreate(tx *gorm.DB) error {
	if m.HomeworkID == uuid.Nil {
		m.HomeworkID = uuid.New()
	}
	return nil
}
