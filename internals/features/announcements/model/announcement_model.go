package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type AnnouncementModel struct {
	AnnouncementID uuid.UUID `gorm:"column:announcement_id;type:uuid;primaryKey" json:"announcement_id"`

	AnnouncementInstituteID uuid.UUID `gorm:"column:announcement_institute_id;type:uuid;not null;index" json:"announcement_institute_id"`
	AnnouncementAuthorID    uuid.UUID `gorm:"column:announcement_author_id;type:uuid;not null" json:"announcement_author_id"`

	AnnouncementTitle    string `gorm:"column:announcement_title;type:text;not null" json:"announcement_title"`
	AnnouncementContent  string `gorm:"column:announcement_content;type:text;not null" json:"announcement_content"`
	AnnouncementPriority string `gorm:"column:announcement_priority;type:varchar(10);not null;default:'normal'" json:"announcement_priority"`
	AnnouncementPinned   bool   `gorm:"column:announcement_pinned;not null;default:false" json:"announcement_pinned"`

	// Scope opsional: role tertentu dan/atau kelas tertentu; dua-duanya nil = broadcast tenant
	AnnouncementTargetRole    *string    `gorm:"column:announcement_target_role;type:varchar(20)" json:"announcement_target_role,omitempty"`
	AnnouncementTargetClassID *uuid.UUID `gorm:"column:announcement_target_class_id;type:uuid" json:"announcement_target_class_id,omitempty"`

	AnnouncementCreatedAt time.Time      `gorm:"column:announcement_created_at;autoCreateTime" json:"announcement_created_at"`
	AnnouncementUpdatedAt *time.Time     `gorm:"column:announcement_updated_at;autoUpdateTime" json:"announcement_updated_at,omitempty"`
	AnnouncementDeletedAt gorm.DeletedAt `gorm:"column:announcement_deleted_at;index" json:"announcement_deleted_at,omitempty"`
}

func (AnnouncementModel) TableName() string { return "announcements" }

func (m *AnnouncementModel) BeforeCreate(tx *gorm.DB) error {
	if m.AnnouncementID == uuid.Nil {
		m.AnnouncementID = uuid.New()
	}
	return nil
}
