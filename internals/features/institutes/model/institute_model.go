package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InstituteModel struct {
	InstituteID uuid.UUID `gorm:"column:institute_id;type:uuid;primaryKey" json:"institute_id"`

	InstituteName string `gorm:"column:institute_name;type:text;not null" json:"institute_name"`
	// Slug dipakai sebagai token subdomain (mis. alhikmah.sekolahku.id)
	InstituteSlug string `gorm:"column:institute_slug;type:varchar(63);not null;uniqueIndex" json:"institute_slug"`

	// Branding bebas bentuk (logo, warna, tagline) — JSONB
	InstituteBranding datatypes.JSONMap `gorm:"column:institute_branding;type:jsonb" json:"institute_branding,omitempty"`

	// Snapshot tier aktif (sumber kebenaran counter ada di subscriptions)
	InstituteTier         string `gorm:"column:institute_tier;type:varchar(20);not null;default:'basic'" json:"institute_tier"`
	InstituteStudentLimit int    `gorm:"column:institute_student_limit;not null;default:50" json:"institute_student_limit"`

	InstituteCreatedAt time.Time      `gorm:"column:institute_created_at;autoCreateTime" json:"institute_created_at"`
	InstituteUpdatedAt *time.Time     `gorm:"column:institute_updated_at;autoUpdateTime" json:"institute_updated_at,omitempty"`
	InstituteDeletedAt gorm.DeletedAt `gorm:"column:institute_deleted_at;index" json:"institute_deleted_at,omitempty"`
}

func (InstituteModel) TableName() string { return "institutes" }

func (m *InstituteModel) BeforeCreate(tx *gorm.DB) error {
	if m.InstituteID == uuid.Nil {
		m.InstituteID = uuid.New()
	}
	return nil
}
