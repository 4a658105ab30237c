package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnnouncementReadModel = read-receipt append-only.
// Unique (announcement, user): mark-read idempoten via ON CONFLICT DO NOTHING.
type AnnouncementReadModel struct {
	AnnouncementReadID uuid.UUID `gorm:"column:announcement_read_id;type:uuid;primaryKey" json:"announcement_read_id"`

	AnnouncementReadAnnouncementID uuid.UUID `gorm:"column:announcement_read_announcement_id;type:uuid;not null;uniqueIndex:uq_announcement_reads,priority:1" json:"announcement_read_announcement_id"`
	AnnouncementReadUserID         uuid.UUID `gorm:"column:announcement_read_user_id;type:uuid;not null;uniqueIndex:uq_announcement_reads,priority:2" json:"announcement_read_user_id"`

	AnnouncementReadAt time.Time `gorm:"column:announcement_read_at;autoCreateTime" json:"announcement_read_at"`
}

func (AnnouncementReadModel) TableName() string { return "announcement_reads" }

func (m *AnnouncementReadModel) BeforeCreate(tx *gorm.DB) error {
	if m.AnnouncementReadID == uuid.Nil {
		m.AnnouncementReadID = uuid.New()
	}
	return nil
}
