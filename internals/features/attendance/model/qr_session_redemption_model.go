package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRSessionRedemptionModel mencatat pemakaian kode oleh student.
// Unique (session, student) = tulang punggung exactly-once redemption:
// insert ON CONFLICT DO NOTHING, RowsAffected==0 berarti sudah pernah.
type QRSessionRedemptionModel struct {
	QRSessionRedemptionID uuid.UUID `gorm:"column:qr_session_redemption_id;type:uuid;primaryKey" json:"qr_session_redemption_id"`

	QRSessionRedemptionInstituteID uuid.UUID `gorm:"column:qr_session_redemption_institute_id;type:uuid;not null;index" json:"qr_session_redemption_institute_id"`
	QRSessionRedemptionSessionID   uuid.UUID `gorm:"column:qr_session_redemption_session_id;type:uuid;not null;uniqueIndex:uq_qr_session_redemptions,priority:1" json:"qr_session_redemption_session_id"`
	QRSessionRedemptionStudentID   uuid.UUID `gorm:"column:qr_session_redemption_student_id;type:uuid;not null;uniqueIndex:uq_qr_session_redemptions,priority:2" json:"qr_session_redemption_student_id"`

	QRSessionRedemptionCreatedAt time.Time `gorm:"column:qr_session_redemption_created_at;autoCreateTime" json:"qr_session_redemption_created_at"`
}

func (QRSessionRedemptionModel) TableName() string { return "qr_session_redemptions" }

func (m *QRSessionRedemptionModel) BeforeCreate(tx *gorm.DB) error {
	if m.QRSessionRedemptionID == uuid.Nil {
		m.QRSessionRedemptionID = uuid.New()
	}
	return nil
}
