package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRSessionModel = sesi kehadiran time-boxed per kelas.
// State machine: Uncreated → Active → Expired. Expired dievaluasi lazy
// (now > expires_at); tidak ada timer/event transisi eksplisit.
type QRSessionModel struct {
	QRSessionID uuid.UUID `gorm:"column:qr_session_id;type:uuid;primaryKey" json:"qr_session_id"`

	QRSessionInstituteID uuid.UUID `gorm:"column:qr_session_institute_id;type:uuid;not null;index" json:"qr_session_institute_id"`
	QRSessionClassID     uuid.UUID `gorm:"column:qr_session_class_id;type:uuid;not null;index" json:"qr_session_class_id"`

	// Kode yang dirender sebagai QR sekaligus bisa diketik manual
	QRSessionCode string `gorm:"column:qr_session_code;type:varchar(16);not null;uniqueIndex" json:"qr_session_code"`

	QRSessionDurationMinutes int       `gorm:"column:qr_session_duration_minutes;not null" json:"qr_session_duration_minutes"`
	QRSessionExpiresAt       time.Time `gorm:"column:qr_session_expires_at;not null;index" json:"qr_session_expires_at"`

	QRSessionCreatedBy uuid.UUID `gorm:"column:qr_session_created_by;type:uuid;not null" json:"qr_session_created_by"`
	QRSessionCreatedAt time.Time `gorm:"column:qr_session_created_at;autoCreateTime" json:"qr_session_created_at"`
}

func (QRSessionModel) TableName() string { return "qr_sessions" }

func (m *QRSessionModel) BeforeCreate(tx *gorm.DB) error {
	if m.QRSessionID == uuid.Nil {
		m.QRSessionID = uuid.New()
	}
	return nil
}

// IsExpired: Active ⇔ now < expires_at.
func (m *QRSessionModel) IsExpired(now time.Time) bool {
	return now.After(m.QRSessionExpiresAt)
}
