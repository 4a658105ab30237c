// file: internals/features/attendance/dto/attendance_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	m "sekolahku_backend/internals/features/attendance/model"
)

/* =============== QR SESSION =============== */

type GenerateQRSessionRequest struct {
	ClassID uuid.UUID `json:"class_id" validate:"required"`

	// Default 15 menit jika kosong
	DurationMinutes int `json:"duration_minutes" validate:"omitempty,gte=1,lte=240"`
}

func (r *GenerateQRSessionRequest) Normalize() {
	if r.DurationMinutes == 0 {
		r.DurationMinutes = 15
	}
}

type RedeemRequest struct {
	SessionCode string `json:"session_code" validate:"required,min=4,max=16"`
}

func (r *RedeemRequest) Normalize() {
	r.SessionCode = strings.ToUpper(strings.TrimSpace(r.SessionCode))
}

type QRSessionResponse struct {
	QRSessionID              uuid.UUID `json:"qr_session_id"`
	QRSessionClassID         uuid.UUID `json:"qr_session_class_id"`
	QRSessionCode            string    `json:"qr_session_code"`
	QRSessionDurationMinutes int       `json:"qr_session_duration_minutes"`
	QRSessionExpiresAt       time.Time `json:"qr_session_expires_at"`
	QRSessionCreatedAt       time.Time `json:"qr_session_created_at"`
}

func FromQRSessionModel(x m.QRSessionModel) QRSessionResponse {
	return QRSessionResponse{
		QRSessionID:              x.QRSessionID,
		QRSessionClassID:         x.QRSessionClassID,
		QRSessionCode:            x.QRSessionCode,
		QRSessionDurationMinutes: x.QRSessionDurationMinutes,
		QRSessionExpiresAt:       x.QRSessionExpiresAt,
		QRSessionCreatedAt:       x.QRSessionCreatedAt,
	}
}

type RedeemResponse struct {
	ClassID      uuid.UUID `json:"class_id"`
	ClassName    string    `json:"class_name"`
	ClassSubject string    `json:"class_subject"`
	Status       string    `json:"status"`
	MarkedAt     time.Time `json:"marked_at"`
}

/* =============== MANUAL MARKING =============== */

type BatchMarkItem struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=present absent late"`
}

type BatchMarkRequest struct {
	ClassID uuid.UUID       `json:"class_id" validate:"required"`
	Date    string          `json:"date" validate:"required,datetime=2006-01-02"`
	Records []BatchMarkItem `json:"records" validate:"required,min=1,max=200,dive"`
}

type RosterEntry struct {
	StudentID   uuid.UUID  `json:"student_id"`
	StudentName string     `json:"student_name"`
	Status      string     `json:"status"` // "not_marked" jika belum ada record
	MarkedAt    *time.Time `json:"marked_at,omitempty"`
}

type RosterResponse struct {
	ClassID uuid.UUID     `json:"class_id"`
	Date    string        `json:"date"`
	Entries []RosterEntry `json:"entries"`
}
