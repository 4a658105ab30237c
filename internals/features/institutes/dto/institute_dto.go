// file: internals/features/institutes/dto/institute_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	m "sekolahku_backend/internals/features/institutes/model"
)

/* =============== REQUESTS =============== */

// Registrasi tenant baru: institute + user OWNER + subscription basic sekaligus.
type RegisterInstituteRequest struct {
	InstituteName string `json:"institute_name" validate:"required,min=3"`
	InstituteSlug string `json:"institute_slug" validate:"required,min=3,max=63,hostname_rfc1123"`

	OwnerName     string `json:"owner_name" validate:"required,min=2"`
	OwnerEmail    string `json:"owner_email" validate:"required,email"`
	OwnerPassword string `json:"owner_password" validate:"required,min=8"`
}

func (r *RegisterInstituteRequest) Normalize() {
	r.InstituteName = strings.TrimSpace(r.InstituteName)
	r.InstituteSlug = strings.ToLower(strings.TrimSpace(r.InstituteSlug))
	r.OwnerName = strings.TrimSpace(r.OwnerName)
	r.OwnerEmail = strings.ToLower(strings.TrimSpace(r.OwnerEmail))
}

// Update settings (partial)
type UpdateInstituteRequest struct {
	InstituteName     *string            `json:"institute_name" validate:"omitempty,min=3"`
	InstituteBranding *datatypes.JSONMap `json:"institute_branding" validate:"omitempty"`
}

func (r UpdateInstituteRequest) ApplyTo(mo *m.InstituteModel) {
	if r.InstituteName != nil {
		mo.InstituteName = strings.TrimSpace(*r.InstituteName)
	}
	if r.InstituteBranding != nil {
		mo.InstituteBranding = *r.InstituteBranding
	}
}

/* =============== RESPONSES =============== */

type InstituteResponse struct {
	InstituteID       uuid.UUID         `json:"institute_id"`
	InstituteName     string            `json:"institute_name"`
	InstituteSlug     string            `json:"institute_slug"`
	InstituteBranding datatypes.JSONMap `json:"institute_branding,omitempty"`

	InstituteTier         string `json:"institute_tier"`
	InstituteStudentLimit int    `json:"institute_student_limit"`

	InstituteCreatedAt time.Time `json:"institute_created_at"`
}

func FromInstituteModel(x m.InstituteModel) InstituteResponse {
	return InstituteResponse{
		InstituteID:           x.InstituteID,
		InstituteName:         x.InstituteName,
		InstituteSlug:         x.InstituteSlug,
		InstituteBranding:     x.InstituteBranding,
		InstituteTier:         x.InstituteTier,
		InstituteStudentLimit: x.InstituteStudentLimit,
		InstituteCreatedAt:    x.InstituteCreatedAt,
	}
}
