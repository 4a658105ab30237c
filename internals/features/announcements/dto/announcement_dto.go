// file: internals/features/announcements/dto/announcement_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	m "sekolahku_backend/internals/features/announcements/model"
)

/* =============== REQUESTS =============== */

type CreateAnnouncementRequest struct {
	AnnouncementTitle    string `json:"announcement_title" validate:"required,min=3"`
	AnnouncementContent  string `json:"announcement_content" validate:"required,min=1"`
	AnnouncementPriority string `json:"announcement_priority" validate:"omitempty,oneof=low normal high urgent"`
	AnnouncementPinned   bool   `json:"announcement_pinned"`

	AnnouncementTargetRole    *string    `json:"announcement_target_role" validate:"omitempty,oneof=owner admin teacher student parent"`
	AnnouncementTargetClassID *uuid.UUID `json:"announcement_target_class_id" validate:"omitempty"`
}

func (r *CreateAnnouncementRequest) Normalize() {
	r.AnnouncementTitle = strings.TrimSpace(r.AnnouncementTitle)
	r.AnnouncementContent = strings.TrimSpace(r.AnnouncementContent)
	if r.AnnouncementPriority == "" {
		r.AnnouncementPriority = m.PriorityNormal
	}
}

func (r CreateAnnouncementRequest) ToModel(instituteID, authorID uuid.UUID) *m.AnnouncementModel {
	return &m.AnnouncementModel{
		AnnouncementInstituteID:   instituteID,
		AnnouncementAuthorID:      authorID,
		AnnouncementTitle:         r.AnnouncementTitle,
		AnnouncementContent:       r.AnnouncementContent,
		AnnouncementPriority:      r.AnnouncementPriority,
		AnnouncementPinned:        r.AnnouncementPinned,
		AnnouncementTargetRole:    r.AnnouncementTargetRole,
		AnnouncementTargetClassID: r.AnnouncementTargetClassID,
	}
}

type UpdateAnnouncementRequest struct {
	AnnouncementTitle    *string `json:"announcement_title" validate:"omitempty,min=3"`
	AnnouncementContent  *string `json:"announcement_content" validate:"omitempty,min=1"`
	AnnouncementPriority *string `json:"announcement_priority" validate:"omitempty,oneof=low normal high urgent"`
	AnnouncementPinned   *bool   `json:"announcement_pinned"`
}

func (r UpdateAnnouncementRequest) ApplyTo(mo *m.AnnouncementModel) {
	if r.AnnouncementTitle != nil {
		mo.AnnouncementTitle = strings.TrimSpace(*r.AnnouncementTitle)
	}
	if r.AnnouncementContent != nil {
		mo.AnnouncementContent = strings.TrimSpace(*r.AnnouncementContent)
	}
	if r.AnnouncementPriority != nil {
		mo.AnnouncementPriority = *r.AnnouncementPriority
	}
	if r.AnnouncementPinned != nil {
		mo.AnnouncementPinned = *r.AnnouncementPinned
	}
}

/* =============== RESPONSES =============== */

type AnnouncementResponse struct {
	AnnouncementID            uuid.UUID  `json:"announcement_id"`
	AnnouncementAuthorID      uuid.UUID  `json:"announcement_author_id"`
	AnnouncementTitle         string     `json:"announcement_title"`
	AnnouncementContent       string     `json:"announcement_content"`
	AnnouncementPriority      string     `json:"announcement_priority"`
	AnnouncementPinned        bool       `json:"announcement_pinned"`
	AnnouncementTargetRole    *string    `json:"announcement_target_role,omitempty"`
	AnnouncementTargetClassID *uuid.UUID `json:"announcement_target_class_id,omitempty"`
	AnnouncementCreatedAt     time.Time  `json:"announcement_created_at"`

	IsRead bool `json:"is_read"`
}

func FromAnnouncementModel(x m.AnnouncementModel, isRead bool) AnnouncementResponse {
	return AnnouncementResponse{
		AnnouncementID:            x.AnnouncementID,
		AnnouncementAuthorID:      x.AnnouncementAuthorID,
		AnnouncementTitle:         x.AnnouncementTitle,
		AnnouncementContent:       x.AnnouncementContent,
		AnnouncementPriority:      x.AnnouncementPriority,
		AnnouncementPinned:        x.AnnouncementPinned,
		AnnouncementTargetRole:    x.AnnouncementTargetRole,
		AnnouncementTargetClassID: x.AnnouncementTargetClassID,
		AnnouncementCreatedAt:     x.AnnouncementCreatedAt,
		IsRead:                    isRead,
	}
}
