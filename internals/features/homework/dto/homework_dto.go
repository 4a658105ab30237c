// file: internals/features/homework/dto/homework_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	m "sekolahku_backend/internals/features/homework/model"
)

/* =============== REQUESTS =============== */

type CreateHomeworkRequest struct {
	HomeworkClassID uuid.UUID `json:"homework_class_id" validate:"required"`

	HomeworkTitle       string  `json:"homework_title" validate:"required,min=3"`
	HomeworkDescription *string `json:"homework_description" validate:"omitempty"`

	HomeworkDueDate     time.Time `json:"homework_due_date" validate:"required"`
	HomeworkTotalPoints float64   `json:"homework_total_points" validate:"required,gt=0,lte=1000"`
}

func (r CreateHomeworkRequest) ToModel(instituteID, createdBy uuid.UUID) *m.HomeworkModel {
	return &m.HomeworkModel{
		HomeworkInstituteID: instituteID,
		HomeworkClassID:     r.HomeworkClassID,
		HomeworkTitle:       strings.TrimSpace(r.HomeworkTitle),
		HomeworkDescription: r.HomeworkDescription,
		HomeworkDueDate:     r.HomeworkDueDate,
		HomeworkTotalPoints: r.HomeworkTotalPoints,
		HomeworkStatus:      m.HomeworkDraft,
		HomeworkCreatedBy:   createdBy,
	}
}

type UpdateHomeworkRequest struct {
	HomeworkTitle       *string    `json:"homework_title" validate:"omitempty,min=3"`
	HomeworkDescription *string    `json:"homework_description" validate:"omitempty"`
	HomeworkDueDate     *time.Time `json:"homework_due_date" validate:"omitempty"`
	HomeworkTotalPoints *float64   `json:"homework_total_points" validate:"omitempty,gt=0,lte=1000"`
}

func (r UpdateHomeworkRequest) ApplyTo(mo *m.HomeworkModel) {
	if r.HomeworkTitle != nil {
		mo.HomeworkTitle = strings.TrimSpace(*r.HomeworkTitle)
	}
	if r.HomeworkDescription != nil {
		mo.HomeworkDescription = r.HomeworkDescription
	}
	if r.HomeworkDueDate != nil {
		mo.HomeworkDueDate = *r.HomeworkDueDate
	}
	if r.HomeworkTotalPoints != nil {
		mo.HomeworkTotalPoints = *r.HomeworkTotalPoints
	}
}

type SubmitHomeworkRequest struct {
	SubmissionAnswer string `json:"submission_answer" validate:"required,min=1"`
}

type GradeSubmissionRequest struct {
	SubmissionGrade    float64 `json:"submission_grade" validate:"gte=0"`
	SubmissionFeedback *string `json:"submission_feedback" validate:"omitempty"`
}

/* =============== RESPONSES =============== */

type HomeworkResponse struct {
	HomeworkID          uuid.UUID  `json:"homework_id"`
	HomeworkClassID     uuid.UUID  `json:"homework_class_id"`
	HomeworkTitle       string     `json:"homework_title"`
	HomeworkDescription *string    `json:"homework_description,omitempty"`
	HomeworkDueDate     time.Time  `json:"homework_due_date"`
	HomeworkTotalPoints float64    `json:"homework_total_points"`
	HomeworkStatus      string     `json:"homework_status"`
	HomeworkCreatedBy   uuid.UUID  `json:"homework_created_by"`
	HomeworkCreatedAt   time.Time  `json:"homework_created_at"`
	HomeworkUpdatedAt   *time.Time `json:"homework_updated_at,omitempty"`
}

func FromHomeworkModel(x m.HomeworkModel) HomeworkResponse {
	return HomeworkResponse{
		HomeworkID:          x.HomeworkID,
		HomeworkClassID:     x.HomeworkClassID,
		HomeworkTitle:       x.HomeworkTitle,
		HomeworkDescription: x.HomeworkDescription,
		HomeworkDueDate:     x.HomeworkDueDate,
		HomeworkTotalPoints: x.HomeworkTotalPoints,
		HomeworkStatus:      x.HomeworkStatus,
		HomeworkCreatedBy:   x.HomeworkCreatedBy,
		HomeworkCreatedAt:   x.HomeworkCreatedAt,
		HomeworkUpdatedAt:   x.HomeworkUpdatedAt,
	}
}

func FromHomeworkModels(list []m.HomeworkModel) []HomeworkResponse {
	out := make([]HomeworkResponse, 0, len(list))
	for _, it := range list {
		out = append(out, FromHomeworkModel(it))
	}
	return out
}

type SubmissionResponse struct {
	SubmissionID          uuid.UUID  `json:"submission_id"`
	SubmissionHomeworkID  uuid.UUID  `json:"submission_homework_id"`
	SubmissionStudentID   uuid.UUID  `json:"submission_student_id"`
	SubmissionAnswer      string     `json:"submission_answer"`
	SubmissionSubmittedAt time.Time  `json:"submission_submitted_at"`
	SubmissionIsLate      bool       `json:"submission_is_late"`
	SubmissionStatus      string     `json:"submission_status"`
	SubmissionGrade       *float64   `json:"submission_grade,omitempty"`
	SubmissionFeedback    *string    `json:"submission_feedback,omitempty"`
	SubmissionGradedAt    *time.Time `json:"submission_graded_at,omitempty"`
}

func FromSubmissionModel(x m.SubmissionModel) SubmissionResponse {
	return SubmissionResponse{
		SubmissionID:          x.SubmissionID,
		SubmissionHomeworkID:  x.SubmissionHomeworkID,
		SubmissionStudentID:   x.SubmissionStudentID,
		SubmissionAnswer:      x.SubmissionAnswer,
		SubmissionSubmittedAt: x.SubmissionSubmittedAt,
		SubmissionIsLate:      x.SubmissionIsLate,
		SubmissionStatus:      x.SubmissionStatus,
		SubmissionGrade:       x.SubmissionGrade,
		SubmissionFeedback:    x.SubmissionFeedback,
		SubmissionGradedAt:    x.SubmissionGradedAt,
	}
}

func FromSubmissionModels(list []m.SubmissionModel) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(list))
	for _, it := range list {
		out = append(out, FromSubmissionModel(it))
	}
	return out
}
