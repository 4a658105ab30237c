// file: internals/features/classes/dto/class_dto.go
package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	m "sekolahku_backend/internals/features/classes/model"
)

/* =============== Schedule (structured, divalidasi di boundary) =============== */

var validDays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

// ValidateSchedule menerima bentuk {"monday":[{"start":"07:30","end":"09:00"}], ...}.
// Jadwal disimpan sebagai JSONB terstruktur, bukan string bebas yang diparse ad hoc.
func ValidateSchedule(sched datatypes.JSONMap) error {
	for day, raw := range sched {
		if _, ok := validDays[strings.ToLower(day)]; !ok {
			return fmt.Errorf("hari tidak dikenal: %s", day)
		}
		slots, ok := raw.([]interface{})
		if !ok {
			return fmt.Errorf("jadwal %s harus berupa array slot", day)
		}
		for _, s := range slots {
			slot, ok := s.(map[string]interface{})
			if !ok {
				return fmt.Errorf("slot jadwal %s tidak valid", day)
			}
			start, _ := slot["start"].(string)
			end, _ := slot["end"].(string)
			st, err := time.Parse("15:04", start)
			if err != nil {
				return fmt.Errorf("jam mulai %s tidak valid (format HH:MM)", day)
			}
			en, err := time.Parse("15:04", end)
			if err != nil {
				return fmt.Errorf("jam selesai %s tidak valid (format HH:MM)", day)
			}
			if !en.After(st) {
				return fmt.Errorf("jam selesai %s harus setelah jam mulai", day)
			}
		}
	}
	return nil
}

/* =============== REQUESTS =============== */

type CreateClassRequest struct {
	ClassTeacherID uuid.UUID `json:"class_teacher_id" validate:"required"`

	ClassName    string `json:"class_name" validate:"required,min=2"`
	ClassSubject string `json:"class_subject" validate:"required,min=2"`

	ClassCapacity int               `json:"class_capacity" validate:"required,gte=1,lte=500"`
	ClassSchedule datatypes.JSONMap `json:"class_schedule" validate:"omitempty"`
}

func (r CreateClassRequest) ToModel(instituteID uuid.UUID) *m.ClassModel {
	return &m.ClassModel{
		ClassInstituteID: instituteID,
		ClassTeacherID:   r.ClassTeacherID,
		ClassName:        strings.TrimSpace(r.ClassName),
		ClassSubject:     strings.TrimSpace(r.ClassSubject),
		ClassCapacity:    r.ClassCapacity,
		ClassSchedule:    r.ClassSchedule,
	}
}

type UpdateClassRequest struct {
	ClassTeacherID *uuid.UUID         `json:"class_teacher_id" validate:"omitempty"`
	ClassName      *string            `json:"class_name" validate:"omitempty,min=2"`
	ClassSubject   *string            `json:"class_subject" validate:"omitempty,min=2"`
	ClassCapacity  *int               `json:"class_capacity" validate:"omitempty,gte=1,lte=500"`
	ClassSchedule  *datatypes.JSONMap `json:"class_schedule" validate:"omitempty"`
}

func (r UpdateClassRequest) ApplyTo(mo *m.ClassModel) {
	if r.ClassTeacherID != nil {
		mo.ClassTeacherID = *r.ClassTeacherID
	}
	if r.ClassName != nil {
		mo.ClassName = strings.TrimSpace(*r.ClassName)
	}
	if r.ClassSubject != nil {
		mo.ClassSubject = strings.TrimSpace(*r.ClassSubject)
	}
	if r.ClassCapacity != nil {
		mo.ClassCapacity = *r.ClassCapacity
	}
	if r.ClassSchedule != nil {
		mo.ClassSchedule = *r.ClassSchedule
	}
}

type EnrollRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
}

/* =============== RESPONSES =============== */

type ClassResponse struct {
	ClassID          uuid.UUID         `json:"class_id"`
	ClassInstituteID uuid.UUID         `json:"class_institute_id"`
	ClassTeacherID   uuid.UUID         `json:"class_teacher_id"`
	ClassName        string            `json:"class_name"`
	ClassSubject     string            `json:"class_subject"`
	ClassCapacity    int               `json:"class_capacity"`
	ClassSchedule    datatypes.JSONMap `json:"class_schedule,omitempty"`
	ClassCreatedAt   time.Time         `json:"class_created_at"`

	EnrolledCount int64 `json:"enrolled_count,omitempty"`
}

func FromClassModel(x m.ClassModel) ClassResponse {
	return ClassResponse{
		ClassID:          x.ClassID,
		ClassInstituteID: x.ClassInstituteID,
		ClassTeacherID:   x.ClassTeacherID,
		ClassName:        x.ClassName,
		ClassSubject:     x.ClassSubject,
		ClassCapacity:    x.ClassCapacity,
		ClassSchedule:    x.ClassSchedule,
		ClassCreatedAt:   x.ClassCreatedAt,
	}
}

func FromClassModels(list []m.ClassModel) []ClassResponse {
	out := make([]ClassResponse, 0, len(list))
	for _, it := range list {
		out = append(out, FromClassModel(it))
	}
	return out
}
