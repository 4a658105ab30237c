// file: internals/features/users/dto/user_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	m "sekolahku_backend/internals/features/users/model"
)

/* =============== REQUESTS =============== */

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type CreateUserRequest struct {
	UserName     string `json:"user_name" validate:"required,min=2"`
	UserEmail    string `json:"user_email" validate:"required,email"`
	UserPassword string `json:"user_password" validate:"required,min=8"`
	UserRole     string `json:"user_role" validate:"required,oneof=admin teacher student parent"`
}

func (r *CreateUserRequest) Normalize() {
	r.UserName = strings.TrimSpace(r.UserName)
	r.UserEmail = strings.ToLower(strings.TrimSpace(r.UserEmail))
	r.UserRole = strings.ToLower(strings.TrimSpace(r.UserRole))
}

type ListUserQuery struct {
	Role *string `query:"role" validate:"omitempty,oneof=owner admin teacher student parent"`
	Q    *string `query:"q" validate:"omitempty"`
}

/* =============== RESPONSES =============== */

type UserResponse struct {
	UserID          uuid.UUID `json:"user_id"`
	UserInstituteID uuid.UUID `json:"user_institute_id"`
	UserName        string    `json:"user_name"`
	UserEmail       string    `json:"user_email"`
	UserRole        string    `json:"user_role"`
	UserIsActive    bool      `json:"user_is_active"`
	UserCreatedAt   time.Time `json:"user_created_at"`
}

func FromUserModel(x m.UserModel) UserResponse {
	return UserResponse{
		UserID:          x.UserID,
		UserInstituteID: x.UserInstituteID,
		UserName:        x.UserName,
		UserEmail:       x.UserEmail,
		UserRole:        x.UserRole,
		UserIsActive:    x.UserIsActive,
		UserCreatedAt:   x.UserCreatedAt,
	}
}

func FromUserModels(list []m.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for _, it := range list {
		out = append(out, FromUserModel(it))
	}
	return out
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}
