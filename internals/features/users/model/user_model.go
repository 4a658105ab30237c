package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserModel struct {
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`

	// Setiap user milik tepat satu tenant
	UserInstituteID uuid.UUID `gorm:"column:user_institute_id;type:uuid;not null;index;uniqueIndex:uq_users_institute_email,priority:1" json:"user_institute_id"`

	UserName     string `gorm:"column:user_name;type:text;not null" json:"user_name"`
	UserEmail    string `gorm:"column:user_email;type:varchar(255);not null;uniqueIndex:uq_users_institute_email,priority:2" json:"user_email"`
	UserPassword string `gorm:"column:user_password;type:text;not null" json:"-"`

	// Role immutable-ish; semua gate otorisasi membaca kolom ini
	UserRole     string `gorm:"column:user_role;type:varchar(20);not null" json:"user_role"`
	UserIsActive bool   `gorm:"column:user_is_active;not null;default:true" json:"user_is_active"`

	UserCreatedAt time.Time      `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt *time.Time     `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at,omitempty"`
	UserDeletedAt gorm.DeletedAt `gorm:"column:user_deleted_at;index" json:"user_deleted_at,omitempty"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserID == uuid.Nil {
		m.UserID = uuid.New()
	}
	return nil
}

func (m *UserModel) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.UserPassword = string(hash)
	return nil
}

func (m *UserModel) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(m.UserPassword), []byte(plain)) == nil
}
