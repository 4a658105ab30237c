// file: internals/features/users/controller/auth_controller.go
package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	userDTO "sekolahku_backend/internals/features/users/dto"
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

const accessTokenTTL = 24 * time.Hour

type AuthController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validate: validator.New()}
}

func makeAccessToken(u userModel.UserModel) (string, error) {
	claims := jwt.MapClaims{
		"id":           u.UserID.String(),
		"user_name":    u.UserName,
		"role":         u.UserRole,
		"institute_id": u.UserInstituteID.String(),
		"exp":          time.Now().Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configs.JWTSecret))
}

// POST /api/auth/login — tenant scoped (email unik per institute).
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	instituteID, err := helperAuth.GetActiveInstituteID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req userDTO.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var usr userModel.UserModel
	if err := ctrl.DB.
		Where("user_institute_id = ? AND LOWER(user_email) = ?", instituteID, req.Email).
		Take(&usr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Email atau password salah")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil user")
	}

	if !usr.UserIsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "Akun Anda telah dinonaktifkan")
	}
	if !usr.CheckPassword(req.Password) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Email atau password salah")
	}

	tok, err := makeAccessToken(usr)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat token")
	}

	// Cookie fallback untuk klien browser
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    tok,
		Expires:  time.Now().Add(accessTokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return helper.JsonOK(c, "Login berhasil", userDTO.LoginResponse{
		AccessToken: tok,
		User:        userDTO.FromUserModel(usr),
	})
}

// GET /api/u/me — profil user dari token.
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var usr userModel.UserModel
	if err := ctrl.DB.Where("user_id = ?", userID).Take(&usr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "User tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil user")
	}
	return helper.JsonOK(c, "ok", userDTO.FromUserModel(usr))
}
