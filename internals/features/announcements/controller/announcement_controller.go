// file: internals/features/announcements/controller/announcement_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sekolahku_backend/internals/constants"
	announcementDTO "sekolahku_backend/internals/features/announcements/dto"
	announcementModel "sekolahku_backend/internals/features/announcements/model"
	classModel "sekolahku_backend/internals/features/classes/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

type AnnouncementController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAnnouncementController(db *gorm.DB) *AnnouncementController {
	return &AnnouncementController{DB: db, Validate: validator.New()}
}

func loadTenantAnnouncement(tx *gorm.DB, instituteID, announcementID uuid.UUID) (*announcementModel.AnnouncementModel, error) {
	var a announcementModel.AnnouncementModel
	if err := tx.Where("announcement_id = ? AND announcement_institute_id = ?",
		announcementID, instituteID).
		Take(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Pengumuman tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil pengumuman")
	}
	return &a, nil
}

// Edit/hapus/pin: hanya pembuat atau {OWNER, ADMIN}.
func canModerateAnnouncement(c *fiber.Ctx, a *announcementModel.AnnouncementModel) bool {
	if helperAuth.IsOwnerOrAdmin(c) {
		return true
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	return err == nil && a.AnnouncementAuthorID == uid
}

// POST /api/a/announcements — {OWNER, ADMIN, TEACHER}.
func (ctrl *AnnouncementController) Create(c *fiber.Ctx) error {
	if !helperAuth.CanAuthor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorTeacher("pengumuman"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req announcementDTO.CreateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	req.Normalize()

	if req.AnnouncementTargetClassID != nil {
		var n int64
		if err := ctrl.DB.Model(&classModel.ClassModel{}).
			Where("class_id = ? AND class_institute_id = ?",
				*req.AnnouncementTargetClassID, instituteID).
			Count(&n).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal validasi kelas target")
		}
		if n == 0 {
			return helper.JsonError(c, fiber.StatusNotFound, "Kelas target tidak ditemukan")
		}
	}

	uid, _ := helperAuth.GetUserIDFromToken(c)
	a := req.ToModel(instituteID, uid)
	if err := ctrl.DB.Create(a).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat pengumuman")
	}
	return helper.JsonCreated(c, "Pengumuman dibuat", announcementDTO.FromAnnouncementModel(*a, false))
}

// GET /api/u/announcements — scope per viewer: broadcast + role-target + kelas yang relevan.
// Urutan: pinned dulu, lalu terbaru.
func (ctrl *AnnouncementController) List(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	role := helperAuth.GetRoleFromToken(c)
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.Model(&announcementModel.AnnouncementModel{}).
		Where("announcement_institute_id = ?", instituteID).
		Where("announcement_target_role IS NULL OR announcement_target_role = ?", role)

	// STUDENT/TEACHER hanya melihat target kelas yang relevan dengannya;
	// OWNER/ADMIN melihat semua target kelas.
	switch role {
	case constants.RoleStudent:
		q = q.Where("announcement_target_class_id IS NULL OR announcement_target_class_id IN (?)",
			ctrl.DB.Model(&classModel.ClassStudentModel{}).
				Select("class_student_class_id").
				Where("class_student_student_id = ?", uid))
	case constants.RoleTeacher:
		q = q.Where("announcement_target_class_id IS NULL OR announcement_target_class_id IN (?)",
			ctrl.DB.Model(&classModel.ClassModel{}).
				Select("class_id").
				Where("class_teacher_id = ?", uid))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal hitung pengumuman")
	}

	var rows []announcementModel.AnnouncementModel
	if err := q.Order("announcement_pinned DESC, announcement_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil pengumuman")
	}

	// Read-receipt viewer untuk flag is_read
	ids := make([]uuid.UUID, 0, len(rows))
	for _, a := range rows {
		ids = append(ids, a.AnnouncementID)
	}
	readSet := make(map[uuid.UUID]struct{}, len(ids))
	if len(ids) > 0 {
		var reads []announcementModel.AnnouncementReadModel
		if err := ctrl.DB.
			Where("announcement_read_user_id = ? AND announcement_read_announcement_id IN ?", uid, ids).
			Find(&reads).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil read receipt")
		}
		for _, r := range reads {
			readSet[r.AnnouncementReadAnnouncementID] = struct{}{}
		}
	}

	out := make([]announcementDTO.AnnouncementResponse, 0, len(rows))
	for _, a := range rows {
		_, isRead := readSet[a.AnnouncementID]
		out = append(out, announcementDTO.FromAnnouncementModel(a, isRead))
	}

	p := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "ok", out, &p)
}

// PATCH /api/a/announcements/:id
func (ctrl *AnnouncementController) Update(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	announcementID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Announcement ID tidak valid")
	}

	var req announcementDTO.UpdateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	a, ferr := loadTenantAnnouncement(ctrl.DB, instituteID, announcementID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if !canModerateAnnouncement(c, a) {
		return helper.JsonError(c, fiber.StatusForbidden, "Hanya pembuat atau admin yang boleh mengubah pengumuman")
	}

	req.ApplyTo(a)
	if err := ctrl.DB.Save(a).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan pengumuman")
	}
	return helper.JsonUpdated(c, "Pengumuman diperbarui", announcementDTO.FromAnnouncementModel(*a, false))
}

// POST /api/a/announcements/:id/pin — toggle.
func (ctrl *AnnouncementController) TogglePin(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	announcementID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Announcement ID tidak valid")
	}

	a, ferr := loadTenantAnnouncement(ctrl.DB, instituteID, announcementID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if !canModerateAnnouncement(c, a) {
		return helper.JsonError(c, fiber.StatusForbidden, "Hanya pembuat atau admin yang boleh pin pengumuman")
	}

	a.AnnouncementPinned = !a.AnnouncementPinned
	if err := ctrl.DB.Save(a).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan pengumuman")
	}
	msg := "Pengumuman di-pin"
	if !a.AnnouncementPinned {
		msg = "Pin pengumuman dilepas"
	}
	return helper.JsonUpdated(c, msg, announcementDTO.FromAnnouncementModel(*a, false))
}

// DELETE /api/a/announcements/:id — soft delete.
func (ctrl *AnnouncementController) Delete(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	announcementID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Announcement ID tidak valid")
	}

	a, ferr := loadTenantAnnouncement(ctrl.DB, instituteID, announcementID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if !canModerateAnnouncement(c, a) {
		return helper.JsonError(c, fiber.StatusForbidden, "Hanya pembuat atau admin yang boleh menghapus pengumuman")
	}

	if err := ctrl.DB.Delete(a).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus pengumuman")
	}
	return helper.JsonDeleted(c, "Pengumuman dihapus", fiber.Map{"announcement_id": announcementID})
}

// POST /api/u/announcements/:id/read — idempoten (ON CONFLICT DO NOTHING).
func (ctrl *AnnouncementController) MarkRead(c *fiber.Ctx) error {
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	announcementID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Announcement ID tidak valid")
	}

	if _, ferr := loadTenantAnnouncement(ctrl.DB, instituteID, announcementID); ferr != nil {
		return helper.FromFiberError(c, ferr)
	}

	read := announcementModel.AnnouncementReadModel{
		AnnouncementReadAnnouncementID: announcementID,
		AnnouncementReadUserID:         uid,
	}
	if err := ctrl.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&read).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menandai pengumuman")
	}
	return helper.JsonOK(c, "Pengumuman ditandai sudah dibaca", fiber.Map{
		"announcement_id": announcementID,
	})
}
