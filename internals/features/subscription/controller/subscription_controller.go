// file: internals/features/subscription/controller/subscription_controller.go
package controller

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	subscriptionDTO "sekolahku_backend/internals/features/subscription/dto"
	subscriptionModel "sekolahku_backend/internals/features/subscription/model"
	subscriptionService "sekolahku_backend/internals/features/subscription/service"
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

type SubscriptionController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Payments *subscriptionService.PaymentService
}

func NewSubscriptionController(db *gorm.DB, payments *subscriptionService.PaymentService) *SubscriptionController {
	return &SubscriptionController{DB: db, Validate: validator.New(), Payments: payments}
}

func loadTenantSubscription(tx *gorm.DB, instituteID uuid.UUID) (*subscriptionModel.SubscriptionModel, error) {
	var sub subscriptionModel.SubscriptionModel
	if err := tx.Where("subscription_institute_id = ?", instituteID).Take(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Subscription tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil subscription")
	}
	return &sub, nil
}

// refreshCycle: revert lazy ke BASIC kalau cycle berbayar sudah lewat dan
// cancel_at_period_end menyala. Dipanggil saat read; tidak ada scheduler.
func refreshCycle(tx *gorm.DB, sub *subscriptionModel.SubscriptionModel, now time.Time) error {
	if !now.After(sub.SubscriptionCycleEnd) {
		return nil
	}
	if sub.SubscriptionTier == subscriptionModel.TierBasic {
		return nil
	}
	if !sub.SubscriptionCancelAtPeriodEnd {
		return nil
	}

	sub.SubscriptionTier = subscriptionModel.TierBasic
	sub.SubscriptionCancelAtPeriodEnd = false
	sub.SubscriptionCycleStart = now
	sub.SubscriptionCycleEnd = now.AddDate(0, 1, 0)
	sub.SubscriptionPendingOrderID = nil
	sub.SubscriptionPendingTier = nil
	if err := tx.Save(sub).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memperbarui cycle subscription")
	}
	log.Printf("[SUBSCRIPTION] ⬇️ institute %s kembali ke basic (cycle lewat)", sub.SubscriptionInstituteID)
	return nil
}

// GET /api/a/subscriptions — {OWNER, ADMIN}.
func (ctrl *SubscriptionController) GetCurrent(c *fiber.Ctx) error {
	if !helperAuth.IsOwnerOrAdmin(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorAdmin("subscription"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	sub, ferr := loadTenantSubscription(ctrl.DB, instituteID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if err := refreshCycle(ctrl.DB, sub, time.Now()); err != nil {
		return helper.FromFiberError(c, err)
	}

	tier, ok := subscriptionModel.TierByCode(sub.SubscriptionTier)
	if !ok {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Tier tidak dikenal")
	}
	return helper.JsonOK(c, "ok", subscriptionDTO.FromSubscriptionModel(*sub, tier))
}

// POST /api/a/subscriptions/upgrade — {OWNER} membuat order Midtrans;
// tier baru diterapkan oleh webhook, bukan di sini.
func (ctrl *SubscriptionController) Upgrade(c *fiber.Ctx) error {
	if !helperAuth.IsOwner(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorOwner("upgrade subscription"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req subscriptionDTO.UpgradeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	req.Normalize()

	if !ctrl.Payments.Enabled() {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Pembayaran sedang nonaktif")
	}

	var out subscriptionDTO.UpgradeResponse
	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		sub, ferr := loadTenantSubscription(tx, instituteID)
		if ferr != nil {
			return ferr
		}
		if err := refreshCycle(tx, sub, time.Now()); err != nil {
			return err
		}
		if !subscriptionModel.IsUpgrade(sub.SubscriptionTier, req.TargetTier) {
			return fiber.NewError(fiber.StatusBadRequest, "Target tier harus lebih tinggi dari tier saat ini")
		}
		if sub.SubscriptionPendingOrderID != nil {
			return fiber.NewError(fiber.StatusConflict, "Masih ada order upgrade yang belum selesai")
		}

		target, ok := subscriptionModel.TierByCode(req.TargetTier)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Tier tidak dikenal")
		}
		amount := target.MonthlyPrice
		periodCode := "M"
		if req.BillingPeriod == "yearly" {
			amount = target.YearlyPrice
			periodCode = "Y"
		}

		var owner userModel.UserModel
		if err := tx.Where("user_institute_id = ? AND user_role = ?",
			instituteID, constants.RoleOwner).
			Order("user_created_at ASC").
			Take(&owner).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil data owner")
		}

		orderID := subscriptionService.BuildOrderID(periodCode, instituteID.String())
		token, redirectURL, err := ctrl.Payments.CreateSnapTransaction(
			orderID, amount, owner.UserName, owner.UserEmail)
		if err != nil {
			log.Printf("[SUBSCRIPTION] ❌ gagal membuat transaksi snap: %v", err)
			return fiber.NewError(fiber.StatusBadGateway, "Gagal membuat transaksi pembayaran")
		}

		sub.SubscriptionPendingOrderID = &orderID
		targetCode := target.Code
		sub.SubscriptionPendingTier = &targetCode
		if err := tx.Save(sub).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan order pending")
		}

		out = subscriptionDTO.UpgradeResponse{
			OrderID:     orderID,
			TargetTier:  target.Code,
			GrossAmount: amount,
			SnapToken:   token,
			RedirectURL: redirectURL,
		}
		return nil
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.JsonCreated(c, "Order upgrade dibuat. Silakan lanjutkan pembayaran.", out)
}

// DELETE /api/a/subscriptions — {OWNER}; berlaku sampai akhir cycle.
func (ctrl *SubscriptionController) Cancel(c *fiber.Ctx) error {
	if !helperAuth.IsOwner(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorOwner("cancel subscription"))
	}
	instituteID, err := helperAuth.EnsureSameTenant(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	sub, ferr := loadTenantSubscription(ctrl.DB, instituteID)
	if ferr != nil {
		return helper.FromFiberError(c, ferr)
	}
	if sub.SubscriptionTier == subscriptionModel.TierBasic {
		return helper.JsonError(c, fiber.StatusConflict, "Tier basic tidak bisa dibatalkan")
	}

	sub.SubscriptionCancelAtPeriodEnd = true
	if err := ctrl.DB.Save(sub).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan subscription")
	}
	return helper.JsonOK(c, "Subscription akan berakhir di akhir cycle berjalan", fiber.Map{
		"cycle_end": sub.SubscriptionCycleEnd,
	})
}

// POST /api/subscriptions/notification — webhook Midtrans (tanpa auth,
// path di-skip AuthMiddleware). settlement/capture menerapkan tier pending;
// expire/cancel/deny membersihkan order pending.
func (ctrl *SubscriptionController) HandleNotification(c *fiber.Ctx) error {
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload webhook tidak valid")
	}

	orderID, _ := body["order_id"].(string)
	transactionStatus, _ := body["transaction_status"].(string)
	if orderID == "" || transactionStatus == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "order_id / transaction_status kosong")
	}
	log.Printf("[SUBSCRIPTION] 🔔 webhook order=%s status=%s", orderID, transactionStatus)

	if err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var sub subscriptionModel.SubscriptionModel
		if err := tx.Where("subscription_pending_order_id = ?", orderID).
			Take(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Order sudah diproses atau bukan milik kita; webhook tetap 200
				// supaya Midtrans berhenti retry.
				log.Printf("[SUBSCRIPTION] ⚠️ order %s tidak ditemukan, diabaikan", orderID)
				return nil
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil subscription")
		}

		switch transactionStatus {
		case "settlement", "capture":
			if sub.SubscriptionPendingTier == nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Order pending tanpa tier target")
			}
			now := time.Now()
			sub.SubscriptionTier = *sub.SubscriptionPendingTier
			sub.SubscriptionCycleStart = now
			sub.SubscriptionCycleEnd = now.Add(subscriptionService.CycleDurationFromOrderID(orderID))
			sub.SubscriptionCancelAtPeriodEnd = false
			sub.SubscriptionPendingOrderID = nil
			sub.SubscriptionPendingTier = nil
			log.Printf("[SUBSCRIPTION] ✅ institute %s naik ke %s", sub.SubscriptionInstituteID, sub.SubscriptionTier)
		case "expire", "cancel", "deny", "failure":
			sub.SubscriptionPendingOrderID = nil
			sub.SubscriptionPendingTier = nil
			log.Printf("[SUBSCRIPTION] ❌ order %s %s, pending dibersihkan", orderID, transactionStatus)
		default:
			// pending dan status lain: biarkan order tetap pending
			return nil
		}

		if err := tx.Save(&sub).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan subscription")
		}
		return nil
	}); err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.JsonOK(c, "ok", fiber.Map{"order_id": orderID})
}
