package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sekolahku_backend/internals/constants"
	subscriptionModel "sekolahku_backend/internals/features/subscription/model"
	subscriptionService "sekolahku_backend/internals/features/subscription/service"
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
)

// fakeSnap merekam request dan mengembalikan token statis.
type fakeSnap struct {
	lastOrderID string
	lastAmount  int64
}

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	f.lastOrderID = req.TransactionDetails.OrderID
	f.lastAmount = req.TransactionDetails.GrossAmt
	return &snap.Response{Token: "fake-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/fake"}, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&userModel.UserModel{}, &subscriptionModel.SubscriptionModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM subscriptions")
		db.Exec("DELETE FROM users")
	})
	return db
}

func newSubscriptionTestApp(db *gorm.DB, instituteID uuid.UUID, fake *fakeSnap) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.FromFiberError(c, err)
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", c.Get("X-Test-User"))
		c.Locals("user_role", c.Get("X-Test-Role"))
		c.Locals("token_institute_id", instituteID.String())
		c.Locals("institute_id", instituteID.String())
		return c.Next()
	})

	ctl := NewSubscriptionController(db, subscriptionService.NewPaymentServiceWithClient(fake))
	app.Get("/subscriptions", ctl.GetCurrent)
	app.Post("/subscriptions/upgrade", ctl.Upgrade)
	app.Delete("/subscriptions", ctl.Cancel)
	app.Post("/notification", ctl.HandleNotification)
	return app
}

func seedSubscription(t *testing.T, db *gorm.DB, instituteID uuid.UUID, tier string) (userModel.UserModel, subscriptionModel.SubscriptionModel) {
	t.Helper()
	owner := userModel.UserModel{
		UserInstituteID: instituteID, UserName: "Kepala Sekolah",
		UserEmail: "kepsek@sekolah.sch.id", UserPassword: "x",
		UserRole: constants.RoleOwner, UserIsActive: true,
	}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	now := time.Now()
	sub := subscriptionModel.SubscriptionModel{
		SubscriptionInstituteID: instituteID,
		SubscriptionTier:        tier,
		SubscriptionCycleStart:  now,
		SubscriptionCycleEnd:    now.AddDate(0, 1, 0),
	}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
	return owner, sub
}

func subRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, userID uuid.UUID, role string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", userID.String())
	req.Header.Set("X-Test-Role", role)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestUpgradeFlowWithWebhook(t *testing.T) {
	db := openTestDB(t)
	instituteID := uuid.New()
	owner, _ := seedSubscription(t, db, instituteID, subscriptionModel.TierBasic)
	fake := &fakeSnap{}
	app := newSubscriptionTestApp(db, instituteID, fake)

	// Upgrade basic → standard (bulanan)
	resp := subRequest(t, app, "POST", "/subscriptions/upgrade",
		map[string]interface{}{"target_tier": "standard"},
		owner.UserID, constants.RoleOwner)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upgrade status = %d, want 201", resp.StatusCode)
	}
	if fake.lastAmount != 299_000 {
		t.Fatalf("gross amount = %d, want 299000", fake.lastAmount)
	}

	// Tier belum berubah sebelum settlement
	var sub subscriptionModel.SubscriptionModel
	if err := db.Take(&sub).Error; err != nil {
		t.Fatalf("reload subscription: %v", err)
	}
	if sub.SubscriptionTier != subscriptionModel.TierBasic {
		t.Fatalf("tier = %s sebelum settlement, want basic", sub.SubscriptionTier)
	}
	if sub.SubscriptionPendingOrderID == nil || *sub.SubscriptionPendingOrderID != fake.lastOrderID {
		t.Fatalf("pending order tidak tersimpan: %v", sub.SubscriptionPendingOrderID)
	}

	// Upgrade kedua selama masih pending → 409
	resp = subRequest(t, app, "POST", "/subscriptions/upgrade",
		map[string]interface{}{"target_tier": "premium"},
		owner.UserID, constants.RoleOwner)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("upgrade saat pending status = %d, want 409", resp.StatusCode)
	}

	// Webhook settlement menerapkan tier
	resp = subRequest(t, app, "POST", "/notification", map[string]interface{}{
		"order_id":           fake.lastOrderID,
		"transaction_status": "settlement",
	}, owner.UserID, constants.RoleOwner)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook status = %d, want 200", resp.StatusCode)
	}
	if err := db.Take(&sub).Error; err != nil {
		t.Fatalf("reload subscription: %v", err)
	}
	if sub.SubscriptionTier != subscriptionModel.TierStandard {
		t.Fatalf("tier setelah settlement = %s, want standard", sub.SubscriptionTier)
	}
	if sub.SubscriptionPendingOrderID != nil {
		t.Fatal("pending order harus dibersihkan setelah settlement")
	}

	// Webhook order tidak dikenal tetap 200 (stop retry Midtrans)
	resp = subRequest(t, app, "POST", "/notification", map[string]interface{}{
		"order_id":           "SUB-M-xxxxxxxx-0",
		"transaction_status": "settlement",
	}, owner.UserID, constants.RoleOwner)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook order asing status = %d, want 200", resp.StatusCode)
	}
}

func TestWebhookExpireClearsPending(t *testing.T) {
	db := openTestDB(t)
	instituteID := uuid.New()
	owner, _ := seedSubscription(t, db, instituteID, subscriptionModel.TierBasic)
	fake := &fakeSnap{}
	app := newSubscriptionTestApp(db, instituteID, fake)

	subRequest(t, app, "POST", "/subscriptions/upgrade",
		map[string]interface{}{"target_tier": "premium", "billing_period": "yearly"},
		owner.UserID, constants.RoleOwner)
	if fake.lastAmount != 7_990_000 {
		t.Fatalf("gross amount yearly = %d, want 7990000", fake.lastAmount)
	}

	resp := subRequest(t, app, "POST", "/notification", map[string]interface{}{
		"order_id":           fake.lastOrderID,
		"transaction_status": "expire",
	}, owner.UserID, constants.RoleOwner)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook expire status = %d, want 200", resp.StatusCode)
	}

	var sub subscriptionModel.SubscriptionModel
	if err := db.Take(&sub).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if sub.SubscriptionTier != subscriptionModel.TierBasic || sub.SubscriptionPendingOrderID != nil {
		t.Fatalf("expire harus bersihkan pending tanpa ganti tier: %+v", sub)
	}
}

func TestCancelAndLazyRevert(t *testing.T) {
	db := openTestDB(t)
	instituteID := uuid.New()
	owner, sub := seedSubscription(t, db, instituteID, subscriptionModel.TierStandard)
	fake := &fakeSnap{}
	app := newSubscriptionTestApp(db, instituteID, fake)

	// Cancel → flag cancel_at_period_end
	resp := subRequest(t, app, "DELETE", "/subscriptions", nil, owner.UserID, constants.RoleOwner)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d, want 200", resp.StatusCode)
	}
	if err := db.Take(&sub).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !sub.SubscriptionCancelAtPeriodEnd || sub.SubscriptionTier != subscriptionModel.TierStandard {
		t.Fatalf("cancel tidak boleh langsung menurunkan tier: %+v", sub)
	}

	// Mundurkan cycle_end ke masa lalu → read berikutnya revert ke basic
	db.Model(&subscriptionModel.SubscriptionModel{}).
		Where("subscription_id = ?", sub.SubscriptionID).
		UpdateColumn("subscription_cycle_end", time.Now().Add(-time.Hour))

	resp = subRequest(t, app, "GET", "/subscriptions", nil, owner.UserID, constants.RoleOwner)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get current status = %d, want 200", resp.StatusCode)
	}
	var envelope struct {
		Data struct {
			Tier struct {
				Code string `json:"code"`
			} `json:"tier"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Tier.Code != subscriptionModel.TierBasic {
		t.Fatalf("tier setelah cycle lewat = %s, want basic", envelope.Data.Tier.Code)
	}

	// Basic tidak bisa di-cancel lagi
	resp = subRequest(t, app, "DELETE", "/subscriptions", nil, owner.UserID, constants.RoleOwner)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("cancel tier basic status = %d, want 409", resp.StatusCode)
	}
}

func TestUpgradeGuards(t *testing.T) {
	db := openTestDB(t)
	instituteID := uuid.New()
	owner, _ := seedSubscription(t, db, instituteID, subscriptionModel.TierPremium)
	fake := &fakeSnap{}
	app := newSubscriptionTestApp(db, instituteID, fake)

	// Downgrade via upgrade endpoint ditolak
	resp := subRequest(t, app, "POST", "/subscriptions/upgrade",
		map[string]interface{}{"target_tier": "standard"},
		owner.UserID, constants.RoleOwner)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("downgrade status = %d, want 400", resp.StatusCode)
	}

	// Admin tidak boleh upgrade (owner only)
	admin := userModel.UserModel{
		UserInstituteID: instituteID, UserName: "Admin",
		UserEmail: "admin@sekolah.sch.id", UserPassword: "x",
		UserRole: constants.RoleAdmin, UserIsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	resp = subRequest(t, app, "POST", "/subscriptions/upgrade",
		map[string]interface{}{"target_tier": "premium"},
		admin.UserID, constants.RoleAdmin)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("upgrade oleh admin status = %d, want 403", resp.StatusCode)
	}
}
