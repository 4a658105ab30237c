package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sekolahku_backend/internals/constants"
	messageModel "sekolahku_backend/internals/features/messages/model"
	userModel "sekolahku_backend/internals/features/users/model"
	helper "sekolahku_backend/internals/helpers"
)

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
	if err := db.AutoMigrate(&userModel.UserModel{}, &messageModel.MessageModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM messages")
		db.Exec("DELETE FROM users")
	})
	return db
}

func newMessageTestApp(db *gorm.DB, instituteID uuid.UUID) *fiber.App {
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

	ctl := NewMessageController(db)
	app.Post("/messages", ctl.Send)
	app.Get("/messages/conversations", ctl.ListConversations)
	app.Get("/messages/conversations/:id", ctl.GetConversation)
	app.Post("/messages/conversations/:id/read", ctl.MarkConversationRead)
	app.Get("/messages/unread-count", ctl.UnreadCount)
	return app
}

func send(t *testing.T, app *fiber.App, body interface{}, userID uuid.UUID) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest("POST", "/messages", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", userID.String())
	req.Header.Set("X-Test-Role", constants.RoleTeacher)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func get(t *testing.T, app *fiber.App, method, path string, userID uuid.UUID) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Test-User", userID.String())
	req.Header.Set("X-Test-Role", constants.RoleTeacher)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func seedTwoUsers(t *testing.T, db *gorm.DB, instituteID uuid.UUID) (a, b userModel.UserModel) {
	t.Helper()
	a = userModel.UserModel{
		UserInstituteID: instituteID, UserName: "Guru A",
		UserEmail: "a@sekolah.sch.id", UserPassword: "x",
		UserRole: constants.RoleTeacher, UserIsActive: true,
	}
	b = userModel.UserModel{
		UserInstituteID: instituteID, UserName: "Guru B",
		UserEmail: "b@sekolah.sch.id", UserPassword: "x",
		UserRole: constants.RoleTeacher, UserIsActive: true,
	}
	for _, u := range []*userModel.UserModel{&a, &b} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return a, b
}

func TestReplyInheritsConversation(t *testing.T) {
	db := openTestDB(t)
	instituteID := uuid.New()
	a, b := seedTwoUsers(t, db, instituteID)
	app := newMessageTestApp(db, instituteID)

	resp := send(t, app, map[string]interface{}{
		"recipient_id": b.UserID,
		"body":         "Halo, jadwal piket minggu ini gimana?",
	}, a.UserID)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send status = %d, want 201", resp.StatusCode)
	}
	var envelope struct {
		Data struct {
			MessageID      uuid.UUID `json:"message_id"`
			ConversationID uuid.UUID `json:"conversation_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	first := envelope.Data

	// Pesan tanpa thread: conversation key = id dirinya
	if first.ConversationID != first.MessageID {
		t.Fatalf("conversation awal = %s, want message id %s", first.ConversationID, first.MessageID)
	}

	// Reply mewarisi conversation id
	resp = send(t, app, map[string]interface{}{
		"recipient_id": a.UserID,
		"reply_to_id":  first.MessageID,
		"body":         "Kamu Rabu, aku Kamis.",
	}, b.UserID)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reply status = %d, want 201", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if envelope.Data.ConversationID != first.MessageID {
		t.Fatalf("reply conversation = %s, want %s", envelope.Data.ConversationID, first.MessageID)
	}

	// Isi percakapan = 2 pesan kronologis
	resp = get(t, app, "GET", "/messages/conversations/"+first.MessageID.String(), a.UserID)
	var convEnvelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&convEnvelope); err != nil {
		t.Fatalf("decode conversation: %v", err)
	}
	if len(convEnvelope.Data) != 2 {
		t.Fatalf("isi percakapan = %d pesan, want 2", len(convEnvelope.Data))
	}
}

func TestConversationGroupingAndUnread(t *testing.T) {
	db := openTestDB(t)
	instituteID := uuid.New()
	a, b := seedTwoUsers(t, db, instituteID)
	app := newMessageTestApp(db, instituteID)

	// Thread 1: a→b lalu reply b→a
	resp := send(t, app, map[string]interface{}{
		"recipient_id": b.UserID, "body": "Thread satu",
	}, a.UserID)
	var envelope struct {
		Data struct {
			MessageID uuid.UUID `json:"message_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	thread1 := envelope.Data.MessageID
	send(t, app, map[string]interface{}{
		"recipient_id": a.UserID, "reply_to_id": thread1, "body": "Balasan thread satu",
	}, b.UserID)

	// Thread 2: pesan lepas b→a
	send(t, app, map[string]interface{}{
		"recipient_id": a.UserID, "body": "Thread dua",
	}, b.UserID)

	// a punya dua percakapan; unread a = 2 (satu reply + satu pesan lepas)
	resp = get(t, app, "GET", "/messages/conversations", a.UserID)
	var convList struct {
		Data []struct {
			ConversationID uuid.UUID `json:"conversation_id"`
			UnreadCount    int64     `json:"unread_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&convList); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(convList.Data) != 2 {
		t.Fatalf("jumlah percakapan = %d, want 2", len(convList.Data))
	}

	resp = get(t, app, "GET", "/messages/unread-count", a.UserID)
	var countEnvelope struct {
		Data struct {
			UnreadCount int64 `json:"unread_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&countEnvelope); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if countEnvelope.Data.UnreadCount != 2 {
		t.Fatalf("unread = %d, want 2", countEnvelope.Data.UnreadCount)
	}

	// Tandai thread 1 dibaca → unread sisa 1; idempoten saat diulang
	for i := 0; i < 2; i++ {
		resp = get(t, app, "POST", "/messages/conversations/"+thread1.String()+"/read", a.UserID)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("mark read status = %d, want 200", resp.StatusCode)
		}
	}
	resp = get(t, app, "GET", "/messages/unread-count", a.UserID)
	if err := json.NewDecoder(resp.Body).Decode(&countEnvelope); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if countEnvelope.Data.UnreadCount != 1 {
		t.Fatalf("unread setelah mark read = %d, want 1", countEnvelope.Data.UnreadCount)
	}
}

func TestSendValidation(t *testing.T) {
	db := openTestDB(t)
	instituteID := uuid.New()
	a, _ := seedTwoUsers(t, db, instituteID)
	app := newMessageTestApp(db, instituteID)

	// Ke diri sendiri → 400
	resp := send(t, app, map[string]interface{}{
		"recipient_id": a.UserID, "body": "halo saya",
	}, a.UserID)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("kirim ke diri sendiri status = %d, want 400", resp.StatusCode)
	}

	// Penerima tidak ada → 404
	resp = send(t, app, map[string]interface{}{
		"recipient_id": uuid.New(), "body": "halo hantu",
	}, a.UserID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("penerima tidak ada status = %d, want 404", resp.StatusCode)
	}
}
