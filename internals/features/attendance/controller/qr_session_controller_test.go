package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sekolahku_backend/internals/constants"
	attendanceModel "sekolahku_backend/internals/features/attendance/model"
	classModel "sekolahku_backend/internals/features/classes/model"
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
	if err := db.AutoMigrate(
		&userModel.UserModel{},
		&classModel.ClassModel{},
		&classModel.ClassStudentModel{},
		&attendanceModel.QRSessionModel{},
		&attendanceModel.QRSessionRedemptionModel{},
		&attendanceModel.AttendanceRecordModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		for _, table := range []string{
			"attendance_records", "qr_session_redemptions", "qr_sessions",
			"class_students", "classes", "users",
		} {
			db.Exec("DELETE FROM " + table)
		}
	})
	return db
}

// Auth + tenant locals diisi dari header test, menggantikan middleware asli.
func testAuthStub(instituteID uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", c.Get("X-Test-User"))
		c.Locals("user_role", c.Get("X-Test-Role"))
		c.Locals("token_institute_id", instituteID.String())
		c.Locals("institute_id", instituteID.String())
		return c.Next()
	}
}

func newAttendanceTestApp(db *gorm.DB, instituteID uuid.UUID) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.FromFiberError(c, err)
		},
	})
	app.Use(testAuthStub(instituteID))

	qr := NewQRSessionController(db)
	att := NewAttendanceController(db)
	app.Post("/attendance/sessions", qr.Generate)
	app.Post("/attendance/sessions/regenerate", qr.Regenerate)
	app.Post("/attendance/redeem", qr.Redeem)
	app.Get("/attendance/roster", att.Roster)
	app.Post("/attendance/records", att.BatchSave)
	return app
}

type attendanceFixture struct {
	instituteID uuid.UUID
	teacher     userModel.UserModel
	student     userModel.UserModel
	class       classModel.ClassModel
}

func seedAttendanceFixture(t *testing.T, db *gorm.DB) attendanceFixture {
	t.Helper()
	instituteID := uuid.New()

	teacher := userModel.UserModel{
		UserInstituteID: instituteID,
		UserName:        "Bu Sari",
		UserEmail:       "sari@sekolah.sch.id",
		UserRole:        constants.RoleTeacher,
		UserIsActive:    true,
	}
	student := userModel.UserModel{
		UserInstituteID: instituteID,
		UserName:        "Andi",
		UserEmail:       "andi@sekolah.sch.id",
		UserRole:        constants.RoleStudent,
		UserIsActive:    true,
	}
	for _, u := range []*userModel.UserModel{&teacher, &student} {
		u.UserPassword = "x"
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	class := classModel.ClassModel{
		ClassInstituteID: instituteID,
		ClassTeacherID:   teacher.UserID,
		ClassName:        "7A",
		ClassSubject:     "Matematika",
		ClassCapacity:    30,
	}
	if err := db.Create(&class).Error; err != nil {
		t.Fatalf("seed class: %v", err)
	}
	if err := db.Create(&classModel.ClassStudentModel{
		ClassStudentInstituteID: instituteID,
		ClassStudentClassID:     class.ClassID,
		ClassStudentStudentID:   student.UserID,
	}).Error; err != nil {
		t.Fatalf("seed enrolment: %v", err)
	}

	return attendanceFixture{
		instituteID: instituteID,
		teacher:     teacher,
		student:     student,
		class:       class,
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, userID uuid.UUID, role string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
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

func decodeData(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestGenerateSessionIdempotent(t *testing.T) {
	db := openTestDB(t)
	fx := seedAttendanceFixture(t, db)
	app := newAttendanceTestApp(db, fx.instituteID)

	body := map[string]interface{}{"class_id": fx.class.ClassID, "duration_minutes": 10}

	resp1 := doJSON(t, app, "POST", "/attendance/sessions", body, fx.teacher.UserID, constants.RoleTeacher)
	if resp1.StatusCode != http.StatusCreated {
		t.Fatalf("generate pertama status = %d, want 201", resp1.StatusCode)
	}
	code1, _ := decodeData(t, resp1)["qr_session_code"].(string)
	if len(code1) != 8 {
		t.Fatalf("kode sesi %q, want 8 karakter", code1)
	}

	// Sesi masih aktif → dipakai ulang, bukan bikin baru
	resp2 := doJSON(t, app, "POST", "/attendance/sessions", body, fx.teacher.UserID, constants.RoleTeacher)
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("generate kedua status = %d, want 200", resp2.StatusCode)
	}
	code2, _ := decodeData(t, resp2)["qr_session_code"].(string)
	if code2 != code1 {
		t.Fatalf("generate kedua mengembalikan kode beda: %q vs %q", code2, code1)
	}

	// Regenerate selalu mint baru
	resp3 := doJSON(t, app, "POST", "/attendance/sessions/regenerate", body, fx.teacher.UserID, constants.RoleTeacher)
	if resp3.StatusCode != http.StatusCreated {
		t.Fatalf("regenerate status = %d, want 201", resp3.StatusCode)
	}
	code3, _ := decodeData(t, resp3)["qr_session_code"].(string)
	if code3 == code1 {
		t.Fatal("regenerate harus menghasilkan kode baru")
	}
}

func TestRedeemExactlyOnce(t *testing.T) {
	db := openTestDB(t)
	fx := seedAttendanceFixture(t, db)
	app := newAttendanceTestApp(db, fx.instituteID)

	genResp := doJSON(t, app, "POST", "/attendance/sessions",
		map[string]interface{}{"class_id": fx.class.ClassID, "duration_minutes": 10},
		fx.teacher.UserID, constants.RoleTeacher)
	code, _ := decodeData(t, genResp)["qr_session_code"].(string)

	redeemBody := map[string]interface{}{"session_code": code}

	resp1 := doJSON(t, app, "POST", "/attendance/redeem", redeemBody, fx.student.UserID, constants.RoleStudent)
	if resp1.StatusCode != http.StatusOK {
		t.Fatalf("redeem pertama status = %d, want 200", resp1.StatusCode)
	}
	data := decodeData(t, resp1)
	if data["class_name"] != "7A" || data["status"] != "present" {
		t.Fatalf("payload redeem tidak sesuai: %v", data)
	}

	var before attendanceModel.AttendanceRecordModel
	if err := db.Where("attendance_record_student_id = ?", fx.student.UserID).
		Take(&before).Error; err != nil {
		t.Fatalf("record kehadiran tidak tersimpan: %v", err)
	}

	// Redeem kedua → 409, timestamp record tidak berubah
	resp2 := doJSON(t, app, "POST", "/attendance/redeem", redeemBody, fx.student.UserID, constants.RoleStudent)
	if resp2.StatusCode != http.StatusConflict {
		t.Fatalf("redeem kedua status = %d, want 409", resp2.StatusCode)
	}

	var after attendanceModel.AttendanceRecordModel
	if err := db.Where("attendance_record_student_id = ?", fx.student.UserID).
		Take(&after).Error; err != nil {
		t.Fatalf("record hilang setelah redeem duplikat: %v", err)
	}
	if !after.AttendanceRecordMarkedAt.Equal(before.AttendanceRecordMarkedAt) {
		t.Fatal("marked_at berubah padahal redeem duplikat ditolak")
	}

	var redemptions int64
	db.Model(&attendanceModel.QRSessionRedemptionModel{}).Count(&redemptions)
	if redemptions != 1 {
		t.Fatalf("redemption rows = %d, want 1", redemptions)
	}
}

func TestRedeemErrorCases(t *testing.T) {
	db := openTestDB(t)
	fx := seedAttendanceFixture(t, db)
	app := newAttendanceTestApp(db, fx.instituteID)

	// Kode tidak dikenal
	resp := doJSON(t, app, "POST", "/attendance/redeem",
		map[string]interface{}{"session_code": "ZZZZZZZZ"},
		fx.student.UserID, constants.RoleStudent)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("kode tidak dikenal status = %d, want 404", resp.StatusCode)
	}

	// Sesi kedaluwarsa
	expired := attendanceModel.QRSessionModel{
		QRSessionInstituteID:     fx.instituteID,
		QRSessionClassID:         fx.class.ClassID,
		QRSessionCode:            "EXPIRED9",
		QRSessionDurationMinutes: 10,
		QRSessionExpiresAt:       time.Now().Add(-time.Minute),
		QRSessionCreatedBy:       fx.teacher.UserID,
	}
	if err := db.Create(&expired).Error; err != nil {
		t.Fatalf("seed sesi expired: %v", err)
	}
	resp = doJSON(t, app, "POST", "/attendance/redeem",
		map[string]interface{}{"session_code": "EXPIRED9"},
		fx.student.UserID, constants.RoleStudent)
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("sesi expired status = %d, want 410", resp.StatusCode)
	}

	// Role bukan student
	resp = doJSON(t, app, "POST", "/attendance/redeem",
		map[string]interface{}{"session_code": "EXPIRED9"},
		fx.teacher.UserID, constants.RoleTeacher)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("redeem oleh teacher status = %d, want 403", resp.StatusCode)
	}

	// Student yang tidak terdaftar di kelas
	outsider := userModel.UserModel{
		UserInstituteID: fx.instituteID,
		UserName:        "Budi",
		UserEmail:       "budi@sekolah.sch.id",
		UserPassword:    "x",
		UserRole:        constants.RoleStudent,
		UserIsActive:    true,
	}
	if err := db.Create(&outsider).Error; err != nil {
		t.Fatalf("seed outsider: %v", err)
	}
	genResp := doJSON(t, app, "POST", "/attendance/sessions",
		map[string]interface{}{"class_id": fx.class.ClassID},
		fx.teacher.UserID, constants.RoleTeacher)
	code := fmt.Sprint(decodeData(t, genResp)["qr_session_code"])
	resp = doJSON(t, app, "POST", "/attendance/redeem",
		map[string]interface{}{"session_code": code},
		outsider.UserID, constants.RoleStudent)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("redeem oleh non-peserta status = %d, want 403", resp.StatusCode)
	}
}
