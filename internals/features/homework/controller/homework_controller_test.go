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
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sekolahku_backend/internals/constants"
	classModel "sekolahku_backend/internals/features/classes/model"
	homeworkModel "sekolahku_backend/internals/features/homework/model"
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
		&homeworkModel.HomeworkModel{},
		&homeworkModel.SubmissionModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		for _, table := range []string{"submissions", "homeworks", "class_students", "classes", "users"} {
			db.Exec("DELETE FROM " + table)
		}
	})
	return db
}

func newHomeworkTestApp(db *gorm.DB, instituteID uuid.UUID) *fiber.App {
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

	ctl := NewHomeworkController(db)
	app.Post("/homeworks", ctl.Create)
	app.Post("/homeworks/:id/publish", ctl.Publish)
	app.Post("/homeworks/:id/close", ctl.Close)
	app.Get("/homeworks", ctl.List)
	app.Post("/homeworks/:id/submit", ctl.Submit)
	app.Patch("/homeworks/:id/submissions/:submission_id/grade", ctl.Grade)
	return app
}

type homeworkFixture struct {
	instituteID uuid.UUID
	teacher     userModel.UserModel
	student     userModel.UserModel
	class       classModel.ClassModel
}

func seedHomeworkFixture(t *testing.T, db *gorm.DB) homeworkFixture {
	t.Helper()
	instituteID := uuid.New()

	teacher := userModel.UserModel{
		UserInstituteID: instituteID,
		UserName:        "Pak Joko",
		UserEmail:       "joko@sekolah.sch.id",
		UserPassword:    "x",
		UserRole:        constants.RoleTeacher,
		UserIsActive:    true,
	}
	student := userModel.UserModel{
		UserInstituteID: instituteID,
		UserName:        "Eka",
		UserEmail:       "eka@sekolah.sch.id",
		UserPassword:    "x",
		UserRole:        constants.RoleStudent,
		UserIsActive:    true,
	}
	for _, u := range []*userModel.UserModel{&teacher, &student} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	class := classModel.ClassModel{
		ClassInstituteID: instituteID,
		ClassTeacherID:   teacher.UserID,
		ClassName:        "8B",
		ClassSubject:     "IPA",
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

	return homeworkFixture{instituteID: instituteID, teacher: teacher, student: student, class: class}
}

func request(t *testing.T, app *fiber.App, method, path string, body interface{}, userID uuid.UUID, role string) *http.Response {
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

func responseData(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return envelope.Data
}

func seedPublishedHomework(t *testing.T, db *gorm.DB, fx homeworkFixture, due time.Time) homeworkModel.HomeworkModel {
	t.Helper()
	hw := homeworkModel.HomeworkModel{
		HomeworkInstituteID: fx.instituteID,
		HomeworkClassID:     fx.class.ClassID,
		HomeworkTitle:       "Bab 3: Fotosintesis",
		HomeworkDueDate:     due,
		HomeworkTotalPoints: 100,
		HomeworkStatus:      homeworkModel.HomeworkPublished,
		HomeworkCreatedBy:   fx.teacher.UserID,
	}
	if err := db.Create(&hw).Error; err != nil {
		t.Fatalf("seed homework: %v", err)
	}
	return hw
}

func TestHomeworkLifecycle(t *testing.T) {
	db := openTestDB(t)
	fx := seedHomeworkFixture(t, db)
	app := newHomeworkTestApp(db, fx.instituteID)

	resp := request(t, app, "POST", "/homeworks", map[string]interface{}{
		"homework_class_id":     fx.class.ClassID,
		"homework_title":        "Latihan aljabar",
		"homework_due_date":     time.Now().Add(48 * time.Hour),
		"homework_total_points": 100,
	}, fx.teacher.UserID, constants.RoleTeacher)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	data := responseData(t, resp)
	if data["homework_status"] != homeworkModel.HomeworkDraft {
		t.Fatalf("homework baru status = %v, want draft", data["homework_status"])
	}
	hwID := data["homework_id"].(string)

	// Draft tidak terlihat student
	resp = request(t, app, "GET", "/homeworks", nil, fx.student.UserID, constants.RoleStudent)
	var listEnvelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listEnvelope); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listEnvelope.Data) != 0 {
		t.Fatalf("student melihat %d homework draft, want 0", len(listEnvelope.Data))
	}

	// Submit ke draft → 404 (tidak terlihat)
	resp = request(t, app, "POST", "/homeworks/"+hwID+"/submit",
		map[string]interface{}{"submission_answer": "x"},
		fx.student.UserID, constants.RoleStudent)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("submit ke draft status = %d, want 404", resp.StatusCode)
	}

	// Publish, lalu close dua kali (kedua → 409)
	resp = request(t, app, "POST", "/homeworks/"+hwID+"/publish", nil, fx.teacher.UserID, constants.RoleTeacher)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("publish status = %d, want 200", resp.StatusCode)
	}
	resp = request(t, app, "POST", "/homeworks/"+hwID+"/close", nil, fx.teacher.UserID, constants.RoleTeacher)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("close status = %d, want 200", resp.StatusCode)
	}
	resp = request(t, app, "POST", "/homeworks/"+hwID+"/close", nil, fx.teacher.UserID, constants.RoleTeacher)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("close kedua status = %d, want 409", resp.StatusCode)
	}
}

func TestSubmitLateFlagAndResubmit(t *testing.T) {
	db := openTestDB(t)
	fx := seedHomeworkFixture(t, db)
	app := newHomeworkTestApp(db, fx.instituteID)

	// Due kemarin: submit tetap diterima, is_late=true
	hw := seedPublishedHomework(t, db, fx, time.Now().Add(-24*time.Hour))

	resp := request(t, app, "POST", "/homeworks/"+hw.HomeworkID.String()+"/submit",
		map[string]interface{}{"submission_answer": "Jawaban pertama"},
		fx.student.UserID, constants.RoleStudent)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit terlambat status = %d, want 200", resp.StatusCode)
	}
	data := responseData(t, resp)
	if data["submission_is_late"] != true {
		t.Fatal("submit setelah due date harus is_late=true")
	}

	// Resubmit sebelum dinilai menimpa jawaban, tetap satu row
	resp = request(t, app, "POST", "/homeworks/"+hw.HomeworkID.String()+"/submit",
		map[string]interface{}{"submission_answer": "Jawaban revisi"},
		fx.student.UserID, constants.RoleStudent)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resubmit status = %d, want 200", resp.StatusCode)
	}
	var count int64
	db.Model(&homeworkModel.SubmissionModel{}).Count(&count)
	if count != 1 {
		t.Fatalf("submission rows = %d, want 1", count)
	}
	var sub homeworkModel.SubmissionModel
	if err := db.Take(&sub).Error; err != nil {
		t.Fatalf("ambil submission: %v", err)
	}
	if sub.SubmissionAnswer != "Jawaban revisi" {
		t.Fatalf("answer = %q, want jawaban revisi", sub.SubmissionAnswer)
	}
}

func TestGradeBoundsAndRegrade(t *testing.T) {
	db := openTestDB(t)
	fx := seedHomeworkFixture(t, db)
	app := newHomeworkTestApp(db, fx.instituteID)

	hw := seedPublishedHomework(t, db, fx, time.Now().Add(24*time.Hour))
	request(t, app, "POST", "/homeworks/"+hw.HomeworkID.String()+"/submit",
		map[string]interface{}{"submission_answer": "Jawaban tepat waktu"},
		fx.student.UserID, constants.RoleStudent)

	var sub homeworkModel.SubmissionModel
	if err := db.Take(&sub).Error; err != nil {
		t.Fatalf("ambil submission: %v", err)
	}
	if sub.SubmissionIsLate {
		t.Fatal("submit sebelum due harus is_late=false")
	}
	gradePath := "/homeworks/" + hw.HomeworkID.String() + "/submissions/" + sub.SubmissionID.String() + "/grade"

	// 105 > total_points 100 → 400
	resp := request(t, app, "PATCH", gradePath,
		map[string]interface{}{"submission_grade": 105},
		fx.teacher.UserID, constants.RoleTeacher)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("nilai 105 status = %d, want 400", resp.StatusCode)
	}

	// 85 → GRADED + graded_at terisi
	resp = request(t, app, "PATCH", gradePath,
		map[string]interface{}{"submission_grade": 85, "submission_feedback": "Bagus"},
		fx.teacher.UserID, constants.RoleTeacher)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("nilai 85 status = %d, want 200", resp.StatusCode)
	}
	if err := db.Take(&sub).Error; err != nil {
		t.Fatalf("reload submission: %v", err)
	}
	if sub.SubmissionStatus != homeworkModel.SubmissionGraded || sub.SubmissionGradedAt == nil {
		t.Fatalf("submission belum graded: status=%s graded_at=%v", sub.SubmissionStatus, sub.SubmissionGradedAt)
	}
	if sub.SubmissionGrade == nil || *sub.SubmissionGrade != 85 {
		t.Fatalf("grade = %v, want 85", sub.SubmissionGrade)
	}

	// Resubmit setelah dinilai → 409
	resp = request(t, app, "POST", "/homeworks/"+hw.HomeworkID.String()+"/submit",
		map[string]interface{}{"submission_answer": "Coba lagi"},
		fx.student.UserID, constants.RoleStudent)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("resubmit setelah graded status = %d, want 409", resp.StatusCode)
	}

	// Re-grade diperbolehkan, tetap GRADED
	resp = request(t, app, "PATCH", gradePath,
		map[string]interface{}{"submission_grade": 90},
		fx.teacher.UserID, constants.RoleTeacher)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("re-grade status = %d, want 200", resp.StatusCode)
	}
	if err := db.Take(&sub).Error; err != nil {
		t.Fatalf("reload submission: %v", err)
	}
	if sub.SubmissionGrade == nil || *sub.SubmissionGrade != 90 {
		t.Fatalf("grade setelah re-grade = %v, want 90", sub.SubmissionGrade)
	}
	if sub.SubmissionStatus != homeworkModel.SubmissionGraded {
		t.Fatalf("status setelah re-grade = %s, want graded", sub.SubmissionStatus)
	}
}
