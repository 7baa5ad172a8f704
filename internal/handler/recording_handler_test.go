package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-attendance-api/internal/dto"
	"github.com/noah-isme/lingua-attendance-api/internal/handler"
	"github.com/noah-isme/lingua-attendance-api/internal/models"
	"github.com/noah-isme/lingua-attendance-api/internal/repository"
	"github.com/noah-isme/lingua-attendance-api/internal/service"
)

func setupRecordingApp(t *testing.T) (*fiber.App, *gorm.DB, uint) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Course{}, &models.Student{}, &models.Enrollment{}, &models.AttendanceRecord{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM attendance_records")
		db.Exec("DELETE FROM enrollments")
		db.Exec("DELETE FROM students")
		db.Exec("DELETE FROM courses")
	})

	course := models.Course{Name: "English A1", TeacherName: "Ms. Rivera", Location: "Room 3"}
	require.NoError(t, db.Create(&course).Error)
	students := []models.Student{{Name: "Alice", Age: 8}, {Name: "Bob", Age: 9}}
	require.NoError(t, db.Create(&students).Error)
	for _, student := range students {
		require.NoError(t, db.Create(&models.Enrollment{CourseID: course.ID, StudentID: student.ID}).Error)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	attendanceRepo := repository.NewAttendanceRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	rosterService := service.NewRosterService(repository.NewEnrollmentRepository(db), zerolog.Nop())
	recorderService := service.NewRecorderService(attendanceRepo, courseRepo, rosterService, validate, zerolog.Nop())
	recordingHandler := handler.NewRecordingHandler(recorderService, zerolog.Nop())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "teacher")
		return c.Next()
	})
	recordingHandler.Register(app.Group("/api/v1/recordings"))

	return app, db, course.ID
}

func jsonRequest(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestRecordingHandler_FullCaptureFlow(t *testing.T) {
	app, db, courseID := setupRecordingApp(t)

	openResp := jsonRequest(t, app, http.MethodPost, "/api/v1/recordings", map[string]interface{}{
		"course_id": courseID,
		"date":      "2026-08-24",
	})
	require.Equal(t, http.StatusCreated, openResp.StatusCode)

	var openBody struct {
		Data dto.RecordingSessionResponse `json:"data"`
	}
	decodeResponse(t, openResp, &openBody)
	session := openBody.Data
	require.Len(t, session.Entries, 2)
	require.Equal(t, "Alice", session.Entries[0].StudentName)

	aliceID := session.Entries[0].StudentID
	bobID := session.Entries[1].StudentID

	markResp := jsonRequest(t, app, http.MethodPatch,
		fmt.Sprintf("/api/v1/recordings/%s/students/%d", session.ID, aliceID),
		map[string]interface{}{"status": "present", "arrival_time": "09:00", "departure_time": "10:00"})
	require.Equal(t, http.StatusOK, markResp.StatusCode)
	markResp.Body.Close()

	markResp = jsonRequest(t, app, http.MethodPatch,
		fmt.Sprintf("/api/v1/recordings/%s/students/%d", session.ID, bobID),
		map[string]interface{}{"status": "absent"})
	require.Equal(t, http.StatusOK, markResp.StatusCode)
	markResp.Body.Close()

	// Confirming without a token is rejected by the two-phase gate.
	confirmResp := jsonRequest(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/recordings/%s/confirm", session.ID),
		map[string]interface{}{"token": "00000000-0000-4000-8000-000000000000"})
	require.Equal(t, http.StatusConflict, confirmResp.StatusCode)
	confirmResp.Body.Close()

	proposeResp := jsonRequest(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/recordings/%s/propose", session.ID), nil)
	require.Equal(t, http.StatusOK, proposeResp.StatusCode)

	var proposeBody struct {
		Data dto.RecordingProposeResponse `json:"data"`
	}
	decodeResponse(t, proposeResp, &proposeBody)
	require.Equal(t, 2, proposeBody.Data.Marked)

	confirmResp = jsonRequest(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/recordings/%s/confirm", session.ID),
		map[string]interface{}{"token": proposeBody.Data.Token})
	require.Equal(t, http.StatusOK, confirmResp.StatusCode)

	var confirmBody struct {
		Data dto.RecordingSubmissionResponse `json:"data"`
	}
	decodeResponse(t, confirmResp, &confirmBody)
	require.Equal(t, 2, confirmBody.Data.Saved)

	var count int64
	require.NoError(t, db.Model(&models.AttendanceRecord{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestRecordingHandler_MarkValidationErrors(t *testing.T) {
	app, _, courseID := setupRecordingApp(t)

	openResp := jsonRequest(t, app, http.MethodPost, "/api/v1/recordings", map[string]interface{}{
		"course_id": courseID,
		"date":      "2026-08-24",
	})
	require.Equal(t, http.StatusCreated, openResp.StatusCode)

	var openBody struct {
		Data dto.RecordingSessionResponse `json:"data"`
	}
	decodeResponse(t, openResp, &openBody)
	session := openBody.Data
	aliceID := session.Entries[0].StudentID

	resp := jsonRequest(t, app, http.MethodPatch,
		fmt.Sprintf("/api/v1/recordings/%s/students/%d", session.ID, aliceID),
		map[string]interface{}{"status": "sleeping"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = jsonRequest(t, app, http.MethodPatch,
		fmt.Sprintf("/api/v1/recordings/%s/students/%d", session.ID, aliceID),
		map[string]interface{}{"arrival_time": "09:00"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "times need a present or late status first")
	resp.Body.Close()

	resp = jsonRequest(t, app, http.MethodPatch,
		fmt.Sprintf("/api/v1/recordings/%s/students/999", session.ID),
		map[string]interface{}{"status": "present"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestRecordingHandler_UnknownSession(t *testing.T) {
	app, _, _ := setupRecordingApp(t)

	resp := jsonRequest(t, app, http.MethodGet, "/api/v1/recordings/no-such-session", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRecordingHandler_DiscardLeavesStoreUntouched(t *testing.T) {
	app, db, courseID := setupRecordingApp(t)

	openResp := jsonRequest(t, app, http.MethodPost, "/api/v1/recordings", map[string]interface{}{
		"course_id": courseID,
		"date":      "2026-08-24",
	})
	var openBody struct {
		Data dto.RecordingSessionResponse `json:"data"`
	}
	decodeResponse(t, openResp, &openBody)
	session := openBody.Data

	resp := jsonRequest(t, app, http.MethodPatch,
		fmt.Sprintf("/api/v1/recordings/%s/students/%d", session.ID, session.Entries[0].StudentID),
		map[string]interface{}{"status": "present"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = jsonRequest(t, app, http.MethodDelete, "/api/v1/recordings/"+session.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var count int64
	require.NoError(t, db.Model(&models.AttendanceRecord{}).Count(&count).Error)
	require.Zero(t, count)
}
