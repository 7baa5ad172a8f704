package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-attendance-api/internal/repository"
	"github.com/noah-isme/lingua-attendance-api/internal/service"
	"github.com/noah-isme/lingua-attendance-api/internal/utils"
)

// AttendanceHandler exposes the read-only record views and the CSV export.
type AttendanceHandler struct {
	attendance service.AttendanceService
	logger     zerolog.Logger
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(attendance service.AttendanceService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		logger:     logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register attaches attendance view endpoints to the router group. The
// export route takes its own middleware chain (rate limiting).
func (h *AttendanceHandler) Register(router fiber.Router, exportMiddleware ...fiber.Handler) {
	router.Get("", h.list)
	router.Get("/week", h.week)

	handlers := append(exportMiddleware, h.export)
	router.Get("/export", handlers...)
}

func (h *AttendanceHandler) list(c *fiber.Ctx) error {
	filter, err := h.filterFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	records, err := h.attendance.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance records retrieved", records)
}

func (h *AttendanceHandler) week(c *fiber.Ctx) error {
	courseID, studentID, ref, offset, err := h.weekParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	week, err := h.attendance.Week(c.Context(), courseID, studentID, ref, offset)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "week attendance retrieved", week)
}

func (h *AttendanceHandler) export(c *fiber.Ctx) error {
	courseID, studentID, ref, offset, err := h.weekParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.attendance.ExportWeek(c.Context(), courseID, studentID, ref, offset)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", result.Filename))
	return c.Send(result.Content)
}

func (h *AttendanceHandler) filterFromQuery(c *fiber.Ctx) (repository.AttendanceFilter, error) {
	filter := repository.AttendanceFilter{}

	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return filter, err
	}
	filter.CourseID = courseID

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return filter, err
	}
	filter.StudentID = studentID

	if from, err := parseDateQuery(c, "from"); err != nil {
		return filter, err
	} else if !from.IsZero() {
		filter.From = &from
	}
	if to, err := parseDateQuery(c, "to"); err != nil {
		return filter, err
	} else if !to.IsZero() {
		filter.To = &to
	}

	return filter, nil
}

func (h *AttendanceHandler) weekParams(c *fiber.Ctx) (courseID uint, studentID uint, ref time.Time, offset int, err error) {
	courseID, err = parseQueryUint(c, "course_id")
	if err != nil {
		return
	}
	studentID, err = parseQueryUint(c, "student_id")
	if err != nil {
		return
	}
	ref, err = parseDateQuery(c, "ref")
	if err != nil {
		return
	}
	offset, err = parseQueryInt(c, "offset")
	return
}

func (h *AttendanceHandler) handleError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrRecordFetchFailed) {
		return utils.SendError(c, fiber.StatusBadGateway, "attendance records are currently unavailable")
	}

	h.logger.Error().Err(err).Str("path", c.Path()).Msg("attendance request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
