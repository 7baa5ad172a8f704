package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-attendance-api/internal/repository"
	"github.com/noah-isme/lingua-attendance-api/internal/service"
	"github.com/noah-isme/lingua-attendance-api/internal/utils"
)

// StatsHandler exposes the percentage breakdown and monthly trend views.
type StatsHandler struct {
	stats  service.StatsService
	logger zerolog.Logger
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(stats service.StatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger.With().Str("component", "stats_handler").Logger(),
	}
}

// Register attaches statistics endpoints to the router group.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("/breakdown", h.breakdown)
	router.Get("/trend", h.trend)
}

func (h *StatsHandler) breakdown(c *fiber.Ctx) error {
	filter := repository.AttendanceFilter{}

	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.CourseID = courseID

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.StudentID = studentID

	if from, err := parseDateQuery(c, "from"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	} else if !from.IsZero() {
		filter.From = &from
	}
	if to, err := parseDateQuery(c, "to"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	} else if !to.IsZero() {
		filter.To = &to
	}

	breakdown, err := h.stats.Breakdown(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance breakdown computed", breakdown)
}

func (h *StatsHandler) trend(c *fiber.Ctx) error {
	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	anchor, err := parseDateQuery(c, "anchor")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	trend, err := h.stats.Trend(c.Context(), courseID, studentID, anchor)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance trend computed", trend)
}

func (h *StatsHandler) handleError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrRecordFetchFailed) {
		return utils.SendError(c, fiber.StatusBadGateway, "attendance records are currently unavailable")
	}

	h.logger.Error().Err(err).Str("path", c.Path()).Msg("stats request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
