package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-attendance-api/internal/dto"
	"github.com/noah-isme/lingua-attendance-api/internal/service"
	"github.com/noah-isme/lingua-attendance-api/internal/utils"
)

// CourseHandler exposes the course catalog and roster reads.
type CourseHandler struct {
	catalog service.CatalogService
	roster  service.RosterService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(catalog service.CatalogService, roster service.RosterService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		catalog: catalog,
		roster:  roster,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/roster", h.rosterList)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.catalog.ListCourses(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.catalog.GetCourse(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) rosterList(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	students, err := h.roster.Roster(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRosterUnavailable) {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "enrollment source unavailable")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "roster retrieved", dto.NewRosterStudentResponseSlice(students))
}

func (h *CourseHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Str("path", c.Path()).Msg("course request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
