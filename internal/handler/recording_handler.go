package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-attendance-api/internal/dto"
	"github.com/noah-isme/lingua-attendance-api/internal/service"
	"github.com/noah-isme/lingua-attendance-api/internal/utils"
)

// RecordingHandler wires the teacher-facing recording session routes.
type RecordingHandler struct {
	recorder service.RecorderService
	logger   zerolog.Logger
}

// NewRecordingHandler constructs the handler.
func NewRecordingHandler(recorder service.RecorderService, logger zerolog.Logger) *RecordingHandler {
	return &RecordingHandler{
		recorder: recorder,
		logger:   logger.With().Str("component", "recording_handler").Logger(),
	}
}

// Register attaches recording endpoints to the router group.
func (h *RecordingHandler) Register(router fiber.Router) {
	router.Post("", h.open)
	router.Get("/:id", h.get)
	router.Patch("/:id/students/:studentId", h.mark)
	router.Post("/:id/propose", h.propose)
	router.Post("/:id/confirm", h.confirm)
	router.Delete("/:id", h.discard)
}

func (h *RecordingHandler) open(c *fiber.Ctx) error {
	var payload dto.RecordingOpenRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.recorder.Open(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "recording session opened", session)
}

func (h *RecordingHandler) get(c *fiber.Ctx) error {
	session, err := h.recorder.Get(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "recording session retrieved", session)
}

func (h *RecordingHandler) mark(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RecordingMarkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.recorder.Mark(c.Context(), actorFromContext(c), c.Params("id"), studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "entry updated", entry)
}

func (h *RecordingHandler) propose(c *fiber.Ctx) error {
	proposal, err := h.recorder.Propose(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission proposed, confirm to persist", proposal)
}

func (h *RecordingHandler) confirm(c *fiber.Ctx) error {
	var payload dto.RecordingConfirmRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	summary, err := h.recorder.Confirm(c.Context(), actorFromContext(c), c.Params("id"), payload.Token)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance batch saved", summary)
}

func (h *RecordingHandler) discard(c *fiber.Ctx) error {
	if err := h.recorder.Discard(c.Context(), actorFromContext(c), c.Params("id")); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "recording session discarded", nil)
}

func (h *RecordingHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrRecordingNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "recording session not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrStudentNotOnRoster),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrTimesNotAllowed),
		errors.Is(err, service.ErrEmptyMark),
		errors.Is(err, service.ErrNothingMarked):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSubmissionFailed):
		// Captured statuses survive server-side; the client may retry.
		return utils.SendError(c, fiber.StatusBadGateway, "attendance could not be saved, your entries are kept")
	case errors.As(err, &validationErrs):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("recording request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
