package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-attendance-api/internal/dto"
	"github.com/noah-isme/lingua-attendance-api/internal/models"
	"github.com/noah-isme/lingua-attendance-api/internal/observability"
	"github.com/noah-isme/lingua-attendance-api/internal/repository"
)

// Recorder error taxonomy. Handlers map these onto HTTP statuses; none of
// them discards captured in-session state.
var (
	ErrRecordingNotFound  = errors.New("recording session not found")
	ErrStudentNotOnRoster = errors.New("student is not on the session roster")
	ErrInvalidStatus      = errors.New("invalid attendance status")
	ErrTimesNotAllowed    = errors.New("arrival and departure times only apply to present or late students")
	ErrEmptyMark          = errors.New("mark request carries no changes")
	ErrNothingMarked      = errors.New("no students have been marked yet")
	ErrInvalidToken       = errors.New("confirmation token invalid or expired")
	ErrSubmissionFailed   = errors.New("attendance submission failed")
)

const (
	proposalTTL = 2 * time.Minute
	sessionTTL  = 12 * time.Hour
)

// RecorderService drives per-session attendance capture: one roster, one
// course, one date. Submission is a two-phase gate: Propose issues a token,
// Confirm spends it.
type RecorderService interface {
	Open(ctx context.Context, actor Actor, payload dto.RecordingOpenRequest) (dto.RecordingSessionResponse, error)
	Get(ctx context.Context, actor Actor, sessionID string) (dto.RecordingSessionResponse, error)
	Mark(ctx context.Context, actor Actor, sessionID string, studentID uint, payload dto.RecordingMarkRequest) (dto.RecordingEntryResponse, error)
	Propose(ctx context.Context, actor Actor, sessionID string) (dto.RecordingProposeResponse, error)
	Confirm(ctx context.Context, actor Actor, sessionID string, token string) (dto.RecordingSubmissionResponse, error)
	Discard(ctx context.Context, actor Actor, sessionID string) error
}

// entryState is the per-student capture state: either unmarked, or marked
// with a status and optional times. Notes live outside the union because
// they are editable in any state.
type entryState struct {
	marked        bool
	status        models.AttendanceStatus
	arrivalTime   *string
	departureTime *string
}

type rosterEntry struct {
	studentID   uint
	studentName string
	state       entryState
	notes       string
}

type recordingSession struct {
	id         string
	actorID    uint
	courseID   uint
	courseName string
	date       time.Time
	warning    string
	openedAt   time.Time

	order   []uint
	entries map[uint]*rosterEntry

	token       string
	tokenExpiry time.Time
}

type recorderService struct {
	store     repository.AttendanceRepository
	courses   repository.CourseRepository
	roster    RosterService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*recordingSession
}

// NewRecorderService builds the recorder over the attendance store and
// roster source.
func NewRecorderService(store repository.AttendanceRepository, courses repository.CourseRepository, roster RosterService, validate *validator.Validate, logger zerolog.Logger) RecorderService {
	return &recorderService{
		store:     store,
		courses:   courses,
		roster:    roster,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "recorder_service").Logger(),
		now:       time.Now,
		sessions:  make(map[string]*recordingSession),
	}
}

func (s *recorderService) Open(ctx context.Context, actor Actor, payload dto.RecordingOpenRequest) (dto.RecordingSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RecordingSessionResponse{}, err
	}

	date, err := time.ParseInLocation("2006-01-02", payload.Date, time.UTC)
	if err != nil {
		return dto.RecordingSessionResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, payload.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordingSessionResponse{}, ErrCourseNotFound
		}
		return dto.RecordingSessionResponse{}, err
	}

	warning := ""
	students, err := s.roster.Roster(ctx, payload.CourseID)
	if err != nil {
		if !errors.Is(err, ErrRosterUnavailable) {
			return dto.RecordingSessionResponse{}, err
		}
		// Degrade to an empty roster so the teacher still gets a session.
		students = nil
		warning = "enrollment source unavailable; session opened with an empty roster"
		s.logger.Warn().Uint("course_id", payload.CourseID).Msg("opening recording session without roster")
	}

	session := &recordingSession{
		id:         uuid.NewString(),
		actorID:    actor.ID,
		courseID:   course.ID,
		courseName: course.Name,
		date:       date,
		warning:    warning,
		openedAt:   s.now(),
		entries:    make(map[uint]*rosterEntry, len(students)),
	}
	for _, student := range students {
		session.order = append(session.order, student.ID)
		session.entries[student.ID] = &rosterEntry{
			studentID:   student.ID,
			studentName: student.Name,
		}
	}

	s.mu.Lock()
	s.sweepLocked()
	s.sessions[session.id] = session
	s.mu.Unlock()

	s.logger.Info().
		Str("session_id", session.id).
		Uint("course_id", course.ID).
		Str("date", payload.Date).
		Int("roster_size", len(students)).
		Msg("recording session opened")

	return snapshot(session), nil
}

func (s *recorderService) Get(ctx context.Context, actor Actor, sessionID string) (dto.RecordingSessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessionLocked(actor, sessionID)
	if err != nil {
		return dto.RecordingSessionResponse{}, err
	}

	return snapshot(session), nil
}

// Mark applies a state transition to one student's entry. Re-selecting the
// same status is idempotent; switching to absent clears any captured times.
// Any edit invalidates a pending confirmation token.
func (s *recorderService) Mark(ctx context.Context, actor Actor, sessionID string, studentID uint, payload dto.RecordingMarkRequest) (dto.RecordingEntryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RecordingEntryResponse{}, err
	}
	if payload.Empty() {
		return dto.RecordingEntryResponse{}, ErrEmptyMark
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessionLocked(actor, sessionID)
	if err != nil {
		return dto.RecordingEntryResponse{}, err
	}

	entry, ok := session.entries[studentID]
	if !ok {
		return dto.RecordingEntryResponse{}, ErrStudentNotOnRoster
	}

	// Validate the whole payload against the resulting entry state before
	// touching anything: a rejected request leaves the entry as it was.
	marked := entry.state.marked
	status := entry.state.status
	if payload.Status != nil {
		status = models.AttendanceStatus(*payload.Status)
		if !status.Valid() {
			return dto.RecordingEntryResponse{}, ErrInvalidStatus
		}
		marked = true
	}
	if payload.ArrivalTime != nil || payload.DepartureTime != nil {
		if !marked || status == models.AttendanceStatusAbsent {
			return dto.RecordingEntryResponse{}, ErrTimesNotAllowed
		}
	}

	if payload.Status != nil {
		entry.state.marked = true
		entry.state.status = status
		if status == models.AttendanceStatusAbsent {
			entry.state.arrivalTime = nil
			entry.state.departureTime = nil
		}
	}
	if payload.ArrivalTime != nil {
		entry.state.arrivalTime = payload.ArrivalTime
	}
	if payload.DepartureTime != nil {
		entry.state.departureTime = payload.DepartureTime
	}
	if payload.Notes != nil {
		entry.notes = s.sanitizer.Sanitize(*payload.Notes)
	}

	session.token = ""

	return entrySnapshot(entry), nil
}

// Propose is the first of the two required confirmations. The issued token
// is single-use, expires, and is invalidated by any further edit.
func (s *recorderService) Propose(ctx context.Context, actor Actor, sessionID string) (dto.RecordingProposeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessionLocked(actor, sessionID)
	if err != nil {
		return dto.RecordingProposeResponse{}, err
	}

	marked := 0
	for _, entry := range session.entries {
		if entry.state.marked {
			marked++
		}
	}
	if marked == 0 {
		return dto.RecordingProposeResponse{}, ErrNothingMarked
	}

	session.token = uuid.NewString()
	session.tokenExpiry = s.now().Add(proposalTTL)

	return dto.RecordingProposeResponse{
		Token:     session.token,
		ExpiresAt: session.tokenExpiry,
		Marked:    marked,
		Unmarked:  len(session.order) - marked,
	}, nil
}

// Confirm spends the proposal token and writes the batch. Unmarked students
// are skipped rather than submitted as implicit absences. A failed write
// leaves the session fully editable and the token valid for a retry.
func (s *recorderService) Confirm(ctx context.Context, actor Actor, sessionID string, token string) (dto.RecordingSubmissionResponse, error) {
	// Snapshot the batch under the lock, then release it for the store
	// write so a slow save does not stall unrelated sessions.
	s.mu.Lock()
	session, err := s.sessionLocked(actor, sessionID)
	if err != nil {
		s.mu.Unlock()
		return dto.RecordingSubmissionResponse{}, err
	}

	if session.token == "" || token != session.token || s.now().After(session.tokenExpiry) {
		s.mu.Unlock()
		return dto.RecordingSubmissionResponse{}, ErrInvalidToken
	}

	records := make([]models.AttendanceRecord, 0, len(session.order))
	var skipped []uint
	for _, studentID := range session.order {
		entry := session.entries[studentID]
		if !entry.state.marked {
			skipped = append(skipped, studentID)
			continue
		}
		records = append(records, buildRecord(session, entry))
	}
	sessionKey := session.id
	courseID := session.courseID
	s.mu.Unlock()

	tracer := otel.Tracer("github.com/noah-isme/lingua-attendance-api/internal/service/recorder")
	ctx, span := tracer.Start(ctx, "attendance.submit_batch")
	span.SetAttributes(
		attribute.Int("attendance.batch_size", len(records)),
		attribute.Int64("attendance.course_id", int64(courseID)),
	)
	defer span.End()

	if err := s.store.SaveBatch(ctx, records); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch_write_failed")
		s.logger.Error().Err(err).
			Str("session_id", sessionKey).
			Int("batch_size", len(records)).
			Msg("batch write failed; session kept for retry")
		observability.Submissions().WithLabelValues("failed").Inc()
		return dto.RecordingSubmissionResponse{}, ErrSubmissionFailed
	}

	observability.Submissions().WithLabelValues("saved").Inc()

	s.mu.Lock()
	delete(s.sessions, sessionKey)
	s.mu.Unlock()

	s.logger.Info().
		Str("session_id", sessionKey).
		Int("saved", len(records)).
		Int("skipped", len(skipped)).
		Msg("recording session submitted")

	return dto.RecordingSubmissionResponse{
		Saved:             len(records),
		Skipped:           len(skipped),
		SkippedStudentIDs: skipped,
	}, nil
}

// Discard drops the session without any persisted side effect.
func (s *recorderService) Discard(ctx context.Context, actor Actor, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessionLocked(actor, sessionID); err != nil {
		return err
	}

	delete(s.sessions, sessionID)
	return nil
}

func (s *recorderService) sessionLocked(actor Actor, sessionID string) (*recordingSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok || session.actorID != actor.ID {
		return nil, ErrRecordingNotFound
	}
	return session, nil
}

// sweepLocked drops abandoned sessions so the registry cannot grow without
// bound. Caller holds s.mu.
func (s *recorderService) sweepLocked() {
	cutoff := s.now().Add(-sessionTTL)
	for id, session := range s.sessions {
		if session.openedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

func buildRecord(session *recordingSession, entry *rosterEntry) models.AttendanceRecord {
	record := models.AttendanceRecord{
		Date:        datatypes.Date(session.date),
		CourseID:    session.courseID,
		CourseName:  session.courseName,
		StudentID:   entry.studentID,
		StudentName: entry.studentName,
		Status:      entry.state.status,
		Notes:       entry.notes,
	}
	if entry.state.status != models.AttendanceStatusAbsent {
		record.ArrivalTime = entry.state.arrivalTime
		record.DepartureTime = entry.state.departureTime
	}
	return record
}

func snapshot(session *recordingSession) dto.RecordingSessionResponse {
	entries := make([]dto.RecordingEntryResponse, 0, len(session.order))
	for _, studentID := range session.order {
		entries = append(entries, entrySnapshot(session.entries[studentID]))
	}

	return dto.RecordingSessionResponse{
		ID:         session.id,
		CourseID:   session.courseID,
		CourseName: session.courseName,
		Date:       session.date.Format("2006-01-02"),
		Warning:    session.warning,
		Entries:    entries,
	}
}

func entrySnapshot(entry *rosterEntry) dto.RecordingEntryResponse {
	response := dto.RecordingEntryResponse{
		StudentID:   entry.studentID,
		StudentName: entry.studentName,
		Marked:      entry.state.marked,
		Notes:       entry.notes,
	}
	if entry.state.marked {
		response.Status = string(entry.state.status)
		response.ArrivalTime = entry.state.arrivalTime
		response.DepartureTime = entry.state.departureTime
	}
	return response
}
