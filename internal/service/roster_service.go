package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-attendance-api/internal/models"
	"github.com/noah-isme/lingua-attendance-api/internal/repository"
)

// ErrRosterUnavailable indicates the enrollment source could not be reached.
// Callers degrade to an empty roster with a warning rather than failing.
var ErrRosterUnavailable = errors.New("roster source unavailable")

// RosterService resolves the ordered roster of a course.
type RosterService interface {
	Roster(ctx context.Context, courseID uint) ([]models.Student, error)
}

type rosterService struct {
	enrollments repository.EnrollmentRepository
	logger      zerolog.Logger
}

// NewRosterService builds a roster service over the enrollment source.
func NewRosterService(enrollments repository.EnrollmentRepository, logger zerolog.Logger) RosterService {
	return &rosterService{
		enrollments: enrollments,
		logger:      logger.With().Str("component", "roster_service").Logger(),
	}
}

func (s *rosterService) Roster(ctx context.Context, courseID uint) ([]models.Student, error) {
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error().Err(err).Uint("course_id", courseID).Msg("failed to resolve roster")
		return nil, ErrRosterUnavailable
	}

	students := make([]models.Student, 0, len(enrollments))
	for _, enrollment := range enrollments {
		students = append(students, enrollment.Student)
	}

	return students, nil
}
