package service

import (
	"bytes"
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-attendance-api/internal/calendar"
	"github.com/noah-isme/lingua-attendance-api/internal/dto"
	"github.com/noah-isme/lingua-attendance-api/internal/export"
	"github.com/noah-isme/lingua-attendance-api/internal/models"
	"github.com/noah-isme/lingua-attendance-api/internal/observability"
	"github.com/noah-isme/lingua-attendance-api/internal/repository"
)

// ExportResult is a rendered download: deterministic CSV content plus a
// filename that encodes the exported week window.
type ExportResult struct {
	Filename string
	Content  []byte
}

// AttendanceService is the read-only record surface shared by the parent
// viewer and the teacher history views.
type AttendanceService interface {
	List(ctx context.Context, filter repository.AttendanceFilter) ([]dto.AttendanceRecordResponse, error)
	Week(ctx context.Context, courseID uint, studentID uint, ref time.Time, offset int) (dto.WeekAttendanceResponse, error)
	ExportWeek(ctx context.Context, courseID uint, studentID uint, ref time.Time, offset int) (ExportResult, error)
}

type attendanceService struct {
	store     repository.AttendanceRepository
	courses   repository.CourseRepository
	exporter  *export.Exporter
	weekStart time.Weekday
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAttendanceService builds the viewer service. weekStart fixes the
// deployment's week convention for window math and export bounds.
func NewAttendanceService(store repository.AttendanceRepository, courses repository.CourseRepository, exporter *export.Exporter, weekStart time.Weekday, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		store:     store,
		courses:   courses,
		exporter:  exporter,
		weekStart: weekStart,
		logger:    logger.With().Str("component", "attendance_service").Logger(),
		now:       time.Now,
	}
}

func (s *attendanceService) List(ctx context.Context, filter repository.AttendanceFilter) ([]dto.AttendanceRecordResponse, error) {
	records, err := s.store.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list attendance records")
		return nil, ErrRecordFetchFailed
	}

	return dto.NewAttendanceRecordResponseSlice(records), nil
}

func (s *attendanceService) Week(ctx context.Context, courseID uint, studentID uint, ref time.Time, offset int) (dto.WeekAttendanceResponse, error) {
	window, records, err := s.weekRecords(ctx, courseID, studentID, ref, offset)
	if err != nil {
		return dto.WeekAttendanceResponse{}, err
	}

	return dto.NewWeekAttendanceResponse(window, records), nil
}

func (s *attendanceService) ExportWeek(ctx context.Context, courseID uint, studentID uint, ref time.Time, offset int) (ExportResult, error) {
	window, records, err := s.weekRecords(ctx, courseID, studentID, ref, offset)
	if err != nil {
		return ExportResult{}, err
	}

	courseIDs := make([]uint, 0, 1)
	seen := map[uint]bool{}
	for _, record := range records {
		if !seen[record.CourseID] {
			seen[record.CourseID] = true
			courseIDs = append(courseIDs, record.CourseID)
		}
	}

	courses, err := s.courses.GetByIDs(ctx, courseIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve courses for export")
		return ExportResult{}, ErrRecordFetchFailed
	}

	info := make(map[uint]export.CourseInfo, len(courses))
	for _, course := range courses {
		info[course.ID] = export.CourseInfo{
			TeacherName: course.TeacherName,
			Location:    course.Location,
		}
	}

	var buf bytes.Buffer
	if err := s.exporter.Write(&buf, records, info); err != nil {
		return ExportResult{}, err
	}

	observability.Exports().WithLabelValues(s.exporter.Locale()).Inc()

	return ExportResult{
		Filename: s.exporter.Filename(window),
		Content:  buf.Bytes(),
	}, nil
}

func (s *attendanceService) weekRecords(ctx context.Context, courseID uint, studentID uint, ref time.Time, offset int) (calendar.WeekWindow, []models.AttendanceRecord, error) {
	if ref.IsZero() {
		ref = s.now()
	}
	window := calendar.NewWeekWindow(ref, s.weekStart).Shift(offset)

	from := window.Start
	to := window.End
	records, err := s.store.List(ctx, repository.AttendanceFilter{
		CourseID:  courseID,
		StudentID: studentID,
		From:      &from,
		To:        &to,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load week records")
		return window, nil, ErrRecordFetchFailed
	}

	return window, records, nil
}
