package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-attendance-api/internal/models"
	"github.com/noah-isme/lingua-attendance-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// fakeAttendanceRepo mimics the store's tuple-upsert semantics in memory.
type fakeAttendanceRepo struct {
	records map[string]models.AttendanceRecord
	listErr error
	saveErr error
	saves   int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]models.AttendanceRecord)}
}

// blockingAttendanceRepo parks SaveBatch until released so tests can observe
// what stays responsive while a store write is in flight.
type blockingAttendanceRepo struct {
	*fakeAttendanceRepo
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAttendanceRepo) SaveBatch(ctx context.Context, records []models.AttendanceRecord) error {
	close(b.entered)
	<-b.release
	return b.fakeAttendanceRepo.SaveBatch(ctx, records)
}

func tupleKey(record models.AttendanceRecord) string {
	return fmt.Sprintf("%s|%d|%d", record.Day().Format("2006-01-02"), record.CourseID, record.StudentID)
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter repository.AttendanceFilter) ([]models.AttendanceRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	var result []models.AttendanceRecord
	for _, record := range f.records {
		if filter.CourseID != 0 && record.CourseID != filter.CourseID {
			continue
		}
		if filter.StudentID != 0 && record.StudentID != filter.StudentID {
			continue
		}
		day := record.Day()
		if filter.From != nil && day.Before(*filter.From) {
			continue
		}
		if filter.To != nil && day.After(*filter.To) {
			continue
		}
		result = append(result, record)
	}
	// Mirror the real repository's ordering: date, then student name.
	sort.Slice(result, func(i, j int) bool {
		di, dj := result[i].Day(), result[j].Day()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return result[i].StudentName < result[j].StudentName
	})
	return result, nil
}

func (f *fakeAttendanceRepo) SaveBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	for _, record := range records {
		f.records[tupleKey(record)] = record
	}
	f.saves++
	return nil
}

type fakeEnrollmentRepo struct {
	enrollments []models.Enrollment
	err         error
}

func (f *fakeEnrollmentRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Enrollment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []models.Enrollment
	for _, enrollment := range f.enrollments {
		if enrollment.CourseID == courseID {
			result = append(result, enrollment)
		}
	}
	return result, nil
}

type fakeCourseRepo struct {
	courses map[uint]models.Course
	err     error
}

func (f *fakeCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make([]models.Course, 0, len(f.courses))
	for _, course := range f.courses {
		result = append(result, course)
	}
	return result, nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, id uint) (models.Course, error) {
	if f.err != nil {
		return models.Course{}, f.err
	}
	course, ok := f.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeCourseRepo) GetByIDs(ctx context.Context, ids []uint) ([]models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []models.Course
	for _, id := range ids {
		if course, ok := f.courses[id]; ok {
			result = append(result, course)
		}
	}
	return result, nil
}

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
