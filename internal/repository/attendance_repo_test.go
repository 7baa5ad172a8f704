package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-attendance-api/internal/models"
)

func setupAttendanceTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func day(y int, m time.Month, d int) datatypes.Date {
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func timePtr(s string) *string { return &s }

func TestAttendanceRepositorySaveBatchReplacesOnTuple(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	first := []models.AttendanceRecord{
		{Date: day(2026, time.August, 24), CourseID: 1, CourseName: "English A1", StudentID: 10, StudentName: "Alice",
			Status: models.AttendanceStatusPresent, ArrivalTime: timePtr("09:00"), DepartureTime: timePtr("10:00")},
		{Date: day(2026, time.August, 24), CourseID: 1, CourseName: "English A1", StudentID: 11, StudentName: "Bob",
			Status: models.AttendanceStatusAbsent},
	}
	require.NoError(t, repo.SaveBatch(ctx, first))

	records, err := repo.List(ctx, AttendanceFilter{CourseID: 1})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Re-submitting Alice for the same tuple replaces her record wholesale
	// and leaves Bob untouched.
	second := []models.AttendanceRecord{
		{Date: day(2026, time.August, 24), CourseID: 1, CourseName: "English A1", StudentID: 10, StudentName: "Alice",
			Status: models.AttendanceStatusLate, ArrivalTime: timePtr("09:00"), DepartureTime: timePtr("10:00")},
	}
	require.NoError(t, repo.SaveBatch(ctx, second))

	records, err = repo.List(ctx, AttendanceFilter{CourseID: 1})
	require.NoError(t, err)
	require.Len(t, records, 2)

	byStudent := map[uint]models.AttendanceRecord{}
	for _, record := range records {
		byStudent[record.StudentID] = record
	}
	require.Equal(t, models.AttendanceStatusLate, byStudent[10].Status)
	require.Equal(t, models.AttendanceStatusAbsent, byStudent[11].Status)
}

func TestAttendanceRepositoryListFiltersByDateRangeInclusive(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	records := []models.AttendanceRecord{
		{Date: day(2026, time.August, 17), CourseID: 1, CourseName: "English A1", StudentID: 10, StudentName: "Alice", Status: models.AttendanceStatusPresent},
		{Date: day(2026, time.August, 24), CourseID: 1, CourseName: "English A1", StudentID: 10, StudentName: "Alice", Status: models.AttendanceStatusLate},
		{Date: day(2026, time.August, 30), CourseID: 1, CourseName: "English A1", StudentID: 10, StudentName: "Alice", Status: models.AttendanceStatusAbsent},
		{Date: day(2026, time.September, 1), CourseID: 1, CourseName: "English A1", StudentID: 10, StudentName: "Alice", Status: models.AttendanceStatusPresent},
	}
	require.NoError(t, repo.SaveBatch(ctx, records))

	from := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	inWeek, err := repo.List(ctx, AttendanceFilter{CourseID: 1, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, inWeek, 2, "both boundary dates are inclusive")
	require.Equal(t, models.AttendanceStatusLate, inWeek[0].Status)
	require.Equal(t, models.AttendanceStatusAbsent, inWeek[1].Status)
}

func TestAttendanceRepositoryListFiltersByStudent(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveBatch(ctx, []models.AttendanceRecord{
		{Date: day(2026, time.August, 24), CourseID: 1, CourseName: "English A1", StudentID: 10, StudentName: "Alice", Status: models.AttendanceStatusPresent},
		{Date: day(2026, time.August, 24), CourseID: 1, CourseName: "English A1", StudentID: 11, StudentName: "Bob", Status: models.AttendanceStatusAbsent},
	}))

	records, err := repo.List(ctx, AttendanceFilter{CourseID: 1, StudentID: 11})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Bob", records[0].StudentName)
}

func TestAttendanceRepositorySaveBatchEmptyIsNoop(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewAttendanceRepository(db)

	require.NoError(t, repo.SaveBatch(context.Background(), nil))
}

func TestEnrollmentRepositoryListsRosterInNameOrder(t *testing.T) {
	db := setupAttendanceTestDB(t)
	ctx := context.Background()

	course := models.Course{Name: "French B2"}
	require.NoError(t, db.Create(&course).Error)

	students := []models.Student{
		{Name: "Zoe", Age: 9},
		{Name: "Alice", Age: 8},
		{Name: "Marc", Age: 10},
	}
	require.NoError(t, db.Create(&students).Error)
	for _, student := range students {
		require.NoError(t, db.Create(&models.Enrollment{CourseID: course.ID, StudentID: student.ID}).Error)
	}

	repo := NewEnrollmentRepository(db)
	enrollments, err := repo.ListByCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 3)
	require.Equal(t, "Alice", enrollments[0].Student.Name)
	require.Equal(t, "Marc", enrollments[1].Student.Name)
	require.Equal(t, "Zoe", enrollments[2].Student.Name)
}

func TestCourseRepositoryGetByIDs(t *testing.T) {
	db := setupAttendanceTestDB(t)
	ctx := context.Background()

	courses := []models.Course{
		{Name: "English A1", TeacherName: "Ms. Rivera", Location: "Room 3"},
		{Name: "Spanish A2", TeacherName: "Mr. Ortiz", Location: "Room 1"},
	}
	require.NoError(t, db.Create(&courses).Error)

	repo := NewCourseRepository(db)
	found, err := repo.GetByIDs(ctx, []uint{courses[0].ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "English A1", found[0].Name)

	none, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, none)
}
