package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/lingua-attendance-api/internal/models"
)

// AttendanceFilter scopes record listings by course and inclusive date range.
type AttendanceFilter struct {
	CourseID  uint
	StudentID uint
	From      *time.Time
	To        *time.Time
}

// AttendanceRepository is the fetch/persist boundary for attendance records.
type AttendanceRepository interface {
	List(ctx context.Context, filter AttendanceFilter) ([]models.AttendanceRecord, error)
	SaveBatch(ctx context.Context, records []models.AttendanceRecord) error
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs the attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]models.AttendanceRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.AttendanceRecord{})

	if filter.CourseID != 0 {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	var records []models.AttendanceRecord
	err := query.Order("date").Order("student_name").Find(&records).Error
	return records, err
}

// SaveBatch upserts the batch in one transaction. A record whose
// (date, course_id, student_id) tuple already exists is replaced wholesale,
// so a re-submitted session overwrites the earlier one.
func (r *attendanceRepository) SaveBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}, {Name: "course_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"course_name", "student_name", "status",
				"arrival_time", "departure_time", "notes", "updated_at",
			}),
		}).Create(&records).Error
	})
}
