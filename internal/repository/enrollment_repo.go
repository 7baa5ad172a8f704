package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lingua-attendance-api/internal/models"
)

// EnrollmentRepository resolves course rosters from the enrollment source.
type EnrollmentRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Enrollment, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs the enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// ListByCourse returns enrollments for a course ordered by student name, the
// order recording sessions present their rosters in.
func (r *enrollmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Joins("JOIN students ON students.id = enrollments.student_id").
		Where("enrollments.course_id = ?", courseID).
		Order("students.name").
		Preload("Student").
		Find(&enrollments).Error
	return enrollments, err
}
