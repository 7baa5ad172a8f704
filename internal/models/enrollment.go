package models

import "time"

// Enrollment links a student to a course and seeds recording rosters.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"uniqueIndex:idx_enrollment_pair;not null" json:"course_id"`
	StudentID uint      `gorm:"uniqueIndex:idx_enrollment_pair;not null" json:"student_id"`
	Course    Course    `json:"course,omitempty"`
	Student   Student   `json:"student,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
