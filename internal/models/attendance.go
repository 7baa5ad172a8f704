package models

import (
	"time"

	"gorm.io/datatypes"
)

// AttendanceStatus is the closed set of statuses a persisted record may carry.
// An unmarked student has no record at all rather than a null status.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord stores one student's attendance for one course session.
// At most one record exists per (date, course, student) tuple; a re-submission
// for the same tuple replaces the record wholesale.
type AttendanceRecord struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Date          datatypes.Date   `gorm:"uniqueIndex:idx_attendance_tuple;not null" json:"-"`
	CourseID      uint             `gorm:"uniqueIndex:idx_attendance_tuple;not null" json:"course_id"`
	CourseName    string           `gorm:"size:255;not null" json:"course_name"`
	StudentID     uint             `gorm:"uniqueIndex:idx_attendance_tuple;not null" json:"student_id"`
	StudentName   string           `gorm:"size:255;not null" json:"student_name"`
	Status        AttendanceStatus `gorm:"size:16;not null" json:"status"`
	ArrivalTime   *string          `gorm:"size:5" json:"arrival_time,omitempty"`
	DepartureTime *string          `gorm:"size:5" json:"departure_time,omitempty"`
	Notes         string           `gorm:"size:1024" json:"notes"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Day returns the record date as a plain time.Time at midnight UTC.
func (r AttendanceRecord) Day() time.Time {
	t := time.Time(r.Date)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
