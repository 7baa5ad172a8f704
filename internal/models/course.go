package models

import "time"

// Course is a catalog entry owned by the wider portal; this service only
// reads it to resolve names, schedules and locations.
type Course struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	ScheduleDays string    `gorm:"size:255" json:"schedule_days"`
	TimeOfDay    string    `gorm:"size:64" json:"time_of_day"`
	Location     string    `gorm:"size:255" json:"location"`
	TeacherName  string    `gorm:"size:255" json:"teacher_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
