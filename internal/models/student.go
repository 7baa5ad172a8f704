package models

import "time"

// Student is a learner enrolled at the centre. Guardian fields belong to the
// parent-facing portal; they ride along for roster display only.
type Student struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Age             int       `json:"age"`
	GuardianName    string    `gorm:"size:255" json:"guardian_name"`
	GuardianContact string    `gorm:"size:255" json:"guardian_contact"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
