package dto

import "time"

// RecordingOpenRequest starts a recording session for one course and date.
type RecordingOpenRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
}

// RecordingMarkRequest mutates one student's entry inside an open session.
// All fields are optional; a request must carry at least one of them.
// Times are accepted only while the entry is marked present or late.
type RecordingMarkRequest struct {
	Status        *string `json:"status" validate:"omitempty,oneof=present late absent"`
	ArrivalTime   *string `json:"arrival_time" validate:"omitempty,datetime=15:04"`
	DepartureTime *string `json:"departure_time" validate:"omitempty,datetime=15:04"`
	Notes         *string `json:"notes" validate:"omitempty,max=1024"`
}

// Empty reports whether the request carries no mutation at all.
func (r RecordingMarkRequest) Empty() bool {
	return r.Status == nil && r.ArrivalTime == nil && r.DepartureTime == nil && r.Notes == nil
}

// RecordingConfirmRequest carries the token issued by the propose step.
type RecordingConfirmRequest struct {
	Token string `json:"token" validate:"required,uuid4"`
}

// RecordingEntryResponse is one student's captured state within a session.
type RecordingEntryResponse struct {
	StudentID     uint    `json:"student_id"`
	StudentName   string  `json:"student_name"`
	Marked        bool    `json:"marked"`
	Status        string  `json:"status,omitempty"`
	ArrivalTime   *string `json:"arrival_time,omitempty"`
	DepartureTime *string `json:"departure_time,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// RecordingSessionResponse is a snapshot of an open recording session.
type RecordingSessionResponse struct {
	ID         string                   `json:"id"`
	CourseID   uint                     `json:"course_id"`
	CourseName string                   `json:"course_name"`
	Date       string                   `json:"date"`
	Warning    string                   `json:"warning,omitempty"`
	Entries    []RecordingEntryResponse `json:"entries"`
}

// RecordingProposeResponse is the first half of the two-phase submission gate.
type RecordingProposeResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Marked    int       `json:"marked"`
	Unmarked  int       `json:"unmarked"`
}

// RecordingSubmissionResponse summarises a confirmed batch write.
// Unmarked students are skipped, never submitted as implicit absences.
type RecordingSubmissionResponse struct {
	Saved             int    `json:"saved"`
	Skipped           int    `json:"skipped"`
	SkippedStudentIDs []uint `json:"skipped_student_ids,omitempty"`
}
