package dto

import (
	"github.com/noah-isme/lingua-attendance-api/internal/calendar"
	"github.com/noah-isme/lingua-attendance-api/internal/models"
)

const dateLayout = "2006-01-02"

// AttendanceRecordResponse is the serialized form of a persisted record.
type AttendanceRecordResponse struct {
	ID            uint    `json:"id"`
	Date          string  `json:"date"`
	CourseID      uint    `json:"course_id"`
	CourseName    string  `json:"course_name"`
	StudentID     uint    `json:"student_id"`
	StudentName   string  `json:"student_name"`
	Status        string  `json:"status"`
	ArrivalTime   *string `json:"arrival_time,omitempty"`
	DepartureTime *string `json:"departure_time,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// NewAttendanceRecordResponse converts a model into a DTO.
func NewAttendanceRecordResponse(record models.AttendanceRecord) AttendanceRecordResponse {
	return AttendanceRecordResponse{
		ID:            record.ID,
		Date:          record.Day().Format(dateLayout),
		CourseID:      record.CourseID,
		CourseName:    record.CourseName,
		StudentID:     record.StudentID,
		StudentName:   record.StudentName,
		Status:        string(record.Status),
		ArrivalTime:   record.ArrivalTime,
		DepartureTime: record.DepartureTime,
		Notes:         record.Notes,
	}
}

// NewAttendanceRecordResponseSlice converts a slice of models into DTOs.
func NewAttendanceRecordResponseSlice(records []models.AttendanceRecord) []AttendanceRecordResponse {
	responses := make([]AttendanceRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewAttendanceRecordResponse(record))
	}

	return responses
}

// WeekAttendanceResponse pairs a week window with the records inside it.
type WeekAttendanceResponse struct {
	WeekStart string                     `json:"week_start"`
	WeekEnd   string                     `json:"week_end"`
	Records   []AttendanceRecordResponse `json:"records"`
}

// NewWeekAttendanceResponse builds the week view payload.
func NewWeekAttendanceResponse(window calendar.WeekWindow, records []models.AttendanceRecord) WeekAttendanceResponse {
	return WeekAttendanceResponse{
		WeekStart: window.Start.Format(dateLayout),
		WeekEnd:   window.End.Format(dateLayout),
		Records:   NewAttendanceRecordResponseSlice(records),
	}
}
