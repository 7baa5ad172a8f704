package dto

import "github.com/noah-isme/lingua-attendance-api/internal/models"

// CourseResponse is a catalog entry as exposed to portal clients.
type CourseResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ScheduleDays string `json:"schedule_days"`
	TimeOfDay    string `json:"time_of_day"`
	Location     string `json:"location"`
	TeacherName  string `json:"teacher_name"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:           course.ID,
		Name:         course.Name,
		ScheduleDays: course.ScheduleDays,
		TimeOfDay:    course.TimeOfDay,
		Location:     course.Location,
		TeacherName:  course.TeacherName,
	}
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}

// RosterStudentResponse is one enrolled student in roster order.
type RosterStudentResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Age          int    `json:"age"`
	GuardianName string `json:"guardian_name,omitempty"`
}

// NewRosterStudentResponseSlice converts roster students into DTOs.
func NewRosterStudentResponseSlice(students []models.Student) []RosterStudentResponse {
	responses := make([]RosterStudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, RosterStudentResponse{
			ID:           student.ID,
			Name:         student.Name,
			Age:          student.Age,
			GuardianName: student.GuardianName,
		})
	}

	return responses
}
