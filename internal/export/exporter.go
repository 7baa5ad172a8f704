// Package export serializes attendance record sets into the delimited table
// format the portal offers for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/noah-isme/lingua-attendance-api/internal/calendar"
	"github.com/noah-isme/lingua-attendance-api/internal/models"
)

// header is shared by the teacher and parent export variants; order is fixed.
var header = []string{"date", "time", "course", "teacher", "location", "leavingTime", "status", "notes"}

var statusLabels = map[string]map[models.AttendanceStatus]string{
	"en": {
		models.AttendanceStatusPresent: "Present",
		models.AttendanceStatusLate:    "Late",
		models.AttendanceStatusAbsent:  "Absent",
	},
	"id": {
		models.AttendanceStatusPresent: "Hadir",
		models.AttendanceStatusLate:    "Terlambat",
		models.AttendanceStatusAbsent:  "Tidak Hadir",
	},
}

// CourseInfo supplies the course-derived columns of an export row.
type CourseInfo struct {
	TeacherName string
	Location    string
}

// Exporter writes deterministic CSV tables with localized status labels.
type Exporter struct {
	locale string
	labels map[models.AttendanceStatus]string
}

// New builds an exporter for the given locale, falling back to English
// labels when the locale is unknown.
func New(locale string) *Exporter {
	labels, ok := statusLabels[locale]
	if !ok {
		locale = "en"
		labels = statusLabels["en"]
	}
	return &Exporter{locale: locale, labels: labels}
}

// Locale reports the effective label locale after fallback.
func (e *Exporter) Locale() string {
	return e.locale
}

// Filename encodes the exported window's bounds for traceability.
func (e *Exporter) Filename(window calendar.WeekWindow) string {
	return fmt.Sprintf("attendance_%s_%s.csv",
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
}

// Write serializes the records in input order. Identical input always
// produces byte-identical output; rows equal record count plus one header.
func (e *Exporter) Write(w io.Writer, records []models.AttendanceRecord, courses map[uint]CourseInfo) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for _, record := range records {
		course := courses[record.CourseID]

		arrival := ""
		departure := ""
		if record.Status != models.AttendanceStatusAbsent {
			arrival = derefTime(record.ArrivalTime)
			departure = derefTime(record.DepartureTime)
		}

		row := []string{
			record.Day().Format("2006-01-02"),
			arrival,
			record.CourseName,
			course.TeacherName,
			course.Location,
			departure,
			e.Label(record.Status),
			record.Notes,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Label returns the localized display string for a status.
func (e *Exporter) Label(status models.AttendanceStatus) string {
	if label, ok := e.labels[status]; ok {
		return label
	}
	return string(status)
}

func derefTime(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
