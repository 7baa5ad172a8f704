package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/lingua-attendance-api/internal/calendar"
	"github.com/noah-isme/lingua-attendance-api/internal/models"
)

func strPtr(s string) *string { return &s }

func sampleRecords() []models.AttendanceRecord {
	day := datatypes.Date(time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC))
	return []models.AttendanceRecord{
		{
			Date:          day,
			CourseID:      1,
			CourseName:    "English A1",
			StudentID:     10,
			StudentName:   "Alice",
			Status:        models.AttendanceStatusPresent,
			ArrivalTime:   strPtr("09:00"),
			DepartureTime: strPtr("10:00"),
		},
		{
			Date:        day,
			CourseID:    1,
			CourseName:  "English A1",
			StudentID:   11,
			StudentName: "Bob",
			Status:      models.AttendanceStatusAbsent,
			Notes:       "called in sick",
		},
	}
}

func sampleCourses() map[uint]CourseInfo {
	return map[uint]CourseInfo{
		1: {TeacherName: "Ms. Rivera", Location: "Room 3"},
	}
}

func TestExporterRowCountAndHeader(t *testing.T) {
	exporter := New("en")
	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, sampleRecords(), sampleCourses()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3, "one header plus one line per record")
	require.Equal(t, "date,time,course,teacher,location,leavingTime,status,notes", lines[0])
}

func TestExporterLocalizesStatusAndClearsAbsentTimes(t *testing.T) {
	exporter := New("en")
	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, sampleRecords(), sampleCourses()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, "2026-08-24,09:00,English A1,Ms. Rivera,Room 3,10:00,Present,", lines[1])
	require.Equal(t, "2026-08-24,,English A1,Ms. Rivera,Room 3,,Absent,called in sick", lines[2])
}

func TestExporterIndonesianLabels(t *testing.T) {
	exporter := New("id")
	require.Equal(t, "Hadir", exporter.Label(models.AttendanceStatusPresent))
	require.Equal(t, "Terlambat", exporter.Label(models.AttendanceStatusLate))
	require.Equal(t, "Tidak Hadir", exporter.Label(models.AttendanceStatusAbsent))
}

func TestExporterUnknownLocaleFallsBackToEnglish(t *testing.T) {
	exporter := New("xx")
	require.Equal(t, "Present", exporter.Label(models.AttendanceStatusPresent))
}

func TestExporterQuotesDelimiterInFields(t *testing.T) {
	records := sampleRecords()
	records[1].Notes = "sick, doctor visit"

	exporter := New("en")
	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, records, sampleCourses()))

	require.Contains(t, buf.String(), `"sick, doctor visit"`)
}

func TestExporterOutputIsDeterministic(t *testing.T) {
	exporter := New("en")

	var first, second bytes.Buffer
	require.NoError(t, exporter.Write(&first, sampleRecords(), sampleCourses()))
	require.NoError(t, exporter.Write(&second, sampleRecords(), sampleCourses()))

	require.Equal(t, first.Bytes(), second.Bytes())
}

func TestExporterFilenameEncodesWindowBounds(t *testing.T) {
	window := calendar.NewWeekWindow(time.Date(2026, time.August, 26, 0, 0, 0, 0, time.UTC), time.Monday)
	exporter := New("en")

	require.Equal(t, "attendance_2026-08-24_2026-08-30.csv", exporter.Filename(window))
}

func TestExporterEmptyInputYieldsHeaderOnly(t *testing.T) {
	exporter := New("en")
	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, nil, nil))

	require.Equal(t, "date,time,course,teacher,location,leavingTime,status,notes\n", buf.String())
}
