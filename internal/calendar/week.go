// Package calendar provides plain-date week arithmetic for attendance views.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// WeekWindow is an inclusive [Start, End] seven-day interval anchored to a
// fixed week-start weekday. Both bounds are midnight UTC dates.
type WeekWindow struct {
	Start time.Time
	End   time.Time

	weekStart time.Weekday
}

// NewWeekWindow computes the window of the week containing ref.
func NewWeekWindow(ref time.Time, weekStart time.Weekday) WeekWindow {
	day := Midnight(ref)
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := day.AddDate(0, 0, -back)

	return WeekWindow{
		Start:     start,
		End:       start.AddDate(0, 0, 6),
		weekStart: weekStart,
	}
}

// Next returns the window shifted forward by exactly seven days.
func (w WeekWindow) Next() WeekWindow {
	return NewWeekWindow(w.Start.AddDate(0, 0, 7), w.weekStart)
}

// Previous returns the window shifted backward by exactly seven days.
func (w WeekWindow) Previous() WeekWindow {
	return NewWeekWindow(w.Start.AddDate(0, 0, -7), w.weekStart)
}

// Shift moves the window by n weeks; negative n moves backward.
func (w WeekWindow) Shift(n int) WeekWindow {
	return NewWeekWindow(w.Start.AddDate(0, 0, 7*n), w.weekStart)
}

// Contains reports whether date falls inside the window, inclusive on both ends.
func (w WeekWindow) Contains(date time.Time) bool {
	day := Midnight(date)
	return !day.Before(w.Start) && !day.After(w.End)
}

// Midnight truncates a timestamp to its calendar date at midnight UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseWeekday resolves a configured weekday name such as "monday".
func ParseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Monday, fmt.Errorf("unknown weekday %q", name)
	}
}
