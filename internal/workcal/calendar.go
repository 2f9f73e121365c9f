// Package workcal provides calendar arithmetic for the working week used by
// the leave rules: Monday-anchored weeks, Monday-to-Friday working days, and
// calendar-month bounds. All computations operate on day granularity.
package workcal

import "time"

// Day truncates a timestamp to 00:00 UTC of the same calendar date. Events
// are stored at day granularity, so every date entering the domain passes
// through this normalization.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	day := Day(t)
	weekday := int(day.Weekday())
	// In Go, Monday == 1 and Sunday == 0.
	offset := (weekday + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WorkWeek returns the Monday and Friday bounding the working week that
// contains t. Saturday and Sunday belong to the week of the preceding Monday.
func WorkWeek(t time.Time) (monday, friday time.Time) {
	monday = StartOfWeek(t)
	friday = monday.AddDate(0, 0, 4)
	return monday, friday
}

// IsWorkingDay reports whether t falls on Monday through Friday.
func IsWorkingDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// MonthRange returns the first and last day of the given calendar month.
func MonthRange(year int, month time.Month) (first, last time.Time) {
	first = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

// WorkingDaysInMonth counts the Monday-to-Friday days in the given month.
func WorkingDaysInMonth(year int, month time.Month) int {
	first, last := MonthRange(year, month)
	count := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if IsWorkingDay(day) {
			count++
		}
	}
	return count
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
