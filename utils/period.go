// utils/period.go
package utils

import "time"

// WeekBounds returns the Monday and Sunday (both at midnight UTC) of the week
// containing t. Tournament windows are keyed by these dates.
func WeekBounds(t time.Time) (monday, sunday time.Time) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(day.Weekday())
	if weekday == 0 { // Go counts Sunday as 0
		weekday = 7
	}
	monday = day.AddDate(0, 0, -(weekday - 1))
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// MonthKey returns the "YYYY-MM" key used to group weekly tournaments into a
// monthly leaderboard period. A window belongs to the month its Monday falls in.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// WeekKey identifies a weekly leaderboard period by its Monday.
func WeekKey(monday time.Time) string {
	return monday.UTC().Format("2006-01-02")
}

// InWindow reports whether ts falls inside the [weekStart, weekEnd] window.
// weekEnd is inclusive through end of day.
func InWindow(ts, weekStart, weekEnd time.Time) bool {
	ts = ts.UTC()
	return !ts.Before(weekStart) && ts.Before(weekEnd.AddDate(0, 0, 1))
}
