package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekBounds(t *testing.T) {
	// Wednesday 2026-08-26 belongs to the week of Monday 2026-08-24.
	monday, sunday := WeekBounds(time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), monday)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), sunday)

	// A Monday maps to itself.
	monday, _ = WeekBounds(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), monday)

	// Sunday still belongs to the week started the previous Monday.
	monday, sunday = WeekBounds(time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), monday)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), sunday)
}

func TestWeekBoundsAreContiguous(t *testing.T) {
	// Walk a year of days: every day lands in exactly one window and
	// consecutive windows meet without gap or overlap.
	day := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	prevMonday, _ := WeekBounds(day)
	for i := 0; i < 365; i++ {
		day = day.AddDate(0, 0, 1)
		monday, sunday := WeekBounds(day)
		assert.True(t, InWindow(day, monday, sunday))
		if !monday.Equal(prevMonday) {
			assert.Equal(t, prevMonday.AddDate(0, 0, 7), monday)
			prevMonday = monday
		}
	}
}

func TestMonthKeyAndWeekKey(t *testing.T) {
	ts := time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08", MonthKey(ts))
	monday, _ := WeekBounds(ts)
	assert.Equal(t, "2026-08-03", WeekKey(monday))
}

func TestInWindow(t *testing.T) {
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	assert.True(t, InWindow(monday, monday, sunday))
	assert.True(t, InWindow(sunday.Add(23*time.Hour+59*time.Minute), monday, sunday))
	assert.False(t, InWindow(monday.Add(-time.Second), monday, sunday))
	assert.False(t, InWindow(sunday.AddDate(0, 0, 1), monday, sunday))
}
