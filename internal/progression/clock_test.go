package progression_test

import (
	"testing"
	"time"

	"github.com/2beens/gymplan/internal/progression"

	"github.com/stretchr/testify/assert"
)

func TestCurrentWeekNumber(t *testing.T) {
	createdAt := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)

	testCases := []struct {
		name          string
		now           time.Time
		durationWeeks int
		expected      int
	}{
		{name: "start", now: createdAt, durationWeeks: 12, expected: 1},
		{name: "day 6", now: createdAt.AddDate(0, 0, 6), durationWeeks: 12, expected: 1},
		{name: "day 7", now: createdAt.AddDate(0, 0, 7), durationWeeks: 12, expected: 2},
		{name: "one second before week 2", now: createdAt.Add(7*24*time.Hour - time.Second), durationWeeks: 12, expected: 1},
		{name: "last week", now: createdAt.AddDate(0, 0, 77), durationWeeks: 12, expected: 12},
		{name: "last day of last week", now: createdAt.AddDate(0, 0, 83), durationWeeks: 12, expected: 12},
		{name: "wraps after duration", now: createdAt.AddDate(0, 0, 84), durationWeeks: 12, expected: 1},
		{name: "second cycle", now: createdAt.AddDate(0, 0, 92), durationWeeks: 12, expected: 2},
		{name: "single week plan", now: createdAt.AddDate(0, 0, 40), durationWeeks: 1, expected: 1},
		{name: "clock skew", now: createdAt.AddDate(0, 0, -8), durationWeeks: 12, expected: 2},
		{name: "zero duration treated as one", now: createdAt.AddDate(0, 0, 30), durationWeeks: 0, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, progression.CurrentWeekNumber(createdAt, tc.now, tc.durationWeeks))
		})
	}
}

func TestCurrentWeekNumber_AlwaysInRange(t *testing.T) {
	createdAt := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
	for days := -400; days <= 400; days += 3 {
		week := progression.CurrentWeekNumber(createdAt, createdAt.AddDate(0, 0, days), 8)
		assert.GreaterOrEqual(t, week, 1)
		assert.LessOrEqual(t, week, 8)
	}
}

func TestWeekStart(t *testing.T) {
	createdAt := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)

	testCases := []struct {
		name          string
		now           time.Time
		durationWeeks int
		week          int
		expected      time.Time
	}{
		{name: "first week", now: createdAt.AddDate(0, 0, 3), durationWeeks: 12, week: 1, expected: createdAt},
		{name: "window start in first cycle", now: createdAt.AddDate(0, 0, 35), durationWeeks: 12, week: 3, expected: createdAt.AddDate(0, 0, 14)},
		{name: "week below one clamps", now: createdAt.AddDate(0, 0, 15), durationWeeks: 12, week: -1, expected: createdAt},
		{name: "second cycle", now: createdAt.AddDate(0, 0, 90), durationWeeks: 12, week: 1, expected: createdAt.AddDate(0, 0, 84)},
		{name: "third cycle of short plan", now: createdAt.AddDate(0, 0, 56), durationWeeks: 3, week: 2, expected: createdAt.AddDate(0, 0, 49)},
		{name: "clock skew", now: createdAt.AddDate(0, 0, -20), durationWeeks: 2, week: 2, expected: createdAt},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, progression.WeekStart(createdAt, tc.now, tc.durationWeeks, tc.week))
		})
	}
}

func TestDaysSinceStart(t *testing.T) {
	createdAt := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, progression.DaysSinceStart(createdAt, createdAt.Add(23*time.Hour)))
	assert.Equal(t, 1, progression.DaysSinceStart(createdAt, createdAt.Add(24*time.Hour)))
	assert.Equal(t, 83, progression.DaysSinceStart(createdAt, createdAt.AddDate(0, 0, 83)))
	assert.Equal(t, 3, progression.DaysSinceStart(createdAt, createdAt.AddDate(0, 0, -3)))
}

func TestTodayName(t *testing.T) {
	// 2025-01-06 is a Monday
	monday := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	for i, label := range progression.Weekdays {
		assert.Equal(t, label, progression.TodayName(monday.AddDate(0, 0, i)))
	}

	// the observer's local calendar day decides
	tokyo := time.FixedZone("JST", 9*60*60)
	lateSundayUTC := time.Date(2025, 1, 12, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "Sunday", progression.TodayName(lateSundayUTC))
	assert.Equal(t, "Monday", progression.TodayName(lateSundayUTC.In(tokyo)))
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, progression.WeekdayIndex("Monday"))
	assert.Equal(t, 6, progression.WeekdayIndex("Sunday"))
	assert.Equal(t, -1, progression.WeekdayIndex("monday"))
	assert.Equal(t, -1, progression.WeekdayIndex("Funday"))
}
