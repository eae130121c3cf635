package progression_test

import (
	"testing"
	"time"

	"github.com/2beens/gymplan/internal/progression"

	"github.com/stretchr/testify/assert"
)

var adherenceTestTime = time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

func entriesForWeeks(weeks ...int) []progression.CompletionEntry {
	entries := make([]progression.CompletionEntry, 0, len(weeks))
	for i, w := range weeks {
		week := w
		completedAt := adherenceTestTime.Add(time.Duration(i) * time.Hour)
		entries = append(entries, progression.CompletionEntry{
			WeekNumber:  &week,
			CompletedAt: &completedAt,
		})
	}
	return entries
}

func repeatWeek(week, times int) []int {
	weeks := make([]int, times)
	for i := range weeks {
		weeks[i] = week
	}
	return weeks
}

func TestAdaptiveFactor_InsufficientData(t *testing.T) {
	assert.Equal(t, 1.0, progression.AdaptiveFactor(nil, 5))
	assert.Equal(t, 1.0, progression.AdaptiveFactor(entriesForWeeks(4), 5))
	assert.Equal(t, 1.0, progression.AdaptiveFactor(entriesForWeeks(4, 3), 5))

	// plenty of entries, but none in the trailing window
	assert.Equal(t, 1.0, progression.AdaptiveFactor(entriesForWeeks(1, 1, 1, 1, 5, 5, 5), 5))
}

func TestAdaptiveFactor_Tiers(t *testing.T) {
	// current week 4 -> window weeks 1..3, 3 weeks covered, 12 nominal sessions
	testCases := []struct {
		name     string
		sessions int
		expected float64
	}{
		{name: "all done", sessions: 12, expected: 1.1},
		{name: "more than nominal", sessions: 15, expected: 1.1},
		{name: "11 of 12", sessions: 11, expected: 1.1},
		{name: "10 of 12", sessions: 10, expected: 1.0},
		{name: "9 of 12", sessions: 9, expected: 1.0},
		{name: "8 of 12", sessions: 8, expected: 0.95},
		{name: "6 of 12", sessions: 6, expected: 0.95},
		{name: "5 of 12", sessions: 5, expected: 0.9},
		{name: "3 of 12", sessions: 3, expected: 0.9},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var weeks []int
			for i := 0; i < tc.sessions; i++ {
				weeks = append(weeks, i%3+1)
			}
			assert.Equal(t, tc.expected, progression.AdaptiveFactor(entriesForWeeks(weeks...), 4))
		})
	}
}

func TestAdaptiveFactor_BoundariesMapToHigherTier(t *testing.T) {
	// 5 sessions per week over 2 covered weeks -> denominator 10
	analyzer := &progression.AdherenceAnalyzer{
		WindowWeeks:     3,
		SessionsPerWeek: 5,
		Tiers:           progression.DefaultAdherenceTiers,
	}

	assert.Equal(t, 1.1, analyzer.AdaptiveFactor(entriesForWeeks(repeatWeek(1, 9)...), 3))
	assert.Equal(t, 1.0, analyzer.AdaptiveFactor(entriesForWeeks(repeatWeek(1, 7)...), 3))
	assert.Equal(t, 0.95, analyzer.AdaptiveFactor(entriesForWeeks(repeatWeek(1, 5)...), 3))
	assert.Equal(t, 0.9, analyzer.AdaptiveFactor(entriesForWeeks(repeatWeek(1, 4)...), 3))
}

func TestAdaptiveFactor_MonotonicInCompletionRate(t *testing.T) {
	previous := 0.0
	for sessions := 3; sessions <= 14; sessions++ {
		var weeks []int
		for i := 0; i < sessions; i++ {
			weeks = append(weeks, i%3+5)
		}
		factor := progression.AdaptiveFactor(entriesForWeeks(weeks...), 8)
		assert.GreaterOrEqual(t, factor, previous, "sessions: %d", sessions)
		previous = factor
	}
}

func TestAdaptiveFactor_WeeksCoveredEarlyInPlan(t *testing.T) {
	// current week 2 -> only week 1 covered, 4 nominal sessions
	assert.Equal(t, 1.1, progression.AdaptiveFactor(entriesForWeeks(1, 1, 1, 1), 2))
	assert.Equal(t, 1.0, progression.AdaptiveFactor(entriesForWeeks(1, 1, 1), 2))

	// current week 1 has no covered weeks at all
	assert.Equal(t, 1.0, progression.AdaptiveFactor(entriesForWeeks(0, 0, -1, -2), 1))
}

func TestAdaptiveFactor_IgnoresIncompleteEntries(t *testing.T) {
	week := 3
	completedAt := adherenceTestTime
	history := []progression.CompletionEntry{
		{WeekNumber: &week},
		{CompletedAt: &completedAt},
		{},
		{WeekNumber: &week},
	}
	history = append(history, entriesForWeeks(3, 3)...)

	report := progression.DefaultAdherenceAnalyzer().Report(history, 4)
	assert.Equal(t, 2, report.QualifyingEntries)
	assert.False(t, report.Sufficient)
	assert.Equal(t, 1.0, report.Factor)
}

func TestAdherenceAnalyzer_Report(t *testing.T) {
	report := progression.DefaultAdherenceAnalyzer().Report(entriesForWeeks(2, 3, 4, 4, 5, 6), 5)
	// window is weeks 2..4
	assert.Equal(t, 4, report.QualifyingEntries)
	assert.Equal(t, 3, report.WeeksCovered)
	assert.True(t, report.Sufficient)
	assert.InDelta(t, 4.0/12.0, report.CompletionRate, 1e-9)
	assert.Equal(t, 0.9, report.Factor)
}

func TestAdherenceAnalyzer_ForTemplate(t *testing.T) {
	week := make([]progression.DayTemplate, 0, 7)
	for i, label := range progression.Weekdays {
		day := progression.DayTemplate{Day: label, Focus: "Rest"}
		if i%2 == 0 {
			day.Focus = "Strength"
			day.Exercises = []progression.ExerciseTemplate{{Name: "Squat", Type: progression.ExerciseTypeRepsSetsWeight}}
		}
		week = append(week, day)
	}

	base := progression.DefaultAdherenceAnalyzer()
	derived := base.ForTemplate(week)
	assert.Equal(t, 4, derived.SessionsPerWeek)
	assert.Equal(t, 3, derived.WindowWeeks)

	// 6 of 6 sessions over 2 weeks with 3 training days -> full adherence
	threeDays := base.ForTemplate(week[:5])
	assert.Equal(t, 3, threeDays.SessionsPerWeek)
	assert.Equal(t, 1.1, threeDays.AdaptiveFactor(entriesForWeeks(1, 1, 1, 2, 2, 2), 3))
	// the base analyzer is not modified
	assert.Equal(t, progression.DefaultAdherenceSessionsPerWeek, base.SessionsPerWeek)

	allRest := base.ForTemplate([]progression.DayTemplate{{Day: "Monday"}})
	assert.Equal(t, progression.DefaultAdherenceSessionsPerWeek, allRest.SessionsPerWeek)
}
