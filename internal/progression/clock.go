package progression

import (
	"time"
)

const oneDay = 24 * time.Hour

// Weekdays holds the canonical weekday labels, in plan order.
var Weekdays = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// WeekdayIndex returns the position of a label in Weekdays, or -1.
func WeekdayIndex(label string) int {
	for i, wd := range Weekdays {
		if wd == label {
			return i
		}
	}
	return -1
}

// DaysSinceStart returns the number of whole days between the plan start and now.
// Clock skew can put now before the start; the elapsed time is taken as absolute.
func DaysSinceStart(planCreatedAt, now time.Time) int {
	elapsed := now.Sub(planCreatedAt)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return int(elapsed / oneDay)
}

// CurrentWeekNumber returns the plan week (1..durationWeeks) that now falls into.
// Plans never end: after the last week the schedule starts over from week 1.
func CurrentWeekNumber(planCreatedAt, now time.Time, durationWeeks int) int {
	if durationWeeks < 1 {
		durationWeeks = 1
	}
	weeks := DaysSinceStart(planCreatedAt, now) / 7
	return weeks%durationWeeks + 1
}

// WeekStart returns when the given week (1..durationWeeks) of the cycle that now falls into began.
// With now before the plan start there is no earlier cycle, the plan start is returned.
func WeekStart(planCreatedAt, now time.Time, durationWeeks, week int) time.Time {
	if !now.After(planCreatedAt) {
		return planCreatedAt
	}
	if durationWeeks < 1 {
		durationWeeks = 1
	}
	if week < 1 {
		week = 1
	}
	cycles := DaysSinceStart(planCreatedAt, now) / (7 * durationWeeks)
	days := cycles*7*durationWeeks + (week-1)*7
	return planCreatedAt.Add(time.Duration(days) * oneDay)
}

// TodayName returns the weekday label of now's calendar day, in now's location.
func TodayName(now time.Time) string {
	return now.Weekday().String()
}
