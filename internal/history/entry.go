package history

import (
	"time"

	"github.com/2beens/gymplan/internal/progression"
)

// Entry is one finished (or skipped-to-completion) workout session.
// Entries are written once and never updated. The plan is referenced by name only,
// so replacing a plan does not touch older entries.
type Entry struct {
	ID          int        `json:"id"`
	Owner       string     `json:"owner"`
	PlanName    string     `json:"planName"`
	WeekNumber  *int       `json:"weekNumber"`
	Day         string     `json:"day"`
	Focus       string     `json:"focus"`
	Exercises   []string   `json:"exercises"`
	CompletedAt *time.Time `json:"completedAt"`
	Skipped     bool       `json:"skipped"`
}

// Completion describes a session being logged.
type Completion struct {
	PlanName    string
	WeekNumber  int
	Day         progression.MaterializedDay
	CompletedAt time.Time
	Skipped     bool
}

func NewEntry(owner string, c Completion) Entry {
	week := c.WeekNumber
	completedAt := c.CompletedAt
	return Entry{
		Owner:       owner,
		PlanName:    c.PlanName,
		WeekNumber:  &week,
		Day:         c.Day.Day,
		Focus:       c.Day.Focus,
		Exercises:   c.Day.ExerciseNames(),
		CompletedAt: &completedAt,
		Skipped:     c.Skipped,
	}
}

// ToProgression converts stored entries into the shape the adherence analysis reads.
// Entries missing a week number or a completion time are left out.
func ToProgression(entries []Entry) []progression.CompletionEntry {
	converted := make([]progression.CompletionEntry, 0, len(entries))
	for _, e := range entries {
		if e.WeekNumber == nil || e.CompletedAt == nil {
			continue
		}
		converted = append(converted, progression.CompletionEntry{
			WeekNumber:  e.WeekNumber,
			CompletedAt: e.CompletedAt,
		})
	}
	return converted
}
