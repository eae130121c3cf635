package progression

import (
	"time"
)

const (
	DefaultAdherenceWindowWeeks     = 3
	DefaultAdherenceSessionsPerWeek = 4
	// MinAdherenceEntries is the number of qualifying sessions needed before
	// adherence is allowed to move the factor away from neutral.
	MinAdherenceEntries = 3

	NeutralAdaptiveFactor = 1.0
)

// CompletionEntry is the part of a completion log entry the adherence analysis reads.
// Entries without a week number or a completion time are ignored.
type CompletionEntry struct {
	WeekNumber  *int
	CompletedAt *time.Time
}

// AdherenceTier maps a minimal completion rate to the adaptive factor it produces.
type AdherenceTier struct {
	MinRate float64
	Factor  float64
}

// DefaultAdherenceTiers are evaluated from the highest rate down, first match wins.
var DefaultAdherenceTiers = []AdherenceTier{
	{MinRate: 0.9, Factor: 1.1},
	{MinRate: 0.7, Factor: 1.0},
	{MinRate: 0.5, Factor: 0.95},
	{MinRate: 0, Factor: 0.9},
}

type AdherenceAnalyzer struct {
	// WindowWeeks is how many weeks before the current one are inspected.
	WindowWeeks int
	// SessionsPerWeek is the nominal number of sessions a fully adherent week contains.
	SessionsPerWeek int
	Tiers           []AdherenceTier
}

func DefaultAdherenceAnalyzer() *AdherenceAnalyzer {
	return &AdherenceAnalyzer{
		WindowWeeks:     DefaultAdherenceWindowWeeks,
		SessionsPerWeek: DefaultAdherenceSessionsPerWeek,
		Tiers:           DefaultAdherenceTiers,
	}
}

// ForTemplate returns a copy of the analyzer whose sessions-per-week denominator is the number of
// training (non rest) days of the given week template. A template with no training days keeps
// the analyzer's own denominator.
func (a *AdherenceAnalyzer) ForTemplate(baseWeek []DayTemplate) *AdherenceAnalyzer {
	trainingDays := 0
	for _, day := range baseWeek {
		if !day.IsRestDay() {
			trainingDays++
		}
	}

	derived := *a
	if trainingDays > 0 {
		derived.SessionsPerWeek = trainingDays
	}
	return &derived
}

// AdherenceReport describes the completion rate over the trailing window.
type AdherenceReport struct {
	QualifyingEntries int     `json:"qualifyingEntries"`
	WeeksCovered      int     `json:"weeksCovered"`
	CompletionRate    float64 `json:"completionRate"`
	// Sufficient is false when there was not enough history to judge adherence.
	Sufficient bool    `json:"sufficient"`
	Factor     float64 `json:"factor"`
}

// Report inspects the history entries recorded in the window
// [currentWeek - WindowWeeks, currentWeek) and derives the adaptive factor.
// The history slice is only read, and only once.
func (a *AdherenceAnalyzer) Report(history []CompletionEntry, currentWeek int) AdherenceReport {
	report := AdherenceReport{
		Factor: NeutralAdaptiveFactor,
	}

	windowStart := currentWeek - a.WindowWeeks
	for _, entry := range history {
		if entry.WeekNumber == nil || entry.CompletedAt == nil {
			continue
		}
		week := *entry.WeekNumber
		if week >= windowStart && week < currentWeek {
			report.QualifyingEntries++
		}
	}

	report.WeeksCovered = min(a.WindowWeeks, currentWeek-1)
	if report.QualifyingEntries < MinAdherenceEntries || report.WeeksCovered <= 0 || a.SessionsPerWeek <= 0 {
		return report
	}

	report.Sufficient = true
	report.CompletionRate = float64(report.QualifyingEntries) / float64(report.WeeksCovered*a.SessionsPerWeek)
	report.Factor = a.factorForRate(report.CompletionRate)

	return report
}

// AdaptiveFactor returns the scalar that speeds up or slows down progression
// based on recent adherence; 1.0 when the history is too thin to tell.
func (a *AdherenceAnalyzer) AdaptiveFactor(history []CompletionEntry, currentWeek int) float64 {
	return a.Report(history, currentWeek).Factor
}

func (a *AdherenceAnalyzer) factorForRate(rate float64) float64 {
	tiers := a.Tiers
	if len(tiers) == 0 {
		tiers = DefaultAdherenceTiers
	}
	for _, tier := range tiers {
		if rate >= tier.MinRate {
			return tier.Factor
		}
	}
	return tiers[len(tiers)-1].Factor
}

// AdaptiveFactor runs the default analyzer (3 week window, 4 sessions per week).
func AdaptiveFactor(history []CompletionEntry, currentWeek int) float64 {
	return DefaultAdherenceAnalyzer().AdaptiveFactor(history, currentWeek)
}
