package plan

import (
	"fmt"
	"math"

	"github.com/2beens/gymplan/internal/progression"
)

const (
	MinUserMultiplier = 0.5
	MaxUserMultiplier = 2.0
)

// ClampMultiplier keeps an owner supplied multiplier within [0.5, 2.0].
// The progression engine itself accepts any value.
func ClampMultiplier(m float64) float64 {
	if math.IsNaN(m) {
		return 1.0
	}
	return math.Min(MaxUserMultiplier, math.Max(MinUserMultiplier, m))
}

// SettingsUpdate is a partial change of the progression policy; nil fields stay as they are.
// Increments are merged into the existing ones.
type SettingsUpdate struct {
	Strategy        *progression.Strategy  `json:"strategy"`
	Increments      progression.Increments `json:"increments"`
	UserMultiplier  *float64               `json:"userMultiplier"`
	AdaptiveEnabled *bool                  `json:"adaptiveEnabled"`
}

func (p *Plan) ApplySettings(u SettingsUpdate) error {
	if u.Strategy != nil {
		if !u.Strategy.IsValid() {
			return fmt.Errorf("%w: unknown progression strategy [%s]", ErrInvalidPlan, *u.Strategy)
		}
		p.ProgressionSettings.Strategy = *u.Strategy
	}

	if len(u.Increments) > 0 {
		if p.ProgressionSettings.Increments == nil {
			p.ProgressionSettings.Increments = progression.Increments{}
		}
		for field, inc := range u.Increments {
			p.ProgressionSettings.Increments[field] = inc
		}
	}

	if u.UserMultiplier != nil {
		p.ProgressionSettings.UserMultiplier = ClampMultiplier(*u.UserMultiplier)
	}

	if u.AdaptiveEnabled != nil {
		p.ProgressionSettings.AdaptiveEnabled = *u.AdaptiveEnabled
	}

	return nil
}

// ExerciseUpdate edits one exercise of the base week. Given baseline fields replace
// the stored ones, the rest of the baseline is kept.
type ExerciseUpdate struct {
	Name            *string                   `json:"name"`
	Type            *progression.ExerciseType `json:"type"`
	BaselineDetails progression.Details       `json:"baselineDetails"`
	// baseline fields to drop
	RemoveFields []string `json:"removeFields"`
}

// UpdateExercise edits the exercise at index of the given weekday.
// The edited exercise must still be valid for its type.
func (p *Plan) UpdateExercise(day string, index int, u ExerciseUpdate) error {
	dayIdx := -1
	for i, d := range p.BaseWeek.Days {
		if d.Day == day {
			dayIdx = i
			break
		}
	}
	if dayIdx < 0 || index < 0 || index >= len(p.BaseWeek.Days[dayIdx].Exercises) {
		return fmt.Errorf("%w: %s #%d", ErrExerciseNotFound, day, index)
	}

	ex := p.BaseWeek.Days[dayIdx].Exercises[index]
	details := make(progression.Details, len(ex.BaselineDetails)+len(u.BaselineDetails))
	for name, field := range ex.BaselineDetails {
		details[name] = field
	}
	for name, field := range u.BaselineDetails {
		details[name] = field
	}
	for _, name := range u.RemoveFields {
		delete(details, name)
	}
	ex.BaselineDetails = details

	if u.Name != nil {
		ex.Name = *u.Name
	}
	if u.Type != nil {
		ex.Type = *u.Type
	}

	if err := validateExercise(day, index, ex); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	p.BaseWeek.Days[dayIdx].Exercises[index] = ex

	return nil
}
