package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/2beens/gymplan/internal/progression"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidPlan      = errors.New("invalid plan")
	ErrExerciseNotFound = errors.New("exercise not found")
)

// Plan is the single active training plan of an owner. Only the first week is stored;
// every later week is derived from it by the progression engine.
type Plan struct {
	PlanName            string               `json:"planName"`
	Sport               string               `json:"sport"`
	DurationWeeks       int                  `json:"durationWeeks"`
	CreatedAt           time.Time            `json:"createdAt"`
	BaseWeek            BaseWeek             `json:"baseWeek"`
	ProgressionSettings progression.Settings `json:"progressionSettings"`
}

type BaseWeek struct {
	Days []progression.DayTemplate `json:"days"`
}

// legacy plan records carry the week 1 values under "details"
type exerciseRecord struct {
	Name            string                   `json:"name"`
	Type            progression.ExerciseType `json:"type"`
	BaselineDetails progression.Details      `json:"baselineDetails"`
	Details         progression.Details      `json:"details"`
}

type dayRecord struct {
	Day       string           `json:"day"`
	Focus     string           `json:"focus"`
	Exercises []exerciseRecord `json:"exercises"`
}

// UnmarshalJSON accepts both {"days": [...]} and a bare array of days.
func (w *BaseWeek) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		w.Days = nil
		return nil
	}

	var days []dayRecord
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &days); err != nil {
			return err
		}
	} else {
		var wrapped struct {
			Days []dayRecord `json:"days"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return err
		}
		days = wrapped.Days
	}

	w.Days = make([]progression.DayTemplate, 0, len(days))
	for _, d := range days {
		day := progression.DayTemplate{
			Day:       d.Day,
			Focus:     d.Focus,
			Exercises: make([]progression.ExerciseTemplate, 0, len(d.Exercises)),
		}
		for _, ex := range d.Exercises {
			baseline := ex.BaselineDetails
			if baseline == nil {
				baseline = ex.Details
			}
			if baseline == nil {
				baseline = progression.Details{}
			}
			day.Exercises = append(day.Exercises, progression.ExerciseTemplate{
				Name:            ex.Name,
				Type:            ex.Type,
				BaselineDetails: baseline,
			})
		}
		w.Days = append(w.Days, day)
	}

	return nil
}

// DefaultProgressionSettings are used for plans stored without a progression policy.
func DefaultProgressionSettings() progression.Settings {
	return progression.Settings{
		Strategy: progression.StrategyLinear,
		Increments: progression.Increments{
			progression.FieldSets:     0,
			progression.FieldReps:     1,
			progression.FieldWeight:   2.5,
			progression.FieldDuration: 5,
		},
		UserMultiplier:  1.0,
		AdaptiveEnabled: true,
	}
}

type planRecord struct {
	Plan
	ProgressionSettings *progression.Settings `json:"progressionSettings"`
}

// Decode reads a JSON plan record, filling in the defaults for the parts left out.
// The result is not validated.
func Decode(r io.Reader) (*Plan, error) {
	var rec planRecord
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	p := rec.Plan
	if rec.ProgressionSettings == nil {
		p.ProgressionSettings = DefaultProgressionSettings()
	} else {
		p.ProgressionSettings = *rec.ProgressionSettings
		if p.ProgressionSettings.Strategy == "" {
			p.ProgressionSettings.Strategy = progression.StrategyLinear
		}
		if p.ProgressionSettings.UserMultiplier == 0 {
			p.ProgressionSettings.UserMultiplier = 1.0
		}
		if p.ProgressionSettings.Increments == nil {
			p.ProgressionSettings.Increments = progression.Increments{}
		}
	}

	return &p, nil
}

// DecodeYAML reads a YAML plan record. The document is converted to JSON first,
// so both formats share the same field names and defaults.
func DecodeYAML(r io.Reader) (*Plan, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml plan: %w", err)
	}

	jsonDoc, err := json.Marshal(yamlToJSONCompatible(doc))
	if err != nil {
		return nil, fmt.Errorf("convert yaml plan: %w", err)
	}

	return Decode(bytes.NewReader(jsonDoc))
}

func yamlToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = yamlToJSONCompatible(item)
		}
		return val
	case map[any]any:
		converted := make(map[string]any, len(val))
		for k, item := range val {
			converted[fmt.Sprint(k)] = yamlToJSONCompatible(item)
		}
		return converted
	case []any:
		for i, item := range val {
			val[i] = yamlToJSONCompatible(item)
		}
		return val
	default:
		return val
	}
}

// Validate checks the load time invariants of a plan and puts the days in
// canonical Monday..Sunday order. All problems found are reported together.
func (p *Plan) Validate() error {
	var errs error

	if p.DurationWeeks < 1 {
		errs = multierr.Append(errs, fmt.Errorf("duration weeks must be at least 1, got %d", p.DurationWeeks))
	}

	if s := p.ProgressionSettings.Strategy; s != "" && !s.IsValid() {
		errs = multierr.Append(errs, fmt.Errorf("unknown progression strategy [%s]", s))
	}

	days := p.BaseWeek.Days
	if len(days) != len(progression.Weekdays) {
		errs = multierr.Append(errs, fmt.Errorf("base week must have %d days, got %d", len(progression.Weekdays), len(days)))
	}

	seen := make(map[string]bool, len(days))
	for _, d := range days {
		if progression.WeekdayIndex(d.Day) < 0 {
			errs = multierr.Append(errs, fmt.Errorf("unknown weekday label [%s]", d.Day))
			continue
		}
		if seen[d.Day] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate weekday [%s]", d.Day))
		}
		seen[d.Day] = true

		for i, ex := range d.Exercises {
			errs = multierr.Append(errs, validateExercise(d.Day, i, ex))
		}
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, errs)
	}

	slices.SortStableFunc(p.BaseWeek.Days, func(a, b progression.DayTemplate) int {
		return progression.WeekdayIndex(a.Day) - progression.WeekdayIndex(b.Day)
	})

	return nil
}

func validateExercise(day string, index int, ex progression.ExerciseTemplate) error {
	var errs error
	if ex.Name == "" {
		errs = multierr.Append(errs, fmt.Errorf("%s exercise %d: name missing", day, index))
	}

	_, hasDuration := ex.BaselineDetails.Get(progression.FieldDuration)
	_, hasReps := ex.BaselineDetails.Get(progression.FieldReps)
	_, hasWeight := ex.BaselineDetails.Get(progression.FieldWeight)

	switch ex.Type {
	case progression.ExerciseTypeTimer, progression.ExerciseTypeHangboard:
		if !hasDuration {
			errs = multierr.Append(errs, fmt.Errorf("%s exercise %d [%s]: %s exercise needs a duration", day, index, ex.Name, ex.Type))
		}
	case progression.ExerciseTypeRepsSetsWeight:
		if !hasReps && !hasWeight {
			errs = multierr.Append(errs, fmt.Errorf("%s exercise %d [%s]: needs reps or weight", day, index, ex.Name))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("%s exercise %d [%s]: unknown exercise type [%s]", day, index, ex.Name, ex.Type))
	}

	return errs
}

// Clone returns a deep copy; exercise details included.
func (p *Plan) Clone() *Plan {
	c := *p
	c.ProgressionSettings.Increments = maps.Clone(p.ProgressionSettings.Increments)
	if p.BaseWeek.Days != nil {
		c.BaseWeek.Days = make([]progression.DayTemplate, len(p.BaseWeek.Days))
		for i, d := range p.BaseWeek.Days {
			d.Exercises = slices.Clone(d.Exercises)
			for j := range d.Exercises {
				d.Exercises[j].BaselineDetails = maps.Clone(d.Exercises[j].BaselineDetails)
			}
			c.BaseWeek.Days[i] = d
		}
	}
	return &c
}

// DayTemplate returns the template for a weekday label.
func (p *Plan) DayTemplate(label string) (progression.DayTemplate, bool) {
	for _, d := range p.BaseWeek.Days {
		if d.Day == label {
			return d, true
		}
	}
	return progression.DayTemplate{}, false
}

// CurrentWeek returns the plan week now falls into.
func (p *Plan) CurrentWeek(now time.Time) int {
	return progression.CurrentWeekNumber(p.CreatedAt, now, p.DurationWeeks)
}

// MaterializeWeek returns the plan's full week at the given week number.
func (p *Plan) MaterializeWeek(week int, adaptiveFactor float64) []progression.MaterializedDay {
	return progression.MaterializeWeek(p.BaseWeek.Days, week, p.ProgressionSettings, adaptiveFactor)
}

// MaterializeDay returns one day of the plan at the given week number.
// A label missing from the base week gives a rest day.
func (p *Plan) MaterializeDay(label string, week int, adaptiveFactor float64) progression.MaterializedDay {
	day, ok := p.DayTemplate(label)
	if !ok {
		day = progression.DayTemplate{Day: label}
	}
	return progression.MaterializeDay(day, week, p.ProgressionSettings, adaptiveFactor)
}
