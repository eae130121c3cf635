package progression

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
)

// Names of the progressable fields. Every other field of a details record
// (rest, description, anything added later) is carried through untouched.
const (
	FieldSets        = "sets"
	FieldReps        = "reps"
	FieldWeight      = "weight"
	FieldDuration    = "duration"
	FieldRest        = "rest"
	FieldDescription = "description"
)

// Details is the heterogeneous set of values describing one exercise:
// the week 1 baseline in a template, or the projected values in a materialized exercise.
type Details map[string]Field

func (d Details) Get(name string) (Field, bool) {
	f, ok := d[name]
	return f, ok
}

// Increments maps a progressable field name to its per-week delta (linear)
// or per-week percentage (percentage).
type Increments map[string]float64

// UnmarshalJSON keeps only numeric increments (numbers or numeric strings); anything else
// is dropped, which simply leaves that field without progression.
func (inc *Increments) UnmarshalJSON(data []byte) error {
	var rawIncrements map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawIncrements); err != nil {
		return fmt.Errorf("unmarshal increments: %w", err)
	}

	parsed := make(Increments, len(rawIncrements))
	for name, raw := range rawIncrements {
		if string(raw) == "null" {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err == nil {
			parsed[name] = v
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			parsed[name] = v
		}
	}

	*inc = parsed
	return nil
}

// lookup returns the increment for a field, reporting false when it is absent,
// zero or not a finite number.
func (inc Increments) lookup(name string) (float64, bool) {
	v, ok := inc[name]
	if !ok || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Settings is the progression policy of a plan.
type Settings struct {
	Strategy        Strategy   `json:"strategy"`
	Increments      Increments `json:"increments"`
	UserMultiplier  float64    `json:"userMultiplier"`
	AdaptiveEnabled bool       `json:"adaptiveEnabled"`
}

// ProjectDetails returns the details of an exercise at the given week.
// The baseline is never modified; the result starts as a shallow copy of it and
// only sets, reps, weight and duration are rewritten. A field that cannot be projected
// (no increment, unparseable value) keeps its baseline value.
// Week 1 is the baseline exactly as stored, formatting included.
func ProjectDetails(baseline Details, weekNumber int, settings Settings, adaptiveFactor float64) Details {
	projected := maps.Clone(baseline)
	if projected == nil {
		projected = Details{}
	}
	if weekNumber == 1 {
		return projected
	}

	project := func(base, increment float64) float64 {
		return Project(base, weekNumber, increment, settings.UserMultiplier, settings.Strategy, adaptiveFactor)
	}

	if f, ok := baseline[FieldSets]; ok && f.Kind == FieldNumeric {
		if inc, ok := settings.Increments.lookup(FieldSets); ok {
			projected[FieldSets] = Numeric(math.Round(project(f.Value, inc)))
		}
	}

	if f, ok := baseline[FieldReps]; ok {
		if inc, ok := settings.Increments.lookup(FieldReps); ok {
			switch f.Kind {
			case FieldNumeric, FieldUnitSuffixed:
				v := math.Round(project(f.Value, inc))
				projected[FieldReps] = f.WithValue(v, formatNumber(v))
			default:
				// descriptive reps ("AMRAP", "8-12") stay as they are
			}
		}
	}

	if f, ok := baseline[FieldWeight]; ok && f.HasNumber() {
		if inc, ok := settings.Increments.lookup(FieldWeight); ok {
			v := project(f.Value, inc)
			switch f.Kind {
			case FieldNumeric:
				projected[FieldWeight] = Numeric(math.Round(v*10) / 10)
			default:
				projected[FieldWeight] = f.WithValue(v, strconv.FormatFloat(v, 'f', 1, 64))
			}
		}
	}

	if f, ok := baseline[FieldDuration]; ok && f.Kind == FieldNumeric {
		if inc, ok := settings.Increments.lookup(FieldDuration); ok {
			projected[FieldDuration] = Numeric(math.Round(project(f.Value, inc)))
		}
	}

	return projected
}
