package progression

// ExerciseType tells which kind of details an exercise carries.
type ExerciseType string

const (
	ExerciseTypeRepsSetsWeight ExerciseType = "repsSetsWeight"
	ExerciseTypeTimer          ExerciseType = "timer"
	ExerciseTypeHangboard      ExerciseType = "hangboard"
)

func (et ExerciseType) String() string {
	return string(et)
}

func (et ExerciseType) IsValid() bool {
	switch et {
	case ExerciseTypeRepsSetsWeight,
		ExerciseTypeTimer,
		ExerciseTypeHangboard:
		return true
	default:
		return false
	}
}

type ExerciseTemplate struct {
	Name            string       `json:"name"`
	Type            ExerciseType `json:"type"`
	BaselineDetails Details      `json:"baselineDetails"`
}

type DayTemplate struct {
	Day       string             `json:"day"`
	Focus     string             `json:"focus"`
	Exercises []ExerciseTemplate `json:"exercises"`
}

func (d DayTemplate) IsRestDay() bool {
	return len(d.Exercises) == 0
}

type MaterializedExercise struct {
	Name    string       `json:"name"`
	Type    ExerciseType `json:"type"`
	Details Details      `json:"details"`
}

type MaterializedDay struct {
	Day       string                 `json:"day"`
	Focus     string                 `json:"focus"`
	Exercises []MaterializedExercise `json:"exercises"`
}

func (d MaterializedDay) IsRestDay() bool {
	return len(d.Exercises) == 0
}

// ExerciseNames returns the names of the day's exercises, in order.
func (d MaterializedDay) ExerciseNames() []string {
	names := make([]string, 0, len(d.Exercises))
	for _, ex := range d.Exercises {
		names = append(names, ex.Name)
	}
	return names
}

// MaterializeDay projects every exercise of a day template to the given week.
// Exercises progress independently of each other.
func MaterializeDay(day DayTemplate, weekNumber int, settings Settings, adaptiveFactor float64) MaterializedDay {
	materialized := MaterializedDay{
		Day:       day.Day,
		Focus:     day.Focus,
		Exercises: make([]MaterializedExercise, 0, len(day.Exercises)),
	}

	for _, ex := range day.Exercises {
		materialized.Exercises = append(materialized.Exercises, MaterializedExercise{
			Name:    ex.Name,
			Type:    ex.Type,
			Details: ProjectDetails(ex.BaselineDetails, weekNumber, settings, adaptiveFactor),
		})
	}

	return materialized
}

// MaterializeWeek returns the fully projected week for the given week number,
// one materialized day per template day, in template order.
func MaterializeWeek(baseWeek []DayTemplate, weekNumber int, settings Settings, adaptiveFactor float64) []MaterializedDay {
	week := make([]MaterializedDay, 0, len(baseWeek))
	for _, day := range baseWeek {
		week = append(week, MaterializeDay(day, weekNumber, settings, adaptiveFactor))
	}
	return week
}
