package progression

import (
	"math"
)

// Strategy is the growth law applied to a progressable value per week.
type Strategy string

const (
	StrategyLinear     Strategy = "linear"
	StrategyPercentage Strategy = "percentage"
)

func (s Strategy) String() string {
	return string(s)
}

func (s Strategy) IsValid() bool {
	switch s {
	case StrategyLinear, StrategyPercentage:
		return true
	default:
		return false
	}
}

// Project returns the value of a single field at the given week, starting from its week 1 baseline.
// Week 1 is always the baseline itself. Weeks below 1 are not defined, callers make sure they
// never pass one (see CurrentWeekNumber).
// An unknown strategy is projected linearly.
func Project(
	baseValue float64,
	weekNumber int,
	increment float64,
	userMultiplier float64,
	strategy Strategy,
	adaptiveFactor float64,
) float64 {
	weeksProgressed := float64(weekNumber - 1)
	if weeksProgressed == 0 {
		return baseValue
	}

	switch strategy {
	case StrategyPercentage:
		exponent := weeksProgressed * userMultiplier * adaptiveFactor
		return baseValue * math.Pow(1+increment/100, exponent)
	default:
		return baseValue + increment*weeksProgressed*userMultiplier*adaptiveFactor
	}
}
