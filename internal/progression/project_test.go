package progression_test

import (
	"math"
	"testing"

	"github.com/2beens/gymplan/internal/progression"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestProject_WeekOneIsBaseline(t *testing.T) {
	strategies := []progression.Strategy{progression.StrategyLinear, progression.StrategyPercentage}
	for _, strategy := range strategies {
		for _, inc := range []float64{0, 1, 2.5, 50, -3} {
			for _, mult := range []float64{0.5, 1, 2, 7} {
				for _, factor := range []float64{0.9, 0.95, 1, 1.1} {
					assert.Equal(t, 80.0, progression.Project(80, 1, inc, mult, strategy, factor))
				}
			}
		}
	}
}

func TestProject_Linear(t *testing.T) {
	for week := 1; week <= 20; week++ {
		got := progression.Project(10, week, 2, 1.0, progression.StrategyLinear, 1.0)
		assert.InDelta(t, 10+2*float64(week-1), got, 1e-9, "week %d", week)
	}

	// multiplier and adaptive factor scale the weekly delta
	assert.InDelta(t, 80+2.5*4*1.5*1.1, progression.Project(80, 5, 2.5, 1.5, progression.StrategyLinear, 1.1), 1e-9)
	assert.InDelta(t, 80+2.5*4*0.5*0.9, progression.Project(80, 5, 2.5, 0.5, progression.StrategyLinear, 0.9), 1e-9)
}

func TestProject_Percentage(t *testing.T) {
	assert.InDelta(t, 100*math.Pow(1.05, 2), progression.Project(100, 3, 5, 1.0, progression.StrategyPercentage, 1.0), 1e-9)
	assert.InDelta(t, 20*math.Pow(1.1, 4*2*0.95), progression.Project(20, 5, 10, 2, progression.StrategyPercentage, 0.95), 1e-9)
	assert.InDelta(t, 20.0, progression.Project(20, 8, 0, 1, progression.StrategyPercentage, 1), 1e-9)
}

func TestProject_UnknownStrategyIsLinear(t *testing.T) {
	assert.InDelta(t, 14.0, progression.Project(10, 3, 2, 1, progression.Strategy("wavy"), 1), 1e-9)
}

func TestStrategy_IsValid(t *testing.T) {
	assert.True(t, progression.StrategyLinear.IsValid())
	assert.True(t, progression.StrategyPercentage.IsValid())
	assert.False(t, progression.Strategy("").IsValid())
	assert.False(t, progression.Strategy("exponential").IsValid())
}
