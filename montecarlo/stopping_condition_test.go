package montecarlo

import (
	"testing"

	"github.com/matryer/is"
)

func TestShouldStop(t *testing.T) {
	is := is.New(t)
	a := newAutostopper()
	a.stoppingCondition = Stop95
	a.tolerance = 0.05

	// not consulted before the cutoff.
	for i := 0; i < GamesCutoff-1; i++ {
		a.push(i%2 == 0)
	}
	is.True(!a.shouldStop(GamesCutoff - 1))

	a.push(true)
	// half width is about 1.96 * 0.5 / sqrt(1000), well under 0.05.
	is.True(a.shouldStop(GamesCutoff))

	a.tolerance = 0.01
	is.True(!a.shouldStop(GamesCutoff))

	a.stoppingCondition = StopNone
	a.tolerance = 1
	is.True(!a.shouldStop(GamesCutoff))

	a.reset()
	is.Equal(a.firstPlayerWins.Iterations(), 0)
}

func TestStoppingConditionZ(t *testing.T) {
	is := is.New(t)
	a := newAutostopper()
	a.stoppingCondition = Stop99
	z99 := a.z()
	a.stoppingCondition = Stop95
	is.True(z99 > a.z())
}
