package montecarlo

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/piglet/stats"
)

type StoppingCondition int

const (
	StopNone StoppingCondition = iota
	Stop95
	Stop98
	Stop99
)

const (
	DefaultTolerance     = 0.005
	DefaultCheckInterval = 500
	// GamesCutoff is the fewest games played before the stopping condition
	// is consulted at all.
	GamesCutoff = 1000
)

// AutoStopper decides when the first player's win rate is known well
// enough to stop simming.
type AutoStopper struct {
	stoppingCondition          StoppingCondition
	tolerance                  float64
	stopConditionCheckInterval uint64
	firstPlayerWins            stats.Statistic
}

func newAutostopper() *AutoStopper {
	return &AutoStopper{
		stoppingCondition:          StopNone,
		tolerance:                  DefaultTolerance,
		stopConditionCheckInterval: DefaultCheckInterval,
	}
}

func (a *AutoStopper) reset() {
	a.firstPlayerWins = stats.Statistic{}
}

func (a *AutoStopper) push(firstPlayerWon bool) {
	if firstPlayerWon {
		a.firstPlayerWins.Push(1)
	} else {
		a.firstPlayerWins.Push(0)
	}
}

func (a *AutoStopper) z() float64 {
	switch a.stoppingCondition {
	case Stop98:
		return stats.Z98
	case Stop99:
		return stats.Z99
	default:
		return stats.Z95
	}
}

// shouldStop returns true once the confidence interval on the first
// player's win rate is narrower than the tolerance on each side.
func (a *AutoStopper) shouldStop(gamesPlayed uint64) bool {
	if a.stoppingCondition == StopNone || gamesPlayed < GamesCutoff {
		return false
	}
	lo, hi := a.firstPlayerWins.ConfidenceInterval(a.z())
	halfWidth := (hi - lo) / 2
	log.Debug().Uint64("games", gamesPlayed).Float64("half-width", halfWidth).
		Float64("tolerance", a.tolerance).Msg("checking-stopping-condition")
	return halfWidth < a.tolerance
}
