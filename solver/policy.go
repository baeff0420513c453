package solver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/samber/lo"

	"github.com/domino14/piglet/game"
)

// Flip reports whether flipping beats holding at a table-resident state.
func (s *Solver) Flip(i, j, k int) bool {
	return s.flip.At(i, j, k)
}

// Action is the optimal action at (i, j, k). A turn total that already
// reaches the goal is always held.
func (s *Solver) Action(i, j, k int) game.Action {
	if i+k >= s.goal {
		return game.Hold
	}
	if s.flip.At(i, j, k) {
		return game.Flip
	}
	return game.Hold
}

// HoldThreshold is the turn total at which a player with i points, facing j,
// should hold. It assumes flip decisions never turn back on as k grows;
// see CheckMonotone.
func (s *Solver) HoldThreshold(i, j int) int {
	k := 0
	for k < s.goal-i && s.flip.At(i, j, k) {
		k++
	}
	return k
}

// HoldGrid returns the hold threshold for every (i, j), indexed [i][j].
func (s *Solver) HoldGrid() Grid {
	g := make(Grid, s.goal)
	for i := range g {
		g[i] = make([]int, s.goal)
		for j := range g[i] {
			g[i][j] = s.HoldThreshold(i, j)
		}
	}
	return g
}

// CheckMonotone returns ErrNonMonotone if some flip decision turns back on
// for a larger turn total after having turned off.
func (s *Solver) CheckMonotone() error {
	for i := 0; i < s.goal; i++ {
		for j := 0; j < s.goal; j++ {
			held := -1
			for k := 0; k < s.goal-i; k++ {
				if !s.flip.At(i, j, k) {
					if held < 0 {
						held = k
					}
				} else if held >= 0 {
					return fmt.Errorf("%w: at i=%d j=%d, hold at k=%d but flip at k=%d",
						ErrNonMonotone, i, j, held, k)
				}
			}
		}
	}
	return nil
}

// Grid is a table of hold thresholds indexed [i][j]. It is also a
// game.Strategy: flip until the turn total reaches the threshold.
type Grid [][]int

func (g Grid) Action(i, j, k int) game.Action {
	if k >= g[i][j] {
		return game.Hold
	}
	return game.Flip
}

func (g Grid) Name() string {
	return "optimal"
}

// String renders one row per line with space-separated thresholds.
func (g Grid) String() string {
	var ss strings.Builder
	for _, row := range g {
		ss.WriteString(strings.Join(lo.Map(row, func(v int, _ int) string {
			return strconv.Itoa(v)
		}), " "))
		ss.WriteString("\n")
	}
	return ss.String()
}

// Fingerprint hashes the rendered grid, so that two runs can be compared at
// a glance in the logs.
func (g Grid) Fingerprint() uint64 {
	return xxhash.Sum64String(g.String())
}
