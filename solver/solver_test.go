package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/matryer/is"
	"github.com/pbnjay/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/piglet/game"
)

const goal10Grid = `2 2 2 2 2 2 2 2 3 10
1 2 2 2 2 2 2 3 3 9
1 1 2 2 2 2 2 2 3 8
1 1 1 2 2 2 2 2 3 7
1 1 1 1 2 2 2 2 2 6
1 1 1 1 1 2 2 2 2 5
1 1 1 1 1 1 2 2 2 4
1 1 1 1 1 1 1 1 3 3
1 1 1 1 1 1 1 2 2 2
1 1 1 1 1 1 1 1 1 1
`

func mustSolve(t *testing.T, goal int, epsilon float64, opts ...Option) *Solver {
	t.Helper()
	s, err := NewSolver(goal, epsilon, opts...)
	require.NoError(t, err)
	return s
}

func TestReferenceGrid(t *testing.T) {
	s := mustSolve(t, 10, 1e-9)
	assert.Equal(t, goal10Grid, s.HoldGrid().String())
	assert.Equal(t, 109, s.Sweeps())
	assert.InDelta(t, 0.5224794082824, s.PWin(0, 0, 0), 1e-9)
	assert.Less(t, s.Residuals()[s.Sweeps()-1], 1e-9)
}

func TestGoalOne(t *testing.T) {
	is := is.New(t)
	s := mustSolve(t, 1, 1e-9)
	grid := s.HoldGrid()
	is.Equal(len(grid), 1)
	is.Equal(len(grid[0]), 1)
	is.Equal(grid[0][0], 1)
	is.Equal(grid.String(), "1\n")
	is.True(math.Abs(s.PWin(0, 0, 0)-2.0/3.0) < 1e-8)
	is.Equal(s.Sweeps(), 31)
}

func TestPWinBoundaries(t *testing.T) {
	is := is.New(t)
	for _, v := range []game.Variant{game.Piglet, game.Pig} {
		s := mustSolve(t, 8, 1e-9, WithVariant(v))
		goal := s.Goal()
		for i := 0; i < goal+3; i++ {
			for j := 0; j < goal+3; j++ {
				for k := 0; k < goal+3; k++ {
					if i+k >= goal {
						is.Equal(s.PWin(i, j, k), 1.0)
					} else if j >= goal {
						is.Equal(s.PWin(i, j, k), 0.0)
					} else {
						p := s.PWin(i, j, k)
						is.True(p >= 0 && p <= 1)
					}
				}
			}
		}
	}
}

// Passing the turn is always allowed, so the player to move is never worse
// off than in the mirrored position with the opponent to move.
func TestFreshTurnFirstMoverAdvantage(t *testing.T) {
	is := is.New(t)
	for _, v := range []game.Variant{game.Piglet, game.Pig} {
		s := mustSolve(t, 10, 1e-9, WithVariant(v))
		for i := 0; i < s.Goal(); i++ {
			for j := 0; j < s.Goal(); j++ {
				is.True(s.PWin(i, j, 0)+s.PWin(j, i, 0) >= 1-1e-6)
			}
		}
	}
	// With a goal of one both players are in the same state, so the sum is
	// twice the first mover's win probability.
	s := mustSolve(t, 1, 1e-12)
	is.True(math.Abs(s.PWin(0, 0, 0)+s.PWin(0, 0, 0)-4.0/3.0) < 1e-9)
}

func TestFlipIsMonotone(t *testing.T) {
	for _, tc := range []struct {
		variant game.Variant
		goal    int
	}{
		{game.Piglet, 1},
		{game.Piglet, 2},
		{game.Piglet, 10},
		{game.Piglet, 25},
		{game.Pig, 10},
		{game.Pig, 20},
	} {
		s := mustSolve(t, tc.goal, 1e-9, WithVariant(tc.variant))
		assert.NoError(t, s.CheckMonotone(), "%v goal %d", tc.variant, tc.goal)
	}
}

func TestDeterminism(t *testing.T) {
	is := is.New(t)
	a := mustSolve(t, 12, 1e-9)
	b := mustSolve(t, 12, 1e-9)
	is.Equal(a.HoldGrid(), b.HoldGrid())
	is.Equal(a.HoldGrid().Fingerprint(), b.HoldGrid().Fingerprint())
	is.Equal(a.Residuals(), b.Residuals())
	is.Equal(a.p.cells, b.p.cells)
}

func TestCoarserEpsilon(t *testing.T) {
	fine := mustSolve(t, 10, 1e-9).HoldGrid()
	coarse := mustSolve(t, 10, 1e-6).HoldGrid()
	larger := 0
	for i := range fine {
		for j := range fine[i] {
			if coarse[i][j] > fine[i][j] {
				larger++
			}
		}
	}
	assert.LessOrEqual(t, larger, 10)
}

func TestThresholdBounds(t *testing.T) {
	is := is.New(t)
	for _, v := range []game.Variant{game.Piglet, game.Pig} {
		s := mustSolve(t, 15, 1e-9, WithVariant(v))
		grid := s.HoldGrid()
		is.Equal(len(grid), 15)
		for i := range grid {
			is.Equal(len(grid[i]), 15)
			for j := range grid[i] {
				is.True(grid[i][j] >= 0)
				is.True(grid[i][j] <= s.Goal()-i)
			}
		}
	}
}

// After convergence the stored value is the better of the two candidates
// and the stored decision agrees with any clear-cut comparison.
func TestTablesAreConsistent(t *testing.T) {
	s := mustSolve(t, 10, 1e-12)
	for i := 0; i < s.Goal(); i++ {
		for j := 0; j < s.Goal(); j++ {
			for k := 0; k < s.Goal()-i; k++ {
				pFlip := s.continueValue(i, j, k)
				pHold := 1.0 - s.PWin(j, i+k, 0)
				assert.InDelta(t, math.Max(pFlip, pHold), s.PWin(i, j, k), 1e-9)
				if math.Abs(pFlip-pHold) > 1e-6 {
					assert.Equal(t, pFlip > pHold, s.Flip(i, j, k), "state (%d, %d, %d)", i, j, k)
				}
			}
		}
	}
}

// On the first sweep of goal 1 both actions win with certainty, and the
// coarse epsilon stops the solve right there.
func TestTiesHold(t *testing.T) {
	is := is.New(t)
	s := mustSolve(t, 1, 2)
	is.Equal(s.Sweeps(), 1)
	is.Equal(s.PWin(0, 0, 0), 1.0)
	is.True(!s.Flip(0, 0, 0))
	is.Equal(s.Action(0, 0, 0), game.Hold)
	is.Equal(s.HoldThreshold(0, 0), 0)
}

func TestGridAgreesWithSolver(t *testing.T) {
	is := is.New(t)
	s := mustSolve(t, 10, 1e-9)
	grid := s.HoldGrid()
	for i := 0; i < s.Goal(); i++ {
		for j := 0; j < s.Goal(); j++ {
			for k := 0; k < s.Goal()-i; k++ {
				is.Equal(grid.Action(i, j, k), s.Action(i, j, k))
			}
		}
	}
	is.Equal(s.Action(9, 0, 1), game.Hold)
}

func TestInvalidArguments(t *testing.T) {
	type testcase struct {
		goal    int
		epsilon float64
		opts    []Option
	}
	for _, tc := range []testcase{
		{0, 1e-9, nil},
		{-3, 1e-9, nil},
		{10, 0, nil},
		{10, -1e-9, nil},
		{10, math.NaN(), nil},
		{10, 1e-9, []Option{WithMaxSweeps(0)}},
	} {
		s, err := NewSolver(tc.goal, tc.epsilon, tc.opts...)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}

	_, err := NewSolver(10, 1e-9, WithVariant(game.Variant(7)))
	assert.ErrorIs(t, err, game.ErrUnknownVariant)
}

func TestMemoryGuard(t *testing.T) {
	if memory.TotalMemory() == 0 {
		t.Skip("system memory is unknown")
	}
	_, err := NewSolver(1<<20, 1e-9)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNonConvergence(t *testing.T) {
	is := is.New(t)
	s, err := NewSolver(10, 1e-9, WithMaxSweeps(5))
	is.True(s == nil)
	is.True(errors.Is(err, ErrNonConvergence))

	// The limit is inclusive of the converging sweep.
	_, err = NewSolver(1, 1e-9, WithMaxSweeps(31))
	is.NoErr(err)
}

func TestTableBounds(t *testing.T) {
	tbl := NewTable[float64](4)
	tbl.Set(3, 3, 0, 0.5)
	assert.Equal(t, 0.5, tbl.At(3, 3, 0))
	assert.True(t, tbl.Contains(0, 3, 3))
	assert.False(t, tbl.Contains(1, 3, 3))
	assert.Panics(t, func() { tbl.At(1, 0, 3) })
	assert.Panics(t, func() { tbl.At(4, 0, 0) })
	assert.Panics(t, func() { tbl.Set(0, -1, 0, 1) })
	assert.Panics(t, func() { tbl.At(0, 0, -1) })
}
