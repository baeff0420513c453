// Package solver computes the optimal hold/flip policy for Piglet and Pig by
// value iteration over every (player score, opponent score, turn total)
// state.
package solver

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/piglet/game"
)

const (
	DefaultMaxSweeps      = 100000
	DefaultMemoryFraction = 0.5
	// bytes per state: one float64 win probability and one bool decision.
	bytesPerState = 9
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNonConvergence  = errors.New("value iteration did not converge")
	ErrNonMonotone     = errors.New("flip decisions are not monotone in the turn total")
)

// Solver holds the converged win probabilities and flip decisions for one
// goal. All of the work happens in NewSolver; after that a Solver is
// read-only and safe for concurrent use.
type Solver struct {
	variant        game.Variant
	goal           int
	epsilon        float64
	maxSweeps      int
	memoryFraction float64

	p    *Table[float64]
	flip *Table[bool]

	residuals []float64
	elapsed   time.Duration
}

type Option func(*Solver)

func WithVariant(v game.Variant) Option {
	return func(s *Solver) {
		s.variant = v
	}
}

// WithMaxSweeps bounds the number of full sweeps before giving up with
// ErrNonConvergence.
func WithMaxSweeps(n int) Option {
	return func(s *Solver) {
		s.maxSweeps = n
	}
}

// WithMemoryFraction sets the largest share of system memory the tables are
// allowed to take up. Zero or less turns the check off.
func WithMemoryFraction(f float64) Option {
	return func(s *Solver) {
		s.memoryFraction = f
	}
}

// NewSolver validates its arguments, allocates the tables and runs value
// iteration to convergence.
func NewSolver(goal int, epsilon float64, opts ...Option) (*Solver, error) {
	s := &Solver{
		variant:        game.Piglet,
		goal:           goal,
		epsilon:        epsilon,
		maxSweeps:      DefaultMaxSweeps,
		memoryFraction: DefaultMemoryFraction,
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	s.p = NewTable[float64](goal)
	s.flip = NewTable[bool](goal)

	tstart := time.Now()
	err := s.valueIterate()
	s.elapsed = time.Since(tstart)
	if err != nil {
		return nil, err
	}
	log.Info().Str("variant", s.variant.String()).Int("goal", goal).
		Float64("epsilon", epsilon).Int("sweeps", s.Sweeps()).
		Dur("elapsed", s.elapsed).Msg("value-iteration-converged")
	return s, nil
}

func (s *Solver) validate() error {
	if s.goal <= 0 {
		return fmt.Errorf("%w: goal must be positive, got %d", ErrInvalidArgument, s.goal)
	}
	if !(s.epsilon > 0) {
		return fmt.Errorf("%w: epsilon must be positive, got %v", ErrInvalidArgument, s.epsilon)
	}
	if s.maxSweeps <= 0 {
		return fmt.Errorf("%w: max sweeps must be positive, got %d", ErrInvalidArgument, s.maxSweeps)
	}
	if !s.variant.Valid() {
		return fmt.Errorf("%w: %v", game.ErrUnknownVariant, s.variant)
	}
	if s.memoryFraction > 0 {
		totalMem := memory.TotalMemory()
		need := math.Pow(float64(s.goal), 3) * bytesPerState
		if totalMem > 0 && need > s.memoryFraction*float64(totalMem) {
			return fmt.Errorf("%w: goal %d needs %.0f bytes of tables, limit is %.0f of %d",
				ErrInvalidArgument, s.goal, need, s.memoryFraction*float64(totalMem), totalMem)
		}
	}
	return nil
}

// valueIterate relaxes the tables in place until a sweep changes no entry by
// epsilon or more. States are visited by ascending i, then j, then k, and
// each update reads entries already rewritten earlier in the same sweep.
// Changing that order changes the numbers.
func (s *Solver) valueIterate() error {
	for sweep := 1; ; sweep++ {
		maxChange := 0.0
		for i := 0; i < s.goal; i++ {
			for j := 0; j < s.goal; j++ {
				for k := 0; k < s.goal-i; k++ {
					oldProb := s.p.At(i, j, k)
					pFlip := s.continueValue(i, j, k)
					pHold := 1.0 - s.PWin(j, i+k, 0)
					s.p.Set(i, j, k, math.Max(pFlip, pHold))
					s.flip.Set(i, j, k, pFlip > pHold)
					maxChange = math.Max(maxChange, math.Abs(s.p.At(i, j, k)-oldProb))
				}
			}
		}
		s.residuals = append(s.residuals, maxChange)
		log.Debug().Int("sweep", sweep).Float64("max-change", maxChange).Msg("sweep-done")
		if maxChange < s.epsilon {
			return nil
		}
		if sweep >= s.maxSweeps {
			log.Error().Int("sweeps", sweep).Float64("max-change", maxChange).
				Float64("epsilon", s.epsilon).Msg("sweep-limit-reached")
			return fmt.Errorf("%w: max change %g after %d sweeps, epsilon %g",
				ErrNonConvergence, maxChange, sweep, s.epsilon)
		}
	}
}

// continueValue is the win probability of flipping once more and then
// playing on optimally. For Piglet this is
// (1 - pWin(j, i, 0) + pWin(i, j, k+1)) / 2.
func (s *Solver) continueValue(i, j, k int) float64 {
	bust := 1.0 - s.PWin(j, i, 0)
	gained := 0.0
	for _, r := range s.variant.Gains() {
		gained += s.PWin(i, j, k+r)
	}
	return (float64(s.variant.Busts())*bust + gained) / float64(s.variant.Faces())
}

// PWin is the probability that the player to move wins from (i, j, k).
// Reaching the goal this turn is a certain win and an opponent at the goal
// is a certain loss; everything else comes from the table.
func (s *Solver) PWin(i, j, k int) float64 {
	if i+k >= s.goal {
		return 1.0
	} else if j >= s.goal {
		return 0.0
	}
	return s.p.At(i, j, k)
}

func (s *Solver) Variant() game.Variant {
	return s.variant
}

func (s *Solver) Goal() int {
	return s.goal
}

func (s *Solver) Epsilon() float64 {
	return s.epsilon
}

// Sweeps is the number of full sweeps value iteration took.
func (s *Solver) Sweeps() int {
	return len(s.residuals)
}

// Residuals returns the largest change of each sweep, in order.
func (s *Solver) Residuals() []float64 {
	return append([]float64(nil), s.residuals...)
}

func (s *Solver) Elapsed() time.Duration {
	return s.elapsed
}
