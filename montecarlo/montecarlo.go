// Package montecarlo plays many simulated games between two strategies, to
// check a solved policy against what actually happens at the table.
package montecarlo

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/piglet/game"
)

var (
	ErrNotReady = errors.New("please initialize the simulation first")
)

// gameRecord is the outcome of one simulated game.
type gameRecord struct {
	played bool
	winner int
	// turns taken by the winner, and their final margin.
	turns  int
	margin int
}

// Simmer plays games between two strategies. Player 0 always moves first.
type Simmer struct {
	variant     game.Variant
	goal        int
	strategies  [2]game.Strategy
	startScores [2]int

	threads int
	seed    uint64
	seeded  bool

	autostopper *AutoStopper
	gamesPlayed atomic.Uint64
	ready       bool
}

func (s *Simmer) Init(variant game.Variant, goal int, strategies [2]game.Strategy) error {
	if goal <= 0 {
		return fmt.Errorf("goal must be positive, got %d", goal)
	}
	if !variant.Valid() {
		return fmt.Errorf("%w: %v", game.ErrUnknownVariant, variant)
	}
	if strategies[0] == nil || strategies[1] == nil {
		return errors.New("both players need a strategy")
	}
	s.variant = variant
	s.goal = goal
	s.strategies = strategies
	s.startScores = [2]int{}
	s.threads = max(1, runtime.NumCPU())
	s.autostopper = newAutostopper()
	s.ready = true
	return nil
}

func (s *Simmer) SetThreads(threads int) {
	s.threads = max(1, threads)
}

func (s *Simmer) Threads() int {
	return s.threads
}

// SetSeed makes the simulation reproducible. Results depend on both the seed
// and the thread count.
func (s *Simmer) SetSeed(seed uint64) {
	s.seed = seed
	s.seeded = true
}

// SetStartScores sets the banked scores both players start with.
func (s *Simmer) SetStartScores(scores [2]int) error {
	for idx, sc := range scores {
		if sc < 0 || sc >= s.goal {
			return fmt.Errorf("%w: player %d starts at %d, goal is %d", game.ErrInvalidScore, idx, sc, s.goal)
		}
	}
	s.startScores = scores
	return nil
}

func (s *Simmer) SetStoppingCondition(sc StoppingCondition) {
	s.autostopper.stoppingCondition = sc
}

// SetAutostopTolerance sets the confidence-interval half width on the first
// player's win rate below which the simulation stops early.
func (s *Simmer) SetAutostopTolerance(tol float64) {
	s.autostopper.tolerance = tol
}

func (s *Simmer) SetAutostopCheckInterval(i uint64) {
	s.autostopper.stopConditionCheckInterval = max(1, i)
}

func (s *Simmer) GamesPlayed() int {
	return int(s.gamesPlayed.Load())
}

func (s *Simmer) rngFor(thread int) *frand.RNG {
	if !s.seeded {
		return frand.New()
	}
	seed := make([]byte, 32)
	binary.LittleEndian.PutUint64(seed[0:], s.seed)
	binary.LittleEndian.PutUint64(seed[8:], uint64(thread))
	return frand.NewCustom(seed, 1024, 12)
}

// Simulate plays up to the given number of games. It is a blocking function.
// Game i is played by thread i % threads, so a seeded run with no stopping
// condition always gives the same result.
func (s *Simmer) Simulate(ctx context.Context, games int) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	if !s.ready {
		return nil, ErrNotReady
	}
	if games <= 0 {
		return nil, fmt.Errorf("number of games must be positive, got %d", games)
	}
	s.gamesPlayed.Store(0)
	s.autostopper.reset()
	records := make([]gameRecord, games)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stopMu sync.Mutex
	autostopped := false

	tstart := time.Now()
	g := errgroup.Group{}
	for t := 0; t < s.threads; t++ {
		t := t
		g.Go(func() error {
			defer func() {
				logger.Debug().Msgf("Thread %v exiting sim", t)
			}()
			rng := s.rngFor(t)
			gm := game.NewGame(s.variant, s.goal)
			for idx := t; idx < games; idx += s.threads {
				if ctx.Err() != nil {
					return nil
				}
				rec, err := s.playOne(gm, rng)
				if err != nil {
					logger.Err(err).Int("game", idx).Msg("error simming game; canceling")
					cancel()
					return err
				}
				records[idx] = rec
				played := s.gamesPlayed.Add(1)

				if s.autostopper.stoppingCondition == StopNone {
					continue
				}
				stopMu.Lock()
				s.autostopper.push(rec.winner == 0)
				stop := played%s.autostopper.stopConditionCheckInterval == 0 &&
					s.autostopper.shouldStop(played)
				if stop && !autostopped {
					autostopped = true
					logger.Info().Uint64("games", played).Msg("reached stopping condition")
					cancel()
				}
				stopMu.Unlock()
			}
			return nil
		})
	}

	err := g.Wait()
	elapsed := time.Since(tstart)
	played := s.gamesPlayed.Load()
	logger.Info().Uint64("games", played).Float64("seconds", elapsed.Seconds()).
		Float64("games-per-sec", float64(played)/elapsed.Seconds()).Msg("sim-ended")
	if err != nil {
		return nil, err
	}
	res := newResult(s.strategies, records)
	if !autostopped && int(played) < games {
		// the caller's context ended early.
		return res, context.Cause(ctx)
	}
	return res, nil
}

func (s *Simmer) playOne(gm *game.Game, rng game.Randomness) (gameRecord, error) {
	if err := gm.StartGame(s.startScores); err != nil {
		return gameRecord{}, err
	}
	winner, err := gm.Play(s.strategies, rng)
	if err != nil {
		return gameRecord{}, err
	}
	return gameRecord{
		played: true,
		winner: winner,
		turns:  gm.TurnsFor(winner),
		margin: gm.SpreadFor(winner),
	}, nil
}
