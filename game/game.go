package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// MaxTurns bounds a single game. Two strategies that both hold on an empty
// turn total would otherwise pass forever.
const MaxTurns = 100000

var (
	ErrGameOver     = errors.New("game is already over")
	ErrTurnLimit    = errors.New("turn limit reached")
	ErrInvalidScore = errors.New("invalid starting score")
)

type PlayState int

const (
	StatePlaying PlayState = iota
	StateGameOver
)

// Randomness is the source of coin flips and die rolls. *frand.RNG
// satisfies it.
type Randomness interface {
	Intn(n int) int
}

// Game is a single two-player game of Piglet or Pig. Player indexes are 0
// and 1; player 0 moves first unless SetPlayerOnTurn says otherwise.
// A Game does not care who is playing it; strategies are passed in.
type Game struct {
	variant Variant
	goal    int

	playing   PlayState
	onturn    int
	turnnum   int
	turnTotal int
	winner    int
	players   [2]playerState
}

func NewGame(variant Variant, goal int) *Game {
	return &Game{
		variant: variant,
		goal:    goal,
		winner:  -1,
	}
}

// StartGame resets the game, giving each player the passed-in banked score.
func (g *Game) StartGame(scores [2]int) error {
	for idx, s := range scores {
		if s < 0 || s >= g.goal {
			return fmt.Errorf("%w: player %d has %d, goal is %d", ErrInvalidScore, idx, s, g.goal)
		}
	}
	for idx := range g.players {
		g.players[idx].reset()
		g.players[idx].points = scores[idx]
	}
	g.playing = StatePlaying
	g.onturn = 0
	g.turnnum = 0
	g.turnTotal = 0
	g.winner = -1
	return nil
}

func otherPlayer(idx int) int {
	return (idx + 1) % 2
}

// Perspective returns the state as seen by the player on turn: their banked
// score, their opponent's banked score, and the unbanked turn total.
func (g *Game) Perspective() (i, j, k int) {
	return g.players[g.onturn].points, g.players[otherPlayer(g.onturn)].points, g.turnTotal
}

// Flip flips the coin (or rolls the die) for the player on turn. It returns
// true if the flip lost the turn total and passed the turn.
func (g *Game) Flip(rng Randomness) (bool, error) {
	if g.playing == StateGameOver {
		return false, ErrGameOver
	}
	o := g.variant.outcomes()
	face := rng.Intn(o.faces)
	if face < o.busts {
		g.endTurn()
		return true, nil
	}
	g.turnTotal += o.gains[face-o.busts]
	if g.players[g.onturn].points+g.turnTotal >= g.goal {
		// Reaching the goal banks immediately.
		g.bank()
	}
	return false, nil
}

// Hold banks the turn total and passes the turn.
func (g *Game) Hold() error {
	if g.playing == StateGameOver {
		return ErrGameOver
	}
	g.bank()
	return nil
}

func (g *Game) bank() {
	g.players[g.onturn].points += g.turnTotal
	if g.players[g.onturn].points >= g.goal {
		g.players[g.onturn].turns++
		g.winner = g.onturn
		g.playing = StateGameOver
		g.turnTotal = 0
		return
	}
	g.endTurn()
}

func (g *Game) endTurn() {
	g.players[g.onturn].turns++
	g.turnTotal = 0
	g.turnnum++
	g.onturn = otherPlayer(g.onturn)
}

// PlayTurn plays out a whole turn for the player on turn, asking the
// strategy before every flip.
func (g *Game) PlayTurn(s Strategy, rng Randomness) error {
	if g.playing == StateGameOver {
		return ErrGameOver
	}
	onturn := g.onturn
	for g.playing == StatePlaying && g.onturn == onturn {
		i, j, k := g.Perspective()
		if s.Action(i, j, k) == Hold {
			return g.Hold()
		}
		if _, err := g.Flip(rng); err != nil {
			return err
		}
	}
	return nil
}

// Play plays the game to completion and returns the index of the winner.
func (g *Game) Play(strategies [2]Strategy, rng Randomness) (int, error) {
	for g.playing == StatePlaying {
		if g.turnnum >= MaxTurns {
			log.Debug().Int("turnnum", g.turnnum).Msg("game-turn-limit")
			return -1, ErrTurnLimit
		}
		if err := g.PlayTurn(strategies[g.onturn], rng); err != nil {
			return -1, err
		}
	}
	return g.winner, nil
}

func (g *Game) Variant() Variant {
	return g.variant
}

func (g *Game) Goal() int {
	return g.goal
}

func (g *Game) Playing() PlayState {
	return g.playing
}

func (g *Game) PlayerOnTurn() int {
	return g.onturn
}

func (g *Game) SetPlayerOnTurn(onturn int) {
	g.onturn = onturn
}

func (g *Game) Turn() int {
	return g.turnnum
}

func (g *Game) TurnTotal() int {
	return g.turnTotal
}

// Winner is the index of the winning player, or -1 if the game is still on.
func (g *Game) Winner() int {
	return g.winner
}

func (g *Game) PointsFor(playerIdx int) int {
	return g.players[playerIdx].points
}

func (g *Game) TurnsFor(playerIdx int) int {
	return g.players[playerIdx].turns
}

func (g *Game) SpreadFor(playerIdx int) int {
	return g.PointsFor(playerIdx) - g.PointsFor(otherPlayer(playerIdx))
}
