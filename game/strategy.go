package game

import "fmt"

type Action int

const (
	Hold Action = iota
	Flip
)

func (a Action) String() string {
	switch a {
	case Hold:
		return "hold"
	case Flip:
		return "flip"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// A Strategy picks an action given the state from the point of view of the
// player on turn: i is their banked score, j the opponent's, and k the turn
// total. It is only asked about states where i+k is below the goal.
type Strategy interface {
	Action(i, j, k int) Action
}

// Named is implemented by strategies with a display name.
type Named interface {
	Name() string
}

// StrategyFunc adapts a plain function to a Strategy.
type StrategyFunc func(i, j, k int) Action

func (f StrategyFunc) Action(i, j, k int) Action {
	return f(i, j, k)
}

// HoldAt keeps flipping until the turn total reaches the given value, then
// holds. HoldAt(0) always holds.
type HoldAt int

func (h HoldAt) Action(i, j, k int) Action {
	if k >= int(h) {
		return Hold
	}
	return Flip
}

func (h HoldAt) Name() string {
	return fmt.Sprintf("hold-at-%d", int(h))
}
