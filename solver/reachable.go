package solver

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// State is a position from the point of view of the player to move: I is
// their banked score, J the opponent's and K the unbanked turn total.
type State struct {
	I int `json:"i" yaml:"i"`
	J int `json:"j" yaml:"j"`
	K int `json:"k" yaml:"k"`
}

func (st State) String() string {
	return fmt.Sprintf("(%d, %d, %d)", st.I, st.J, st.K)
}

func compareStates(a, b State) int {
	if c := cmp.Compare(a.I, b.I); c != 0 {
		return c
	}
	if c := cmp.Compare(a.J, b.J); c != 0 {
		return c
	}
	return cmp.Compare(a.K, b.K)
}

// Reachable returns every table state that can come up when both players
// follow the optimal policy from the given start, sorted by (I, J, K).
// Opponent turns are included, seen from the opponent's side.
func (s *Solver) Reachable(from State) ([]State, error) {
	if !s.p.Contains(from.I, from.J, from.K) {
		return nil, fmt.Errorf("%w: %v is not a state for goal %d", ErrInvalidArgument, from, s.goal)
	}
	visited := map[State]bool{from: true}
	queue := []State{from}
	next := make([]State, 0, len(s.variant.Gains())+1)

	for len(queue) > 0 {
		st := queue[0]
		queue = queue[1:]
		next = next[:0]
		if s.flip.At(st.I, st.J, st.K) {
			for _, r := range s.variant.Gains() {
				// a gain that reaches the goal ends the game.
				if st.I+st.K+r < s.goal {
					next = append(next, State{st.I, st.J, st.K + r})
				}
			}
			next = append(next, State{st.J, st.I, 0})
		} else {
			next = append(next, State{st.J, st.I + st.K, 0})
		}
		for _, n := range next {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	states := lo.Keys(visited)
	slices.SortFunc(states, compareStates)
	return states, nil
}
