package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/domino14/piglet/game"
	"github.com/domino14/piglet/montecarlo"
	"github.com/domino14/piglet/solver"
)

// parseStrategy understands "optimal" and "hold-at-N".
func parseStrategy(s string, grid solver.Grid) (game.Strategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "optimal" {
		return grid, nil
	}
	if n, ok := strings.CutPrefix(s, "hold-at-"); ok {
		k, err := strconv.Atoi(n)
		if err != nil || k < 1 {
			return nil, fmt.Errorf("bad hold value in strategy %q", s)
		}
		return game.HoldAt(k), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", s)
}

func parseStoppingCondition(s string) (montecarlo.StoppingCondition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return montecarlo.StopNone, nil
	case "95":
		return montecarlo.Stop95, nil
	case "98":
		return montecarlo.Stop98, nil
	case "99":
		return montecarlo.Stop99, nil
	}
	return montecarlo.StopNone, fmt.Errorf("unknown stopping condition %q", s)
}

// parseSeed takes a number as is and hashes anything else.
func parseSeed(s string) uint64 {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n
	}
	return xxhash.Sum64String(s)
}
