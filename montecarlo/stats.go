package montecarlo

import (
	"fmt"
	"io"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"

	"github.com/domino14/piglet/game"
	"github.com/domino14/piglet/stats"
)

// Result summarizes a simulation. Turn and margin statistics only count
// games the first player won, measured from that player's side.
type Result struct {
	names      [2]string
	games      int
	wins       [2]int
	firstWins  stats.Statistic
	turns      stats.Statistic
	margin     stats.Statistic
	turnCounts []float64
}

func strategyName(s game.Strategy) string {
	if n, ok := s.(game.Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}

func newResult(strategies [2]game.Strategy, records []gameRecord) *Result {
	r := &Result{
		names: [2]string{strategyName(strategies[0]), strategyName(strategies[1])},
	}
	for _, rec := range lo.Filter(records, func(rec gameRecord, _ int) bool { return rec.played }) {
		r.games++
		r.wins[rec.winner]++
		if rec.winner != 0 {
			r.firstWins.Push(0)
			continue
		}
		r.firstWins.Push(1)
		r.turns.Push(float64(rec.turns))
		r.margin.Push(float64(rec.margin))
		r.turnCounts = append(r.turnCounts, float64(rec.turns))
	}
	return r
}

func (r *Result) Games() int {
	return r.games
}

func (r *Result) Wins(playerIdx int) int {
	return r.wins[playerIdx]
}

// WinRate is the fraction of games the first player won.
func (r *Result) WinRate() float64 {
	return r.firstWins.Mean()
}

// WinRateInterval is the confidence interval on WinRate for a z-value.
func (r *Result) WinRateInterval(z float64) (float64, float64) {
	return r.firstWins.ConfidenceInterval(z)
}

// WinRateStandardError is the standard error of WinRate.
func (r *Result) WinRateStandardError() float64 {
	return r.firstWins.StandardError()
}

func (r *Result) AvgTurns() float64 {
	return r.turns.Mean()
}

func (r *Result) AvgMargin() float64 {
	return r.margin.Mean()
}

// TurnsPercentile is the p-th quantile of turns the first player needed in
// the games it won.
func (r *Result) TurnsPercentile(p float64) float64 {
	return stats.Percentile(r.turnCounts, p)
}

// Histogram bins the turns the first player needed in the games it won.
func (r *Result) Histogram(bins int) (histogram.Histogram, bool) {
	if len(r.turnCounts) == 0 {
		return histogram.Histogram{}, false
	}
	return histogram.Hist(bins, r.turnCounts), true
}

// Summary is the serializable form of a Result.
type Summary struct {
	Players     [2]string `json:"players" yaml:"players,flow"`
	Games       int       `json:"games" yaml:"games"`
	Wins        [2]int    `json:"wins" yaml:"wins,flow"`
	WinRate     float64   `json:"win_rate" yaml:"win_rate"`
	WinRateLow  float64   `json:"win_rate_low" yaml:"win_rate_low"`
	WinRateHigh float64   `json:"win_rate_high" yaml:"win_rate_high"`
	AvgTurns    float64   `json:"avg_turns" yaml:"avg_turns"`
	AvgMargin   float64   `json:"avg_margin" yaml:"avg_margin"`
	TurnsP50    float64   `json:"turns_p50" yaml:"turns_p50"`
	TurnsP90    float64   `json:"turns_p90" yaml:"turns_p90"`
	TurnsP99    float64   `json:"turns_p99" yaml:"turns_p99"`
}

// Summary uses a 95% confidence interval.
func (r *Result) Summary() Summary {
	low, high := r.WinRateInterval(stats.Z95)
	return Summary{
		Players:     r.names,
		Games:       r.games,
		Wins:        r.wins,
		WinRate:     r.WinRate(),
		WinRateLow:  low,
		WinRateHigh: high,
		AvgTurns:    r.AvgTurns(),
		AvgMargin:   r.AvgMargin(),
		TurnsP50:    r.TurnsPercentile(0.50),
		TurnsP90:    r.TurnsPercentile(0.90),
		TurnsP99:    r.TurnsPercentile(0.99),
	}
}

func (r *Result) String() string {
	var ss strings.Builder
	sm := r.Summary()
	fmt.Fprintf(&ss, "%s (first) vs %s: %d games\n", sm.Players[0], sm.Players[1], sm.Games)
	fmt.Fprintf(&ss, "first player wins %d (%.2f%%, 95%% CI %.2f%% - %.2f%%)\n",
		sm.Wins[0], 100*sm.WinRate, 100*sm.WinRateLow, 100*sm.WinRateHigh)
	fmt.Fprintf(&ss, "in those wins: avg turns %.2f, avg margin %.2f, turns p50/p90/p99 %.0f/%.0f/%.0f\n",
		sm.AvgTurns, sm.AvgMargin, sm.TurnsP50, sm.TurnsP90, sm.TurnsP99)
	return ss.String()
}

// Fprint writes the summary followed by a turns histogram.
func (r *Result) Fprint(w io.Writer, bins int) error {
	if _, err := io.WriteString(w, r.String()); err != nil {
		return err
	}
	h, ok := r.Histogram(bins)
	if !ok {
		return nil
	}
	if _, err := io.WriteString(w, "turns to win:\n"); err != nil {
		return err
	}
	return histogram.Fprint(w, h, histogram.Linear(40))
}
