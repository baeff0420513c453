package solver

import (
	"encoding/json"
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/domino14/piglet/game"
)

// Report is a serializable summary of a solve.
type Report struct {
	Variant       game.Variant `json:"variant" yaml:"variant"`
	Goal          int          `json:"goal" yaml:"goal"`
	Epsilon       float64      `json:"epsilon" yaml:"epsilon"`
	Sweeps        int          `json:"sweeps" yaml:"sweeps"`
	PeakResidual  float64      `json:"peak_residual" yaml:"peak_residual"`
	FinalResidual float64      `json:"final_residual" yaml:"final_residual"`
	// FirstMoverWinProb is PWin(0, 0, 0).
	FirstMoverWinProb float64 `json:"first_mover_win_prob" yaml:"first_mover_win_prob"`
	Fingerprint       string  `json:"fingerprint" yaml:"fingerprint"`
	Thresholds        Grid    `json:"thresholds" yaml:"thresholds,flow"`
}

func (s *Solver) Report() *Report {
	grid := s.HoldGrid()
	return &Report{
		Variant:           s.variant,
		Goal:              s.goal,
		Epsilon:           s.Epsilon(),
		Sweeps:            s.Sweeps(),
		PeakResidual:      floats.Max(s.residuals),
		FinalResidual:     s.residuals[len(s.residuals)-1],
		FirstMoverWinProb: s.PWin(0, 0, 0),
		Fingerprint:       fmt.Sprintf("%016x", grid.Fingerprint()),
		Thresholds:        grid,
	}
}

// Write serializes the report as "yaml" or "json". Anything else writes
// just the threshold grid.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		_, err := io.WriteString(w, r.Thresholds.String())
		return err
	}
}
