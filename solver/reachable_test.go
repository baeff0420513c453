package solver

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/matryer/is"
	"gopkg.in/yaml.v3"

	"github.com/domino14/piglet/game"
)

func TestReachableGoalOne(t *testing.T) {
	is := is.New(t)
	s := mustSolve(t, 1, 1e-9)
	states, err := s.Reachable(State{0, 0, 0})
	is.NoErr(err)
	is.Equal(states, []State{{0, 0, 0}})
}

func TestReachableStaysUnderThreshold(t *testing.T) {
	is := is.New(t)
	for _, v := range []game.Variant{game.Piglet, game.Pig} {
		s := mustSolve(t, 10, 1e-9, WithVariant(v))
		states, err := s.Reachable(State{0, 0, 0})
		is.NoErr(err)
		is.True(slices.Contains(states, State{0, 0, 0}))
		is.True(slices.IsSortedFunc(states, compareStates))
		for _, st := range states {
			is.True(s.p.Contains(st.I, st.J, st.K))
			is.True(st.K <= s.HoldThreshold(st.I, st.J))
		}
	}
}

func TestReachableInvalidStart(t *testing.T) {
	is := is.New(t)
	s := mustSolve(t, 5, 1e-9)
	_, err := s.Reachable(State{3, 0, 2})
	is.True(err != nil)
	_, err = s.Reachable(State{-1, 0, 0})
	is.True(err != nil)
}

func TestReportFormats(t *testing.T) {
	is := is.New(t)
	s := mustSolve(t, 10, 1e-9)
	r := s.Report()
	is.Equal(r.Goal, 10)
	is.Equal(r.Epsilon, 1e-9)
	is.Equal(r.Sweeps, s.Sweeps())
	is.True(r.PeakResidual >= r.FinalResidual)
	is.Equal(len(r.Fingerprint), 16)

	var text bytes.Buffer
	is.NoErr(r.Write(&text, "text"))
	is.Equal(text.String(), goal10Grid)

	var y bytes.Buffer
	is.NoErr(r.Write(&y, "yaml"))
	is.True(strings.Contains(y.String(), "variant: piglet"))
	var fromYAML Report
	is.NoErr(yaml.Unmarshal(y.Bytes(), &fromYAML))
	is.Equal(fromYAML.Thresholds, r.Thresholds)
	is.Equal(fromYAML.Variant, game.Piglet)

	var j bytes.Buffer
	is.NoErr(r.Write(&j, "json"))
	var fromJSON Report
	is.NoErr(json.Unmarshal(j.Bytes(), &fromJSON))
	is.Equal(fromJSON.Fingerprint, r.Fingerprint)
	is.Equal(fromJSON.Sweeps, r.Sweeps)
}
