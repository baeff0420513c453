// Package stats has the running statistics used to summarize simulated
// games.
package stats

import (
	"math"
	"slices"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean and variance.
type Statistic struct {
	totalIterations int
	last            float64

	// For Welford's algorithm:
	oldM float64
	newM float64
	oldS float64
	newS float64
}

func (s *Statistic) Push(val float64) {
	s.last = val
	s.totalIterations++
	if s.totalIterations == 1 {
		s.oldM = val
		s.newM = val
		s.oldS = 0
	} else {
		s.newM = s.oldM + (val-s.oldM)/float64(s.totalIterations)
		s.newS = s.oldS + (val-s.oldM)*(val-s.newM)
		s.oldM = s.newM
		s.oldS = s.newS
	}
}

func (s *Statistic) Mean() float64 {
	if s.totalIterations > 0 {
		return s.newM
	}
	return 0.0
}

func (s *Statistic) Variance() float64 {
	if s.totalIterations <= 1 {
		return 0.0
	}
	return s.newS / float64(s.totalIterations-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) Last() float64 {
	return s.last
}

// StandardError returns the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.totalIterations == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.totalIterations))
}

// ConfidenceInterval returns the interval around the mean that is z
// standard errors wide on each side.
func (s *Statistic) ConfidenceInterval(z float64) (float64, float64) {
	e := z * s.StandardError()
	return s.Mean() - e, s.Mean() + e
}

func (s *Statistic) Iterations() int {
	return s.totalIterations
}

// Percentile linearly interpolates the p-th quantile (0 to 1) of the
// samples. The samples are not modified.
func Percentile(samples []float64, p float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	cp := slices.Clone(samples)
	slices.Sort(cp)
	if n == 1 || p <= 0 {
		return cp[0]
	}
	if p >= 1 {
		return cp[n-1]
	}
	pos := p * float64(n-1)
	i := int(math.Floor(pos))
	f := pos - float64(i)
	if i+1 >= n {
		return cp[i]
	}
	return cp[i]*(1-f) + cp[i+1]*f
}
