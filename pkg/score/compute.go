package score

import (
	"fmt"
	"math"
)

// Breakdown holds the six normalized signal scores behind a composite score.
type Breakdown struct {
	Trend       float64 `json:"trend" yaml:"trend"`
	Search      float64 `json:"search" yaml:"search"`
	Community   float64 `json:"community" yaml:"community"`
	News        float64 `json:"news" yaml:"news"`
	Competition float64 `json:"competition" yaml:"competition"`
	Quality     float64 `json:"quality" yaml:"quality"`
}

// PartialBreakdown is a breakdown from an untrusted origin where any field may be absent.
type PartialBreakdown struct {
	Trend       *float64 `json:"trend,omitempty"`
	Search      *float64 `json:"search,omitempty"`
	Community   *float64 `json:"community,omitempty"`
	News        *float64 `json:"news,omitempty"`
	Competition *float64 `json:"competition,omitempty"`
	Quality     *float64 `json:"quality,omitempty"`
}

// Partial returns b with every field present.
func (b Breakdown) Partial() PartialBreakdown {
	return PartialBreakdown{
		Trend:       &b.Trend,
		Search:      &b.Search,
		Community:   &b.Community,
		News:        &b.News,
		Competition: &b.Competition,
		Quality:     &b.Quality,
	}
}

// Weights is the relative importance of each signal.
type Weights struct {
	Trend       float64 `json:"trend" yaml:"trend"`
	Search      float64 `json:"search" yaml:"search"`
	Community   float64 `json:"community" yaml:"community"`
	News        float64 `json:"news" yaml:"news"`
	Competition float64 `json:"competition" yaml:"competition"`
	Quality     float64 `json:"quality" yaml:"quality"`
}

// DefaultWeights returns the standard weighting. It sums to 1.0.
func DefaultWeights() Weights {
	return Weights{
		Trend:       0.28,
		Search:      0.22,
		Community:   0.18,
		News:        0.14,
		Competition: 0.10,
		Quality:     0.08,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Trend + w.Search + w.Community + w.News + w.Competition + w.Quality
}

// IsZero reports whether no weight is set.
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// Validate checks that weights are non-negative and sum to 1.0 (±0.001).
// ComputeScore does not call it; callers that accept user weights should.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"trend": w.Trend, "search": w.Search, "community": w.Community,
		"news": w.News, "competition": w.Competition, "quality": w.Quality,
	} {
		if v < 0 {
			return fmt.Errorf("negative %s weight: %f", name, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	return nil
}

// Compute returns the weighted sum of b, rounded to one decimal place.
// The result is not clamped.
func Compute(b Breakdown, w Weights) float64 {
	total := b.Trend*w.Trend +
		b.Search*w.Search +
		b.Community*w.Community +
		b.News*w.News +
		b.Competition*w.Competition +
		b.Quality*w.Quality
	return Round1(total)
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ValidateBreakdown turns untrusted breakdown data into a safe Breakdown:
// missing fields become 0 and every field is clamped to [0, 100].
func ValidateBreakdown(p PartialBreakdown) Breakdown {
	field := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return Clamp(*v, 0, 100)
	}
	return Breakdown{
		Trend:       field(p.Trend),
		Search:      field(p.Search),
		Community:   field(p.Community),
		News:        field(p.News),
		Competition: field(p.Competition),
		Quality:     field(p.Quality),
	}
}
