package signal

import (
	"context"
	"fmt"
	"math"
)

// Seed hashes key into a generator seed. The same key always yields the same seed.
func Seed(key string) uint32 {
	var h int32
	for _, r := range key {
		h = h*31 + int32(r)
	}
	if h < 0 {
		h = -h
	}
	return uint32(h)
}

// Rand is a xorshift32 generator with explicit state.
type Rand struct {
	state uint32
}

// NewRand returns a generator seeded with seed.
func NewRand(seed uint32) *Rand {
	r := &Rand{state: seed ^ 0x9e3779b9}
	if r.state == 0 {
		r.state = 0x9e3779b9
	}
	// Nearby seeds produce correlated first outputs.
	for i := 0; i < 8; i++ {
		r.Uint32()
	}
	return r
}

// Uint32 returns the next value in the sequence.
func (r *Rand) Uint32() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Uint32()) / (1 << 32)
}

// Range returns a value in [lo, hi).
func (r *Rand) Range(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Intn returns an int in [0, n). n <= 0 returns 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Uint32() % uint32(n))
}

// Chance returns true with probability p.
func (r *Rand) Chance(p float64) bool {
	return r.Float64() < p
}

var (
	competitorPrefixes = []string{"Nova", "Blue", "Swift", "Open", "Bright", "Kite", "Hyper", "Lumen", "Orbit", "Pilot"}
	competitorSuffixes = []string{"ly", "Hub", "Labs", "Stack", "io", "AI", "Works", "Base", "Flow", "HQ"}
)

// Mock generates deterministic synthetic signals. Each signal kind draws from
// its own generator seeded by the idea key, so results do not depend on the
// order in which signals are requested.
type Mock struct{}

// NewMock creates a mock signal source.
func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string { return "mock" }

func (m *Mock) rand(q Query, kind Kind) *Rand {
	return NewRand(Seed(q.Key + ":" + string(kind)))
}

func (m *Mock) Trend(_ context.Context, q Query) (TrendData, error) {
	r := m.rand(q, KindTrend)
	return TrendData{
		Slope:    round2(r.Range(-20, 45)),
		Variance: round2(r.Range(3, 40)),
		Volume:   round2(r.Range(5, 100)),
	}, nil
}

func (m *Mock) Search(_ context.Context, q Query) (SearchData, error) {
	r := m.rand(q, KindSearch)
	return SearchData{
		Volume:     math.Round(math.Pow(10, r.Range(1.7, 5.3))),
		Growth3mo:  round2(r.Range(-20, 60)),
		Growth12mo: round2(r.Range(-30, 120)),
	}, nil
}

func (m *Mock) Reddit(_ context.Context, q Query) (Mentions, error) {
	r := m.rand(q, KindReddit)
	if r.Chance(0.25) {
		return Mentions{}, nil
	}
	mentions := 1 + r.Intn(60)
	return Mentions{Mentions: mentions, Engagement: mentions * (5 + r.Intn(120))}, nil
}

func (m *Mock) HackerNews(_ context.Context, q Query) (Mentions, error) {
	r := m.rand(q, KindHackerNews)
	if r.Chance(0.3) {
		return Mentions{}, nil
	}
	mentions := 1 + r.Intn(30)
	return Mentions{Mentions: mentions, Engagement: mentions * (3 + r.Intn(150))}, nil
}

func (m *Mock) News(_ context.Context, q Query) (NewsData, error) {
	r := m.rand(q, KindNews)
	if r.Chance(0.2) {
		return NewsData{}, nil
	}
	return NewsData{
		Volume:         1 + r.Intn(50),
		RecencyFactor:  round2(r.Range(0.2, 1)),
		RelevanceScore: round2(r.Range(0.3, 1)),
	}, nil
}

func (m *Mock) Competition(_ context.Context, q Query) (CompetitionData, error) {
	r := m.rand(q, KindCompetition)
	count := 0
	if !r.Chance(0.15) {
		count = 1 + r.Intn(25)
	}

	names := make([]string, 0, min(count, 5))
	seen := make(map[string]bool)
	for len(names) < cap(names) {
		name := fmt.Sprintf("%s%s",
			competitorPrefixes[r.Intn(len(competitorPrefixes))],
			competitorSuffixes[r.Intn(len(competitorSuffixes))])
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return CompetitionData{
		Competitors:      names,
		CompetitorCount:  count,
		CompetitionLevel: LevelFor(count),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
