package aggregator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/elonfeng/idearadar/internal/logger"
	"github.com/elonfeng/idearadar/pkg/score"
	"github.com/elonfeng/idearadar/pkg/signal"
)

// ErrEmptyKey is returned when an idea key is blank.
var ErrEmptyKey = errors.New("idea key is empty")

// DefaultTimeout bounds a single signal fetch.
const DefaultTimeout = 8 * time.Second

// Metrics describes the idea being scored. The text fields only matter for
// whether they are present.
type Metrics struct {
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	Problem    string   `json:"problem,omitempty"`
	Solution   string   `json:"solution,omitempty"`
	TargetUser string   `json:"targetUser,omitempty"`
	WhyNow     string   `json:"whyNow,omitempty"`
}

// Aggregator turns raw signals for an idea into a composite score.
type Aggregator struct {
	source  signal.Source
	weights score.Weights
	timeout time.Duration
	log     *logrus.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWeights overrides the default signal weights.
func WithWeights(w score.Weights) Option {
	return func(a *Aggregator) {
		if !w.IsZero() {
			a.weights = w
		}
	}
}

// WithTimeout sets the per-signal fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger used for degraded-signal warnings.
func WithLogger(l *logrus.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates an aggregator reading from src.
func New(src signal.Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:  src,
		weights: score.DefaultWeights(),
		timeout: DefaultTimeout,
		log:     logger.Log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Weights returns the weights used by Generate.
func (a *Aggregator) Weights() score.Weights {
	return a.weights
}

// raw holds one fetch of every signal. Failed signals stay at their zero value.
type raw struct {
	trend       signal.TrendData
	search      signal.SearchData
	reddit      signal.Mentions
	hn          signal.Mentions
	news        signal.NewsData
	competition signal.CompetitionData
	failed      map[signal.Kind]error
}

// Generate scores the idea identified by key.
//
// All six signals are fetched concurrently, each under its own timeout. A
// signal that errors, times out or panics is scored as empty and listed in
// Result.Unavailable; it never fails the call or delays the other signals.
func (a *Aggregator) Generate(ctx context.Context, key string, m Metrics) (*score.Result, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptyKey
	}

	q := signal.Query{Key: key, Title: m.Title, Tags: m.Tags}
	start := time.Now()
	r := a.fetch(ctx, q)

	community := signal.NewCommunityData(r.reddit, r.hn)
	breakdown := score.Breakdown{
		Trend:       score.NormalizeTrend(r.trend.Slope, r.trend.Variance),
		Search:      score.NormalizeSearchVolume(r.search.Volume, r.search.Growth3mo, r.search.Growth12mo),
		Community:   score.NormalizeCommunity(float64(community.TotalMentions), float64(community.TotalEngagement)),
		News:        score.NormalizeNews(float64(r.news.Volume), r.news.RecencyFactor),
		Competition: score.NormalizeCompetition(r.competition.CompetitorCount),
		Quality: score.NormalizeQuality(
			present(m.Problem), present(m.Solution), present(m.TargetUser), present(m.WhyNow), len(m.Tags)),
	}

	result := &score.Result{
		Score:     score.Compute(breakdown, a.weights),
		Breakdown: breakdown,
		Sources:   buildSources(q.Terms(), r, community),
	}
	for _, kind := range signal.AllKinds() {
		if _, ok := r.failed[kind]; ok {
			result.Unavailable = append(result.Unavailable, string(kind))
		}
	}

	a.log.WithFields(logrus.Fields{
		"idea":        key,
		"source":      a.source.Name(),
		"score":       result.Score,
		"unavailable": len(result.Unavailable),
		"took":        time.Since(start).Round(time.Millisecond),
	}).Debug("idea scored")

	return result, nil
}

func (a *Aggregator) fetch(ctx context.Context, q signal.Query) raw {
	var (
		r  = raw{failed: make(map[signal.Kind]error)}
		mu sync.Mutex
		g  errgroup.Group
	)

	fail := func(kind signal.Kind, err error) {
		mu.Lock()
		r.failed[kind] = err
		mu.Unlock()
		a.log.WithFields(logrus.Fields{
			"idea":   q.Key,
			"signal": kind,
			"error":  err,
		}).Warn("signal unavailable, scoring as empty")
	}

	// Each task writes only its own field and always returns nil, so one
	// failure never cancels its siblings.
	g.Go(func() error {
		v, err := settle(ctx, a.timeout, q, a.source.Trend)
		if err != nil {
			fail(signal.KindTrend, err)
			return nil
		}
		r.trend = v
		return nil
	})
	g.Go(func() error {
		v, err := settle(ctx, a.timeout, q, a.source.Search)
		if err != nil {
			fail(signal.KindSearch, err)
			return nil
		}
		r.search = v
		return nil
	})
	g.Go(func() error {
		v, err := settle(ctx, a.timeout, q, a.source.Reddit)
		if err != nil {
			fail(signal.KindReddit, err)
			return nil
		}
		r.reddit = v
		return nil
	})
	g.Go(func() error {
		v, err := settle(ctx, a.timeout, q, a.source.HackerNews)
		if err != nil {
			fail(signal.KindHackerNews, err)
			return nil
		}
		r.hn = v
		return nil
	})
	g.Go(func() error {
		v, err := settle(ctx, a.timeout, q, a.source.News)
		if err != nil {
			fail(signal.KindNews, err)
			return nil
		}
		r.news = v
		return nil
	})
	g.Go(func() error {
		v, err := settle(ctx, a.timeout, q, a.source.Competition)
		if err != nil {
			fail(signal.KindCompetition, err)
			return nil
		}
		r.competition = v
		return nil
	})

	_ = g.Wait()
	return r
}

type outcome[T any] struct {
	value T
	err   error
}

// settle runs fn under a timeout and returns when it finishes or the timeout
// expires, whichever comes first. A panic in fn becomes an error.
func settle[T any](ctx context.Context, timeout time.Duration, q signal.Query, fn func(context.Context, signal.Query) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				var zero T
				done <- outcome[T]{value: zero, err: fmt.Errorf("panic: %v", p)}
			}
		}()
		v, err := fn(ctx, q)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

// buildSources lists the evidence behind a score. Trend and search are always
// present; the others only when they found something.
func buildSources(terms string, r raw, community signal.CommunityData) []score.Source {
	q := url.QueryEscape(terms)

	sources := []score.Source{
		{
			Type: score.SourceTrend,
			URL:  "https://trends.google.com/trends/explore?q=" + q,
			Meta: map[string]any{
				"slope":    r.trend.Slope,
				"variance": r.trend.Variance,
				"volume":   r.trend.Volume,
			},
		},
		{
			Type: score.SourceSearch,
			URL:  "https://www.google.com/search?q=" + q,
			Meta: map[string]any{
				"volume":     r.search.Volume,
				"growth3mo":  r.search.Growth3mo,
				"growth12mo": r.search.Growth12mo,
			},
		},
	}

	if community.RedditMentions > 0 {
		sources = append(sources, score.Source{
			Type: score.SourceReddit,
			URL:  "https://www.reddit.com/search/?q=" + q,
			Meta: map[string]any{
				"mentions":   community.RedditMentions,
				"engagement": community.RedditEngagement,
			},
		})
	}
	if community.HNMentions > 0 {
		sources = append(sources, score.Source{
			Type: score.SourceHackerNews,
			URL:  "https://hn.algolia.com/?type=story&query=" + q,
			Meta: map[string]any{
				"mentions":   community.HNMentions,
				"engagement": community.HNEngagement,
			},
		})
	}
	if r.news.Volume > 0 {
		sources = append(sources, score.Source{
			Type: score.SourceNews,
			URL:  "https://news.google.com/search?q=" + q,
			Meta: map[string]any{
				"volume":         r.news.Volume,
				"recencyFactor":  r.news.RecencyFactor,
				"relevanceScore": r.news.RelevanceScore,
			},
		})
	}
	if r.competition.CompetitorCount > 0 {
		sources = append(sources, score.Source{
			Type: score.SourceCompetition,
			URL:  "https://github.com/search?type=repositories&q=" + q,
			Meta: map[string]any{
				"count":       r.competition.CompetitorCount,
				"level":       string(r.competition.CompetitionLevel),
				"competitors": r.competition.Competitors,
			},
		})
	}
	return sources
}
