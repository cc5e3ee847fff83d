package scheduler

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/idearadar/internal/store"
	"github.com/elonfeng/idearadar/pkg/aggregator"
	"github.com/elonfeng/idearadar/pkg/alert"
	"github.com/elonfeng/idearadar/pkg/score"
)

type fixedGenerator struct {
	mu     sync.Mutex
	scores map[string]float64
	fail   map[string]bool
	seen   []aggregator.Metrics
}

func (g *fixedGenerator) set(key string, v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scores[key] = v
}

func (g *fixedGenerator) Generate(_ context.Context, key string, m aggregator.Metrics) (*score.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen = append(g.seen, m)
	if g.fail[key] {
		return nil, errors.New("generator down")
	}
	v := g.scores[key]
	return &score.Result{
		Score:     v,
		Breakdown: score.Breakdown{Trend: v},
		Sources:   []score.Source{{Type: score.SourceTrend, URL: "https://trends.google.com/trends/explore?q=" + key}},
	}, nil
}

type countingNotifier struct {
	mu   sync.Mutex
	sent []*alert.Notification
}

func (c *countingNotifier) Name() string { return "counting" }

func (c *countingNotifier) Send(_ context.Context, n *alert.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return nil
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func setup(t *testing.T) (*store.SQLiteStore, *fixedGenerator, *countingNotifier, *Scheduler) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "sched.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	gen := &fixedGenerator{scores: map[string]float64{}, fail: map[string]bool{}}
	notifier := &countingNotifier{}
	s := New(st, gen, alert.NewManager([]alert.Notifier{notifier}), time.Hour, 75)

	l := logrus.New()
	l.SetOutput(io.Discard)
	s.SetLogger(l)
	return st, gen, notifier, s
}

func addIdea(t *testing.T, st store.Store, title string) string {
	t.Helper()
	idea := &store.Idea{Title: title, Problem: "p", Tags: []string{"SaaS"}}
	require.NoError(t, st.UpsertIdea(context.Background(), idea))
	return idea.ID
}

func TestRescore_SavesScore(t *testing.T) {
	st, gen, _, s := setup(t)
	ctx := context.Background()
	id := addIdea(t, st, "Invoice chaser")
	gen.set(id, 42.5)

	idea, err := s.Rescore(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 42.5, idea.Score)

	stored, err := st.GetIdea(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 42.5, stored.Score)
	assert.Equal(t, 42.5, stored.Breakdown.Trend)

	require.Len(t, gen.seen, 1)
	assert.Equal(t, "Invoice chaser", gen.seen[0].Title)
	assert.Equal(t, "p", gen.seen[0].Problem)

	_, err = s.Rescore(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRescore_AlertsOncePerCrossing(t *testing.T) {
	st, gen, notifier, s := setup(t)
	ctx := context.Background()
	id := addIdea(t, st, "Hot idea")

	gen.set(id, 90)
	_, err := s.Rescore(ctx, id)
	require.NoError(t, err)
	_, err = s.Rescore(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count())

	n := notifier.sent[0]
	assert.Equal(t, id, n.IdeaID)
	assert.Equal(t, 90.0, n.Score)
	assert.Len(t, n.Sources, 1)

	gen.set(id, 10)
	_, err = s.Rescore(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count())

	gen.set(id, 80)
	_, err = s.Rescore(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, notifier.count())
}

func TestRescoreAll(t *testing.T) {
	st, gen, notifier, s := setup(t)
	a := addIdea(t, st, "Idea A")
	b := addIdea(t, st, "Idea B")
	c := addIdea(t, st, "Idea C")
	gen.set(a, 20)
	gen.set(b, 99)
	gen.fail[c] = true

	assert.Equal(t, 2, s.RescoreAll(context.Background()))
	assert.Equal(t, 1, notifier.count())

	history, err := st.ScoreHistory(context.Background(), b, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRun_StopsOnCancel(t *testing.T) {
	st, gen, _, s := setup(t)
	id := addIdea(t, st, "Idea")
	gen.set(id, 30)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		idea, err := st.GetIdea(context.Background(), id)
		return err == nil && idea.ScoredAt != nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestMetricsOf(t *testing.T) {
	m := MetricsOf(&store.Idea{Title: "t", Tags: []string{"a"}, WhyNow: "now"})
	assert.Equal(t, aggregator.Metrics{Title: "t", Tags: []string{"a"}, WhyNow: "now"}, m)
}
