package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/idearadar/pkg/founder"
	"github.com/elonfeng/idearadar/pkg/score"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedIdea(t *testing.T, s *SQLiteStore, title string, tags ...string) *Idea {
	t.Helper()
	idea := &Idea{Title: title, Problem: "problem of " + title, Difficulty: 3, BuildType: "SaaS", Tags: tags}
	require.NoError(t, s.UpsertIdea(context.Background(), idea))
	return idea
}

func result(v float64) *score.Result {
	return &score.Result{
		Score:     v,
		Breakdown: score.Breakdown{Trend: v, Quality: 40},
		Sources:   []score.Source{{Type: score.SourceTrend, URL: "https://trends.google.com/trends/explore?q=x"}},
	}
}

func TestUpsertAndGetIdea(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	idea := seedIdea(t, s, "AI Meal Planner!", "Consumer", "Health")
	assert.Equal(t, "ai-meal-planner", idea.ID)

	got, err := s.GetIdea(ctx, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, "AI Meal Planner!", got.Title)
	assert.Equal(t, []string{"Consumer", "Health"}, got.Tags)
	assert.Equal(t, 3, got.Difficulty)
	assert.Nil(t, got.ScoredAt)
	assert.Empty(t, got.Sources)

	idea.Solution = "weekly plans"
	require.NoError(t, s.UpsertIdea(ctx, idea))
	got, err = s.GetIdea(ctx, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, "weekly plans", got.Solution)
}

func TestGetIdea_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetIdea(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	idea := seedIdea(t, s, "Invoice chaser")

	require.NoError(t, s.SaveScore(ctx, idea.ID, result(61.5)))
	require.NoError(t, s.SaveScore(ctx, idea.ID, result(70.2)))

	got, err := s.GetIdea(ctx, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, 70.2, got.Score)
	assert.Equal(t, 70.2, got.Breakdown.Trend)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, score.SourceTrend, got.Sources[0].Type)
	assert.NotNil(t, got.ScoredAt)

	history, err := s.ScoreHistory(ctx, idea.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 61.5, history[0].Score)
	assert.Equal(t, 70.2, history[1].Score)
	assert.Equal(t, 40.0, history[1].Breakdown.Quality)

	latest, err := s.ScoreHistory(ctx, idea.ID, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 70.2, latest[0].Score)

	assert.ErrorIs(t, s.SaveScore(ctx, "missing", result(1)), ErrNotFound)
}

func TestListIdeas(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := seedIdea(t, s, "Pet insurance compare", "Consumer", "FinTech")
	b := seedIdea(t, s, "Dev log search", "Developer Tools")
	c := seedIdea(t, s, "Freelancer invoicing", "FinTech")
	require.NoError(t, s.SaveScore(ctx, a.ID, result(40)))
	require.NoError(t, s.SaveScore(ctx, b.ID, result(80)))
	require.NoError(t, s.SaveScore(ctx, c.ID, result(60)))

	all, err := s.ListIdeas(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids(all))

	fintech, err := s.ListIdeas(ctx, ListOpts{Tag: "fintech"})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID}, ids(fintech))

	high, err := s.ListIdeas(ctx, ListOpts{MinScore: 50})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, c.ID}, ids(high))

	found, err := s.ListIdeas(ctx, ListOpts{Query: "invoic"})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, ids(found))

	limited, err := s.ListIdeas(ctx, ListOpts{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestBookmarks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedIdea(t, s, "Idea A")
	seedIdea(t, s, "Idea B")

	require.NoError(t, s.SetBookmark(ctx, "ana", a.ID, true))
	require.NoError(t, s.SetBookmark(ctx, "ana", a.ID, true))

	on, err := s.IsBookmarked(ctx, "ana", a.ID)
	require.NoError(t, err)
	assert.True(t, on)

	marked, err := s.ListIdeas(ctx, ListOpts{User: "ana", Bookmarked: true})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(marked))

	other, err := s.ListIdeas(ctx, ListOpts{User: "bo", Bookmarked: true})
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, s.SetBookmark(ctx, "ana", a.ID, false))
	require.NoError(t, s.SetBookmark(ctx, "ana", a.ID, false))
	on, err = s.IsBookmarked(ctx, "ana", a.ID)
	require.NoError(t, err)
	assert.False(t, on)

	assert.ErrorIs(t, s.SetBookmark(ctx, "ana", "missing", true), ErrNotFound)
}

func TestProfiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetProfile(ctx, "ana")
	assert.ErrorIs(t, err, ErrNotFound)

	p := founder.Profile{
		TechnicalSkills: 4, DesignSkills: 2, MarketingSkills: 3, SalesSkills: 1,
		RiskTolerance: 3, TimeCommitment: founder.PartTime, FundingCapacity: founder.Bootstrapped,
		PreferredTags: []string{"AI"},
	}
	require.NoError(t, s.SaveProfile(ctx, "ana", p))

	p.RiskTolerance = 5
	require.NoError(t, s.SaveProfile(ctx, "ana", p))

	got, err := s.GetProfile(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, p, *got)
}

func TestMarkAlertedAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedIdea(t, s, "Alerted idea")

	require.NoError(t, s.MarkAlerted(ctx, a.ID, true))
	got, err := s.GetIdea(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Alerted)

	require.NoError(t, s.DeleteIdea(ctx, a.ID))
	assert.ErrorIs(t, s.DeleteIdea(ctx, a.ID), ErrNotFound)
	assert.ErrorIs(t, s.MarkAlerted(ctx, a.ID, false), ErrNotFound)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"AI Meal Planner":        "ai-meal-planner",
		"  Pet   insurance & co ": "pet-insurance-co",
		"Déjà vu app":            "d-j-vu-app",
		"---":                    "",
		"B2B SaaS 2.0":           "b2b-saas-2-0",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func ids(ideas []Idea) []string {
	out := make([]string, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.ID
	}
	return out
}
