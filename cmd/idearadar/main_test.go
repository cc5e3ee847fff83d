package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/idearadar/internal/config"
	"github.com/elonfeng/idearadar/pkg/founder"
	"github.com/elonfeng/idearadar/pkg/score"
)

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "founder.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
technical_skills: 4
design_skills: 2
marketing_skills: 3
sales_skills: 2
industry_experience: [Finance]
years_experience: 6
risk_tolerance: 4
time_commitment: full-time
funding_capacity: angel
preferred_build_types: [SaaS]
preferred_tags: [AI, FinTech]
`), 0o600))

	p, err := loadProfile(good)
	require.NoError(t, err)
	assert.Equal(t, 4, p.TechnicalSkills)
	assert.Equal(t, founder.FullTime, p.TimeCommitment)
	assert.Equal(t, founder.Angel, p.FundingCapacity)
	assert.Equal(t, []string{"AI", "FinTech"}, p.PreferredTags)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("technical_skills: 9\n"), 0o600))
	_, err = loadProfile(bad)
	assert.ErrorContains(t, err, "invalid profile")

	_, err = loadProfile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestIdeaFlags(t *testing.T) {
	f := ideaFlags{title: " Pet Insurance Compare ", difficulty: 2, tags: []string{"Consumer"}}
	idea, err := f.idea()
	require.NoError(t, err)
	assert.Equal(t, "pet-insurance-compare", idea.ID)
	assert.Equal(t, "Pet Insurance Compare", idea.Title)

	f.id = "Custom Key"
	idea, err = f.idea()
	require.NoError(t, err)
	assert.Equal(t, "custom-key", idea.ID)

	f.difficulty = 7
	_, err = f.idea()
	assert.Error(t, err)
}

func TestBuildSource(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "mock", buildSource(cfg).Name())

	cfg.Signals.Mode = config.ModeReal
	assert.Equal(t, "live", buildSource(cfg).Name())
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	r := &score.Result{
		Score:       66.8,
		Breakdown:   score.Breakdown{Trend: 80, Search: 70, Community: 60, News: 50, Competition: 40, Quality: 100},
		Sources:     []score.Source{{Type: score.SourceTrend, URL: "https://trends.google.com/trends/explore?q=x"}},
		Unavailable: []string{"news"},
	}
	require.NoError(t, printResult(&out, "Idea", r, score.DefaultWeights()))

	s := out.String()
	assert.Contains(t, s, "Idea: 66.8")
	assert.Contains(t, s, "quality")
	assert.Contains(t, s, "0.28")
	assert.Contains(t, s, "unavailable (scored as empty): news")
	assert.Contains(t, s, "https://trends.google.com/trends/explore?q=x")
}
