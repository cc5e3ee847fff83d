package founder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseProfile() Profile {
	return Profile{
		TechnicalSkills:     4,
		DesignSkills:        2,
		MarketingSkills:     3,
		SalesSkills:         2,
		IndustryExperience:  []string{"Finance"},
		YearsExperience:     6,
		RiskTolerance:       4,
		TimeCommitment:      FullTime,
		FundingCapacity:     Bootstrapped,
		PreferredBuildTypes: []string{"SaaS"},
		PreferredTags:       []string{"AI", "Productivity"},
	}
}

func TestFit(t *testing.T) {
	p := baseProfile()

	good := Fit(p, Idea{Difficulty: 3, BuildType: "SaaS", Tags: []string{"AI", "Productivity", "FinTech"}})
	assert.Equal(t, 84, good.FitScore)
	assert.Equal(t, "Strong skills match, Comfortable difficulty for your experience, Your preferred build type", good.FitReason)

	poor := Fit(p, Idea{Difficulty: 3, BuildType: "Marketplace", Tags: []string{"Gaming"}})
	assert.Equal(t, 57, poor.FitScore)
}

func TestFit_FallbackReason(t *testing.T) {
	p := baseProfile()
	p.TechnicalSkills = 1
	p.YearsExperience = 0
	p.TimeCommitment = PartTime

	m := Fit(p, Idea{Difficulty: 5, BuildType: "Hardware"})
	assert.Equal(t, fallbackReason, m.FitReason)
	assert.GreaterOrEqual(t, m.FitScore, 0)
	assert.LessOrEqual(t, m.FitScore, 100)
}

func TestSkillsMatch(t *testing.T) {
	p := baseProfile()
	tests := []struct {
		name     string
		idea     Idea
		expected float64
	}{
		{name: "technical only", idea: Idea{Difficulty: 3}, expected: 80},
		{name: "consumer adds design and marketing", idea: Idea{Difficulty: 3, Tags: []string{"e-commerce"}}, expected: 100},
		{name: "enterprise adds sales", idea: Idea{Difficulty: 5, Tags: []string{"Enterprise"}}, expected: 60},
		{name: "far apart clamps", idea: Idea{Difficulty: 10}, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, skillsMatch(p, tt.idea), 1e-9)
		})
	}
}

func TestDifficultyMatch(t *testing.T) {
	tests := []struct {
		years      int
		difficulty int
		expected   float64
	}{
		{years: 0, difficulty: 1, expected: 100},
		{years: 0, difficulty: 3, expected: 70},
		{years: 0, difficulty: 4, expected: 40},
		{years: 3, difficulty: 3, expected: 100},
		{years: 3, difficulty: 4, expected: 70},
		{years: 6, difficulty: 1, expected: 70},
		{years: 9, difficulty: 5, expected: 70},
		{years: 12, difficulty: 2, expected: 70},
		{years: 12, difficulty: 1, expected: 40},
		{years: 12, difficulty: 5, expected: 100},
	}
	for _, tt := range tests {
		p := Profile{YearsExperience: tt.years}
		assert.Equal(t, tt.expected, difficultyMatch(p, Idea{Difficulty: tt.difficulty}), "years=%d difficulty=%d", tt.years, tt.difficulty)
	}
}

func TestBuildTypeMatch(t *testing.T) {
	assert.Equal(t, 70.0, buildTypeMatch(Profile{}, Idea{BuildType: "SaaS"}))
	assert.Equal(t, 100.0, buildTypeMatch(Profile{PreferredBuildTypes: []string{"saas"}}, Idea{BuildType: "SaaS"}))
	assert.Equal(t, 30.0, buildTypeMatch(Profile{PreferredBuildTypes: []string{"API"}}, Idea{BuildType: "SaaS"}))
}

func TestTagMatch(t *testing.T) {
	assert.Equal(t, 70.0, tagMatch(Profile{}, Idea{Tags: []string{"AI"}}))

	p := Profile{PreferredTags: []string{"AI"}}
	assert.Equal(t, 100.0, tagMatch(p, Idea{Tags: []string{"ai"}}))
	assert.Equal(t, 0.0, tagMatch(p, Idea{Tags: []string{"Gaming"}}))

	p = Profile{IndustryExperience: []string{"Health"}}
	assert.Equal(t, 100.0, tagMatch(p, Idea{Tags: []string{"HealthTech"}}))

	p = Profile{PreferredTags: []string{"AI", "B2B", "Climate", "Developer Tools"}}
	assert.InDelta(t, 66.666, tagMatch(p, Idea{Tags: []string{"AI", "B2B"}}), 0.01)
	assert.Equal(t, 100.0, tagMatch(p, Idea{Tags: []string{"AI", "B2B", "Climate", "Developer Tools"}}))
}

func TestCommitmentMatch(t *testing.T) {
	tests := []struct {
		name       string
		difficulty int
		commitment TimeCommitment
		risk       int
		expected   float64
	}{
		{name: "hard full-time risk taker caps", difficulty: 5, commitment: FullTime, risk: 4, expected: 100},
		{name: "hard full-time cautious", difficulty: 4, commitment: FullTime, risk: 1, expected: 80},
		{name: "hard part-time cautious", difficulty: 5, commitment: PartTime, risk: 2, expected: 20},
		{name: "hard part-time neutral", difficulty: 4, commitment: PartTime, risk: 3, expected: 40},
		{name: "hard part-time bold", difficulty: 4, commitment: PartTime, risk: 5, expected: 50},
		{name: "easy part-time", difficulty: 1, commitment: PartTime, risk: 1, expected: 100},
		{name: "medium full-time", difficulty: 3, commitment: FullTime, risk: 5, expected: 70},
		{name: "easy full-time", difficulty: 2, commitment: FullTime, risk: 1, expected: 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Profile{TimeCommitment: tt.commitment, RiskTolerance: tt.risk}
			assert.Equal(t, tt.expected, commitmentMatch(p, Idea{Difficulty: tt.difficulty}))
		})
	}
}

func TestRank(t *testing.T) {
	p := Profile{
		TechnicalSkills:     3,
		DesignSkills:        3,
		MarketingSkills:     3,
		SalesSkills:         3,
		YearsExperience:     4,
		RiskTolerance:       3,
		TimeCommitment:      FullTime,
		FundingCapacity:     Angel,
		PreferredBuildTypes: []string{"Mobile App"},
		PreferredTags:       []string{"Health", "Consumer"},
	}

	ideas := []Idea{
		{ID: "none", Difficulty: 3, BuildType: "Hardware", Tags: []string{"Logistics"}},
		{ID: "tie-a", Difficulty: 3, BuildType: "API", Tags: []string{"Logistics"}},
		{ID: "match", Difficulty: 3, BuildType: "Mobile App", Tags: []string{"Health", "Consumer"}},
		{ID: "tie-b", Difficulty: 3, BuildType: "API", Tags: []string{"Logistics"}},
	}

	ranked := Rank(p, ideas)
	require.Len(t, ranked, 4)
	assert.Equal(t, "match", ranked[0].ID)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].FitScore, ranked[i].FitScore)
	}

	// stable among equal scores
	var order []string
	for _, r := range ranked[1:] {
		order = append(order, r.ID)
	}
	assert.Equal(t, []string{"none", "tie-a", "tie-b"}, order)

	assert.Greater(t, ranked[0].FitScore, Fit(p, ideas[0]).FitScore)
	assert.Contains(t, ranked[0].FitReason, "Your preferred build type")
	assert.Contains(t, ranked[0].FitReason, "Aligns with your interests")
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(baseProfile(), nil))
}

func TestProfile_Validate(t *testing.T) {
	require.NoError(t, baseProfile().Validate())

	p := baseProfile()
	p.TechnicalSkills = 0
	p.RiskTolerance = 6
	p.TimeCommitment = "weekends"
	p.FundingCapacity = "lottery"
	p.YearsExperience = -1
	err := p.Validate()
	require.Error(t, err)
	for _, want := range []string{"technicalSkills", "riskTolerance", "timeCommitment", "fundingCapacity", "yearsExperience"} {
		assert.Contains(t, err.Error(), want)
	}
}
