package founder

import (
	"math"
	"sort"
	"strings"
)

// Sub-score weights.
const (
	skillsWeight     = 0.3
	difficultyWeight = 0.2
	buildTypeWeight  = 0.2
	tagsWeight       = 0.2
	commitmentWeight = 0.1
)

const fallbackReason = "Could be a stretch opportunity to grow into"

var (
	designTags    = []string{"E-commerce", "Social", "Mobile", "Consumer"}
	marketingTags = []string{"E-commerce", "Consumer"}
	salesTags     = []string{"SaaS", "Enterprise"}
)

// Fit computes how well an idea suits a founder.
func Fit(p Profile, idea Idea) Match {
	skills := skillsMatch(p, idea)
	difficulty := difficultyMatch(p, idea)
	buildType := buildTypeMatch(p, idea)
	tags := tagMatch(p, idea)
	commitment := commitmentMatch(p, idea)

	total := skillsWeight*skills +
		difficultyWeight*difficulty +
		buildTypeWeight*buildType +
		tagsWeight*tags +
		commitmentWeight*commitment

	var reasons []string
	if skills > 70 {
		reasons = append(reasons, "Strong skills match")
	}
	if difficulty > 70 {
		reasons = append(reasons, "Comfortable difficulty for your experience")
	}
	if buildType == 100 {
		reasons = append(reasons, "Your preferred build type")
	}
	if tags > 70 {
		reasons = append(reasons, "Aligns with your interests and industry background")
	}

	reason := fallbackReason
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ", ")
	}

	return Match{
		FitScore:  int(math.Round(clamp(total, 0, 100))),
		FitReason: reason,
	}
}

// Rank scores every idea for p and returns them best fit first. Ideas with
// equal fit keep their input order.
func Rank(p Profile, ideas []Idea) []RankedIdea {
	ranked := make([]RankedIdea, len(ideas))
	for i, idea := range ideas {
		ranked[i] = RankedIdea{Idea: idea, Match: Fit(p, idea)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FitScore > ranked[j].FitScore
	})
	return ranked
}

// skillsMatch compares the founder's average relevant skill with the idea's
// difficulty. Technical skill always counts; design, marketing and sales
// count when the idea's tags call for them.
func skillsMatch(p Profile, idea Idea) float64 {
	relevant := []int{p.TechnicalSkills}
	if hasAny(idea.Tags, designTags) {
		relevant = append(relevant, p.DesignSkills)
	}
	if hasAny(idea.Tags, marketingTags) {
		relevant = append(relevant, p.MarketingSkills)
	}
	if hasAny(idea.Tags, salesTags) {
		relevant = append(relevant, p.SalesSkills)
	}

	sum := 0
	for _, s := range relevant {
		sum += s
	}
	avg := float64(sum) / float64(len(relevant))
	return clamp(100-math.Abs(avg-float64(idea.Difficulty))*20, 0, 100)
}

// comfortRange is the difficulty band a founder with the given experience
// handles comfortably.
func comfortRange(years int) (lo, hi int) {
	switch {
	case years >= 10:
		return 3, 5
	case years >= 5:
		return 2, 4
	case years >= 2:
		return 1, 3
	default:
		return 1, 2
	}
}

func difficultyMatch(p Profile, idea Idea) float64 {
	lo, hi := comfortRange(p.YearsExperience)
	d := idea.Difficulty
	switch {
	case d >= lo && d <= hi:
		return 100
	case d == lo-1 || d == hi+1:
		return 70
	default:
		return 40
	}
}

func buildTypeMatch(p Profile, idea Idea) float64 {
	if len(p.PreferredBuildTypes) == 0 {
		return 70
	}
	if contains(p.PreferredBuildTypes, idea.BuildType) {
		return 100
	}
	return 30
}

// tagMatch counts preferred tags found on the idea plus industries that
// appear within an idea tag (or the reverse), relative to at most three
// stated preferences.
func tagMatch(p Profile, idea Idea) float64 {
	if len(p.PreferredTags) == 0 && len(p.IndustryExperience) == 0 {
		return 70
	}

	overlap := 0
	for _, tag := range p.PreferredTags {
		if contains(idea.Tags, tag) {
			overlap++
		}
	}
	for _, industry := range p.IndustryExperience {
		ind := strings.ToLower(strings.TrimSpace(industry))
		if ind == "" {
			continue
		}
		for _, tag := range idea.Tags {
			t := strings.ToLower(tag)
			if strings.Contains(t, ind) || strings.Contains(ind, t) {
				overlap++
				break
			}
		}
	}

	total := len(p.PreferredTags) + len(p.IndustryExperience)
	return math.Min(100, float64(overlap)/float64(min(total, 3))*100)
}

func commitmentMatch(p Profile, idea Idea) float64 {
	s := 70.0
	hard := idea.Difficulty >= 4
	switch {
	case hard && p.TimeCommitment == FullTime:
		s = 100
	case idea.Difficulty <= 2 && p.TimeCommitment == PartTime:
		s = 100
	case hard && p.TimeCommitment == PartTime:
		s = 40
	}

	if hard {
		switch {
		case p.RiskTolerance >= 4:
			s = math.Min(100, s+10)
		case p.RiskTolerance <= 2:
			s = math.Max(0, s-20)
		}
	}
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func hasAny(tags, want []string) bool {
	for _, w := range want {
		if contains(tags, w) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
