package founder

import (
	"errors"
	"fmt"
)

// TimeCommitment is how much time a founder can give.
type TimeCommitment string

const (
	PartTime TimeCommitment = "part-time"
	FullTime TimeCommitment = "full-time"
)

// FundingCapacity is how a founder expects to fund the idea.
type FundingCapacity string

const (
	Bootstrapped FundingCapacity = "bootstrapped"
	Angel        FundingCapacity = "angel"
	VC           FundingCapacity = "vc"
)

// Profile describes a founder. Ratings are on a 1-5 scale.
type Profile struct {
	TechnicalSkills     int             `json:"technicalSkills" yaml:"technical_skills" binding:"required,min=1,max=5"`
	DesignSkills        int             `json:"designSkills" yaml:"design_skills" binding:"required,min=1,max=5"`
	MarketingSkills     int             `json:"marketingSkills" yaml:"marketing_skills" binding:"required,min=1,max=5"`
	SalesSkills         int             `json:"salesSkills" yaml:"sales_skills" binding:"required,min=1,max=5"`
	IndustryExperience  []string        `json:"industryExperience" yaml:"industry_experience"`
	YearsExperience     int             `json:"yearsExperience" yaml:"years_experience" binding:"min=0"`
	RiskTolerance       int             `json:"riskTolerance" yaml:"risk_tolerance" binding:"required,min=1,max=5"`
	TimeCommitment      TimeCommitment  `json:"timeCommitment" yaml:"time_commitment" binding:"required,oneof=part-time full-time"`
	FundingCapacity     FundingCapacity `json:"fundingCapacity" yaml:"funding_capacity" binding:"required,oneof=bootstrapped angel vc"`
	PreferredBuildTypes []string        `json:"preferredBuildTypes" yaml:"preferred_build_types"`
	PreferredTags       []string        `json:"preferredTags" yaml:"preferred_tags"`
}

// Validate checks ratings and enums.
func (p Profile) Validate() error {
	var errs []error
	for name, v := range map[string]int{
		"technicalSkills": p.TechnicalSkills,
		"designSkills":    p.DesignSkills,
		"marketingSkills": p.MarketingSkills,
		"salesSkills":     p.SalesSkills,
		"riskTolerance":   p.RiskTolerance,
	} {
		if v < 1 || v > 5 {
			errs = append(errs, fmt.Errorf("%s must be 1-5, got %d", name, v))
		}
	}
	if p.YearsExperience < 0 {
		errs = append(errs, fmt.Errorf("yearsExperience must not be negative"))
	}
	switch p.TimeCommitment {
	case PartTime, FullTime:
	default:
		errs = append(errs, fmt.Errorf("unknown timeCommitment %q", p.TimeCommitment))
	}
	switch p.FundingCapacity {
	case Bootstrapped, Angel, VC:
	default:
		errs = append(errs, fmt.Errorf("unknown fundingCapacity %q", p.FundingCapacity))
	}
	return errors.Join(errs...)
}

// Idea is the ranker's view of an idea.
type Idea struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Difficulty int      `json:"difficulty"` // 1-5
	BuildType  string   `json:"buildType"`
	Tags       []string `json:"tags"`
	Score      float64  `json:"score"`
}

// Match is a founder-specific fit for one idea.
type Match struct {
	FitScore  int    `json:"fitScore"`
	FitReason string `json:"fitReason"`
}

// RankedIdea is an idea with its fit merged in.
type RankedIdea struct {
	Idea
	Match
}
