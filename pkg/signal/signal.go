package signal

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is returned by a live client that lacks credentials.
var ErrNotConfigured = errors.New("signal client not configured")

// Kind names one raw signal a Source can supply.
type Kind string

const (
	KindTrend       Kind = "trend"
	KindSearch      Kind = "search"
	KindReddit      Kind = "reddit"
	KindHackerNews  Kind = "hackernews"
	KindNews        Kind = "news"
	KindCompetition Kind = "competition"
)

// AllKinds returns every signal kind in scoring order.
func AllKinds() []Kind {
	return []Kind{KindTrend, KindSearch, KindReddit, KindHackerNews, KindNews, KindCompetition}
}

// Query identifies the idea a signal is fetched for.
type Query struct {
	Key   string
	Title string
	Tags  []string
}

// Terms returns the free-text search string for the idea.
func (q Query) Terms() string {
	if t := strings.TrimSpace(q.Title); t != "" {
		return t
	}
	return strings.TrimSpace(q.Key)
}

// TrendData describes search interest over time.
type TrendData struct {
	Slope    float64 `json:"slope"`    // percent change across the window
	Variance float64 `json:"variance"` // spread of the series, 0-100 scale
	Volume   float64 `json:"volume"`   // mean interest
}

// SearchData describes search demand.
type SearchData struct {
	Volume     float64 `json:"volume"`
	Growth3mo  float64 `json:"growth3mo"`
	Growth12mo float64 `json:"growth12mo"`
}

// Mentions is discussion activity on one community platform.
type Mentions struct {
	Mentions   int `json:"mentions"`
	Engagement int `json:"engagement"`
}

// CommunityData combines Reddit and Hacker News activity.
type CommunityData struct {
	RedditMentions   int `json:"redditMentions"`
	RedditEngagement int `json:"redditEngagement"`
	HNMentions       int `json:"hnMentions"`
	HNEngagement     int `json:"hnEngagement"`
	TotalMentions    int `json:"totalMentions"`
	TotalEngagement  int `json:"totalEngagement"`
}

// NewCommunityData merges per-platform mentions into CommunityData.
func NewCommunityData(reddit, hn Mentions) CommunityData {
	return CommunityData{
		RedditMentions:   reddit.Mentions,
		RedditEngagement: reddit.Engagement,
		HNMentions:       hn.Mentions,
		HNEngagement:     hn.Engagement,
		TotalMentions:    reddit.Mentions + hn.Mentions,
		TotalEngagement:  reddit.Engagement + hn.Engagement,
	}
}

// NewsData describes press coverage.
type NewsData struct {
	Volume         int     `json:"volume"`
	RecencyFactor  float64 `json:"recencyFactor"`  // share of recent articles, 0-1
	RelevanceScore float64 `json:"relevanceScore"` // share of on-topic articles, 0-1
}

// CompetitionLevel buckets competitor counts.
type CompetitionLevel string

const (
	CompetitionLow      CompetitionLevel = "low"
	CompetitionMedium   CompetitionLevel = "medium"
	CompetitionHigh     CompetitionLevel = "high"
	CompetitionVeryHigh CompetitionLevel = "very-high"
)

// LevelFor buckets a competitor count.
func LevelFor(count int) CompetitionLevel {
	switch {
	case count <= 2:
		return CompetitionLow
	case count <= 7:
		return CompetitionMedium
	case count <= 15:
		return CompetitionHigh
	default:
		return CompetitionVeryHigh
	}
}

// CompetitionData describes existing players in the space.
type CompetitionData struct {
	Competitors      []string         `json:"competitors"`
	CompetitorCount  int              `json:"competitorCount"`
	CompetitionLevel CompetitionLevel `json:"competitionLevel"`
}

// Source supplies raw signal metrics for an idea. Each method is independent
// so callers can fetch them concurrently and tolerate individual failures.
type Source interface {
	Name() string
	Trend(ctx context.Context, q Query) (TrendData, error)
	Search(ctx context.Context, q Query) (SearchData, error)
	Reddit(ctx context.Context, q Query) (Mentions, error)
	HackerNews(ctx context.Context, q Query) (Mentions, error)
	News(ctx context.Context, q Query) (NewsData, error)
	Competition(ctx context.Context, q Query) (CompetitionData, error)
}
