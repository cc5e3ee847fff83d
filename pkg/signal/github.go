package signal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

const githubSearchURL = "https://api.github.com/search/repositories"

// GitHub estimates competition from repositories matching the idea.
type GitHub struct {
	client  *http.Client
	limiter *rate.Limiter
	token   string
	baseURL string
}

// NewGitHub creates a GitHub competition client. The token is optional but
// unauthenticated search is heavily rate limited.
func NewGitHub(token string, limiter *rate.Limiter) *GitHub {
	return &GitHub{
		client:  newHTTPClient(),
		limiter: limiter,
		token:   token,
		baseURL: githubSearchURL,
	}
}

// Competition returns the matching repository count and the most starred names.
func (g *GitHub) Competition(ctx context.Context, q Query) (CompetitionData, error) {
	params := url.Values{}
	params.Set("q", q.Terms()+" in:name,description")
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", "10")

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	if g.token != "" {
		header.Set("Authorization", "Bearer "+g.token)
	}

	var result ghSearchResult
	if err := getJSON(ctx, g.client, g.limiter, g.baseURL+"?"+params.Encode(), header, &result); err != nil {
		return CompetitionData{}, fmt.Errorf("github search: %w", err)
	}

	names := make([]string, 0, len(result.Items))
	for _, repo := range result.Items {
		names = append(names, repo.FullName)
	}

	return CompetitionData{
		Competitors:      names,
		CompetitorCount:  result.TotalCount,
		CompetitionLevel: LevelFor(result.TotalCount),
	}, nil
}

type ghSearchResult struct {
	TotalCount int      `json:"total_count"`
	Items      []ghRepo `json:"items"`
}

type ghRepo struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Stars    int    `json:"stargazers_count"`
}
