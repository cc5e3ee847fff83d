package signal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

const hnSearchURL = "https://hn.algolia.com/api/v1/search"

// HackerNews counts stories about an idea through the Algolia HN search API.
type HackerNews struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewHackerNews creates a Hacker News client.
func NewHackerNews(limiter *rate.Limiter) *HackerNews {
	return &HackerNews{
		client:  newHTTPClient(),
		limiter: limiter,
		baseURL: hnSearchURL,
	}
}

// Mentions returns the total story hit count and the points plus comments of
// the top page of hits.
func (h *HackerNews) Mentions(ctx context.Context, q Query) (Mentions, error) {
	params := url.Values{}
	params.Set("query", q.Terms())
	params.Set("tags", "story")
	params.Set("hitsPerPage", "50")

	var result hnSearchResult
	if err := getJSON(ctx, h.client, h.limiter, h.baseURL+"?"+params.Encode(), nil, &result); err != nil {
		return Mentions{}, fmt.Errorf("hn search: %w", err)
	}

	m := Mentions{Mentions: result.NbHits}
	for _, hit := range result.Hits {
		m.Engagement += hit.Points + hit.NumComments
	}
	return m, nil
}

type hnSearchResult struct {
	NbHits int `json:"nbHits"`
	Hits   []struct {
		ObjectID    string `json:"objectID"`
		Title       string `json:"title"`
		Points      int    `json:"points"`
		NumComments int    `json:"num_comments"`
	} `json:"hits"`
}
