package signal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"
)

const googleNewsRSS = "https://news.google.com/rss/search"

// News measures press coverage from the Google News RSS search feed.
type News struct {
	client  *http.Client
	parser  *gofeed.Parser
	limiter *rate.Limiter
	baseURL string
	now     func() time.Time
}

// NewNews creates a news client.
func NewNews(limiter *rate.Limiter) *News {
	return &News{
		client:  newHTTPClient(),
		parser:  gofeed.NewParser(),
		limiter: limiter,
		baseURL: googleNewsRSS,
		now:     time.Now,
	}
}

// Coverage counts feed entries, the share published in the last seven days,
// and the share whose title or description mentions an idea keyword.
func (n *News) Coverage(ctx context.Context, q Query) (NewsData, error) {
	params := url.Values{}
	params.Set("q", q.Terms())
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	resp, err := get(ctx, n.client, n.limiter, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return NewsData{}, fmt.Errorf("news feed: %w", err)
	}
	defer resp.Body.Close()

	feed, err := n.parser.Parse(resp.Body)
	if err != nil {
		return NewsData{}, fmt.Errorf("parse news feed: %w", err)
	}

	total := len(feed.Items)
	if total == 0 {
		return NewsData{}, nil
	}

	filter := NewFilter(q)
	cutoff := n.now().Add(-7 * 24 * time.Hour)
	recent, relevant := 0, 0
	for _, entry := range feed.Items {
		published := entry.PublishedParsed
		if published == nil {
			published = entry.UpdatedParsed
		}
		if published != nil && published.After(cutoff) {
			recent++
		}
		if filter.Matches(entry.Title + " " + entry.Description) {
			relevant++
		}
	}

	return NewsData{
		Volume:         total,
		RecencyFactor:  round2(float64(recent) / float64(total)),
		RelevanceScore: round2(float64(relevant) / float64(total)),
	}, nil
}
