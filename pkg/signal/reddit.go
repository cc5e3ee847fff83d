package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Reddit counts posts discussing an idea across Reddit search. With client
// credentials it uses the OAuth API, otherwise the public JSON endpoint.
type Reddit struct {
	client       *http.Client
	limiter      *rate.Limiter
	clientID     string
	clientSecret string
	authURL      string
	apiURL       string
	publicURL    string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewReddit creates a Reddit client.
func NewReddit(clientID, clientSecret string, limiter *rate.Limiter) *Reddit {
	return &Reddit{
		client:       newHTTPClient(),
		limiter:      limiter,
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      "https://www.reddit.com/api/v1/access_token",
		apiURL:       "https://oauth.reddit.com",
		publicURL:    "https://www.reddit.com",
	}
}

// Mentions searches the past year of Reddit posts. Engagement is the sum of
// post scores and comment counts.
func (r *Reddit) Mentions(ctx context.Context, q Query) (Mentions, error) {
	params := url.Values{}
	params.Set("q", q.Terms())
	params.Set("sort", "relevance")
	params.Set("t", "year")
	params.Set("limit", "100")

	base := r.publicURL
	header := http.Header{}
	if r.clientID != "" {
		token, err := r.authenticate(ctx)
		if err != nil {
			return Mentions{}, fmt.Errorf("reddit auth: %w", err)
		}
		base = r.apiURL
		header.Set("Authorization", "Bearer "+token)
	}

	var listing redditListing
	if err := getJSON(ctx, r.client, r.limiter, base+"/search.json?"+params.Encode(), header, &listing); err != nil {
		return Mentions{}, fmt.Errorf("reddit search: %w", err)
	}

	var m Mentions
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied {
			continue
		}
		m.Mentions++
		m.Engagement += max(post.Score, 0) + post.NumComments
	}
	return m, nil
}

func (r *Reddit) authenticate(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" && time.Now().Before(r.tokenExpiry) {
		return r.token, nil
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	data := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.authURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}

	req.SetBasicAuth(r.clientID, r.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reddit token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reddit auth status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode reddit token: %w", err)
	}

	r.token = tokenResp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return r.token, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Permalink   string `json:"permalink"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	Stickied    bool   `json:"stickied"`
}
