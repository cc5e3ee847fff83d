package signal

import "context"

// LiveOptions configures the live API clients.
type LiveOptions struct {
	SerpAPIKey         string
	RedditClientID     string
	RedditClientSecret string
	GitHubToken        string
	RequestsPerMinute  int
}

// Live fetches signals from real provider APIs. Each provider gets its own
// rate limiter so one busy provider does not throttle the others.
type Live struct {
	serp   *SerpAPI
	reddit *Reddit
	hn     *HackerNews
	news   *News
	github *GitHub
}

// NewLive creates a live signal source.
func NewLive(opts LiveOptions) *Live {
	return &Live{
		serp:   NewSerpAPI(opts.SerpAPIKey, NewLimiter(opts.RequestsPerMinute)),
		reddit: NewReddit(opts.RedditClientID, opts.RedditClientSecret, NewLimiter(opts.RequestsPerMinute)),
		hn:     NewHackerNews(NewLimiter(opts.RequestsPerMinute)),
		news:   NewNews(NewLimiter(opts.RequestsPerMinute)),
		github: NewGitHub(opts.GitHubToken, NewLimiter(opts.RequestsPerMinute)),
	}
}

func (l *Live) Name() string { return "live" }

func (l *Live) Trend(ctx context.Context, q Query) (TrendData, error) {
	return l.serp.Trend(ctx, q)
}

func (l *Live) Search(ctx context.Context, q Query) (SearchData, error) {
	return l.serp.Search(ctx, q)
}

func (l *Live) Reddit(ctx context.Context, q Query) (Mentions, error) {
	return l.reddit.Mentions(ctx, q)
}

func (l *Live) HackerNews(ctx context.Context, q Query) (Mentions, error) {
	return l.hn.Mentions(ctx, q)
}

func (l *Live) News(ctx context.Context, q Query) (NewsData, error) {
	return l.news.Coverage(ctx, q)
}

func (l *Live) Competition(ctx context.Context, q Query) (CompetitionData, error) {
	return l.github.Competition(ctx, q)
}
