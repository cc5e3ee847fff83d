package score

import (
	"net/url"
	"strings"
)

// SourceType identifies where a piece of scoring evidence came from.
type SourceType string

const (
	SourceTrend       SourceType = "trend"
	SourceSearch      SourceType = "search"
	SourceReddit      SourceType = "reddit"
	SourceHackerNews  SourceType = "hackernews"
	SourceNews        SourceType = "news"
	SourceCompetition SourceType = "competition"
)

// Source is one evidence link shown alongside a score.
type Source struct {
	Type SourceType     `json:"type"`
	URL  string         `json:"url"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Result is the output of scoring one idea.
type Result struct {
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
	Sources   []Source  `json:"sources"`
	// Unavailable lists signals that could not be fetched and were scored as empty.
	Unavailable []string `json:"unavailable,omitempty"`
}

// IsAbsoluteURL reports whether raw is an absolute http or https URL.
func IsAbsoluteURL(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Host != ""
}

// FilterSources drops sources whose URL is not absolute.
func FilterSources(sources []Source) []Source {
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if IsAbsoluteURL(s.URL) {
			out = append(out, s)
		}
	}
	return out
}
