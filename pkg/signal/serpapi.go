package signal

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

const serpAPIBaseURL = "https://serpapi.com/search.json"

// SerpAPI supplies trend and search signals from Google Trends and Google
// Search through serpapi.com.
type SerpAPI struct {
	client  *http.Client
	limiter *rate.Limiter
	apiKey  string
	baseURL string
}

// NewSerpAPI creates a SerpAPI client.
func NewSerpAPI(apiKey string, limiter *rate.Limiter) *SerpAPI {
	return &SerpAPI{
		client:  newHTTPClient(),
		limiter: limiter,
		apiKey:  apiKey,
		baseURL: serpAPIBaseURL,
	}
}

// Trend derives slope and variance from the last three months of interest.
func (s *SerpAPI) Trend(ctx context.Context, q Query) (TrendData, error) {
	series, err := s.interest(ctx, q.Terms(), "today 3-m")
	if err != nil {
		return TrendData{}, err
	}
	return TrendData{
		Slope:    seriesSlope(series),
		Variance: stddev(series),
		Volume:   mean(series),
	}, nil
}

// Search combines the total Google result count with growth computed from
// twelve months of weekly interest.
func (s *SerpAPI) Search(ctx context.Context, q Query) (SearchData, error) {
	if s.apiKey == "" {
		return SearchData{}, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", q.Terms())
	params.Set("api_key", s.apiKey)

	var result serpSearchResult
	if err := getJSON(ctx, s.client, s.limiter, s.baseURL+"?"+params.Encode(), nil, &result); err != nil {
		return SearchData{}, fmt.Errorf("serpapi search: %w", err)
	}

	series, err := s.interest(ctx, q.Terms(), "today 12-m")
	if err != nil {
		return SearchData{}, err
	}

	return SearchData{
		Volume:     float64(result.SearchInformation.TotalResults),
		Growth3mo:  windowGrowth(series, 13),
		Growth12mo: windowGrowth(series, len(series)/2),
	}, nil
}

func (s *SerpAPI) interest(ctx context.Context, terms, window string) ([]float64, error) {
	if s.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("engine", "google_trends")
	params.Set("q", terms)
	params.Set("data_type", "TIMESERIES")
	params.Set("date", window)
	params.Set("api_key", s.apiKey)

	var result serpTrendsResult
	if err := getJSON(ctx, s.client, s.limiter, s.baseURL+"?"+params.Encode(), nil, &result); err != nil {
		return nil, fmt.Errorf("serpapi trends: %w", err)
	}

	series := make([]float64, 0, len(result.InterestOverTime.TimelineData))
	for _, point := range result.InterestOverTime.TimelineData {
		if len(point.Values) == 0 {
			continue
		}
		series = append(series, point.Values[0].ExtractedValue)
	}
	return series, nil
}

type serpTrendsResult struct {
	InterestOverTime struct {
		TimelineData []struct {
			Date   string `json:"date"`
			Values []struct {
				Query          string  `json:"query"`
				ExtractedValue float64 `json:"extracted_value"`
			} `json:"values"`
		} `json:"timeline_data"`
	} `json:"interest_over_time"`
}

type serpSearchResult struct {
	SearchInformation struct {
		TotalResults int64 `json:"total_results"`
	} `json:"search_information"`
}

// seriesSlope is the percent change between the mean of the first and last
// quarter of the series.
func seriesSlope(series []float64) float64 {
	n := len(series)
	if n < 2 {
		return 0
	}
	q := max(1, n/4)
	return pctChange(mean(series[:q]), mean(series[n-q:]))
}

// windowGrowth compares the mean of the last window points with the window
// before it.
func windowGrowth(series []float64, window int) float64 {
	n := len(series)
	if window < 1 || n < 2 {
		return 0
	}
	if 2*window > n {
		window = n / 2
	}
	return pctChange(mean(series[n-2*window:n-window]), mean(series[n-window:]))
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		if to > 0 {
			return 100
		}
		return 0
	}
	return round2((to - from) / from * 100)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return round2(math.Sqrt(ss / float64(len(xs))))
}
