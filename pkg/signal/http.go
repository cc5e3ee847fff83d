package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "idearadar/1.0"

// NewLimiter returns a limiter allowing rpm requests per minute. rpm <= 0
// disables limiting.
func NewLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// getJSON waits for the limiter, issues a GET and decodes a JSON response into out.
func getJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, reqURL string, header http.Header, out any) error {
	resp, err := get(ctx, client, limiter, reqURL, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", redact(reqURL), err)
	}
	return nil
}

// get issues a rate-limited GET and returns the response if the status is 200.
// The caller closes the body.
func get(ctx context.Context, client *http.Client, limiter *rate.Limiter, reqURL string, header http.Header) (*http.Response, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", redact(reqURL), err)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("%s status %d", redact(reqURL), resp.StatusCode)
	}
	return resp, nil
}

// redact strips the query string so API keys never reach logs.
func redact(reqURL string) string {
	if i := strings.IndexByte(reqURL, '?'); i >= 0 {
		return reqURL[:i]
	}
	return reqURL
}
