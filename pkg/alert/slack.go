package alert

import (
	"context"
	"fmt"
	"net/http"
)

// Slack sends notifications via Slack incoming webhook.
type Slack struct {
	client     *http.Client
	webhookURL string
}

// NewSlack creates a new Slack notifier.
func NewSlack(webhookURL string) *Slack {
	return &Slack{client: newClient(), webhookURL: webhookURL}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Send(ctx context.Context, n *Notification) error {
	b := n.Breakdown
	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{
				"type": "plain_text",
				"text": fmt.Sprintf("💡 %s", n.Title),
			},
		},
		{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Score:* %.1f\ntrend %.0f · search %.0f · community %.0f · news %.0f · competition %.0f · quality %.0f",
					n.Score, b.Trend, b.Search, b.Community, b.News, b.Competition, b.Quality),
			},
		},
	}

	if top := n.topSources(5); len(top) > 0 {
		var elements []map[string]any
		for _, src := range top {
			elements = append(elements, map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("<%s|%s>", src.URL, src.Type),
			})
		}
		blocks = append(blocks, map[string]any{
			"type":     "context",
			"elements": elements,
		})
	}

	status, err := postJSON(ctx, s.client, s.webhookURL, map[string]any{"blocks": blocks}, nil)
	if err != nil {
		return fmt.Errorf("send slack webhook: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("slack webhook status %d", status)
	}
	return nil
}
