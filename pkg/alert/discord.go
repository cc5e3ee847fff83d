package alert

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Discord sends notifications via Discord webhook.
type Discord struct {
	client     *http.Client
	webhookURL string
}

// NewDiscord creates a new Discord notifier.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{client: newClient(), webhookURL: webhookURL}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, n *Notification) error {
	var links []string
	for _, src := range n.topSources(5) {
		links = append(links, fmt.Sprintf("• [%s](%s)", src.Type, src.URL))
	}

	b := n.Breakdown
	fields := []map[string]any{
		{"name": "Trend", "value": fmt.Sprintf("%.0f", b.Trend), "inline": true},
		{"name": "Search", "value": fmt.Sprintf("%.0f", b.Search), "inline": true},
		{"name": "Community", "value": fmt.Sprintf("%.0f", b.Community), "inline": true},
		{"name": "News", "value": fmt.Sprintf("%.0f", b.News), "inline": true},
		{"name": "Competition", "value": fmt.Sprintf("%.0f", b.Competition), "inline": true},
		{"name": "Quality", "value": fmt.Sprintf("%.0f", b.Quality), "inline": true},
	}

	embed := map[string]any{
		"title":       fmt.Sprintf("💡 %s", n.Title),
		"description": fmt.Sprintf("**Score:** %.1f\n\n%s", n.Score, strings.Join(links, "\n")),
		"fields":      fields,
		"color":       0x2E86DE,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}

	status, err := postJSON(ctx, d.client, d.webhookURL, map[string]any{"embeds": []map[string]any{embed}}, nil)
	if err != nil {
		return fmt.Errorf("send discord webhook: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("discord webhook status %d", status)
	}
	return nil
}
