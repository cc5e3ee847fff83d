package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/elonfeng/idearadar/pkg/score"
)

// Notification is the data sent to alert destinations when an idea scores
// above the alert threshold.
type Notification struct {
	IdeaID    string          `json:"ideaId"`
	Title     string          `json:"title"`
	Score     float64         `json:"score"`
	Breakdown score.Breakdown `json:"breakdown"`
	Sources   []score.Source  `json:"sources"`
}

// Payload is the score webhook body: what the generic webhook sends and
// what the API's inbound score webhook accepts.
type Payload struct {
	IdeaID    string          `json:"ideaId"`
	Score     float64         `json:"score"`
	Breakdown score.Breakdown `json:"breakdown"`
	Sources   []score.Source  `json:"sources"`
}

// Payload returns the webhook body for n.
func (n *Notification) Payload() Payload {
	sources := n.Sources
	if sources == nil {
		sources = []score.Source{}
	}
	return Payload{
		IdeaID:    n.IdeaID,
		Score:     n.Score,
		Breakdown: n.Breakdown,
		Sources:   sources,
	}
}

// topSources returns at most limit sources.
func (n *Notification) topSources(limit int) []score.Source {
	if len(n.Sources) < limit {
		return n.Sources
	}
	return n.Sources[:limit]
}

// Notifier delivers alerts to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new alert manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers. One failing
// notifier does not stop the others.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}
