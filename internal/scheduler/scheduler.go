package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/elonfeng/idearadar/internal/logger"
	"github.com/elonfeng/idearadar/internal/store"
	"github.com/elonfeng/idearadar/pkg/aggregator"
	"github.com/elonfeng/idearadar/pkg/alert"
	"github.com/elonfeng/idearadar/pkg/score"
)

// Generator produces a score for an idea.
type Generator interface {
	Generate(ctx context.Context, key string, m aggregator.Metrics) (*score.Result, error)
}

// Scheduler rescores stored ideas on an interval and alerts when an idea
// crosses the alert threshold.
type Scheduler struct {
	store     store.Store
	gen       Generator
	alertMgr  *alert.Manager
	interval  time.Duration
	threshold float64
	log       *logrus.Logger
}

// New creates a new scheduler.
func New(s store.Store, gen Generator, alertMgr *alert.Manager, interval time.Duration, threshold float64) *Scheduler {
	if interval == 0 {
		interval = 6 * time.Hour
	}
	if threshold == 0 {
		threshold = 75
	}
	if alertMgr == nil {
		alertMgr = alert.NewManager(nil)
	}
	return &Scheduler{
		store:     s,
		gen:       gen,
		alertMgr:  alertMgr,
		interval:  interval,
		threshold: threshold,
		log:       logger.Log,
	}
}

// SetLogger replaces the scheduler's logger.
func (s *Scheduler) SetLogger(l *logrus.Logger) {
	s.log = l
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler: initial rescoring")
	s.RescoreAll(ctx)
	s.log.WithField("interval", s.interval).Info("scheduler: running")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RescoreAll(ctx)
		}
	}
}

// RescoreAll rescores every stored idea and returns how many succeeded.
func (s *Scheduler) RescoreAll(ctx context.Context) int {
	ideas, err := s.store.ListIdeas(ctx, store.ListOpts{Limit: 10000})
	if err != nil {
		s.log.WithError(err).Error("scheduler: list ideas")
		return 0
	}

	start := time.Now()
	scored := 0
	for i := range ideas {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.score(ctx, &ideas[i]); err != nil {
			s.log.WithError(err).WithField("idea", ideas[i].ID).Warn("scheduler: rescore failed")
			continue
		}
		scored++
	}

	s.log.WithFields(logrus.Fields{
		"ideas":  len(ideas),
		"scored": scored,
		"took":   time.Since(start).Round(time.Millisecond),
	}).Info("scheduler: rescoring done")
	return scored
}

// Rescore scores one stored idea, saves the result and alerts if needed.
func (s *Scheduler) Rescore(ctx context.Context, id string) (*store.Idea, error) {
	idea, err := s.store.GetIdea(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.score(ctx, idea)
}

func (s *Scheduler) score(ctx context.Context, idea *store.Idea) (*store.Idea, error) {
	r, err := s.gen.Generate(ctx, idea.ID, MetricsOf(idea))
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", idea.ID, err)
	}
	if err := s.Record(ctx, idea, r); err != nil {
		return nil, err
	}
	return idea, nil
}

// Record saves r as idea's current score, updates idea in place and alerts
// once when the score reaches the threshold. The alert re-arms after the
// score drops below the threshold.
func (s *Scheduler) Record(ctx context.Context, idea *store.Idea, r *score.Result) error {
	if err := s.store.SaveScore(ctx, idea.ID, r); err != nil {
		return err
	}
	now := time.Now().UTC()
	idea.Score = r.Score
	idea.Breakdown = r.Breakdown
	idea.Sources = r.Sources
	idea.ScoredAt = &now

	switch {
	case r.Score >= s.threshold && !idea.Alerted:
		s.alert(ctx, idea)
	case r.Score < s.threshold && idea.Alerted:
		if err := s.store.MarkAlerted(ctx, idea.ID, false); err != nil {
			return err
		}
		idea.Alerted = false
	}
	return nil
}

func (s *Scheduler) alert(ctx context.Context, idea *store.Idea) {
	if !s.alertMgr.HasNotifiers() {
		return
	}

	n := &alert.Notification{
		IdeaID:    idea.ID,
		Title:     idea.Title,
		Score:     idea.Score,
		Breakdown: idea.Breakdown,
		Sources:   idea.Sources,
	}
	if err := s.alertMgr.Broadcast(ctx, n); err != nil {
		s.log.WithError(err).WithField("idea", idea.ID).Warn("scheduler: alert failed")
		return
	}

	if err := s.store.MarkAlerted(ctx, idea.ID, true); err != nil {
		s.log.WithError(err).WithField("idea", idea.ID).Warn("scheduler: mark alerted")
		return
	}
	idea.Alerted = true
	s.log.WithFields(logrus.Fields{"idea": idea.ID, "score": idea.Score}).Info("scheduler: alerted")
}

// MetricsOf returns the aggregator input for a stored idea.
func MetricsOf(idea *store.Idea) aggregator.Metrics {
	return aggregator.Metrics{
		Title:      idea.Title,
		Tags:       idea.Tags,
		Problem:    idea.Problem,
		Solution:   idea.Solution,
		TargetUser: idea.TargetUser,
		WhyNow:     idea.WhyNow,
	}
}
