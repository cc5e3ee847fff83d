package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/elonfeng/idearadar/internal/config"
	"github.com/elonfeng/idearadar/internal/logger"
	"github.com/elonfeng/idearadar/internal/scheduler"
	"github.com/elonfeng/idearadar/internal/store"
	"github.com/elonfeng/idearadar/pkg/aggregator"
	"github.com/elonfeng/idearadar/pkg/alert"
	"github.com/elonfeng/idearadar/pkg/founder"
	"github.com/elonfeng/idearadar/pkg/score"
	"github.com/elonfeng/idearadar/pkg/server"
	"github.com/elonfeng/idearadar/pkg/signal"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildSource(cfg *config.Config) signal.Source {
	if cfg.Signals.Mode != config.ModeReal {
		return signal.NewMock()
	}
	return signal.NewLive(signal.LiveOptions{
		SerpAPIKey:         cfg.Signals.SerpAPI.APIKey,
		RedditClientID:     cfg.Signals.Reddit.ClientID,
		RedditClientSecret: cfg.Signals.Reddit.ClientSecret,
		GitHubToken:        cfg.Signals.GitHub.Token,
		RequestsPerMinute:  cfg.Signals.RequestsPerMinute,
	})
}

func buildAggregator(cfg *config.Config) *aggregator.Aggregator {
	src := buildSource(cfg)
	logger.Log.WithField("source", src.Name()).Debug("signal source ready")
	return aggregator.New(src,
		aggregator.WithWeights(cfg.Scoring.Weights),
		aggregator.WithTimeout(cfg.Signals.ParseTimeout()),
	)
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func buildScheduler(cfg *config.Config, db store.Store) *scheduler.Scheduler {
	return scheduler.New(db, buildAggregator(cfg), buildAlertManager(cfg),
		cfg.Schedule.ParseRescoreInterval(),
		cfg.Scoring.AlertThreshold,
	)
}

func (f *ideaFlags) idea() (*store.Idea, error) {
	if f.difficulty < 1 || f.difficulty > 5 {
		return nil, fmt.Errorf("difficulty must be 1-5, got %d", f.difficulty)
	}
	id := store.Slugify(f.id)
	if id == "" {
		id = store.Slugify(f.title)
	}
	if id == "" {
		return nil, fmt.Errorf("title %q has no letters or digits", f.title)
	}
	return &store.Idea{
		ID:         id,
		Title:      strings.TrimSpace(f.title),
		Problem:    f.problem,
		Solution:   f.solution,
		TargetUser: f.targetUser,
		WhyNow:     f.whyNow,
		Difficulty: f.difficulty,
		BuildType:  f.buildType,
		Tags:       f.tags,
	}, nil
}

func runScore(ctx context.Context, f *ideaFlags, jsonOutput, save bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	idea, err := f.idea()
	if err != nil {
		return err
	}

	agg := buildAggregator(cfg)
	result, err := agg.Generate(ctx, idea.ID, scheduler.MetricsOf(idea))
	if err != nil {
		return fmt.Errorf("score idea: %w", err)
	}

	if save {
		db, err := store.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer db.Close()
		if err := db.UpsertIdea(ctx, idea); err != nil {
			return err
		}
		if err := db.SaveScore(ctx, idea.ID, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", idea.ID)
	}

	if jsonOutput {
		return writeJSON(os.Stdout, result)
	}
	return printResult(os.Stdout, idea.Title, result, agg.Weights())
}

func printResult(out io.Writer, title string, r *score.Result, w score.Weights) error {
	fmt.Fprintf(out, "%s: %.1f\n\n", title, r.Score)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIGNAL\tSCORE\tWEIGHT")
	b := r.Breakdown
	rows := []struct {
		name   string
		value  float64
		weight float64
	}{
		{"trend", b.Trend, w.Trend},
		{"search", b.Search, w.Search},
		{"community", b.Community, w.Community},
		{"news", b.News, w.News},
		{"competition", b.Competition, w.Competition},
		{"quality", b.Quality, w.Quality},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%.1f\t%.2f\n", row.name, row.value, row.weight)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Unavailable) > 0 {
		fmt.Fprintf(out, "\nunavailable (scored as empty): %s\n", strings.Join(r.Unavailable, ", "))
	}

	fmt.Fprintln(out, "\nsources:")
	for _, src := range r.Sources {
		fmt.Fprintf(out, "  %-12s %s\n", src.Type, src.URL)
	}
	return nil
}

func runAdd(ctx context.Context, f *ideaFlags, scoreNow bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	idea, err := f.idea()
	if err != nil {
		return err
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := db.UpsertIdea(ctx, idea); err != nil {
		return err
	}
	fmt.Printf("stored %s\n", idea.ID)

	if !scoreNow {
		return nil
	}
	scored, err := buildScheduler(cfg, db).Rescore(ctx, idea.ID)
	if err != nil {
		return err
	}
	fmt.Printf("score: %.1f\n", scored.Score)
	return nil
}

type listFlags struct {
	tag      string
	minScore float64
	query    string
	user     string
	limit    int
}

func runIdeas(ctx context.Context, f listFlags, bookmarked, jsonOutput bool) error {
	if bookmarked && f.user == "" {
		return fmt.Errorf("--bookmarked requires --user")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ideas, err := db.ListIdeas(ctx, store.ListOpts{
		Tag:        f.tag,
		MinScore:   f.minScore,
		Query:      f.query,
		User:       f.user,
		Bookmarked: bookmarked,
		Limit:      f.limit,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(os.Stdout, ideas)
	}
	if len(ideas) == 0 {
		fmt.Println("no ideas found (add one first: idearadar add --title ...)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tTITLE\tTAGS\tSCORED")
	for _, idea := range ideas {
		scored := "never"
		if idea.ScoredAt != nil {
			scored = idea.ScoredAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%.1f\t%s\t%s\t%s\t%s\n",
			idea.Score, idea.ID, idea.Title, strings.Join(idea.Tags, ","), scored)
	}
	return w.Flush()
}

func runBookmark(ctx context.Context, user, ideaID string, on bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := db.SetBookmark(ctx, user, ideaID, on); err != nil {
		return err
	}
	if on {
		fmt.Printf("bookmarked %s for %s\n", ideaID, user)
	} else {
		fmt.Printf("removed bookmark %s for %s\n", ideaID, user)
	}
	return nil
}

// loadProfile reads and validates a founder profile YAML file.
func loadProfile(path string) (*founder.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p founder.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return &p, nil
}

func runMatch(ctx context.Context, profilePath, user string, limit int, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	var p *founder.Profile
	if profilePath != "" {
		p, err = loadProfile(profilePath)
	} else {
		p, err = db.GetProfile(ctx, user)
	}
	if err != nil {
		return err
	}

	ideas, err := db.ListIdeas(ctx, store.ListOpts{Limit: 1000})
	if err != nil {
		return err
	}
	candidates := make([]founder.Idea, len(ideas))
	for i := range ideas {
		candidates[i] = ideas[i].Founder()
	}

	ranked := founder.Rank(*p, candidates)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if jsonOutput {
		return writeJSON(os.Stdout, ranked)
	}
	if len(ranked) == 0 {
		fmt.Println("no ideas to match (add some first: idearadar add --title ...)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIT\tSCORE\tID\tWHY")
	for _, r := range ranked {
		fmt.Fprintf(w, "%d\t%.1f\t%s\t%s\n", r.FitScore, r.Score, r.ID, r.FitReason)
	}
	return w.Flush()
}

// runServe starts the API. With daemon set it also runs the rescoring
// scheduler.
func runServe(port int, daemon bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx, cancel := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := buildScheduler(cfg, db)
	srv := server.New(db, sched, server.Options{
		Port:          port,
		WebhookSecret: cfg.Server.WebhookSecret,
		CORSOrigins:   cfg.Server.CORSOrigins,
		Weights:       cfg.Scoring.Weights,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx) })
	if daemon {
		g.Go(func() error {
			if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("scheduler: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	logger.Log.Info("shut down")
	return err
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
