package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/elonfeng/idearadar/internal/logger"
	"github.com/elonfeng/idearadar/internal/store"
	"github.com/elonfeng/idearadar/pkg/score"
)

// Scorer scores stored ideas and records externally computed scores.
type Scorer interface {
	Rescore(ctx context.Context, id string) (*store.Idea, error)
	Record(ctx context.Context, idea *store.Idea, r *score.Result) error
}

// Options configures the HTTP server.
type Options struct {
	Port int
	// WebhookSecret, when set, is required to sign inbound score webhooks.
	WebhookSecret string
	CORSOrigins   []string
	Weights       score.Weights
}

// Server provides the HTTP API.
type Server struct {
	store  store.Store
	scorer Scorer
	opts   Options
	log    *logrus.Logger
}

// New creates a new HTTP server.
func New(s store.Store, scorer Scorer, opts Options) *Server {
	if opts.Port == 0 {
		opts.Port = 8080
	}
	if opts.Weights.IsZero() {
		opts.Weights = score.DefaultWeights()
	}
	return &Server{
		store:  s,
		scorer: scorer,
		opts:   opts,
		log:    logger.Log,
	}
}

// SetLogger replaces the server's logger.
func (s *Server) SetLogger(l *logrus.Logger) {
	s.log = l
}

// Handler builds the API router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", s.handleHealth)

	api := r.Group("/api/v1")
	{
		api.GET("/ideas", s.handleListIdeas)
		api.POST("/ideas", s.handleCreateIdea)
		api.GET("/ideas/:id", s.handleGetIdea)
		api.DELETE("/ideas/:id", s.handleDeleteIdea)
		api.POST("/ideas/:id/score", s.handleScoreIdea)
		api.GET("/ideas/:id/history", s.handleHistory)
		api.PUT("/ideas/:id/bookmark", s.handleBookmark(true))
		api.DELETE("/ideas/:id/bookmark", s.handleBookmark(false))

		api.PUT("/profiles/:user", s.handlePutProfile)
		api.GET("/profiles/:user", s.handleGetProfile)
		api.GET("/profiles/:user/matches", s.handleMatches)

		api.POST("/webhooks/score", s.handleScoreWebhook)
	}
	return r
}

// ListenAndServe serves the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("idearadar server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", signatureHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(s.opts.CORSOrigins) == 0 || slices.Contains(s.opts.CORSOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.opts.CORSOrigins
	}
	return cfg
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Round(time.Microsecond),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
