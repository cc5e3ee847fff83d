package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elonfeng/idearadar/internal/store"
	"github.com/elonfeng/idearadar/pkg/alert"
	"github.com/elonfeng/idearadar/pkg/founder"
	"github.com/elonfeng/idearadar/pkg/score"
)

const (
	signatureHeader = alert.SignatureHeader
	maxWebhookBytes = 1 << 20
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListIdeas(c *gin.Context) {
	opts := store.ListOpts{
		Tag:      c.Query("tag"),
		MinScore: queryFloat(c, "minScore"),
		Query:    c.Query("q"),
		User:     c.Query("user"),
		Limit:    queryInt(c, "limit", 100),
	}
	if c.Query("bookmarked") == "true" {
		if opts.User == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bookmarked requires user"})
			return
		}
		opts.Bookmarked = true
	}

	ideas, err := s.store.ListIdeas(c.Request.Context(), opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ideas, "count": len(ideas)})
}

type createIdeaRequest struct {
	ID         string   `json:"id"`
	Title      string   `json:"title" binding:"required"`
	Problem    string   `json:"problem"`
	Solution   string   `json:"solution"`
	TargetUser string   `json:"targetUser"`
	WhyNow     string   `json:"whyNow"`
	Difficulty int      `json:"difficulty" binding:"omitempty,min=1,max=5"`
	BuildType  string   `json:"buildType"`
	Tags       []string `json:"tags"`
}

// handleCreateIdea stores a new idea. With ?score=true it is scored right away.
func (s *Server) handleCreateIdea(c *gin.Context) {
	var req createIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := store.Slugify(req.ID)
	if id == "" {
		id = store.Slugify(req.Title)
	}
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must contain letters or digits"})
		return
	}

	ctx := c.Request.Context()
	if _, err := s.store.GetIdea(ctx, id); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "idea " + id + " already exists"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		s.fail(c, err)
		return
	}

	if req.Difficulty == 0 {
		req.Difficulty = 3
	}
	idea := &store.Idea{
		ID:         id,
		Title:      strings.TrimSpace(req.Title),
		Problem:    req.Problem,
		Solution:   req.Solution,
		TargetUser: req.TargetUser,
		WhyNow:     req.WhyNow,
		Difficulty: req.Difficulty,
		BuildType:  req.BuildType,
		Tags:       req.Tags,
	}
	if err := s.store.UpsertIdea(ctx, idea); err != nil {
		s.fail(c, err)
		return
	}

	if c.Query("score") == "true" {
		scored, err := s.scorer.Rescore(ctx, id)
		if err != nil {
			s.fail(c, err)
			return
		}
		idea = scored
	}
	c.JSON(http.StatusCreated, gin.H{"data": idea})
}

func (s *Server) handleGetIdea(c *gin.Context) {
	idea, err := s.store.GetIdea(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": idea})
}

func (s *Server) handleDeleteIdea(c *gin.Context) {
	if err := s.store.DeleteIdea(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleScoreIdea(c *gin.Context) {
	idea, err := s.scorer.Rescore(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": idea})
}

func (s *Server) handleHistory(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := s.store.GetIdea(ctx, id); err != nil {
		s.fail(c, err)
		return
	}

	history, err := s.store.ScoreHistory(ctx, id, queryInt(c, "limit", 100))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": history, "count": len(history)})
}

func (s *Server) handleBookmark(on bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.Query("user")
		if user == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user is required"})
			return
		}
		if err := s.store.SetBookmark(c.Request.Context(), user, c.Param("id"), on); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ideaId": c.Param("id"), "user": user, "bookmarked": on})
	}
}

func (s *Server) handlePutProfile(c *gin.Context) {
	var p founder.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SaveProfile(c.Request.Context(), c.Param("user"), p); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	p, err := s.store.GetProfile(c.Request.Context(), c.Param("user"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

// handleMatches ranks stored ideas by fit for the user's saved profile.
func (s *Server) handleMatches(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := s.store.GetProfile(ctx, c.Param("user"))
	if err != nil {
		s.fail(c, err)
		return
	}

	ideas, err := s.store.ListIdeas(ctx, store.ListOpts{
		Tag:      c.Query("tag"),
		MinScore: queryFloat(c, "minScore"),
		Limit:    1000,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	candidates := make([]founder.Idea, len(ideas))
	for i := range ideas {
		candidates[i] = ideas[i].Founder()
	}
	ranked := founder.Rank(*p, candidates)
	if limit := queryInt(c, "limit", 20); len(ranked) > limit {
		ranked = ranked[:limit]
	}
	c.JSON(http.StatusOK, gin.H{"data": ranked, "count": len(ranked)})
}

// webhookRequest is an inbound score from an external scorer. Its breakdown
// is untrusted and may be partial; any score it carries is ignored.
type webhookRequest struct {
	IdeaID    string                 `json:"ideaId"`
	Breakdown score.PartialBreakdown `json:"breakdown"`
	Sources   []score.Source         `json:"sources"`
}

func (s *Server) handleScoreWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if s.opts.WebhookSecret != "" && !alert.Verify(s.opts.WebhookSecret, body, c.GetHeader(signatureHeader)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse payload"})
		return
	}
	if strings.TrimSpace(req.IdeaID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ideaId is required"})
		return
	}

	ctx := c.Request.Context()
	idea, err := s.store.GetIdea(ctx, req.IdeaID)
	if err != nil {
		s.fail(c, err)
		return
	}

	breakdown := score.ValidateBreakdown(req.Breakdown)
	result := &score.Result{
		Score:     score.Compute(breakdown, s.opts.Weights),
		Breakdown: breakdown,
		Sources:   score.FilterSources(req.Sources),
	}
	if err := s.scorer.Record(ctx, idea, result); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alert.Payload{
		IdeaID:    idea.ID,
		Score:     result.Score,
		Breakdown: result.Breakdown,
		Sources:   result.Sources,
	}})
}

// fail maps store errors to HTTP responses.
func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.log.WithError(err).WithField("path", c.FullPath()).Error("request error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func queryFloat(c *gin.Context, key string) float64 {
	v, _ := strconv.ParseFloat(c.Query(key), 64)
	return v
}
