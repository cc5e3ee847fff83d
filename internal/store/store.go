package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/idearadar/pkg/founder"
	"github.com/elonfeng/idearadar/pkg/score"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Idea is a stored startup idea with its latest score.
type Idea struct {
	ID         string `db:"id" json:"id"`
	Title      string `db:"title" json:"title"`
	Problem    string `db:"problem" json:"problem"`
	Solution   string `db:"solution" json:"solution"`
	TargetUser string `db:"target_user" json:"targetUser"`
	WhyNow     string `db:"why_now" json:"whyNow"`
	Difficulty int    `db:"difficulty" json:"difficulty"`
	BuildType  string `db:"build_type" json:"buildType"`

	TagsJSON string   `db:"tags" json:"-"`
	Tags     []string `db:"-" json:"tags"`

	Score         float64         `db:"score" json:"score"`
	BreakdownJSON string          `db:"breakdown" json:"-"`
	Breakdown     score.Breakdown `db:"-" json:"breakdown"`
	SourcesJSON   string          `db:"sources" json:"-"`
	Sources       []score.Source  `db:"-" json:"sources"`
	ScoredAt      *time.Time      `db:"scored_at" json:"scoredAt,omitempty"`
	Alerted       bool            `db:"alerted" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Founder returns the ranker's view of the idea.
func (i Idea) Founder() founder.Idea {
	return founder.Idea{
		ID:         i.ID,
		Title:      i.Title,
		Difficulty: i.Difficulty,
		BuildType:  i.BuildType,
		Tags:       i.Tags,
		Score:      i.Score,
	}
}

func (i *Idea) decode() {
	json.Unmarshal([]byte(i.TagsJSON), &i.Tags)
	json.Unmarshal([]byte(i.BreakdownJSON), &i.Breakdown)
	json.Unmarshal([]byte(i.SourcesJSON), &i.Sources)
	if i.Tags == nil {
		i.Tags = []string{}
	}
	if i.Sources == nil {
		i.Sources = []score.Source{}
	}
}

// ScoreEntry is one row of an idea's score history.
type ScoreEntry struct {
	ID            int64           `db:"id" json:"id"`
	IdeaID        string          `db:"idea_id" json:"ideaId"`
	Score         float64         `db:"score" json:"score"`
	BreakdownJSON string          `db:"breakdown" json:"-"`
	Breakdown     score.Breakdown `db:"-" json:"breakdown"`
	ScoredAt      time.Time       `db:"scored_at" json:"scoredAt"`
}

// ListOpts controls idea listing.
type ListOpts struct {
	Tag      string
	MinScore float64
	Query    string // substring of title or problem
	User     string // required with Bookmarked
	// Bookmarked limits the result to ideas User has bookmarked.
	Bookmarked bool
	Limit      int
}

// Store is the persistence interface.
type Store interface {
	UpsertIdea(ctx context.Context, idea *Idea) error
	GetIdea(ctx context.Context, id string) (*Idea, error)
	ListIdeas(ctx context.Context, opts ListOpts) ([]Idea, error)
	DeleteIdea(ctx context.Context, id string) error

	SaveScore(ctx context.Context, ideaID string, r *score.Result) error
	ScoreHistory(ctx context.Context, ideaID string, limit int) ([]ScoreEntry, error)
	MarkAlerted(ctx context.Context, ideaID string, alerted bool) error

	SetBookmark(ctx context.Context, user, ideaID string, on bool) error
	IsBookmarked(ctx context.Context, user, ideaID string) (bool, error)

	SaveProfile(ctx context.Context, user string, p founder.Profile) error
	GetProfile(ctx context.Context, user string) (*founder.Profile, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertIdea inserts an idea or updates its descriptive fields. Score data is
// only written by SaveScore.
func (s *SQLiteStore) UpsertIdea(ctx context.Context, idea *Idea) error {
	if idea.ID == "" {
		idea.ID = Slugify(idea.Title)
	}
	if idea.ID == "" {
		return fmt.Errorf("upsert idea: empty id and title")
	}
	if idea.Tags == nil {
		idea.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(idea.Tags)

	now := time.Now().UTC()
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = now
	}
	idea.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ideas (id, title, problem, solution, target_user, why_now, difficulty, build_type, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			problem = excluded.problem,
			solution = excluded.solution,
			target_user = excluded.target_user,
			why_now = excluded.why_now,
			difficulty = excluded.difficulty,
			build_type = excluded.build_type,
			tags = excluded.tags,
			updated_at = excluded.updated_at
	`, idea.ID, idea.Title, idea.Problem, idea.Solution, idea.TargetUser, idea.WhyNow,
		idea.Difficulty, idea.BuildType, string(tagsJSON), idea.CreatedAt, idea.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert idea %s: %w", idea.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetIdea(ctx context.Context, id string) (*Idea, error) {
	var idea Idea
	err := s.db.GetContext(ctx, &idea, "SELECT * FROM ideas WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get idea %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get idea %s: %w", id, err)
	}
	idea.decode()
	return &idea, nil
}

func (s *SQLiteStore) ListIdeas(ctx context.Context, opts ListOpts) ([]Idea, error) {
	query := "SELECT * FROM ideas WHERE 1=1"
	var args []any

	if opts.Tag != "" {
		query += " AND EXISTS (SELECT 1 FROM json_each(ideas.tags) WHERE lower(json_each.value) = lower(?))"
		args = append(args, opts.Tag)
	}
	if opts.MinScore > 0 {
		query += " AND score >= ?"
		args = append(args, opts.MinScore)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		query += " AND (title LIKE ? OR problem LIKE ?)"
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	if opts.Bookmarked {
		query += " AND EXISTS (SELECT 1 FROM bookmarks b WHERE b.idea_id = ideas.id AND b.user_id = ?)"
		args = append(args, opts.User)
	}

	query += " ORDER BY score DESC, updated_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var ideas []Idea
	if err := s.db.SelectContext(ctx, &ideas, query, args...); err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}

	for i := range ideas {
		ideas[i].decode()
	}
	return ideas, nil
}

func (s *SQLiteStore) DeleteIdea(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM ideas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete idea %s: %w", id, err)
	}
	return expectRow(res, "delete idea "+id)
}

// SaveScore stores r as the idea's current score and appends it to the
// idea's history.
func (s *SQLiteStore) SaveScore(ctx context.Context, ideaID string, r *score.Result) error {
	breakdownJSON, _ := json.Marshal(r.Breakdown)
	sources := r.Sources
	if sources == nil {
		sources = []score.Source{}
	}
	sourcesJSON, _ := json.Marshal(sources)
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save score %s: %w", ideaID, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE ideas SET score = ?, breakdown = ?, sources = ?, scored_at = ?, updated_at = ?
		WHERE id = ?
	`, r.Score, string(breakdownJSON), string(sourcesJSON), now, now, ideaID)
	if err != nil {
		return fmt.Errorf("save score %s: %w", ideaID, err)
	}
	if err := expectRow(res, "save score "+ideaID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO score_history (idea_id, score, breakdown, scored_at)
		VALUES (?, ?, ?, ?)
	`, ideaID, r.Score, string(breakdownJSON), now)
	if err != nil {
		return fmt.Errorf("append score history %s: %w", ideaID, err)
	}

	return tx.Commit()
}

// ScoreHistory returns up to limit of the most recent scores, oldest first.
func (s *SQLiteStore) ScoreHistory(ctx context.Context, ideaID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []ScoreEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM score_history WHERE idea_id = ? ORDER BY id DESC LIMIT ?", ideaID, limit)
	if err != nil {
		return nil, fmt.Errorf("score history %s: %w", ideaID, err)
	}
	slices.Reverse(entries)
	for i := range entries {
		json.Unmarshal([]byte(entries[i].BreakdownJSON), &entries[i].Breakdown)
	}
	return entries, nil
}

func (s *SQLiteStore) MarkAlerted(ctx context.Context, ideaID string, alerted bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE ideas SET alerted = ? WHERE id = ?", alerted, ideaID)
	if err != nil {
		return fmt.Errorf("mark alerted %s: %w", ideaID, err)
	}
	return expectRow(res, "mark alerted "+ideaID)
}

// SetBookmark adds or removes a bookmark. Both directions are idempotent.
func (s *SQLiteStore) SetBookmark(ctx context.Context, user, ideaID string, on bool) error {
	if !on {
		_, err := s.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE user_id = ? AND idea_id = ?", user, ideaID)
		if err != nil {
			return fmt.Errorf("remove bookmark %s/%s: %w", user, ideaID, err)
		}
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM ideas WHERE id = ?)", ideaID); err != nil {
		return fmt.Errorf("add bookmark %s/%s: %w", user, ideaID, err)
	}
	if !exists {
		return fmt.Errorf("add bookmark %s/%s: %w", user, ideaID, ErrNotFound)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (user_id, idea_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id, idea_id) DO NOTHING
	`, user, ideaID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add bookmark %s/%s: %w", user, ideaID, err)
	}
	return nil
}

func (s *SQLiteStore) IsBookmarked(ctx context.Context, user, ideaID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = ? AND idea_id = ?)", user, ideaID)
	if err != nil {
		return false, fmt.Errorf("is bookmarked %s/%s: %w", user, ideaID, err)
	}
	return exists, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, user string, p founder.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", user, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, profile, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET profile = excluded.profile, updated_at = excluded.updated_at
	`, user, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save profile %s: %w", user, err)
	}
	return nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, user string) (*founder.Profile, error) {
	var data string
	err := s.db.GetContext(ctx, &data, "SELECT profile FROM profiles WHERE user_id = ?", user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get profile %s: %w", user, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", user, err)
	}
	var p founder.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", user, err)
	}
	return &p, nil
}

func expectRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// Slugify derives an idea id from a title: lowercase ASCII letters and
// digits separated by single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
