package alert

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/idearadar/pkg/score"
)

func testNotification() *Notification {
	return &Notification{
		IdeaID:    "invoice-chaser",
		Title:     "Invoice chaser",
		Score:     81.4,
		Breakdown: score.Breakdown{Trend: 90, Search: 80, Community: 70, News: 60, Competition: 50, Quality: 100},
		Sources: []score.Source{
			{Type: score.SourceTrend, URL: "https://trends.google.com/trends/explore?q=invoice"},
			{Type: score.SourceSearch, URL: "https://www.google.com/search?q=invoice"},
		},
	}
}

type capture struct {
	body    []byte
	headers http.Header
}

func captureServer(t *testing.T, status int) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.body, _ = io.ReadAll(r.Body)
		c.headers = r.Header.Clone()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestWebhook_SendsSignedPayload(t *testing.T) {
	srv, got := captureServer(t, http.StatusNoContent)

	err := NewWebhook(srv.URL, "s3cret").Send(context.Background(), testNotification())
	require.NoError(t, err)

	var p Payload
	require.NoError(t, json.Unmarshal(got.body, &p))
	assert.Equal(t, "invoice-chaser", p.IdeaID)
	assert.Equal(t, 81.4, p.Score)
	assert.Equal(t, 90.0, p.Breakdown.Trend)
	assert.Len(t, p.Sources, 2)

	sig := got.headers.Get(SignatureHeader)
	assert.Equal(t, Sign("s3cret", got.body), sig)
	assert.True(t, Verify("s3cret", got.body, sig))
	assert.Equal(t, "application/json", got.headers.Get("Content-Type"))
}

func TestWebhook_UnsignedWithoutSecret(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK)
	require.NoError(t, NewWebhook(srv.URL, "").Send(context.Background(), &Notification{IdeaID: "x"}))
	assert.Empty(t, got.headers.Get(SignatureHeader))

	// nil sources are sent as an empty list
	var raw map[string]any
	require.NoError(t, json.Unmarshal(got.body, &raw))
	assert.Equal(t, []any{}, raw["sources"])
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv, _ := captureServer(t, http.StatusBadGateway)
	err := NewWebhook(srv.URL, "").Send(context.Background(), testNotification())
	assert.ErrorContains(t, err, "webhook status 502")
}

func TestVerify(t *testing.T) {
	body := []byte(`{"ideaId":"a"}`)
	sig := Sign("k", body)

	assert.True(t, Verify("k", body, sig))
	assert.False(t, Verify("other", body, sig))
	assert.False(t, Verify("k", []byte(`{"ideaId":"b"}`), sig))
	assert.False(t, Verify("k", body, sig[len("sha256="):]))
	assert.False(t, Verify("k", body, "sha256=zz"))
}

func TestSlack_Send(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK)
	require.NoError(t, NewSlack(srv.URL).Send(context.Background(), testNotification()))

	var payload struct {
		Blocks []map[string]any `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(got.body, &payload))
	require.Len(t, payload.Blocks, 3)
	assert.Equal(t, "header", payload.Blocks[0]["type"])
	assert.Contains(t, string(got.body), "*Score:* 81.4")
	assert.Contains(t, string(got.body), "trends.google.com")
}

func TestSlack_RejectsNon200(t *testing.T) {
	srv, _ := captureServer(t, http.StatusAccepted)
	assert.Error(t, NewSlack(srv.URL).Send(context.Background(), testNotification()))
}

func TestDiscord_Send(t *testing.T) {
	srv, got := captureServer(t, http.StatusNoContent)
	require.NoError(t, NewDiscord(srv.URL).Send(context.Background(), testNotification()))

	var payload struct {
		Embeds []struct {
			Title  string           `json:"title"`
			Fields []map[string]any `json:"fields"`
		} `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(got.body, &payload))
	require.Len(t, payload.Embeds, 1)
	assert.Contains(t, payload.Embeds[0].Title, "Invoice chaser")
	assert.Len(t, payload.Embeds[0].Fields, 6)
}

type stubNotifier struct {
	name string
	err  error
	sent int
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Send(context.Context, *Notification) error {
	s.sent++
	return s.err
}

func TestManager_Broadcast(t *testing.T) {
	ok := &stubNotifier{name: "ok"}
	bad := &stubNotifier{name: "bad", err: errors.New("down")}
	last := &stubNotifier{name: "last"}

	m := NewManager([]Notifier{bad, ok, last})
	assert.True(t, m.HasNotifiers())

	err := m.Broadcast(context.Background(), testNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: down")
	assert.Equal(t, 1, ok.sent)
	assert.Equal(t, 1, last.sent)

	assert.False(t, NewManager(nil).HasNotifiers())
	assert.NoError(t, NewManager(nil).Broadcast(context.Background(), testNotification()))
}
