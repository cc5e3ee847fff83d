package alert

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SignatureHeader carries the HMAC-SHA256 of a score webhook body.
const SignatureHeader = "X-Signature-256"

// Webhook posts the score payload to a generic HTTP endpoint.
type Webhook struct {
	client *http.Client
	url    string
	secret string
}

// NewWebhook creates a new generic webhook notifier. When secret is set every
// request is signed.
func NewWebhook(url, secret string) *Webhook {
	return &Webhook{client: newClient(), url: url, secret: secret}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Send(ctx context.Context, n *Notification) error {
	var sign func([]byte) string
	if w.secret != "" {
		sign = func(body []byte) string { return Sign(w.secret, body) }
	}

	status, err := postJSON(ctx, w.client, w.url, n.Payload(), sign)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("webhook status %d", status)
	}
	return nil
}

// Sign returns the signature header value for body: "sha256=" followed by
// the hex HMAC-SHA256 under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether header is a valid signature of body under secret.
func Verify(secret string, body []byte, header string) bool {
	got, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	sig, err := hex.DecodeString(got)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(sig, mac.Sum(nil))
}

func newClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// postJSON sends v as JSON and returns the response status. A non-nil sign
// adds the signature header.
func postJSON(ctx context.Context, client *http.Client, url string, v any, sign func([]byte) string) (int, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "idearadar/1.0")
	if sign != nil {
		req.Header.Set(SignatureHeader, sign(body))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
