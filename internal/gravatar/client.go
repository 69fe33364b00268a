package gravatar

import (
	"context"
	"crypto/md5" // #nosec G501 -- gravatar addresses are keyed by md5 by protocol
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/utafrali/ContactsGo/pkg/httpclient"
)

// DefaultBaseURL is the public Gravatar endpoint.
const DefaultBaseURL = "https://www.gravatar.com"

// Client looks up profile avatars on Gravatar. Lookups are best-effort: a
// missing avatar or an outage must never fail the operation that triggered
// the lookup.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// New creates a Gravatar client with a bounded timeout and circuit breaker.
func New(baseURL string, logger *slog.Logger) *Client {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	cfg.MaxRetries = 1

	inner := httpclient.New(cfg)
	cb := httpclient.NewCircuitBreakerClient(inner, httpclient.DefaultCircuitBreakerConfig("gravatar"), logger)

	return &Client{
		http:    cb,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// AvatarURL returns the Gravatar image URL for the email, or an empty string
// if the address has no Gravatar. The hash is md5 of the trimmed, lowercased
// address per the Gravatar protocol.
func (c *Client) AvatarURL(ctx context.Context, email string) (string, error) {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)))) // #nosec G401
	url := fmt.Sprintf("%s/avatar/%s?d=404", c.baseURL, hex.EncodeToString(sum[:]))

	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("gravatar lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return url, nil
	case http.StatusNotFound:
		return "", nil
	default:
		return "", fmt.Errorf("gravatar lookup: unexpected status %d", resp.StatusCode)
	}
}
