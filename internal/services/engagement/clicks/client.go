// Package clicks reads click events from the external link-tracking server.
package clicks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/raidroom/engagebot/internal/platform/timeouts"
	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodyBytes bounds the feed response size.
const maxBodyBytes = 4 << 20

// Client fetches clicks over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient creates a client for the tracking server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse click server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("click server url %q must be http or https", baseURL)
	}
	c := &Client{
		base:    base,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout: timeouts.ClickFeed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type feedResponse struct {
	Clicks []feedClick `json:"clicks"`
}

type feedClick struct {
	RaterID int64 `json:"tg_id"`
	PostNum int   `json:"post_num"`
}

// Fetch returns the clicks recorded for a session. Errors are returned so the
// caller can log them; callers treat any error as an empty click set.
func (c *Client) Fetch(ctx context.Context, session int) ([]domain.ClickEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.base.JoinPath("api", "clicks", strconv.Itoa(session))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build click request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch clicks for session %d: %w", session, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch clicks for session %d: status %d", session, resp.StatusCode)
	}

	var body feedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode clicks for session %d: %w", session, err)
	}

	events := make([]domain.ClickEvent, 0, len(body.Clicks))
	for _, click := range body.Clicks {
		events = append(events, domain.ClickEvent{
			RaterID:      click.RaterID,
			PostSequence: click.PostNum,
			Session:      session,
		})
	}
	return events, nil
}

// TrackURL builds the redirect link that records a click before sending the
// member on to the post.
func (c *Client) TrackURL(post domain.Post, session int) string {
	u := c.base.JoinPath("track")
	q := url.Values{}
	q.Set("uid", strconv.FormatInt(post.PosterID, 10))
	q.Set("post", strconv.Itoa(post.Sequence))
	q.Set("sess", strconv.Itoa(session))
	q.Set("x", post.Handle)
	q.Set("link", post.URL)
	u.RawQuery = q.Encode()
	return u.String()
}
