package prms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client talks to the PRMS REST API. Every method performs exactly one HTTP
// request and returns either the unwrapped payload or a typed error.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       zerolog.Logger

	mu    sync.RWMutex
	token string
}

const (
	defaultAPIURL    = "http://127.0.0.1:5000/api"
	defaultUserAgent = "prms-console/0.1"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 8 << 20
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithToken sets the initial bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithLogger attaches a request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l.With().Str("component", "prms").Logger() }
}

// WithHTTPClient replaces the underlying transport client, keeping the timeout
// unless the supplied client sets its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		if hc.Timeout == 0 {
			hc.Timeout = c.http.Timeout
		}
		c.http = hc
	}
}

// NewClient builds a Client for the API rooted at apiURL, for example
// "https://prms.example.com/api".
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: defaultUserAgent,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client resolves paths against.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// SetToken replaces the bearer token; an empty token disables the header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// call describes one request: where it goes, what it sends, and which
// envelope keys its payload may be nested under.
type call struct {
	method string
	path   []string
	query  url.Values
	body   any
	keys   []string
}

func (c *Client) do(ctx context.Context, rq call, dest any) error {
	if dest == nil {
		return c.doRaw(ctx, rq, nil)
	}
	return c.doRaw(ctx, rq, func(path string, raw []byte) error {
		return decodePayload(path, raw, rq.keys, dest)
	})
}

// doRaw performs the request and hands the 2xx body to decode. A nil decode
// discards the body.
func (c *Client) doRaw(ctx context.Context, rq call, decode func(path string, raw []byte) error) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel := strings.Join(rq.path, "/")
	reqURL := c.baseURL.JoinPath(rq.path...)
	if len(rq.query) > 0 {
		reqURL.RawQuery = rq.query.Encode()
	}

	var body io.Reader
	if rq.body != nil {
		buf, err := json.Marshal(rq.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, rq.method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", rq.method).Str("path", rel).Str("request_id", requestID).
			Dur("duration", time.Since(started)).Msg("request failed")
		return &TransportError{Method: rq.method, Path: rel, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Method: rq.method, Path: rel, Err: fmt.Errorf("read response: %w", err)}
	}
	c.log.Debug().Str("method", rq.method).Str("path", rel).Int("status", resp.StatusCode).
		Str("request_id", requestID).Dur("duration", time.Since(started)).Msg("api request")

	if resp.StatusCode >= 400 {
		return newAPIError(rel, resp.StatusCode, raw)
	}
	if decode == nil {
		return nil
	}
	return decode(rel, raw)
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
