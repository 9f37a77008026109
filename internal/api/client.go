// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api is the typed client of the events backend. It translates
// filters, path values and bodies into HTTP requests, attaches the session
// credential, and maps failures onto RequestError and TransportError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/olegiv/causeconnect/internal/cache"
	"github.com/olegiv/causeconnect/internal/model"
	"github.com/olegiv/causeconnect/internal/version"
)

// Client configuration constants
const (
	DefaultTimeout  = 30 * time.Second
	MaxResponseLen  = 4 << 20 // Maximum response body read (4MB)
	RequestIDHeader = "X-Request-ID"
)

// TokenSource supplies the bearer credential for authenticated requests.
type TokenSource interface {
	Token() string
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit float64
	Tokens    TokenSource
	// EventCache, when set, caches event-detail lookups for CacheTTL.
	EventCache cache.Cache
	CacheTTL   time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the events backend. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	limiter   *rate.Limiter
	events    *cache.TypedCache[model.Event]
	userAgent string
	logger    *slog.Logger
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:   base,
		http:      httpClient,
		tokens:    opts.Tokens,
		userAgent: version.Get().UserAgent(),
		logger:    logger,
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	if opts.EventCache != nil {
		c.events = cache.NewTypedCache[model.Event](opts.EventCache, opts.CacheTTL)
	}
	return c, nil
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one backend call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

// do performs req and decodes a successful JSON response into out (which
// may be nil). Non-2xx responses become *RequestError; network and decode
// failures become *TransportError.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Op: req.op, Err: err}
		}
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", req.op, err)
		}
		body = bytes.NewReader(b)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", req.op, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(RequestIDHeader, requestID)
	if req.auth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("api request failed",
			"op", req.op, "request_id", requestID, "error", err)
		return &TransportError{Op: req.op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	if err != nil {
		return &TransportError{Op: req.op, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Debug("api request",
		"op", req.op,
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRequestError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: req.op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// invalidateEvent drops a cached event detail after a write.
func (c *Client) invalidateEvent(ctx context.Context, id string) {
	if c.events == nil {
		return
	}
	if err := c.events.Delete(ctx, eventCacheKey(id)); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn("failed to invalidate cached event", "event_id", id, "error", err)
	}
}

func eventCacheKey(id string) string {
	return "event:" + id
}

func pathID(id string) string {
	return url.PathEscape(id)
}

// normalizePage converts a page of wire rows into domain rows. A missing
// item list becomes an empty one.
func normalizePage[R, T any](p model.Page[R], fn func(R) T) model.Page[T] {
	out := model.Page[T]{
		Items:    make([]T, 0, len(p.Items)),
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
	for _, r := range p.Items {
		out.Items = append(out.Items, fn(r))
	}
	return out
}
