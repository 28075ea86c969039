package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client calls a JSON API relative to a base URL, attaching the bearer token
// from its TokenProvider to every request. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *resty.Client
	tokens TokenProvider
	log    Logger

	timeout time.Duration
	trace   bool
}

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithTokenProvider sets where the bearer token is read from on each call.
func WithTokenProvider(p TokenProvider) Option {
	return func(c *Client) error {
		c.tokens = p
		return nil
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log Logger) Option {
	return func(c *Client) error {
		c.log = ensureLogger(log)
		return nil
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("http timeout must be >= 0")
		}
		c.timeout = d
		return nil
	}
}

// WithRequestTracing logs each request and response at debug level.
func WithRequestTracing(enabled bool) Option {
	return func(c *Client) error {
		c.trace = enabled
		return nil
	}
}

// WithRestyClient replaces the underlying resty client.
func WithRestyClient(rc *resty.Client) Option {
	return func(c *Client) error {
		if rc == nil {
			return fmt.Errorf("resty client must not be nil")
		}
		c.http = rc
		return nil
	}
}

// New builds a Client whose routes resolve against baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{base: base, log: noopLogger{}}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.http == nil {
		c.http = newRestyBaseClient(c.timeout)
	} else if c.timeout > 0 {
		c.http.SetTimeout(c.timeout)
	}
	if c.trace {
		traceRequests(c.http, c.log)
	}
	return c, nil
}

// BaseURL returns the URL routes are resolved against.
func (c *Client) BaseURL() string { return c.base.String() }

// ResolveURL resolves route against the base URL.
func (c *Client) ResolveURL(route string) (string, error) {
	ref, err := url.Parse(route)
	if err != nil {
		return "", fmt.Errorf("parse route %q: %w", route, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Token returns the current bearer token, or "" when none is available.
// Provider failures count as an absent token.
func (c *Client) Token(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.log.DebugObj("token lookup failed", "token_error", err.Error())
		return ""
	}
	return strings.TrimSpace(token)
}

// Get issues a GET for route with params appended as a query string and
// returns the decoded JSON body.
func (c *Client) Get(ctx context.Context, route string, params Params) (any, error) {
	var out any
	if err := c.GetInto(ctx, route, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInto is Get decoding the JSON body into out.
//
// The query separator is always present, so an empty params list yields a
// URL ending in '?'.
func (c *Client) GetInto(ctx context.Context, route string, params Params, out any) error {
	target, err := c.ResolveURL(route)
	if err != nil {
		return err
	}
	target += "?" + params.Encode()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(c.headers(ctx, nil)).
		Get(target)
	if err != nil {
		return fmt.Errorf("get %s: %w", route, err)
	}
	if !resp.IsSuccess() {
		return NewStatusError(http.MethodGet, target, resp.StatusCode(), resp.Body())
	}
	if err := decodeJSON(resp.Body(), out); err != nil {
		return fmt.Errorf("get %s: %w", route, err)
	}
	return nil
}

// Post sends data to route and returns the decoded JSON body. The body is
// JSON unless an option selects another Encoding. Failures are logged and
// returned.
func (c *Client) Post(ctx context.Context, route string, data any, opts ...PostOption) (any, error) {
	var out any
	if err := c.PostInto(ctx, route, data, &out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// PostInto is Post decoding the JSON body into out.
func (c *Client) PostInto(ctx context.Context, route string, data any, out any, opts ...PostOption) error {
	target, err := c.ResolveURL(route)
	if err != nil {
		return err
	}

	cfg := newPostConfig(opts)
	headers := c.headers(ctx, cfg.headers)
	body, err := encodeBody(cfg.encoding, data, headers)
	if err != nil {
		return fmt.Errorf("post %s: %w", route, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		Post(target)
	if err != nil {
		c.log.WarnObj("post request failed", "http_post_error", map[string]any{
			"url":   target,
			"error": err.Error(),
		})
		return fmt.Errorf("post %s: %w", route, err)
	}
	if !resp.IsSuccess() {
		c.log.WarnObj("post response was not ok", "http_post_error", map[string]any{
			"url":    target,
			"status": resp.StatusCode(),
		})
		return NewStatusError(http.MethodPost, target, resp.StatusCode(), resp.Body())
	}
	if err := decodeJSON(resp.Body(), out); err != nil {
		c.log.WarnObj("post response was not json", "http_post_error", map[string]any{
			"url":   target,
			"error": err.Error(),
		})
		return fmt.Errorf("post %s: %w", route, err)
	}

	c.log.DebugObj("post response ok", "http_post", map[string]any{
		"url":      target,
		"status":   resp.StatusCode(),
		"encoding": cfg.encoding.String(),
	})
	return nil
}

// headers returns a fresh header map holding extra plus Authorization when a
// token is available.
func (c *Client) headers(ctx context.Context, extra map[string]string) map[string]string {
	out := make(map[string]string, len(extra)+2)
	for k, v := range extra {
		out[k] = v
	}
	if token := c.Token(ctx); token != "" {
		setHeader(out, headerAuthorization, "Bearer "+token)
	}
	return out
}

func decodeJSON(body []byte, out any) error {
	if out == nil {
		return errors.New("decode response json: nil target")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response json: %w", err)
	}
	return nil
}
