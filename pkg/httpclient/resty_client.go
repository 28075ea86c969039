package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Fetcher interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
// A zero timeout leaves requests bounded only by their context.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }

// traceRequests logs every request and response passing through c at debug
// level. The Authorization value is never logged.
func traceRequests(c *resty.Client, log Logger) {
	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		log.DebugObj("http request", "http_request", map[string]any{
			"method":        req.Method,
			"url":           req.URL,
			"authorization": req.Header.Get(headerAuthorization) != "",
			"content_type":  req.Header.Get(headerContentType),
		})
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.DebugObj("http response", "http_response", map[string]any{
			"method":     resp.Request.Method,
			"url":        resp.Request.URL,
			"status":     resp.StatusCode(),
			"elapsed_ms": resp.Time().Milliseconds(),
			"bytes":      len(resp.Body()),
		})
		return nil
	})
	c.OnError(func(req *resty.Request, err error) {
		log.DebugObj("http request failed", "http_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
	})
}
