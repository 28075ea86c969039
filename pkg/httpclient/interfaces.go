package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Fetcher abstracts raw HTTP GETs so callers can inject mocks or different transports.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// Requester is the JSON API surface of Client. Typed API wrappers depend on
// it instead of *Client so tests can substitute a fake backend.
type Requester interface {
	GetInto(ctx context.Context, route string, params Params, out any) error
	PostInto(ctx context.Context, route string, data any, out any, opts ...PostOption) error
	ResolveURL(route string) (string, error)
}

var _ Requester = (*Client)(nil)
