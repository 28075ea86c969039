package httpclient

import "context"

// TokenProvider supplies the bearer token attached to outgoing requests.
// An empty token means the request is sent without Authorization.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenProvider.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken always returns the same token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }
