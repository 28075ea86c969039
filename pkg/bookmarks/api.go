// Package bookmarks is a typed client for the bookmark backend routes.
package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samvad-hq/bookmark-client/pkg/httpclient"
)

// ErrAPI is matched by every error the backend reports inside a 2xx envelope.
var ErrAPI = errors.New("bookmark api error")

// APIError carries the code and message of a failed envelope.
type APIError struct {
	Route string
	Code  int
	Msg   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: code %d: %s", e.Route, e.Code, e.Msg)
}

func (e *APIError) Unwrap() error { return ErrAPI }

// envelope is the response wrapper every route uses. Code 0 means success.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// API calls the bookmark backend through a httpclient.Requester.
type API struct {
	client httpclient.Requester
	opts   []httpclient.PostOption
}

// New returns an API. opts are applied to every POST, e.g. to switch the
// body encoding for older servers that only read form values.
func New(client httpclient.Requester, opts ...httpclient.PostOption) *API {
	return &API{client: client, opts: opts}
}

// post sends data to route and decodes the envelope's data into out (which may be nil).
func (a *API) post(ctx context.Context, route string, data any, out any) error {
	var env envelope
	if err := a.client.PostInto(ctx, route, data, &env, a.opts...); err != nil {
		return err
	}
	if env.Code != 0 {
		return &APIError{Route: route, Code: env.Code, Msg: env.Msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", route, err)
	}
	return nil
}
