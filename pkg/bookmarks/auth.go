package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/bookmark-client/pkg/httpclient"
)

const (
	routeLogin  = "/api/auth/login"
	routeLogout = "/api/auth/logout"
)

// TokenWriter persists the token returned by Login.
type TokenWriter interface {
	Save(token string) error
	Clear() error
}

// Login exchanges credentials for a bearer token.
func (a *API) Login(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", errors.New("username and password are required")
	}

	var resp struct {
		Token string `json:"token"`
	}
	data := httpclient.Params{}.Add("username", username).Add("password", password)
	if err := a.post(ctx, routeLogin, data, &resp); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return "", errors.New("login: response carried no token")
	}
	return resp.Token, nil
}

// LoginAndStore logs in and saves the token so later calls are authenticated.
func (a *API) LoginAndStore(ctx context.Context, username, password string, w TokenWriter) (string, error) {
	token, err := a.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	if err := w.Save(token); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	return token, nil
}

// Logout notifies the backend and clears the stored token. The backend
// answers with an empty body, which is not treated as an error.
func (a *API) Logout(ctx context.Context, w TokenWriter) error {
	var raw json.RawMessage
	err := a.client.PostInto(ctx, routeLogout, nil, &raw, a.opts...)
	var syntaxErr *json.SyntaxError
	if err != nil && !errors.As(err, &syntaxErr) {
		return fmt.Errorf("logout: %w", err)
	}
	if w == nil {
		return nil
	}
	if err := w.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
