package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/bookmark-client/internal/domain"
	"github.com/samvad-hq/bookmark-client/pkg/httpclient"
)

const (
	routeAccounts       = "/api/accounts"
	routeAccountAdd     = "/api/accounts/add"
	routeAccountDelete  = "/api/accounts/delete"
	routeAccountChPassw = "/api/accounts/changePwd"
)

// ChangePasswordRequest changes an account's password. Only owners may
// change other accounts.
type ChangePasswordRequest struct {
	Username    string
	OldPassword string
	Password    string
	Owner       bool
}

// ListAccounts returns every account.
func (a *API) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var out []domain.Account
	if err := a.post(ctx, routeAccounts, nil, &out); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

// AddAccount creates an account.
func (a *API) AddAccount(ctx context.Context, username, password string, owner bool) (*domain.Account, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, errors.New("add account: username and password are required")
	}
	data := httpclient.Params{}.
		Add("username", username).
		Add("password", password).
		Add("owner", owner)

	var out domain.Account
	if err := a.post(ctx, routeAccountAdd, data, &out); err != nil {
		return nil, fmt.Errorf("add account: %w", err)
	}
	return &out, nil
}

// DeleteAccount removes an account. The caller must be an owner.
func (a *API) DeleteAccount(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("delete account: username is required")
	}
	if err := a.post(ctx, routeAccountDelete, httpclient.Params{}.Add("username", username), nil); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// ChangePassword updates the password of req.Username.
func (a *API) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*domain.Account, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" || req.OldPassword == "" {
		return nil, errors.New("change password: username, old and new password are required")
	}
	data := httpclient.Params{}.
		Add("username", req.Username).
		Add("password", req.Password).
		Add("oldPassword", req.OldPassword).
		Add("owner", req.Owner)

	var out domain.Account
	if err := a.post(ctx, routeAccountChPassw, data, &out); err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}
	return &out, nil
}
