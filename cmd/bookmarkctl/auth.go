package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/bookmark-client/internal/app"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("BOOKMARK_PASSWORD")
			}
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password (or BOOKMARK_PASSWORD) required")
			}
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				if _, err := s.API.LoginAndStore(ctx, username, password, s.Tokens); err != nil {
					return err
				}
				return printJSON(opts.out, map[string]any{"logged_in": true, "token_key": s.Tokens.Key})
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account name (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				if err := s.API.Logout(ctx, s.Tokens); err != nil {
					return err
				}
				return printJSON(opts.out, map[string]any{"logged_out": true})
			})
		},
	}
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect or change the stored bearer token",
	}

	tokenCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the token attached to requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				return printJSON(opts.out, map[string]any{"token": s.Client.Token(ctx)})
			})
		},
	})
	tokenCmd.AddCommand(&cobra.Command{
		Use:   "set TOKEN",
		Short: "Store a token obtained elsewhere",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(_ context.Context, s *app.Session) error {
				return s.Tokens.Save(args[0])
			})
		},
	})
	tokenCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(_ context.Context, s *app.Session) error {
				return s.Tokens.Clear()
			})
		},
	})
	return tokenCmd
}
