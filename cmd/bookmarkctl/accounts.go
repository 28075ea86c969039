package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/bookmark-client/internal/app"
	"github.com/samvad-hq/bookmark-client/pkg/bookmarks"
)

func newAccountsCmd(opts *rootOptions) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations (owner only)",
	}

	accountsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				accounts, err := s.API.ListAccounts(ctx)
				if err != nil {
					return err
				}
				return printJSON(opts.out, accounts)
			})
		},
	})

	var owner bool
	addCmd := &cobra.Command{
		Use:   "add USERNAME PASSWORD",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				acc, err := s.API.AddAccount(ctx, args[0], args[1], owner)
				if err != nil {
					return err
				}
				return printJSON(opts.out, acc)
			})
		},
	}
	addCmd.Flags().BoolVar(&owner, "owner", false, "Grant owner rights")
	accountsCmd.AddCommand(addCmd)

	accountsCmd.AddCommand(&cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				return s.API.DeleteAccount(ctx, args[0])
			})
		},
	})

	var passwd bookmarks.ChangePasswordRequest
	passwdCmd := &cobra.Command{
		Use:   "passwd USERNAME",
		Short: "Change an account password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passwd.Username = args[0]
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				acc, err := s.API.ChangePassword(ctx, passwd)
				if err != nil {
					return err
				}
				return printJSON(opts.out, acc)
			})
		},
	}
	passwdCmd.Flags().StringVar(&passwd.OldPassword, "old", "", "Current password (required)")
	passwdCmd.Flags().StringVar(&passwd.Password, "new", "", "New password (required)")
	passwdCmd.Flags().BoolVar(&passwd.Owner, "owner", false, "Set owner rights")
	_ = passwdCmd.MarkFlagRequired("old")
	_ = passwdCmd.MarkFlagRequired("new")
	accountsCmd.AddCommand(passwdCmd)

	return accountsCmd
}
