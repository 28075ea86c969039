package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/samvad-hq/bookmark-client/internal/app"
	"github.com/samvad-hq/bookmark-client/internal/config"
	"github.com/samvad-hq/bookmark-client/internal/logger"
)

// rootOptions carries persistent flags and the output stream to subcommands.
type rootOptions struct {
	baseURL string
	token   string
	debug   bool
	out     io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{out: out}
	root := &cobra.Command{
		Use:           "bookmarkctl",
		Short:         "CLI client for the bookmark backend API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&opts.baseURL, "base-url", "b", "", "Backend base URL (overrides BASE_URL)")
	root.PersistentFlags().StringVar(&opts.token, "token", "", "Bearer token (overrides the stored token)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log every request to stderr")

	root.AddCommand(
		newGetCmd(opts),
		newPostCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newTokenCmd(opts),
		newBookmarksCmd(opts),
		newTagsCmd(opts),
		newAccountsCmd(opts),
	)
	return root
}

// withSession loads config, applies flag overrides and runs fn with a session.
func withSession(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, s *app.Session) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}
	if opts.token != "" {
		cfg.Token = opts.token
	}
	if opts.debug {
		cfg.HTTPDebug = true
		cfg.LogLevel = "debug"
	}

	log, err := logger.InitTo(cfg, zapcore.Lock(os.Stderr))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	sess, err := app.NewSession(cfg, log)
	if err != nil {
		return err
	}
	defer sess.Close()

	return fn(cmd.Context(), sess)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
