package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/bookmark-client/internal/app"
	"github.com/samvad-hq/bookmark-client/pkg/httpclient"
)

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ROUTE [key=value...]",
		Short: "GET a route with query parameters and print the JSON response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				out, err := s.Client.Get(ctx, args[0], params)
				if err != nil {
					return err
				}
				return printJSON(opts.out, out)
			})
		},
	}
}

func newPostCmd(opts *rootOptions) *cobra.Command {
	var encoding string
	var files []string
	cmd := &cobra.Command{
		Use:   "post ROUTE [key=value...]",
		Short: "POST key=value pairs to a route and print the JSON response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := httpclient.ParseEncoding(encoding)
			if err != nil {
				return err
			}
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			if len(files) > 0 && enc != httpclient.EncodingMultipart {
				return fmt.Errorf("--file requires --encoding multipart")
			}

			var data any = params
			postOpts := []httpclient.PostOption{httpclient.WithEncoding(enc)}
			if enc == httpclient.EncodingMultipart {
				body, contentType, err := buildMultipart(params, files)
				if err != nil {
					return err
				}
				data = body
				postOpts = append(postOpts, httpclient.WithHeaders(map[string]string{"Content-Type": contentType}))
			}

			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				out, err := s.Client.Post(ctx, args[0], data, postOpts...)
				if err != nil {
					return err
				}
				return printJSON(opts.out, out)
			})
		},
	}
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "json", "Body encoding: json, form or multipart")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Multipart file part as field=path (repeatable)")
	return cmd
}

// parseParams turns key=value arguments into ordered Params.
func parseParams(args []string) (httpclient.Params, error) {
	params := httpclient.Params{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("parameter %q must be key=value", arg)
		}
		params = params.Add(key, value)
	}
	return params, nil
}

func buildMultipart(fields httpclient.Params, files []string) ([]byte, string, error) {
	parts := make([]httpclient.MultipartFile, 0, len(files))
	for _, f := range files {
		field, path, ok := strings.Cut(f, "=")
		if !ok || field == "" || path == "" {
			return nil, "", fmt.Errorf("file %q must be field=path", f)
		}
		fh, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", path, err)
		}
		defer fh.Close()
		parts = append(parts, httpclient.MultipartFile{Field: field, FileName: filepath.Base(path), Content: fh})
	}
	return httpclient.BuildMultipart(fields, parts...)
}
