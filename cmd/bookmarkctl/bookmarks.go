package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/bookmark-client/internal/app"
	"github.com/samvad-hq/bookmark-client/pkg/bookmarks"
)

func newBookmarksCmd(opts *rootOptions) *cobra.Command {
	bookmarksCmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "Bookmark operations",
	}

	var list bookmarks.ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of bookmarks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				page, err := s.API.ListBookmarks(ctx, list)
				if err != nil {
					return err
				}
				return printJSON(opts.out, page)
			})
		},
	}
	listCmd.Flags().StringVarP(&list.Keyword, "keyword", "k", "", "Search keyword")
	listCmd.Flags().IntVarP(&list.Page, "page", "n", 1, "Page number (30 per page)")
	listCmd.Flags().StringSliceVarP(&list.Tags, "tags", "t", nil, "Only bookmarks with these tags")
	listCmd.Flags().StringSliceVarP(&list.Exclude, "exclude", "x", nil, "Skip bookmarks with these tags")
	bookmarksCmd.AddCommand(listCmd)

	var add bookmarks.AddBookmarkRequest
	addCmd := &cobra.Command{
		Use:   "add URL",
		Short: "Save a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			add.URL = args[0]
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				b, err := s.API.AddBookmark(ctx, add)
				if err != nil {
					return err
				}
				return printJSON(opts.out, b)
			})
		},
	}
	addCmd.Flags().StringVar(&add.Title, "title", "", "Title")
	addCmd.Flags().StringVar(&add.Excerpt, "excerpt", "", "Excerpt")
	addCmd.Flags().StringSliceVarP(&add.Tags, "tags", "t", nil, "Tags")
	addCmd.Flags().BoolVar(&add.Public, "public", false, "Make the bookmark public")
	bookmarksCmd.AddCommand(addCmd)

	var byURL string
	deleteCmd := &cobra.Command{
		Use:   "delete [ID]",
		Short: "Delete a bookmark by id or --url",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (byURL != "") {
				return fmt.Errorf("pass exactly one of ID or --url")
			}
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				if byURL != "" {
					return s.API.DeleteBookmarkByURL(ctx, byURL)
				}
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", args[0], err)
				}
				return s.API.DeleteBookmark(ctx, id)
			})
		},
	}
	deleteCmd.Flags().StringVar(&byURL, "url", "", "Delete the bookmark saved for this URL")
	bookmarksCmd.AddCommand(deleteCmd)

	bookmarksCmd.AddCommand(&cobra.Command{
		Use:   "shot IMAGE_URL",
		Short: "Print the screenshot URL for a bookmark image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(_ context.Context, s *app.Session) error {
				u, err := s.API.ShotURL(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(opts.out, u)
				return err
			})
		},
	})

	return bookmarksCmd
}

func newTagsCmd(opts *rootOptions) *cobra.Command {
	var keyword string
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				tags, err := s.API.ListTags(ctx, keyword)
				if err != nil {
					return err
				}
				return printJSON(opts.out, tags)
			})
		},
	}
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Filter keyword")
	return cmd
}
