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
	routeBookmarks         = "/api/bookmarks"
	routeBookmarkAdd       = "/api/bookmarks/add"
	routeBookmarkDelete    = "/api/bookmarks/delete"
	routeBookmarkDeleteURL = "/api/bookmarks/deleteUrl"
	routeBookmarkShot      = "/api/bookmarks/showShot"
)

// PageSize is the fixed page size of the list route.
const PageSize = 30

// ListOptions filters ListBookmarks.
type ListOptions struct {
	Keyword string
	Page    int
	Tags    []string
	Exclude []string
}

// BookmarkPage is one page of ListBookmarks.
type BookmarkPage struct {
	Page      int               `json:"page"`
	MaxPage   int               `json:"maxPage"`
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

// AddBookmarkRequest creates or updates the bookmark for URL.
type AddBookmarkRequest struct {
	URL       string
	Title     string
	Excerpt   string
	Tags      []string
	Public    bool
	From      string
	ImgBase64 string
}

// ListBookmarks returns one page of bookmarks, newest first. Pages start at 1.
func (a *API) ListBookmarks(ctx context.Context, opts ListOptions) (*BookmarkPage, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	data := httpclient.Params{}.
		Add("keyword", opts.Keyword).
		Add("page", page).
		Add("tags", joinTags(opts.Tags)).
		Add("exclude", joinTags(opts.Exclude))

	var out BookmarkPage
	if err := a.post(ctx, routeBookmarks, data, &out); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return &out, nil
}

// AddBookmark saves a bookmark. The backend strips UTM parameters and
// merges with an existing bookmark for the same URL.
func (a *API) AddBookmark(ctx context.Context, req AddBookmarkRequest) (*domain.Bookmark, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, errors.New("add bookmark: url is required")
	}
	public := 0
	if req.Public {
		public = 1
	}
	data := httpclient.Params{}.
		Add("url", strings.TrimSpace(req.URL)).
		Add("title", req.Title).
		Add("excerpt", req.Excerpt).
		Add("tags", joinTags(req.Tags)).
		Add("public", public)
	if req.From != "" {
		data = data.Add("from", req.From)
	}
	if req.ImgBase64 != "" {
		data = data.Add("imgbase64", req.ImgBase64)
	}

	var out domain.Bookmark
	if err := a.post(ctx, routeBookmarkAdd, data, &out); err != nil {
		return nil, fmt.Errorf("add bookmark: %w", err)
	}
	return &out, nil
}

// DeleteBookmark removes the bookmark with id.
func (a *API) DeleteBookmark(ctx context.Context, id int) error {
	if id <= 0 {
		return errors.New("delete bookmark: id must be positive")
	}
	if err := a.post(ctx, routeBookmarkDelete, httpclient.Params{}.Add("id", id), nil); err != nil {
		return fmt.Errorf("delete bookmark %d: %w", id, err)
	}
	return nil
}

// DeleteBookmarkByURL removes the bookmark saved for url.
func (a *API) DeleteBookmarkByURL(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("delete bookmark: url is required")
	}
	if err := a.post(ctx, routeBookmarkDeleteURL, httpclient.Params{}.Add("url", url), nil); err != nil {
		return fmt.Errorf("delete bookmark %s: %w", url, err)
	}
	return nil
}

// ShotURL returns the absolute URL serving a bookmark's screenshot.
func (a *API) ShotURL(imageURL string) (string, error) {
	base, err := a.client.ResolveURL(routeBookmarkShot)
	if err != nil {
		return "", err
	}
	return base + "?" + httpclient.Params{}.Add("image_url", imageURL).Encode(), nil
}

func joinTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ",")
}
