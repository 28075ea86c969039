package exporter

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/samvad-hq/bookmark-client/internal/domain"
	"github.com/samvad-hq/bookmark-client/pkg/httpclient"
	"github.com/samvad-hq/bookmark-client/pkg/sources"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubFetcher returns a single response and records requested URLs.
type stubFetcher struct {
	resp    httpclient.Response
	err     error
	urls    []string
	headers map[string]string
}

func (s *stubFetcher) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	s.urls = append(s.urls, url)
	s.headers = headers
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

const ogPage = `
<html>
  <head>
    <title>Fallback</title>
    <meta property="og:title" content="OG Title">
    <meta property="og:description" content="OG Desc">
    <meta property="og:image" content="/img/og.png">
  </head>
</html>`

func TestParseMetaPrefersOGTags(t *testing.T) {
	meta, err := parseMeta([]byte(ogPage))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "OG Title" || meta.Description != "OG Desc" || meta.ImageURL != "/img/og.png" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestResolveURLHandlesRelative(t *testing.T) {
	if got := resolveURL("/img.png", "https://example.com/articles/1"); got != "https://example.com/img.png" {
		t.Fatalf("resolveURL got %q", got)
	}
	if got := resolveURL("", "https://example.com"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestScraperFillsOnlyMissingFields(t *testing.T) {
	fetcher := &stubFetcher{resp: stubHTTPResponse{body: []byte(ogPage), statusCode: 200}}
	scraper := NewScraper(fetcher, nil)
	src := sources.Source{ID: "s", PageDelayMs: 1, Config: map[string]any{"user_agent": "ua"}}

	items := []domain.Bookmark{
		{ID: 1, URL: "https://example.com/a/1", Title: "Mine"},
		{ID: 2, URL: "https://example.com/b", Title: "t", Excerpt: "e", ImageURL: "i"},
		{ID: 3, URL: "ftp://example.com/c"},
	}
	out := scraper.Enrich(context.Background(), src, items)

	if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://example.com/a/1" {
		t.Fatalf("expected only sparse http bookmark fetched, got %v", fetcher.urls)
	}
	if fetcher.headers["User-Agent"] != "ua" {
		t.Fatalf("expected source headers, got %#v", fetcher.headers)
	}
	if out[0].Title != "Mine" || out[0].Excerpt != "OG Desc" || out[0].ImageURL != "https://example.com/img/og.png" {
		t.Fatalf("unexpected enrichment %#v", out[0])
	}
	if out[1].ImageURL != "i" || out[1].Excerpt != "e" || out[2].Title != "" {
		t.Fatalf("non-sparse or non-http bookmarks must be untouched")
	}
}

func TestScraperKeepsBookmarkOnFailure(t *testing.T) {
	scraper := NewScraper(&stubFetcher{err: errors.New("dial")}, nil)
	items := []domain.Bookmark{{ID: 1, URL: "https://example.com"}}

	out := scraper.Enrich(context.Background(), sources.Source{ID: "s"}, items)
	if len(out) != 1 || out[0].ID != 1 || out[0].Title != "" {
		t.Fatalf("unexpected result %#v", out)
	}
}

func TestScraperLimitsBody(t *testing.T) {
	body := bytes.Repeat([]byte("a"), maxHTMLBodyBytes+10)
	scraper := NewScraper(&stubFetcher{resp: stubHTTPResponse{body: body, statusCode: 200}}, nil)

	out := scraper.Enrich(context.Background(), sources.Source{ID: "s"}, []domain.Bookmark{{ID: 1, URL: "https://example.com"}})
	if out[0].Title != "" {
		t.Fatalf("expected empty title because body had no metadata")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", " ", "foo", "bar"); got != "foo" {
		t.Fatalf("firstNonEmpty returned %q", got)
	}
}
