package exporter

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/bookmark-client/internal/domain"
	"github.com/samvad-hq/bookmark-client/internal/logger"
	"github.com/samvad-hq/bookmark-client/pkg/httpclient"
	"github.com/samvad-hq/bookmark-client/pkg/sources"
)

const (
	maxHTMLBodyBytes     = 1 << 20 // 1 MiB
	defaultScrapeTimeout = 10 * time.Second
)

// Scraper fetches bookmarked pages and fills missing metadata from OG tags.
type Scraper struct {
	client httpclient.Fetcher
	log    logger.Logger
}

// NewScraper constructs a scraper with the provided fetcher (or a resty default).
func NewScraper(client httpclient.Fetcher, log logger.Logger) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(defaultScrapeTimeout)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scraper{client: client, log: log}
}

// Enrich fetches the page of every sparse bookmark, pausing src.PageDelay()
// between fetches. Existing values are never overwritten. On cancellation the
// remaining bookmarks are returned unchanged.
func (s *Scraper) Enrich(ctx context.Context, src sources.Source, items []domain.Bookmark) []domain.Bookmark {
	out := append([]domain.Bookmark(nil), items...)
	delay := src.PageDelay()
	fetched := 0

	for i, b := range items {
		if !b.Sparse() || !isHTTPURL(b.URL) {
			continue
		}
		if fetched > 0 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return out
		}
		fetched++

		enriched, err := s.fetchAndParse(ctx, src, b)
		if err != nil {
			s.log.WarnObj("bookmark metadata scrape failed", "metadata_error", map[string]any{
				"source_id": src.ID,
				"url":       b.URL,
				"error":     err.Error(),
			})
			continue
		}
		out[i] = enriched
	}

	return out
}

func (s *Scraper) fetchAndParse(ctx context.Context, src sources.Source, b domain.Bookmark) (domain.Bookmark, error) {
	resp, err := s.client.Get(ctx, b.URL, sources.Headers(src))
	if err != nil {
		return b, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return b, httpclient.NewStatusError(http.MethodGet, b.URL, resp.StatusCode(), resp.Body())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return b, err
	}

	updated := b
	if strings.TrimSpace(updated.Title) == "" {
		updated.Title = meta.Title
	}
	if strings.TrimSpace(updated.Excerpt) == "" {
		updated.Excerpt = meta.Description
	}
	if strings.TrimSpace(updated.ImageURL) == "" {
		updated.ImageURL = resolveURL(meta.ImageURL, b.URL)
	}
	return updated, nil
}

type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			extract(`meta[name="twitter:title"]`),
			doc.Find("title").First().Text(),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: firstNonEmpty(
			extract(`meta[property="og:image"]`),
			extract(`meta[name="twitter:image"]`),
		),
	}, nil
}

// resolveURL resolves ref against page. Unparseable input yields ref as is.
func resolveURL(ref, page string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	base, err := url.Parse(page)
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
