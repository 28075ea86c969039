package exporter

import (
	"context"

	"github.com/samvad-hq/bookmark-client/internal/domain"
	"github.com/samvad-hq/bookmark-client/pkg/bookmarks"
	"github.com/samvad-hq/bookmark-client/pkg/publishers"
	"github.com/samvad-hq/bookmark-client/pkg/sources"
)

// BookmarkLister reads one page of bookmarks from a backend.
type BookmarkLister interface {
	ListBookmarks(ctx context.Context, opts bookmarks.ListOptions) (*bookmarks.BookmarkPage, error)
}

// ListerFactory resolves the API client for a source.
type ListerFactory interface {
	ListerFor(src sources.Source) (BookmarkLister, error)
}

// ListerFactoryFunc adapts a function to ListerFactory.
type ListerFactoryFunc func(src sources.Source) (BookmarkLister, error)

func (f ListerFactoryFunc) ListerFor(src sources.Source) (BookmarkLister, error) { return f(src) }

// BookmarkScraper fills in missing bookmark metadata from the bookmarked page.
type BookmarkScraper interface {
	Enrich(ctx context.Context, src sources.Source, items []domain.Bookmark) []domain.Bookmark
}

// EventPublisher publishes exported bookmarks downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers which bookmarks were already exported.
type Deduper interface {
	SeenBookmark(id string) (bool, error)
	MarkBookmark(id string) error
}
