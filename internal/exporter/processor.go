package exporter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/samvad-hq/bookmark-client/internal/domain"
	"github.com/samvad-hq/bookmark-client/internal/logger"
	"github.com/samvad-hq/bookmark-client/pkg/bookmarks"
	"github.com/samvad-hq/bookmark-client/pkg/publishers"
	"github.com/samvad-hq/bookmark-client/pkg/sources"
)

// SourceProcessor exports the bookmarks of a single source.
type SourceProcessor struct {
	listers   ListerFactory
	scraper   BookmarkScraper
	publisher EventPublisher
	log       logger.Logger
	deduper   Deduper
}

// NewSourceProcessor wires a processor. scraper and deduper may be nil.
func NewSourceProcessor(listers ListerFactory, scraper BookmarkScraper, pub EventPublisher, log logger.Logger, deduper Deduper) *SourceProcessor {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &SourceProcessor{
		listers:   listers,
		scraper:   scraper,
		publisher: pub,
		log:       log,
		deduper:   deduper,
	}
}

// Process pages through src, publishes unseen bookmarks and marks them as
// exported. idx is the position of src in the run and is only logged.
func (p *SourceProcessor) Process(ctx context.Context, src sources.Source, idx int) error {
	lister, err := p.listers.ListerFor(src)
	if err != nil {
		return fmt.Errorf("resolve client for source %s: %w", src.ID, err)
	}

	items, err := p.collect(ctx, lister, src)
	if err != nil && len(items) == 0 {
		return fmt.Errorf("list source %s: %w", src.ID, err)
	}
	listErr := err

	fresh := p.filterNew(src, items)
	if p.scraper != nil && len(fresh) > 0 {
		fresh = p.scraper.Enrich(ctx, src, fresh)
	}

	published, pubErr := p.publish(ctx, src, fresh)
	p.log.InfoObj("source export completed", "source_result", map[string]any{
		"source_id":   src.ID,
		"index":       idx,
		"listed":      len(items),
		"fresh":       len(fresh),
		"published":   published,
		"partial_err": listErr != nil,
	})

	if listErr != nil {
		return errors.Join(fmt.Errorf("list source %s: %w", src.ID, listErr), pubErr)
	}
	return pubErr
}

// collect reads pages until the last page, src.MaxPages, or an error. Pages
// read before an error are returned with it.
func (p *SourceProcessor) collect(ctx context.Context, lister BookmarkLister, src sources.Source) ([]domain.Bookmark, error) {
	var out []domain.Bookmark
	delay := src.PageDelay()

	for page := 1; ; page++ {
		resp, err := lister.ListBookmarks(ctx, bookmarks.ListOptions{
			Keyword: src.Keyword,
			Page:    page,
			Tags:    src.Tags,
			Exclude: src.Exclude,
		})
		if err != nil {
			return out, fmt.Errorf("page %d: %w", page, err)
		}
		out = append(out, resp.Bookmarks...)

		if page >= resp.MaxPage || len(resp.Bookmarks) == 0 {
			return out, nil
		}
		if src.MaxPages > 0 && page >= src.MaxPages {
			return out, nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return out, ctx.Err()
		case <-timer.C:
		}
	}
}

// filterNew drops bookmarks already exported. Lookup failures keep the
// bookmark so it is retried rather than lost.
func (p *SourceProcessor) filterNew(src sources.Source, items []domain.Bookmark) []domain.Bookmark {
	if p.deduper == nil {
		return items
	}

	out := make([]domain.Bookmark, 0, len(items))
	seenInRun := make(map[int]struct{}, len(items))
	for _, b := range items {
		if _, dup := seenInRun[b.ID]; dup {
			continue
		}
		seenInRun[b.ID] = struct{}{}

		seen, err := p.deduper.SeenBookmark(dedupeKey(src, b))
		if err != nil {
			p.log.WarnObj("dedupe lookup failed", "dedupe_error", map[string]any{
				"source_id":   src.ID,
				"bookmark_id": b.ID,
				"error":       err.Error(),
			})
		} else if seen {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (p *SourceProcessor) publish(ctx context.Context, src sources.Source, items []domain.Bookmark) (int, error) {
	if p.publisher == nil {
		return 0, nil
	}

	var errs []error
	published := 0
	for _, b := range items {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := p.publisher.Publish(ctx, publishers.NewEvent(src.ID, src.Name, b)); err != nil {
			errs = append(errs, fmt.Errorf("publish bookmark %d: %w", b.ID, err))
			continue
		}
		published++
		if p.deduper != nil {
			if err := p.deduper.MarkBookmark(dedupeKey(src, b)); err != nil {
				p.log.WarnObj("mark bookmark failed", "dedupe_error", map[string]any{
					"source_id":   src.ID,
					"bookmark_id": b.ID,
					"error":       err.Error(),
				})
			}
		}
	}
	return published, errors.Join(errs...)
}

func dedupeKey(src sources.Source, b domain.Bookmark) string {
	return src.ID + ":" + strconv.Itoa(b.ID)
}
