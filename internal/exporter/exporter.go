// Package exporter copies bookmarks from configured sources to publishers.
package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/bookmark-client/internal/logger"
	"github.com/samvad-hq/bookmark-client/pkg/sources"
)

// Service coordinates exports across multiple sources.
type Service struct {
	processor *SourceProcessor
	log       logger.Logger
}

// NewService wires an export service. scraper, log and deduper may be nil.
func NewService(listers ListerFactory, scraper BookmarkScraper, pub EventPublisher, log logger.Logger, deduper Deduper) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		processor: NewSourceProcessor(listers, scraper, pub, log, deduper),
		log:       log,
	}
}

// Run executes one export pass over srcs.
func (s *Service) Run(ctx context.Context, srcs []sources.Source) error {
	if s == nil || s.processor == nil || s.processor.listers == nil {
		return fmt.Errorf("export service is not initialized")
	}
	if len(srcs) == 0 {
		return fmt.Errorf("no sources configured for export")
	}

	return errors.Join(s.runAll(ctx, srcs)...)
}

func (s *Service) runAll(ctx context.Context, srcs []sources.Source) []error {
	errs := make([]error, 0, len(srcs))

	for i, src := range srcs {
		if ctx.Err() != nil {
			break
		}
		if err := s.processor.Process(ctx, src, i); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("source export failed", "source_error", map[string]any{
				"source_id": src.ID,
				"error":     err.Error(),
			})
		}
	}

	return errs
}
