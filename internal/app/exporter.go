package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/bookmark-client/internal/config"
	"github.com/samvad-hq/bookmark-client/internal/exporter"
	"github.com/samvad-hq/bookmark-client/internal/logger"
	"github.com/samvad-hq/bookmark-client/internal/storage"
	"github.com/samvad-hq/bookmark-client/pkg/bookmarks"
	"github.com/samvad-hq/bookmark-client/pkg/publishers"
	"github.com/samvad-hq/bookmark-client/pkg/sources"
)

// Exporter runs the export loop: every interval it copies new bookmarks from
// each configured source to the enabled publishers.
type Exporter struct {
	cfg            *config.Config
	sources        []sources.Source
	fanout         *publishers.Fanout
	service        *exporter.Service
	exportInterval time.Duration
	log            logger.Logger
	store          storage.Store
	closeOnce      sync.Once
}

// NewExporter builds an exporter runtime from config files.
func NewExporter(ctx context.Context, cfg *config.Config, log logger.Logger) (*Exporter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := sources.LoadSources(cfg.SourcesFile); err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	srcs := sources.Sources()
	sourceIDs := make([]string, 0, len(srcs))
	for _, s := range srcs {
		sourceIDs = append(sourceIDs, s.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(sourceIDs),
		"ids":   sourceIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		BookmarkTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"bookmark_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	var scraper exporter.BookmarkScraper
	if cfg.EnrichMetadata {
		scraper = exporter.NewScraper(nil, log)
	}

	return &Exporter{
		cfg:            cfg,
		sources:        srcs,
		fanout:         fanout,
		service:        exporter.NewService(sourceListers(cfg, store, log), scraper, fanout, log, store),
		exportInterval: cfg.ExportInterval,
		log:            log,
		store:          store,
	}, nil
}

// sourceListers builds a bookmark API per source. Each source reads its own
// token key unless it carries a fixed token.
func sourceListers(cfg *config.Config, store storage.TokenStore, log logger.Logger) exporter.ListerFactory {
	return exporter.ListerFactoryFunc(func(src sources.Source) (exporter.BookmarkLister, error) {
		tokens := tokenProvider(src.Token, storage.KeyedToken{Store: store, Key: src.TokenKey})
		client, err := newClient(src.BaseURL, cfg, tokens, log)
		if err != nil {
			return nil, err
		}
		return bookmarks.New(client), nil
	})
}

// Run starts the export loop until the context is cancelled.
func (e *Exporter) Run(ctx context.Context) error {
	if e == nil || e.service == nil {
		return fmt.Errorf("exporter is not initialized")
	}
	defer e.close()

	e.log.InfoObj("exporter loop starting", "exporter_state", map[string]any{
		"sources_count":    len(e.sources),
		"publishers_count": e.fanout.Size(),
		"export_interval":  e.exportInterval.String(),
	})

	if err := e.RunOnce(ctx); err != nil {
		e.log.ErrorObj("initial export failed", "error", err)
	}

	ticker := time.NewTicker(e.exportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.InfoObj("exporter loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := e.RunOnce(ctx); err != nil {
				e.log.ErrorObj("scheduled export failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single export pass across all sources.
func (e *Exporter) RunOnce(ctx context.Context) error {
	start := time.Now()
	e.log.InfoObj("export started", "export_meta", map[string]any{
		"sources_count": len(e.sources),
		"started_at":    start.UTC(),
	})
	if err := e.service.Run(ctx, e.sources); err != nil {
		return err
	}
	e.log.InfoObj("export completed", "export_meta", map[string]any{
		"sources_count": len(e.sources),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

// Close releases publishers and storage without running the loop.
func (e *Exporter) Close() { e.close() }

func (e *Exporter) close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		if err := e.fanout.Close(); err != nil {
			e.log.ErrorObj("publisher close failed", "error", err)
		}
		if e.store != nil {
			if err := e.store.Close(); err != nil {
				e.log.ErrorObj("storage close failed", "error", err)
			}
		}
	})
}
