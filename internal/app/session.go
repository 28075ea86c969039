package app

import (
	"fmt"
	"strings"

	"github.com/samvad-hq/bookmark-client/internal/config"
	"github.com/samvad-hq/bookmark-client/internal/logger"
	"github.com/samvad-hq/bookmark-client/internal/storage"
	"github.com/samvad-hq/bookmark-client/pkg/bookmarks"
	"github.com/samvad-hq/bookmark-client/pkg/httpclient"
)

// Session is an authenticated connection to one bookmark backend: the HTTP
// client, the typed API on top of it and the token storage behind it.
type Session struct {
	Client *httpclient.Client
	API    *bookmarks.API
	Tokens storage.KeyedToken
	store  storage.Store
	log    logger.Logger
}

// NewSession opens storage and builds a client for cfg.BaseURL. A token set
// in config takes precedence over the stored one.
func NewSession(cfg *config.Config, log logger.Logger) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		BookmarkTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	tokens := storage.KeyedToken{Store: store, Key: cfg.TokenKey}
	client, err := newClient(cfg.BaseURL, cfg, tokenProvider(cfg.Token, tokens), log)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Session{
		Client: client,
		API:    bookmarks.New(client),
		Tokens: tokens,
		store:  store,
		log:    log,
	}, nil
}

// Close releases the storage backend.
func (s *Session) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		s.log.ErrorObj("storage close failed", "error", err)
		return err
	}
	return nil
}

// tokenProvider prefers a fixed token over the stored one.
func tokenProvider(fixed string, stored storage.KeyedToken) httpclient.TokenProvider {
	if fixed = strings.TrimSpace(fixed); fixed != "" {
		return httpclient.StaticToken(fixed)
	}
	return stored
}

func newClient(baseURL string, cfg *config.Config, tokens httpclient.TokenProvider, log logger.Logger) (*httpclient.Client, error) {
	client, err := httpclient.New(baseURL,
		httpclient.WithTokenProvider(tokens),
		httpclient.WithLogger(log),
		httpclient.WithTimeout(cfg.HTTPTimeout),
		httpclient.WithRequestTracing(cfg.HTTPDebug),
	)
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}
	return client, nil
}
