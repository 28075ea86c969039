// Package storage provides the local persistent store: the bearer token
// and the ids of bookmarks already exported.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// TokenStore persists bearer tokens under string keys.
type TokenStore interface {
	Token(key string) (string, error)
	SetToken(key, token string) error
	ClearToken(key string) error
}

// SeenStore tracks exported bookmark ids.
type SeenStore interface {
	SeenBookmark(id string) (bool, error)
	MarkBookmark(id string) error
}

// Store is the full storage backend.
type Store interface {
	TokenStore
	SeenStore
	Close() error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	BookmarkTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultBookmarkTTL     = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "memory":
		return newMemoryStore(opts), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.BookmarkTTL <= 0 {
		opts.BookmarkTTL = defaultBookmarkTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// KeyedToken reads one token key from a TokenStore. It satisfies
// httpclient.TokenProvider.
type KeyedToken struct {
	Store TokenStore
	Key   string
}

// Token returns the stored token, or "" when the key is absent.
func (k KeyedToken) Token(context.Context) (string, error) {
	if k.Store == nil {
		return "", nil
	}
	return k.Store.Token(k.Key)
}

// Save stores token under the key.
func (k KeyedToken) Save(token string) error {
	if k.Store == nil {
		return fmt.Errorf("token store is nil")
	}
	return k.Store.SetToken(k.Key, token)
}

// Clear removes the key.
func (k KeyedToken) Clear() error {
	if k.Store == nil {
		return nil
	}
	return k.Store.ClearToken(k.Key)
}

type noopStore struct{}

func (noopStore) Close() error                      { return nil }
func (noopStore) Token(string) (string, error)      { return "", nil }
func (noopStore) SetToken(string, string) error     { return nil }
func (noopStore) ClearToken(string) error           { return nil }
func (noopStore) SeenBookmark(string) (bool, error) { return false, nil }
func (noopStore) MarkBookmark(string) error         { return nil }

// memoryStore keeps everything in process memory.
type memoryStore struct {
	mu     sync.Mutex
	tokens map[string]string
	seen   map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		tokens: make(map[string]string),
		seen:   make(map[string]time.Time),
		ttl:    opts.BookmarkTTL,
		now:    time.Now,
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Token(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[key], nil
}

func (m *memoryStore) SetToken(key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}

func (m *memoryStore) ClearToken(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, key)
	return nil
}

func (m *memoryStore) SeenBookmark(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.seen[id]
	if !ok {
		return false, nil
	}
	if !expiry.After(m.now()) {
		delete(m.seen, id)
		return false, nil
	}
	return true, nil
}

func (m *memoryStore) MarkBookmark(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[id] = m.now().Add(m.ttl)
	return nil
}
