package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	tokenBucket      = "tokens"
	bookmarkBucket   = "bookmarks"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	bookmarkTTL     time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{tokenBucket, bookmarkBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		bookmarkTTL:     opts.BookmarkTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Token returns the token stored under key, or "" when absent.
func (b *boltStore) Token(key string) (string, error) {
	if b == nil || b.db == nil {
		return "", nil
	}

	var token string
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tokenBucket))
		if bucket == nil {
			return fmt.Errorf("token bucket missing")
		}
		if v := bucket.Get([]byte(key)); v != nil {
			token = string(v)
		}
		return nil
	})
	return token, err
}

// SetToken stores token under key. An empty token clears the key.
func (b *boltStore) SetToken(key, token string) error {
	if b == nil || b.db == nil {
		return nil
	}
	if token == "" {
		return b.ClearToken(key)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tokenBucket))
		if bucket == nil {
			return fmt.Errorf("token bucket missing")
		}
		return bucket.Put([]byte(key), []byte(token))
	})
}

// ClearToken removes key.
func (b *boltStore) ClearToken(key string) error {
	if b == nil || b.db == nil {
		return nil
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tokenBucket))
		if bucket == nil {
			return fmt.Errorf("token bucket missing")
		}
		return bucket.Delete([]byte(key))
	})
}

// SeenBookmark checks if a bookmark with the given ID has been exported.
func (b *boltStore) SeenBookmark(id string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return false, err
	}

	var exists bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bookmarkBucket))
		if bucket == nil {
			return fmt.Errorf("bookmark bucket missing")
		}

		key := []byte(id)
		value := bucket.Get(key)
		if value == nil {
			exists = false
			return nil
		}

		expiry, ok := decodeExpiry(value)
		if !ok || !expiry.After(time.Now()) {
			exists = false
			return bucket.Delete(key)
		}

		exists = true
		return nil
	})
	return exists, err
}

// MarkBookmark marks a bookmark with the given ID as exported.
func (b *boltStore) MarkBookmark(id string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bookmarkBucket))
		if bucket == nil {
			return fmt.Errorf("bookmark bucket missing")
		}
		buf := make([]byte, expiryValueBytes)
		binary.BigEndian.PutUint64(buf, uint64(now.Add(b.bookmarkTTL).Unix()))
		return bucket.Put([]byte(id), buf)
	})
}

// maybeCleanupExpired removes expired bookmark ids on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bookmarkBucket))
		if bucket == nil {
			return fmt.Errorf("bookmark bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeExpiry decodes the expiry time from the stored byte slice.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
