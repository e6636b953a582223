// Package cache stores fetched documentation pages so that repeated runs do
// not hit the network. Entries are keyed by the SHA-256 of the URL without
// its fragment and are never invalidated implicitly.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"

	"github.com/teranos/fbstubs/internal/httpclient"
	"github.com/teranos/fbstubs/logger"
)

// BlobStore is a concurrency-safe content store.
type BlobStore interface {
	// Get returns the stored body and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores body under key, replacing any previous entry.
	Put(ctx context.Context, key string, body []byte) error
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Key returns the cache key for rawURL: hex(sha256(url-without-fragment)).
func Key(rawURL string) string {
	sum := sha256.Sum256([]byte(httpclient.StripFragment(rawURL)))
	return hex.EncodeToString(sum[:])
}

// CachedFetcher serves documents from a BlobStore and falls through to the
// network on a miss, storing the response.
type CachedFetcher struct {
	next   httpclient.Fetcher
	store  BlobStore
	logger *zap.SugaredLogger
}

// NewCachedFetcher wraps next with store.
func NewCachedFetcher(next httpclient.Fetcher, store BlobStore, log *zap.SugaredLogger) *CachedFetcher {
	return &CachedFetcher{next: next, store: store, logger: logger.OrNop(log)}
}

// Fetch implements httpclient.Fetcher.
func (c *CachedFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	key := Key(rawURL)

	body, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warnw("Cache read failed, fetching",
			logger.FieldURL, rawURL,
			logger.FieldError, err.Error(),
		)
	} else if ok {
		c.logger.Debugw("Cache hit", logger.FieldURL, rawURL, logger.FieldSize, len(body))
		return body, nil
	}

	body, err = c.next.Fetch(ctx, httpclient.StripFragment(rawURL))
	if err != nil {
		return nil, err
	}

	if err := c.store.Put(ctx, key, body); err != nil {
		c.logger.Warnw("Cache write failed",
			logger.FieldURL, rawURL,
			logger.FieldError, err.Error(),
		)
	}
	return body, nil
}
