package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultPageCacheSize bounds the number of page texts held in memory for
// preview generation.
const defaultPageCacheSize = 256

type pageKey struct {
	docID int64
	page  int
}

// PageCache serves page text for preview generation, keeping recently used
// pages in memory instead of re-querying the store per hit.
type PageCache struct {
	store *Store
	cache *lru.Cache[pageKey, string]
}

// NewPageCache creates a cache in front of the store. size <= 0 selects the
// default.
func NewPageCache(s *Store, size int) (*PageCache, error) {
	if size <= 0 {
		size = defaultPageCacheSize
	}
	cache, err := lru.New[pageKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating page cache: %w", err)
	}
	return &PageCache{store: s, cache: cache}, nil
}

// Text returns the stored text of one page, from cache when possible.
func (c *PageCache) Text(ctx context.Context, docID int64, page int) (string, error) {
	key := pageKey{docID: docID, page: page}
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}
	text, err := c.store.PageText(ctx, docID, page)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, text)
	return text, nil
}
