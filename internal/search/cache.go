package search

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/janpfeifer/GifCentration/internal/game"
	"k8s.io/klog/v2"
)

// CachedSearcher de-duplicates provider calls for identical searches.
// Only successful responses are cached.
type CachedSearcher struct {
	next  Searcher
	cache *expirable.LRU[string, []game.ImageRef]
}

// NewCachedSearcher wraps next with an LRU of size entries, each kept for ttl.
func NewCachedSearcher(next Searcher, size int, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{
		next:  next,
		cache: expirable.NewLRU[string, []game.ImageRef](size, nil, ttl),
	}
}

func cacheKey(query string, limit int, rating Rating) string {
	return fmt.Sprintf("%s|%d|%s", query, limit, rating)
}

// SearchImages implements Searcher.
func (s *CachedSearcher) SearchImages(ctx context.Context, query string, limit int, rating Rating) ([]game.ImageRef, error) {
	key := cacheKey(query, limit, rating)
	if images, ok := s.cache.Get(key); ok {
		klog.V(1).Infof("CachedSearcher: hit for %q", key)
		return append([]game.ImageRef(nil), images...), nil
	}
	images, err := s.next.SearchImages(ctx, query, limit, rating)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, append([]game.ImageRef(nil), images...))
	return images, nil
}

// Len is the number of cached searches.
func (s *CachedSearcher) Len() int { return s.cache.Len() }
