package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/janpfeifer/GifCentration/internal/game"
	"github.com/janpfeifer/GifCentration/internal/search"
)

// stubSearcher returns count images (or as many as requested if count < 0) or err,
// and records the last request.
type stubSearcher struct {
	mu         sync.Mutex
	count      int
	err        error
	lastQuery  string
	lastLimit  int
	lastRating search.Rating
}

func (s *stubSearcher) SearchImages(ctx context.Context, query string, limit int, rating search.Rating) ([]game.ImageRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery, s.lastLimit, s.lastRating = query, limit, rating
	if s.err != nil {
		return nil, s.err
	}
	n := s.count
	if n < 0 {
		n = limit
	}
	images := make([]game.ImageRef, n)
	for i := range images {
		images[i] = game.ImageRef{
			ID:    fmt.Sprintf("gif%d", i),
			Title: fmt.Sprintf("%s #%d", query, i),
			URL:   fmt.Sprintf("https://gifs.test/%d.gif", i),
		}
	}
	return images, nil
}

// fastConfig shortens every delay, for tests running on the real clock.
func fastConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.MinLoadWait = time.Millisecond
	cfg.RevealDelay = time.Millisecond
	cfg.MismatchDelay = 200 * time.Millisecond
	cfg.ConfettiDuration = 10 * time.Millisecond
	cfg.MaxLoadWait = time.Second
	cfg.LongWait = 500 * time.Millisecond
	return cfg
}
