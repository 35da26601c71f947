// Package search turns a user query into the images of a tableau.
//
// The Coordinator calls a Searcher (the GIF provider) and applies the
// resolution policy: partial results shrink the tableau, no results abort.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/janpfeifer/GifCentration/internal/game"
	"k8s.io/klog/v2"
)

// Rating is the content rating passed to the provider.
type Rating string

const (
	RatingG    Rating = "g"
	RatingPG   Rating = "pg"
	RatingPG13 Rating = "pg-13"
	RatingR    Rating = "r"
)

// ParseRating parses a rating, defaulting to RatingG for empty or unknown values.
func ParseRating(s string) Rating {
	switch r := Rating(strings.ToLower(strings.TrimSpace(s))); r {
	case RatingG, RatingPG, RatingPG13, RatingR:
		return r
	default:
		return RatingG
	}
}

// Searcher is the GIF search provider.
type Searcher interface {
	SearchImages(ctx context.Context, query string, limit int, rating Rating) ([]game.ImageRef, error)
}

// StatusError is returned by a Searcher when the provider answered with a
// non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search provider returned status %d (%s)", e.Code, http.StatusText(e.Code))
}

// ErrorStateFor maps a Searcher error to the state shown to the user.
func ErrorStateFor(err error) game.GifErrorState {
	if err == nil {
		return game.Ok
	}
	var se *StatusError
	if !errors.As(err, &se) {
		return game.UnknownError
	}
	switch se.Code {
	case http.StatusBadRequest:
		return game.BadRequest
	case http.StatusForbidden:
		return game.Forbidden
	case http.StatusInternalServerError:
		return game.InternalServerError
	default:
		return game.UnknownError
	}
}

// Result of a coordinated search.
type Result struct {
	Images            []game.ImageRef
	ResolvedPairCount int
	ErrorState        game.GifErrorState
}

// Proceed reports whether a session can be started with the result.
func (r Result) Proceed() bool {
	return r.ResolvedPairCount > 0
}

// Coordinator resolves queries into tableau images.
type Coordinator struct {
	searcher Searcher
	popular  *Popularity
}

// NewCoordinator creates a Coordinator over the given provider.
func NewCoordinator(searcher Searcher) *Coordinator {
	popular, err := NewPopularity(DefaultPopularSize)
	if err != nil {
		panic(err) // DefaultPopularSize is positive.
	}
	return &Coordinator{searcher: searcher, popular: popular}
}

// TopSearches returns up to n of the queries that started the most games.
func (c *Coordinator) TopSearches(n int) []game.TopSearch {
	return c.popular.Top(n)
}

// Search asks the provider for desiredPairCount images.
//
// Provider failures yield no images and the mapped error state; they are not
// retried. Fewer images than requested shrink the tableau (NotEnoughGifs), no
// images yield NoGifs. Providers returning more than requested are truncated.
func (c *Coordinator) Search(ctx context.Context, query string, desiredPairCount int, rating Rating) Result {
	images, err := c.searcher.SearchImages(ctx, query, desiredPairCount, rating)
	if err != nil {
		state := ErrorStateFor(err)
		klog.Errorf("Search %q: provider failed (%s): %v", query, state, err)
		return Result{ErrorState: state}
	}

	switch n := len(images); {
	case n == 0:
		klog.Infof("Search %q: no GIFs found", query)
		return Result{ErrorState: game.NoGifs}
	case n < desiredPairCount:
		klog.Infof("Search %q: only %d of %d GIFs, shrinking tableau", query, n, desiredPairCount)
		c.popular.Record(query)
		return Result{Images: images, ResolvedPairCount: n, ErrorState: game.NotEnoughGifs}
	case n > desiredPairCount:
		klog.Warningf("Search %q: provider returned %d GIFs, %d requested; truncating", query, n, desiredPairCount)
		images = images[:desiredPairCount]
	}
	c.popular.Record(query)
	return Result{Images: images, ResolvedPairCount: len(images), ErrorState: game.Ok}
}
