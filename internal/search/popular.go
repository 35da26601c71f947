package search

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/janpfeifer/GifCentration/internal/game"
	"k8s.io/klog/v2"
)

// DefaultPopularSize is the number of distinct queries counted by a Coordinator.
const DefaultPopularSize = 1024

// Popularity counts the queries that started a game. Once full, the least
// recently played query is forgotten.
type Popularity struct {
	mu     sync.Mutex
	counts *lru.Cache[string, int]
}

// NewPopularity counts up to size distinct queries.
func NewPopularity(size int) (*Popularity, error) {
	counts, err := lru.New[string, int](size)
	if err != nil {
		return nil, err
	}
	return &Popularity{counts: counts}, nil
}

// normalizeQuery folds case and white space, so "Cats" and " cats " count together.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Record counts one game played with query.
func (p *Popularity) Record(query string) {
	query = normalizeQuery(query)
	if query == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n, _ := p.counts.Peek(query)
	p.counts.Add(query, n+1)
	klog.V(2).Infof("Popularity: %q played %d times", query, n+1)
}

// Top returns up to n queries, most played first; ties are sorted by query.
func (p *Popularity) Top(n int) []game.TopSearch {
	p.mu.Lock()
	defer p.mu.Unlock()
	top := make([]game.TopSearch, 0, p.counts.Len())
	for _, query := range p.counts.Keys() {
		if count, ok := p.counts.Peek(query); ok {
			top = append(top, game.TopSearch{Query: query, Count: count})
		}
	}
	slices.SortFunc(top, func(a, b game.TopSearch) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Query, b.Query)
	})
	return top[:min(max(n, 0), len(top))]
}
