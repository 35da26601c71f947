package game

import (
	"fmt"
	"math/rand/v2"
)

// ShufflePairs returns 2*pairCount slot assignments where each pair key in
// [0, pairCount) appears exactly twice, in uniformly random order.
func ShufflePairs(pairCount int) ([]int, error) {
	if pairCount < 1 {
		return nil, fmt.Errorf("%w: pair count must be >= 1, got %d", ErrInvalidArgument, pairCount)
	}
	keys := make([]int, 2*pairCount)
	for i := range pairCount {
		keys[i] = i
		keys[i+pairCount] = i
	}
	// Fisher-Yates.
	for i := len(keys) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys, nil
}
