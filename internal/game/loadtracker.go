package game

import "k8s.io/klog/v2"

// LoadTracker records which slots of one tableau epoch have their GIF visibly loaded.
type LoadTracker struct {
	epoch    Epoch
	loaded   []bool
	count    int
	notified bool
}

// NewLoadTracker creates a tracker for size slots, all not yet loaded.
func NewLoadTracker(epoch Epoch, size int) *LoadTracker {
	return &LoadTracker{
		epoch:  epoch,
		loaded: make([]bool, max(size, 0)),
	}
}

// Epoch the tracker belongs to.
func (lt *LoadTracker) Epoch() Epoch { return lt.epoch }

// Size is the number of tracked slots.
func (lt *LoadTracker) Size() int { return len(lt.loaded) }

// Count is the number of slots marked as loaded.
func (lt *LoadTracker) Count() int { return lt.count }

// Loaded reports whether slot index is loaded. Out of range indices are not.
func (lt *LoadTracker) Loaded(index int) bool {
	return index >= 0 && index < len(lt.loaded) && lt.loaded[index]
}

// AllLoaded is true if every slot is loaded, and vacuously true for an empty tracker:
// callers must guard the empty case themselves.
func (lt *LoadTracker) AllLoaded() bool {
	return lt.count == len(lt.loaded)
}

// MarkLoaded marks slot index of epoch as loaded.
//
// Calls for another epoch or for an index outside [0, Size()) come from
// callbacks racing a reset: they are logged and ignored. It returns true only
// on the call that completes the tracker, so the "fully loaded" transition is
// reported exactly once.
func (lt *LoadTracker) MarkLoaded(epoch Epoch, index int) bool {
	if epoch != lt.epoch {
		klog.Warningf("LoadTracker: ignoring load of slot %d from stale epoch %d (current %d)", index, epoch, lt.epoch)
		return false
	}
	if index < 0 || index >= len(lt.loaded) {
		klog.Warningf("LoadTracker: index %d out of bounds 0-%d", index, len(lt.loaded)-1)
		return false
	}
	if lt.loaded[index] {
		return false
	}
	lt.loaded[index] = true
	lt.count++
	klog.V(2).Infof("LoadTracker: epoch %d slot %d loaded (%d/%d)", lt.epoch, index, lt.count, len(lt.loaded))
	if lt.AllLoaded() && !lt.notified {
		lt.notified = true
		return true
	}
	return false
}
