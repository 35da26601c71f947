package session

import (
	"sync"
	"time"

	"k8s.io/klog/v2"
)

// Scheduler runs delayed actions identified by a key.
//
// Scheduling a key replaces its pending action. Actions run with the
// scheduler's lock held, and an action whose key was cancelled or replaced
// after its timer fired is dropped, so a superseded callback never runs.
// All methods must be called with the lock held.
type Scheduler struct {
	mu      sync.Locker
	nextGen uint64
	entries map[string]scheduled
}

type scheduled struct {
	timer *time.Timer
	gen   uint64
}

// NewScheduler creates a Scheduler whose actions run holding mu.
func NewScheduler(mu sync.Locker) *Scheduler {
	return &Scheduler{
		mu:      mu,
		entries: make(map[string]scheduled),
	}
}

// After schedules fn to run after d under key.
func (s *Scheduler) After(key string, d time.Duration, fn func()) {
	s.Cancel(key)
	s.nextGen++
	gen := s.nextGen
	timer := time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, ok := s.entries[key]
		if !ok || e.gen != gen {
			klog.V(2).Infof("Scheduler: dropping superseded %q", key)
			return
		}
		delete(s.entries, key)
		klog.V(2).Infof("Scheduler: running %q", key)
		fn()
	})
	s.entries[key] = scheduled{timer: timer, gen: gen}
}

// Cancel removes the pending action of key. It returns false if there was none.
func (s *Scheduler) Cancel(key string) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.entries, key)
	return true
}

// CancelAll removes every pending action.
func (s *Scheduler) CancelAll() {
	for key, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, key)
	}
}

// Pending reports whether key has an action waiting to run.
func (s *Scheduler) Pending(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Len is the number of pending actions.
func (s *Scheduler) Len() int { return len(s.entries) }
