package session

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"
)

func TestSchedulerAfter(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		s := NewScheduler(&mu)
		var fired []string

		mu.Lock()
		s.After("a", 100*time.Millisecond, func() { fired = append(fired, "a") })
		s.After("b", 200*time.Millisecond, func() { fired = append(fired, "b") })
		if !s.Pending("a") || s.Len() != 2 {
			t.Fatalf("Expected 2 pending actions")
		}
		mu.Unlock()

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		mu.Lock()
		if len(fired) != 1 || fired[0] != "a" {
			t.Fatalf("After 150ms expected [a], got %v", fired)
		}
		if s.Pending("a") {
			t.Errorf("Fired action should no longer be pending")
		}
		mu.Unlock()

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		mu.Lock()
		defer mu.Unlock()
		if len(fired) != 2 || fired[1] != "b" {
			t.Fatalf("After 250ms expected [a b], got %v", fired)
		}
		if s.Len() != 0 {
			t.Errorf("Expected no pending actions, got %d", s.Len())
		}
	})
}

func TestSchedulerReplaceAndCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		s := NewScheduler(&mu)
		count := map[string]int{}

		mu.Lock()
		s.After("k", 100*time.Millisecond, func() { count["first"]++ })
		s.After("k", 300*time.Millisecond, func() { count["second"]++ })
		s.After("c", 100*time.Millisecond, func() { count["cancelled"]++ })
		if !s.Cancel("c") {
			t.Errorf("Cancel of a pending key should return true")
		}
		if s.Cancel("c") {
			t.Errorf("Second cancel should return false")
		}
		mu.Unlock()

		time.Sleep(time.Second)
		synctest.Wait()
		mu.Lock()
		defer mu.Unlock()
		if count["first"] != 0 || count["cancelled"] != 0 {
			t.Errorf("Replaced or cancelled actions ran: %v", count)
		}
		if count["second"] != 1 {
			t.Errorf("Replacement action should run once: %v", count)
		}
	})
}

func TestSchedulerCancelAll(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		s := NewScheduler(&mu)
		ran := false
		mu.Lock()
		for _, key := range []string{"x", "y", "z"} {
			s.After(key, time.Duration(len(key))*time.Millisecond, func() { ran = true })
		}
		s.CancelAll()
		mu.Unlock()

		time.Sleep(time.Second)
		synctest.Wait()
		mu.Lock()
		defer mu.Unlock()
		if ran || s.Len() != 0 {
			t.Errorf("CancelAll left actions: ran=%v pending=%d", ran, s.Len())
		}
	})
}
