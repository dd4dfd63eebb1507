package identity

import (
	"testing"
	"time"

	"github.com/alice-net/presence/coord"
)

func TestObserveTracksLatestCoordAndJitter(t *testing.T) {
	r := NewRegistry()
	t0 := time.Unix(1000, 0)

	r.Observe(42, coord.New(0, 0, 0), 50*time.Millisecond, t0)
	p, ok := r.Get(42)
	if !ok {
		t.Fatalf("expected peer 42 to be tracked")
	}
	if p.Jitter != 0 {
		t.Fatalf("first observation should have zero jitter, got %v", p.Jitter)
	}

	r.Observe(42, coord.New(1, 1, 0), 80*time.Millisecond, t0.Add(time.Second))
	p, _ = r.Get(42)
	if p.Jitter != 30*time.Millisecond {
		t.Fatalf("Jitter = %v, want 30ms", p.Jitter)
	}
	if p.RTT != 80*time.Millisecond {
		t.Fatalf("RTT = %v, want 80ms", p.RTT)
	}
}

func TestRemoveDropsPeer(t *testing.T) {
	r := NewRegistry()
	r.Observe(1, coord.New(0, 0, 0), time.Millisecond, time.Now())
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	r.Remove(1)
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after Remove", r.Len())
	}
	if _, ok := r.Get(1); ok {
		t.Fatalf("Get should report not-found after Remove")
	}
}

func TestSpatialEntriesReflectsRegistry(t *testing.T) {
	r := NewRegistry()
	r.Observe(1, coord.New(0, 0, 0), time.Millisecond, time.Now())
	r.Observe(2, coord.New(5, 5, 0), time.Millisecond, time.Now())

	entries := r.SpatialEntries()
	if len(entries) != 2 {
		t.Fatalf("SpatialEntries() len = %d, want 2", len(entries))
	}
}
