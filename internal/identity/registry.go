// Package identity maintains a concurrency-safe registry of known remote
// identities, reworked from the teacher's NodeStore (go/types.go) and
// ProximityRouter (go/proximity_routing.go): instead of libp2p peer IDs and
// RTT-derived routing scores, it tracks each remote's last observed
// Vivaldi coordinate and running RTT/jitter, seeding the Spatial index
// with candidate coordinates for discovery. It is a convenience layer above
// the core types; it defines no new wire format.
package identity

import (
	"sync"
	"time"

	"github.com/alice-net/presence/coord"
	"github.com/alice-net/presence/spatial"
)

// Peer is one remote identity's last observed state.
type Peer struct {
	Commitment uint64
	Coord      coord.Coord
	RTT        time.Duration
	Jitter     time.Duration
	UpdatedAt  time.Time
}

// Registry is a concurrency-safe map of known remote Peers.
type Registry struct {
	mu    sync.RWMutex
	peers map[uint64]*Peer
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[uint64]*Peer)}
}

// Observe records a fresh coordinate/RTT sample for commitment, updating
// the running jitter as the absolute delta from the previous RTT sample.
func (r *Registry) Observe(commitment uint64, c coord.Coord, rtt time.Duration, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.peers[commitment]
	if !exists {
		r.peers[commitment] = &Peer{Commitment: commitment, Coord: c, RTT: rtt, UpdatedAt: now}
		return
	}

	jitter := rtt - p.RTT
	if jitter < 0 {
		jitter = -jitter
	}
	p.Coord = c
	p.Jitter = jitter
	p.RTT = rtt
	p.UpdatedAt = now
}

// Get returns the tracked Peer for commitment, if any.
func (r *Registry) Get(commitment uint64) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[commitment]
	if !ok {
		return Peer{}, false
	}
	return *p, true
}

// Len reports how many peers are tracked.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Remove drops a tracked peer, e.g. after too many failed exchanges.
func (r *Registry) Remove(commitment uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, commitment)
}

// SpatialEntries snapshots the registry into entries suitable for
// spatial.Build, keyed by commitment, so a spatial.Tree can be rebuilt
// whenever the registry changes materially.
func (r *Registry) SpatialEntries() []spatial.Entry[uint64] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]spatial.Entry[uint64], 0, len(r.peers))
	for commitment, p := range r.peers {
		entries = append(entries, spatial.Entry[uint64]{Point: p.Coord, Payload: commitment})
	}
	return entries
}
