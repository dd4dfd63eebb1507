// Package group implements the multi-party batch-proof aggregator: a set
// of identities plus a set of completed pairwise Records, exposing a batch
// attestation hash that binds every constituent Record.
package group

import (
	"sort"
	"sync"

	"github.com/alice-net/presence/internal/observability"
	"github.com/alice-net/presence/mix"
	"github.com/alice-net/presence/record"
)

// Ordering selects how BatchAttest orders constituent record hashes before
// mixing them together (the batch_mix_ordering configuration knob).
type Ordering int

const (
	// Ascending sorts record hashes numerically before mixing, making
	// BatchAttest independent of insertion order. This is the default.
	Ascending Ordering = iota
	// Insertion preserves the order records were added in.
	Insertion
)

type recordKey struct {
	minCommit, maxCommit uint64
	timestamp            uint64
}

func keyOf(r record.Record) recordKey {
	return recordKey{minCommit: r.IDA.Commitment, maxCommit: r.IDB.Commitment, timestamp: r.TimestampSec}
}

// Group aggregates completed Records from several pairwise Sessions into a
// batch attestation. Group is single-writer by convention: concurrent
// AddRecord calls must be externally synchronized, though the exported
// methods are internally mutex-guarded for safety against accidental
// concurrent reads during a write.
type Group struct {
	mu       sync.Mutex
	ordering Ordering
	records  map[recordKey]record.Record
	order    []recordKey // insertion order, used when ordering == Insertion
	recorder observability.Recorder
}

// New returns an empty Group using the given ordering policy.
func New(ordering Ordering) *Group {
	return &Group{
		ordering: ordering,
		records:  make(map[recordKey]record.Record),
		recorder: observability.NoOp(),
	}
}

// SetRecorder attaches a metrics Recorder. Passing nil restores the no-op
// default.
func (g *Group) SetRecorder(r observability.Recorder) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r == nil {
		r = observability.NoOp()
	}
	g.recorder = r
}

// AddRecord inserts r, keyed by (min_commitment, max_commitment,
// timestamp). Duplicate inserts are idempotently ignored; never raises.
func (g *Group) AddRecord(r record.Record) {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := keyOf(r)
	if _, exists := g.records[k]; exists {
		return
	}
	g.records[k] = r
	g.order = append(g.order, k)
}

// BatchAttest returns Mix(concat of record_hashes in ordering order), where
// each record_hash is record.Hash(r).
func (g *Group) BatchAttest() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	hashes := g.orderedHashesLocked()
	parts := make([][]byte, len(hashes))
	for i, h := range hashes {
		parts[i] = mix.LE64(h)
	}
	g.recorder.BatchAttested()
	return mix.Sum64(parts...)
}

func (g *Group) orderedHashesLocked() []uint64 {
	hashes := make([]uint64, 0, len(g.records))
	switch g.ordering {
	case Insertion:
		for _, k := range g.order {
			hashes = append(hashes, record.Hash(g.records[k]))
		}
	default: // Ascending
		for _, r := range g.records {
			hashes = append(hashes, record.Hash(r))
		}
		sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	}
	return hashes
}

// Members returns the transitive closure of commitments appearing in any
// record currently in the group.
func (g *Group) Members() map[uint64]struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	members := make(map[uint64]struct{})
	for _, r := range g.records {
		members[r.IDA.Commitment] = struct{}{}
		members[r.IDB.Commitment] = struct{}{}
	}
	return members
}

// Len returns the number of distinct records currently in the group.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}
