// Package spatial implements the KD-tree spatial index that gates
// candidate peer pairs by Euclidean proximity in Vivaldi coordinate space.
// Only the (x, y) plane is indexed; height is a latency artifact, not a
// geometric one, and is ignored here.
package spatial

import (
	"math"
	"sort"

	"github.com/alice-net/presence/coord"
)

// Entry pairs a coordinate with an opaque payload for bulk loading.
type Entry[T any] struct {
	Point   coord.Coord
	Payload T
}

type node[T any] struct {
	point       coord.Coord
	payload     T
	left, right *node[T]
}

// Tree is a 2D KD-tree over Vivaldi coordinates. It is not self-balancing:
// repeated single-point Insert calls on already-sorted input will degrade
// toward a linked list, so bulk loads should use Build instead.
//
// Tree is single-writer, multi-reader by convention: concurrent Insert
// calls, or an Insert concurrent with a RangeQuery, must be externally
// synchronized by the caller.
type Tree[T any] struct {
	root *node[T]
	size int
}

// New returns an empty tree.
func New[T any]() *Tree[T] {
	return &Tree[T]{}
}

// Build constructs a tree from entries using a recursive median split,
// producing a balanced tree regardless of input order.
func Build[T any](entries []Entry[T]) *Tree[T] {
	cp := make([]Entry[T], len(entries))
	copy(cp, entries)
	t := &Tree[T]{size: len(cp)}
	t.root = buildMedian(cp, 0)
	return t
}

func buildMedian[T any](entries []Entry[T], depth int) *node[T] {
	if len(entries) == 0 {
		return nil
	}
	axis := depth % 2
	sort.Slice(entries, func(i, j int) bool {
		return axisValue(entries[i].Point, axis) < axisValue(entries[j].Point, axis)
	})
	mid := len(entries) / 2
	n := &node[T]{point: entries[mid].Point, payload: entries[mid].Payload}
	n.left = buildMedian(entries[:mid], depth+1)
	n.right = buildMedian(entries[mid+1:], depth+1)
	return n
}

// Insert adds one point/payload pair, splitting on x at even depth and y at
// odd depth.
func (t *Tree[T]) Insert(point coord.Coord, payload T) {
	t.root = insert(t.root, point, payload, 0)
	t.size++
}

func insert[T any](n *node[T], point coord.Coord, payload T, depth int) *node[T] {
	if n == nil {
		return &node[T]{point: point, payload: payload}
	}
	axis := depth % 2
	if axisValue(point, axis) < axisValue(n.point, axis) {
		n.left = insert(n.left, point, payload, depth+1)
	} else {
		n.right = insert(n.right, point, payload, depth+1)
	}
	return n
}

// Len returns the number of points in the tree.
func (t *Tree[T]) Len() int {
	return t.size
}

// RangeQuery returns the payloads of every point whose 2D distance to
// center is <= radius. Height is ignored. The returned order is the
// in-order traversal order; callers must not depend on it beyond
// set-equivalence.
func (t *Tree[T]) RangeQuery(center coord.Coord, radius float64) []T {
	var out []T
	rangeQuery(t.root, center, radius, 0, &out)
	return out
}

func rangeQuery[T any](n *node[T], center coord.Coord, radius float64, depth int, out *[]T) {
	if n == nil {
		return
	}
	axis := depth % 2
	diff := axisValue(center, axis) - axisValue(n.point, axis)

	// Left subtree, node, right subtree (in-order). A subtree is skipped
	// only when center lies more than radius beyond the splitting hyperplane
	// on the other side.
	if diff <= radius {
		rangeQuery(n.left, center, radius, depth+1, out)
	}
	if distance2D(n.point, center) <= radius {
		*out = append(*out, n.payload)
	}
	if -diff <= radius {
		rangeQuery(n.right, center, radius, depth+1, out)
	}
}

func axisValue(c coord.Coord, axis int) float64 {
	if axis == 0 {
		return c.X
	}
	return c.Y
}

func distance2D(a, b coord.Coord) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Hypot(dx, dy)
}
