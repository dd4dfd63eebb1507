// Package coord implements the Vivaldi network-coordinate estimator: a 2D
// embedding plus a scalar height absorbing access-link latency that the
// geometric embedding cannot explain.
package coord

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/alice-net/presence/mix"
)

// epsilon is the denominator floor below which the update direction is
// undefined and must be drawn from a deterministic fallback instead.
const epsilon = 1e-9

// Coord is a Vivaldi coordinate: a 2D position plus a non-negative height.
type Coord struct {
	X, Y, H float64
}

// New constructs a Coord, clamping H to [0, +inf).
func New(x, y, h float64) Coord {
	if h < 0 {
		h = 0
	}
	return Coord{X: x, Y: y, H: h}
}

// Distance returns the Vivaldi distance between c and o: Euclidean distance
// in (x, y) plus both heights.
func (c Coord) Distance(o Coord) float64 {
	return floats.Distance([]float64{c.X, c.Y}, []float64{o.X, o.Y}, 2) + c.H + o.H
}

// Params tunes one Update step. Weight is the adaptive Vivaldi weight
// (commonly confidence_self / (confidence_self + confidence_remote));
// HeightCoupling and DeltaClamp correspond to the height_coupling and
// delta_clamp configuration knobs exposed by the presence configuration
// surface.
type Params struct {
	Weight         float64
	HeightCoupling float64
	DeltaClamp     float64
}

// DefaultParams returns the configuration defaults: height_coupling 0.1,
// delta_clamp 1.0. Weight has no mandated default and must be supplied by
// the caller (commonly derived from per-coord confidence).
func DefaultParams(weight float64) Params {
	return Params{
		Weight:         weight,
		HeightCoupling: 0.1,
		DeltaClamp:     1.0,
	}
}

// Update applies one Vivaldi step given a fresh latency sample against
// remote, and returns the updated coordinate. c is unmodified.
func Update(c, remote Coord, rttSeconds float64, p Params) Coord {
	predicted := c.Distance(remote)
	errVal := rttSeconds - predicted

	pos := []float64{c.X, c.Y}
	dir := []float64{c.X - remote.X, c.Y - remote.Y}
	norm := floats.Norm(dir, 2)

	if norm < epsilon {
		dir[0], dir[1] = deterministicUnit(c)
	} else {
		floats.Scale(1/norm, dir)
	}

	clamp := p.DeltaClamp
	if clamp <= 0 {
		clamp = 1.0
	}
	delta := p.Weight * errVal
	if delta > clamp {
		delta = clamp
	}
	if delta < -clamp {
		delta = -clamp
	}

	floats.Scale(delta, dir)
	floats.Add(pos, dir)

	newH := c.H + delta*p.HeightCoupling
	if newH < 0 {
		newH = 0
	}

	return Coord{X: pos[0], Y: pos[1], H: newH}
}

// deterministicUnit draws a unit 2-vector from Mix(serialize(c)) when the
// true direction between two coincident coordinates is undefined. The draw
// is deterministic in c so that repeated updates from the same degenerate
// state converge rather than thrash.
func deterministicUnit(c Coord) (float64, float64) {
	digest := mix.Sum64(serialize(c))
	// Spread the 64-bit digest across a full turn.
	angle := (float64(digest) / float64(math.MaxUint64)) * 2 * math.Pi
	return math.Cos(angle), math.Sin(angle)
}

// serialize encodes c as 24 little-endian bytes (X, Y, H as float64 bits)
// for feeding into Mix.
func serialize(c Coord) []byte {
	buf := make([]byte, 24)
	mix.PutUint64LE(buf[0:8], math.Float64bits(c.X))
	mix.PutUint64LE(buf[8:16], math.Float64bits(c.Y))
	mix.PutUint64LE(buf[16:24], math.Float64bits(c.H))
	return buf
}
