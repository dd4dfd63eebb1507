// Package event implements the 18-byte fixed-layout proximity event that
// ALICE-Presence hands off to the external ALICE-Sync fabric.
package event

import (
	"encoding/binary"
	"fmt"

	"github.com/alice-net/presence/errs"
)

// Size is the fixed wire length of an encoded Event.
const Size = 18

// NoDistance is the reserved distance_centi value meaning "no distance
// reported". Encoders may emit it deliberately to mark an incomplete event;
// Decode always rejects it as a bad encoding.
const NoDistance uint16 = 0xFFFF

// MaxDistance is the largest distance_centi value a measured distance may
// saturate to; it leaves NoDistance exclusively reserved.
const MaxDistance uint16 = 0xFFFE

// Errors returned by Decode. Both wrap errs.ErrBadEncoding.
var (
	ErrBadLength   = fmt.Errorf("event: must be exactly 18 bytes: %w", errs.ErrBadEncoding)
	ErrBadDistance = fmt.Errorf("event: distance_centi is the reserved no-distance value: %w", errs.ErrBadEncoding)
)

// Event is the 18-byte wire record: two 64-bit commitments and a
// meters-times-100 (centimeter) distance.
type Event struct {
	CommitmentA   uint64
	CommitmentB   uint64
	DistanceCenti uint16
}

// SaturateCenti converts a distance in meters to the centi-meter encoding,
// saturating at MaxDistance rather than overflowing into NoDistance.
func SaturateCenti(meters float64) uint16 {
	if meters < 0 {
		meters = 0
	}
	centi := meters * 100
	if centi >= float64(MaxDistance) {
		return MaxDistance
	}
	return uint16(centi)
}

// Encode packs e into its 18-byte wire form.
func Encode(e Event) [Size]byte {
	var b [Size]byte
	binary.LittleEndian.PutUint64(b[0:8], e.CommitmentA)
	binary.LittleEndian.PutUint64(b[8:16], e.CommitmentB)
	binary.LittleEndian.PutUint16(b[16:18], e.DistanceCenti)
	return b
}

// Decode unpacks b into an Event. It fails with ErrBadLength if b is not
// exactly 18 bytes, and with ErrBadDistance if the distance field carries
// the reserved NoDistance value.
func Decode(b []byte) (Event, error) {
	if len(b) != Size {
		return Event{}, fmt.Errorf("%w: got %d", ErrBadLength, len(b))
	}
	distance := binary.LittleEndian.Uint16(b[16:18])
	if distance == NoDistance {
		return Event{}, ErrBadDistance
	}
	return Event{
		CommitmentA:   binary.LittleEndian.Uint64(b[0:8]),
		CommitmentB:   binary.LittleEndian.Uint64(b[8:16]),
		DistanceCenti: distance,
	}, nil
}
