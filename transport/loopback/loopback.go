// Package loopback provides in-memory Transport, Clock, and Randomness test
// doubles for the protocol and session packages, in place of the teacher's
// `network.go` (reworked from a real TCP `net.Conn` into an in-process pipe;
// see transport/udpnoise for the networked reference implementation).
package loopback

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/alice-net/presence/errs"
)

// Pipe connects two Endpoints: whatever A sends, B receives, and vice
// versa. Each direction buffers up to 16 messages, so Send does not block
// on a reader that hasn't called Recv yet until that buffer is full.
type Pipe struct {
	toA chan []byte
	toB chan []byte
}

// Endpoint is one side of a Pipe; it implements protocol.Transport.
type Endpoint struct {
	out chan<- []byte
	in  <-chan []byte
}

// NewPipe returns the two connected endpoints of a fresh Pipe.
func NewPipe() (a, b *Endpoint) {
	p := &Pipe{
		toA: make(chan []byte, 16),
		toB: make(chan []byte, 16),
	}
	a = &Endpoint{out: p.toB, in: p.toA}
	b = &Endpoint{out: p.toA, in: p.toB}
	return a, b
}

// Send enqueues b for the peer endpoint, or fails if ctx is done first.
func (e *Endpoint) Send(ctx context.Context, b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case e.out <- cp:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("loopback: send canceled: %w", errs.ErrTransport)
	}
}

// Recv blocks until a message arrives, ctx is canceled, or timeout elapses.
func (e *Endpoint) Recv(ctx context.Context, timeout time.Duration) ([]byte, error) {
	var timer *time.Timer
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}
	select {
	case b := <-e.in:
		return b, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("loopback: recv canceled: %w", errs.ErrTransport)
	case <-timeoutCh:
		return nil, fmt.Errorf("loopback: recv timed out after %s: %w", timeout, errs.ErrTransport)
	}
}

// Clock adapts benbjohnson/clock.Clock to the protocol.Clock collaborator
// contract (monotonic whole seconds).
type Clock struct {
	Underlying clock.Clock
}

// NewMockClock returns a Clock backed by a controllable clock.Mock, for
// deterministic tests.
func NewMockClock() (*Clock, *clock.Mock) {
	m := clock.NewMock()
	return &Clock{Underlying: m}, m
}

// NewRealClock returns a Clock backed by the system wall clock.
func NewRealClock() *Clock {
	return &Clock{Underlying: clock.New()}
}

// NowUnix implements protocol.Clock.
func (c *Clock) NowUnix() uint64 {
	sec := c.Underlying.Now().Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}

// Randomness implements protocol.Randomness with crypto/rand, matching the
// requirement that it be unpredictable to any counterparty, even in tests.
type Randomness struct{}

// Uint64 returns a cryptographically random 64-bit value.
func (Randomness) Uint64() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("loopback: crypto/rand unavailable: %v", err))
	}
	return binary.LittleEndian.Uint64(b[:])
}
