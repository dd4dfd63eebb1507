// Package protocol drives two peers through paired Sessions over the
// external Transport/Clock/Randomness collaborators. It owns no state of
// its own beyond the Session it creates for one Run.
package protocol

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alice-net/presence/coord"
	"github.com/alice-net/presence/errs"
	"github.com/alice-net/presence/identity"
	"github.com/alice-net/presence/internal/observability"
	"github.com/alice-net/presence/mix"
	"github.com/alice-net/presence/proof"
	"github.com/alice-net/presence/record"
	"github.com/alice-net/presence/session"
)

// proofWireSize is the length of one proof.Proof on the wire: three 64-bit
// little-endian fields (commitment, challenge, response).
const proofWireSize = 24

// Transport is the bidirectional, unordered, unreliable datagram channel
// collaborator. Implementations must be safe for one Send/Recv pair in
// flight at a time; Run never calls Send or Recv concurrently with itself.
type Transport interface {
	Send(ctx context.Context, b []byte) error
	Recv(ctx context.Context, timeout time.Duration) ([]byte, error)
}

// Clock is the monotonic-seconds collaborator.
type Clock interface {
	NowUnix() uint64
}

// Randomness is the unpredictable-to-the-counterparty 64-bit source
// collaborator.
type Randomness interface {
	Uint64() uint64
}

// Options carries the observability collaborators for Run. The zero value
// is a valid Options: a nil Log runs silently and a nil Recorder disables
// metrics, matching session.Session's own SetLogger/SetRecorder defaults.
type Options struct {
	Log      *zap.Logger
	Recorder observability.Recorder
}

// RecvTimeout bounds how long Run waits for the peer's proof before
// surfacing a transport error.
const RecvTimeout = 5 * time.Second

// encodeProof packs p into its wire form.
func encodeProof(p proof.Proof) []byte {
	b := make([]byte, proofWireSize)
	mix.PutUint64LE(b[0:8], p.Commitment)
	mix.PutUint64LE(b[8:16], p.Challenge)
	mix.PutUint64LE(b[16:24], p.Response)
	return b
}

// decodeProof unpacks the wire form of a proof.Proof.
func decodeProof(b []byte) (proof.Proof, error) {
	if len(b) != proofWireSize {
		return proof.Proof{}, fmt.Errorf("protocol: proof message must be %d bytes, got %d: %w", proofWireSize, len(b), errs.ErrBadEncoding)
	}
	return proof.Proof{
		Commitment: mix.Uint64(b[0:8]),
		Challenge:  mix.Uint64(b[8:16]),
		Response:   mix.Uint64(b[16:24]),
	}, nil
}

// Run drives one full exchange with a single peer to completion: Discover,
// BeginExchange, send own proof, receive the peer's proof, ReceiveProof,
// Finalize. It returns the assembled Record on success.
//
// Any Session-level failure (out-of-range, proof failure, challenge reuse)
// is terminal and returned as-is; Run never retries. Transport errors are
// wrapped in errs.ErrTransport and are likewise not retried — the caller
// may retry by calling Run again with a fresh Session.
//
// opts.Log and opts.Recorder are attached to the Session Run drives
// internally, so a caller gets the same structured log lines and metrics
// counters that a hand-built Session would produce.
func Run(
	ctx context.Context,
	self identity.Identity,
	selfCoord, remoteCoord coord.Coord,
	maxDist float64,
	guard session.ChallengeGuard,
	t Transport,
	clk Clock,
	rnd Randomness,
	opts Options,
) (record.Record, error) {
	s := session.New(self, maxDist, guard)
	s.SetLogger(opts.Log)
	s.SetRecorder(opts.Recorder)

	if err := s.Discover(selfCoord, remoteCoord); err != nil {
		return record.Record{}, err
	}

	ownProof, err := s.BeginExchange(rnd.Uint64())
	if err != nil {
		return record.Record{}, err
	}

	if err := t.Send(ctx, encodeProof(ownProof)); err != nil {
		_ = s.Abort()
		return record.Record{}, fmt.Errorf("protocol: sending own proof: %w: %v", errs.ErrTransport, err)
	}

	raw, err := t.Recv(ctx, RecvTimeout)
	if err != nil {
		_ = s.Abort()
		return record.Record{}, fmt.Errorf("protocol: receiving peer proof: %w: %v", errs.ErrTransport, err)
	}

	remoteProof, err := decodeProof(raw)
	if err != nil {
		_ = s.Abort()
		return record.Record{}, err
	}

	if err := s.ReceiveProof(remoteProof); err != nil {
		return record.Record{}, err
	}

	return s.Finalize(clk.NowUnix())
}
