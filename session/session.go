// Package session implements the per-peer presence-exchange state machine:
// Idle → Discovered → Exchanging → Verified → Closed.
package session

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alice-net/presence/coord"
	"github.com/alice-net/presence/errs"
	"github.com/alice-net/presence/event"
	"github.com/alice-net/presence/identity"
	"github.com/alice-net/presence/internal/observability"
	"github.com/alice-net/presence/proof"
	"github.com/alice-net/presence/record"
)

// State is one of the five FSM states.
type State int

const (
	Idle State = iota
	Discovered
	Exchanging
	Verified
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Discovered:
		return "Discovered"
	case Exchanging:
		return "Exchanging"
	case Verified:
		return "Verified"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// DefaultMaxDistance is the default admission bound (R_max).
const DefaultMaxDistance = 50.0

// ChallengeGuard tracks challenges observed from remote commitments so a
// replayed challenge across two sessions can be rejected; this is the
// session's responsibility, not the proof primitive's. A nil guard disables
// replay detection.
type ChallengeGuard interface {
	// Admit returns true if (remoteCommitment, challenge) has not been
	// seen before, recording it as seen as a side effect. It returns false
	// if the pair was already admitted.
	Admit(remoteCommitment, challenge uint64) bool
}

// Session drives one peer through the FSM. A Session is owned by exactly
// one goroutine at a time and performs no internal locking; callers
// sharing a Session across goroutines must synchronize externally.
type Session struct {
	id       uuid.UUID
	self     identity.Identity
	maxDist  float64
	guard    ChallengeGuard
	recorder observability.Recorder
	log      *zap.Logger

	state State

	remoteCoord    coord.Coord
	hasRemoteCoord bool
	distanceCenti  uint16

	ownChallenge uint64
	ownProof     proof.Proof
	hasOwnProof  bool

	remoteCommitment uint64
	remoteProof      proof.Proof
	hasRemoteProof   bool

	record    record.Record
	hasRecord bool

	failureReason error
}

// New constructs an Idle session for self, admitting remote distances up
// to maxDist (0 selects DefaultMaxDistance). guard may be nil to disable
// cross-session replay detection.
func New(self identity.Identity, maxDist float64, guard ChallengeGuard) *Session {
	if maxDist <= 0 {
		maxDist = DefaultMaxDistance
	}
	return &Session{
		id:       uuid.New(),
		self:     self,
		maxDist:  maxDist,
		guard:    guard,
		state:    Idle,
		recorder: observability.NoOp(),
		log:      zap.NewNop(),
	}
}

// SetRecorder attaches a metrics Recorder. Passing nil restores the no-op
// default.
func (s *Session) SetRecorder(r observability.Recorder) {
	if r == nil {
		r = observability.NoOp()
	}
	s.recorder = r
}

// SetLogger attaches a zap.Logger used to correlate this session's
// transitions by ID in structured logs. Passing nil restores the no-op
// default.
func (s *Session) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	s.log = log
}

// ID returns the session's correlation identifier, generated once at New
// and stable for the session's lifetime. It has no wire meaning; it exists
// purely to tie together log lines from one exchange.
func (s *Session) ID() string {
	return s.id.String()
}

// State returns the session's current FSM state.
func (s *Session) State() State {
	return s.state
}

// FailureReason returns why the session closed in failure, or nil if the
// session is not Closed, or closed successfully.
func (s *Session) FailureReason() error {
	return s.failureReason
}

// Succeeded reports whether the session is Closed with a Record assembled.
func (s *Session) Succeeded() bool {
	return s.state == Closed && s.failureReason == nil && s.hasRecord
}

// Record returns the assembled Record and true if Finalize has completed
// successfully.
func (s *Session) Record() (record.Record, bool) {
	return s.record, s.hasRecord
}

func stateViolation(op string, got State) error {
	return fmt.Errorf("session: %s invalid from state %s: %w", op, got, errs.ErrStateViolation)
}

// Discover admits or rejects remote based on its distance (under selfCoord)
// to maxDist. Only valid from Idle. If the distance exceeds maxDist the
// session stays Idle (a documented no-op, not a state violation) and
// ErrOutOfRange is returned.
func (s *Session) Discover(selfCoord, remoteCoord coord.Coord) error {
	if s.state != Idle {
		return stateViolation("Discover", s.state)
	}
	distance := selfCoord.Distance(remoteCoord)
	if distance > s.maxDist {
		return errs.ErrOutOfRange
	}
	s.remoteCoord = remoteCoord
	s.hasRemoteCoord = true
	s.distanceCenti = event.SaturateCenti(distance)
	s.state = Discovered
	s.recorder.SessionOpened()
	s.log.Debug("session discovered peer", zap.String("session_id", s.id.String()), zap.Float64("distance", distance))
	return nil
}

// BeginExchange moves Discovered -> Exchanging, producing this side's own
// proof for ownChallenge (to be sent to the peer).
func (s *Session) BeginExchange(ownChallenge uint64) (proof.Proof, error) {
	if s.state != Discovered {
		return proof.Proof{}, stateViolation("BeginExchange", s.state)
	}
	s.ownChallenge = ownChallenge
	s.ownProof = proof.Prove(s.self.Secret, s.self.OwnerNonce, ownChallenge)
	s.hasOwnProof = true
	s.state = Exchanging
	return s.ownProof, nil
}

// ReceiveProof verifies the peer's proof. On success it moves Exchanging
// -> Verified. On verification failure, or a replayed challenge, it moves
// Exchanging -> Closed (failed) and returns the corresponding error.
func (s *Session) ReceiveProof(remoteProof proof.Proof) error {
	if s.state != Exchanging {
		return stateViolation("ReceiveProof", s.state)
	}
	if !proof.Verify(remoteProof) {
		s.recorder.ProofVerified(false)
		s.log.Warn("proof failed structural verification", zap.String("session_id", s.id.String()))
		s.fail(errs.ErrProofFailed)
		return errs.ErrProofFailed
	}
	if s.guard != nil && !s.guard.Admit(remoteProof.Commitment, remoteProof.Challenge) {
		s.recorder.ProofVerified(false)
		s.log.Warn("rejected reused challenge", zap.String("session_id", s.id.String()))
		s.fail(errs.ErrChallengeReused)
		return errs.ErrChallengeReused
	}
	s.recorder.ProofVerified(true)
	s.remoteCommitment = remoteProof.Commitment
	s.remoteProof = remoteProof
	s.hasRemoteProof = true
	s.state = Verified
	s.log.Debug("proof verified", zap.String("session_id", s.id.String()))
	return nil
}

// Finalize assembles the crossing Record and moves Verified -> Closed
// (success).
func (s *Session) Finalize(timestampSec uint64) (record.Record, error) {
	if s.state != Verified {
		return record.Record{}, stateViolation("Finalize", s.state)
	}
	r := record.Build(
		s.self.Public(),
		identity.Public{Commitment: s.remoteCommitment},
		s.ownProof,
		s.remoteProof,
		timestampSec,
		s.distanceCenti,
	)
	s.record = r
	s.hasRecord = true
	s.state = Closed
	s.recorder.RecordProduced()
	s.recorder.SessionClosed(true)
	s.log.Info("crossing record finalized", zap.String("session_id", s.id.String()), zap.Uint64("record_hash", record.Hash(r)))
	return r, nil
}

// Abort forces the session to Closed (failed) from any non-terminal state.
// Abort from an already-Closed session is itself a state violation and
// does not mutate the session: every operation on a Closed session fails
// without mutating it, and Abort is no exception.
func (s *Session) Abort() error {
	if s.state == Closed {
		return stateViolation("Abort", s.state)
	}
	s.fail(fmt.Errorf("session: aborted by caller"))
	return nil
}

func (s *Session) fail(reason error) {
	s.state = Closed
	s.failureReason = reason
	s.recorder.SessionClosed(false)
	s.log.Debug("session closed without a record", zap.String("session_id", s.id.String()), zap.Error(reason))
}
