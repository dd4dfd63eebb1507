// Package errs defines the error kinds shared across the presence
// exchange. Every error returned by a Session or Protocol operation wraps
// exactly one of these sentinels, so callers can branch with errors.Is.
// The failure reason a Session records after Abort wraps none of them.
package errs

import "errors"

var (
	// ErrOutOfRange: distance exceeded max_distance at Session admission.
	ErrOutOfRange = errors.New("alice-presence: distance exceeds max_distance")

	// ErrProofFailed: structural verification rejected a proof.
	ErrProofFailed = errors.New("alice-presence: proof failed structural verification")

	// ErrChallengeReused: the session detected a repeated challenge from
	// the peer.
	ErrChallengeReused = errors.New("alice-presence: challenge already seen from this remote commitment")

	// ErrBadEncoding: event bytes were not 18 bytes or carried a reserved
	// value.
	ErrBadEncoding = errors.New("alice-presence: bad event encoding")

	// ErrStateViolation: an FSM operation was invoked from an invalid
	// state.
	ErrStateViolation = errors.New("alice-presence: operation invalid in current session state")

	// ErrTransport: surfaced from the transport collaborator; never
	// retried by the core.
	ErrTransport = errors.New("alice-presence: transport collaborator error")
)
