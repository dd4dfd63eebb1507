// Package commit implements the identity commitment scheme: a 64-bit digest
// binding a secret to a public, per-identity owner nonce.
package commit

import "github.com/alice-net/presence/mix"

// Commit returns Mix(secret ∥ owner_nonce_le_bytes).
func Commit(secret []byte, ownerNonce uint64) uint64 {
	return mix.Sum64(secret, mix.LE64(ownerNonce))
}

// VerifyOpening recomputes the commitment from (secret, ownerNonce) and
// compares it against commitment.
func VerifyOpening(commitment uint64, secret []byte, ownerNonce uint64) bool {
	return Commit(secret, ownerNonce) == commitment
}
