// Package identity holds the private and public identity types shared by
// Session, Protocol, and Record.
package identity

import "github.com/alice-net/presence/commit"

// Identity is the owning process's view of a party: a secret that never
// leaves the process, plus the owner nonce bound once at creation.
type Identity struct {
	Secret     []byte
	OwnerNonce uint64
}

// Commitment derives this identity's public commitment.
func (id Identity) Commitment() uint64 {
	return commit.Commit(id.Secret, id.OwnerNonce)
}

// Public returns the identity's public projection, safe to hand to a
// counterparty or embed in a Record.
func (id Identity) Public() Public {
	return Public{Commitment: id.Commitment()}
}

// Public is the identity information a Record or counterparty may see: a
// commitment only, never the secret or owner nonce.
type Public struct {
	Commitment uint64
}
