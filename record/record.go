// Package record implements the crossing record: the mutually-signed
// artifact produced when a presence exchange succeeds.
package record

import (
	"github.com/alice-net/presence/identity"
	"github.com/alice-net/presence/mix"
	"github.com/alice-net/presence/proof"
)

// Record is the full two-party crossing record.
type Record struct {
	IDA           identity.Public
	IDB           identity.Public
	ProofA        proof.Proof
	ProofB        proof.Proof
	SharedNonce   uint64
	TimestampSec  uint64
	DistanceCenti uint16
}

// Build assembles a Record from two identities' proofs, canonicalizing
// order so that IDA.Commitment < IDB.Commitment (swapping proofs to match),
// and deriving SharedNonce from the (now-canonical) challenges.
func Build(idA, idB identity.Public, proofA, proofB proof.Proof, timestampSec uint64, distanceCenti uint16) Record {
	if idA.Commitment > idB.Commitment {
		idA, idB = idB, idA
		proofA, proofB = proofB, proofA
	}
	return Record{
		IDA:           idA,
		IDB:           idB,
		ProofA:        proofA,
		ProofB:        proofB,
		SharedNonce:   mix.Sum64(mix.LE64(proofA.Challenge), mix.LE64(proofB.Challenge)),
		TimestampSec:  timestampSec,
		DistanceCenti: distanceCenti,
	}
}

// Verify checks both proofs, canonical ordering, and that each proof's
// embedded commitment matches the identity it is attached to.
func Verify(r Record) bool {
	if r.IDA.Commitment >= r.IDB.Commitment {
		return false
	}
	if r.ProofA.Commitment != r.IDA.Commitment || r.ProofB.Commitment != r.IDB.Commitment {
		return false
	}
	return proof.Verify(r.ProofA) && proof.Verify(r.ProofB)
}

// Hash returns the external attestation hash for r: Mix(commitment_a_le ∥
// commitment_b_le ∥ shared_nonce_le ∥ timestamp_le).
func Hash(r Record) uint64 {
	return mix.Sum64(
		mix.LE64(r.IDA.Commitment),
		mix.LE64(r.IDB.Commitment),
		mix.LE64(r.SharedNonce),
		mix.LE64(r.TimestampSec),
	)
}
