// Package proof implements the structural challenge-response proof of
// knowledge of a committed secret. The scheme is commit-and-reveal over the
// opaque Mix primitive, not a cryptographically hiding ZKP — see the design
// notes in the repository root for the rationale and the upgrade path to a
// real Schnorr-style construction.
package proof

import (
	"github.com/alice-net/presence/commit"
	"github.com/alice-net/presence/mix"
)

// Proof is the self-contained triple (commitment, challenge, response).
type Proof struct {
	Commitment uint64
	Challenge  uint64
	Response   uint64
}

// Prove builds a Proof for secret under ownerNonce against challenge.
func Prove(secret []byte, ownerNonce, challenge uint64) Proof {
	c := commit.Commit(secret, ownerNonce)
	return Proof{
		Commitment: c,
		Challenge:  challenge,
		Response:   response(c, challenge),
	}
}

// Verify checks p's structural recomputation rule: Mix(commitment_le ∥
// challenge_le) == response. It does not require access to the secret.
func Verify(p Proof) bool {
	return response(p.Commitment, p.Challenge) == p.Response
}

func response(commitment, challenge uint64) uint64 {
	return mix.Sum64(mix.LE64(commitment), mix.LE64(challenge))
}
