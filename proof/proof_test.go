package proof

import "testing"

func TestProveVerifyInvariant(t *testing.T) {
	// For any secret, nonce, and challenge, Verify(Prove(...)) must hold.
	cases := []struct {
		secret    string
		nonce     uint64
		challenge uint64
	}{
		{"alice-secret", 0x1111111111111111, 0xAAAAAAAAAAAAAAAA},
		{"bob-secret", 0x2222222222222222, 0xBBBBBBBBBBBBBBBB},
		{"", 0, 0},
		{"edge", 0xFFFFFFFFFFFFFFFF, 0},
	}
	for _, c := range cases {
		p := Prove([]byte(c.secret), c.nonce, c.challenge)
		if !Verify(p) {
			t.Fatalf("Verify(Prove(%q, %#x, %#x)) = false, want true", c.secret, c.nonce, c.challenge)
		}
	}
}

func TestVerifyRejectsTamperedResponse(t *testing.T) {
	p := Prove([]byte("bob-secret"), 0x2222222222222222, 0xBBBBBBBBBBBBBBBB)
	p.Response ^= 1
	if Verify(p) {
		t.Fatalf("Verify must reject a tampered response")
	}
}

func TestProofIsSelfContained(t *testing.T) {
	p := Prove([]byte("alice-secret"), 0x1111111111111111, 0xAAAAAAAAAAAAAAAA)
	// Verify needs only the fields on p, not the original secret.
	if !Verify(Proof{Commitment: p.Commitment, Challenge: p.Challenge, Response: p.Response}) {
		t.Fatalf("Verify must succeed using only the proof's own fields")
	}
}

func TestZeroChallengeIsLegal(t *testing.T) {
	p := Prove([]byte("secret"), 42, 0)
	if !Verify(p) {
		t.Fatalf("a zero challenge must not be special-cased by Verify")
	}
}
