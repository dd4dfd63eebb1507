package mix

import "testing"

func TestSum64KnownVectors(t *testing.T) {
	cases := []struct {
		name string
		in   [][]byte
		want uint64
	}{
		{"empty", nil, 14695981039346656037},
		{"a", [][]byte{[]byte("a")}, 0xaf63dc4c8601ec8c},
		{"foobar", [][]byte{[]byte("foobar")}, 0x85944171f73967e8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Sum64(c.in...); got != c.want {
				t.Fatalf("Sum64(%q) = %#x, want %#x", c.in, got, c.want)
			}
		})
	}
}

func TestSum64ConcatenationEquivalence(t *testing.T) {
	a := []byte("alice-secret")
	b := []byte{0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11}

	split := Sum64(a, b)
	joined := Sum64(append(append([]byte{}, a...), b...))

	if split != joined {
		t.Fatalf("Sum64 over split slices (%#x) must equal Sum64 over the concatenated slice (%#x)", split, joined)
	}
}

func TestSum64Deterministic(t *testing.T) {
	in := []byte("deterministic-input")
	if Sum64(in) != Sum64(in) {
		t.Fatalf("Sum64 must be deterministic for identical input")
	}
}

func TestUint64LERoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 0xAAAAAAAAAAAAAAAA, 0xFFFFFFFFFFFFFFFF} {
		b := Uint64LE(v)
		if got := Uint64(b[:]); got != v {
			t.Fatalf("round-trip of %#x produced %#x", v, got)
		}
	}
}

func TestPutUint64LEMatchesScenarioD(t *testing.T) {
	// From spec.md Scenario D: commitment_a = 0x0102030405060708 encodes
	// little-endian as 08 07 06 05 04 03 02 01.
	got := LE64(0x0102030405060708)
	want := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LE64 byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}
