package group

import (
	"testing"

	"github.com/alice-net/presence/identity"
	"github.com/alice-net/presence/proof"
	"github.com/alice-net/presence/record"
)

func makeRecord(secretA, secretB string, nonceA, nonceB, challengeA, challengeB, ts uint64, distance uint16) record.Record {
	a := identity.Identity{Secret: []byte(secretA), OwnerNonce: nonceA}
	b := identity.Identity{Secret: []byte(secretB), OwnerNonce: nonceB}
	pa := proof.Prove(a.Secret, a.OwnerNonce, challengeA)
	pb := proof.Prove(b.Secret, b.OwnerNonce, challengeB)
	return record.Build(a.Public(), b.Public(), pa, pb, ts, distance)
}

func TestBatchAttestOrderIndependenceScenarioF(t *testing.T) {
	r1 := makeRecord("alice", "bob", 1, 2, 10, 20, 1000, 100)
	r2 := makeRecord("carol", "dave", 3, 4, 30, 40, 1001, 200)
	r3 := makeRecord("erin", "frank", 5, 6, 50, 60, 1002, 300)

	g1 := New(Ascending)
	g1.AddRecord(r1)
	g1.AddRecord(r2)
	g1.AddRecord(r3)

	g2 := New(Ascending)
	g2.AddRecord(r3)
	g2.AddRecord(r1)
	g2.AddRecord(r2)

	if g1.BatchAttest() != g2.BatchAttest() {
		t.Fatalf("BatchAttest must be insertion-order independent under Ascending ordering")
	}
}

func TestAddRecordDedupsByKey(t *testing.T) {
	r := makeRecord("alice", "bob", 1, 2, 10, 20, 1000, 100)
	g := New(Ascending)
	g.AddRecord(r)
	g.AddRecord(r)
	if g.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (duplicate insert must be idempotent)", g.Len())
	}
}

func TestMembersTransitiveClosure(t *testing.T) {
	r1 := makeRecord("alice", "bob", 1, 2, 10, 20, 1000, 100)
	r2 := makeRecord("bob", "carol", 2, 3, 30, 40, 1001, 200)

	g := New(Ascending)
	g.AddRecord(r1)
	g.AddRecord(r2)

	members := g.Members()
	if len(members) != 3 {
		t.Fatalf("Members() = %v, want 3 distinct commitments", members)
	}
}

func TestInsertionOrderingDependsOnOrder(t *testing.T) {
	r1 := makeRecord("alice", "bob", 1, 2, 10, 20, 1000, 100)
	r2 := makeRecord("carol", "dave", 3, 4, 30, 40, 1001, 200)

	g1 := New(Insertion)
	g1.AddRecord(r1)
	g1.AddRecord(r2)

	g2 := New(Insertion)
	g2.AddRecord(r2)
	g2.AddRecord(r1)

	if g1.BatchAttest() == g2.BatchAttest() {
		t.Fatalf("Insertion ordering should (generally) be order-sensitive, unlike Ascending")
	}
}
