package hop

import (
	"testing"

	"github.com/quadstore/hdthop/internal/backend/memory"
	"github.com/quadstore/hdthop/internal/idspace"
	"github.com/quadstore/hdthop/pkg/store"
)

// chain: alice -knows-> bob -knows-> carol -knows-> dave
func chainBackend() *memory.Backend {
	return memory.New([]store.TriplePattern{
		{Subject: "http://ex/alice", Predicate: "http://ex/knows", Object: "http://ex/bob"},
		{Subject: "http://ex/bob", Predicate: "http://ex/knows", Object: "http://ex/carol"},
		{Subject: "http://ex/carol", Predicate: "http://ex/knows", Object: "http://ex/dave"},
	})
}

func translatorFor(b store.Backend) idspace.Translator {
	return idspace.Translator{NShared: b.NShared(), NSubjectsTotal: b.NSubjectsTotal(), NObjectsTotal: b.NObjectsTotal()}
}

func TestComputeOneHopFromSeed(t *testing.T) {
	b := chainBackend()
	tr := translatorFor(b)
	aliceID := idspace.ContinuousID(b.IDOf("http://ex/alice", store.Subject))

	out, err := Compute(b, tr, Config{NumHops: 1, ContinuousMode: true}, []idspace.ContinuousID{aliceID}, 0, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 triple at hop 1 from alice, got %d: %v", len(out), out)
	}
}

func TestComputeTwoHopsFromSeed(t *testing.T) {
	b := chainBackend()
	tr := translatorFor(b)
	aliceID := idspace.ContinuousID(b.IDOf("http://ex/alice", store.Subject))

	out, err := Compute(b, tr, Config{NumHops: 2, ContinuousMode: true}, []idspace.ContinuousID{aliceID}, 0, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 triples within 2 hops from alice, got %d: %v", len(out), out)
	}
}

func TestComputeRespectsLimit(t *testing.T) {
	b := chainBackend()
	tr := translatorFor(b)
	aliceID := idspace.ContinuousID(b.IDOf("http://ex/alice", store.Subject))

	out, err := Compute(b, tr, Config{NumHops: 3, ContinuousMode: true}, []idspace.ContinuousID{aliceID}, 1, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected limit to cap output at 1 triple, got %d: %v", len(out), out)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	b := chainBackend()
	tr := translatorFor(b)
	aliceID := idspace.ContinuousID(b.IDOf("http://ex/alice", store.Subject))

	run := func() []store.TID {
		out, err := Compute(b, tr, Config{NumHops: 3, ContinuousMode: true}, []idspace.ContinuousID{aliceID}, 0, 0)
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		return out
	}

	a, b2 := run(), run()
	if len(a) != len(b2) {
		t.Fatalf("result size changed between runs: %d vs %d", len(a), len(b2))
	}
	seen := make(map[store.TID]struct{}, len(a))
	for _, tid := range a {
		seen[tid] = struct{}{}
	}
	for _, tid := range b2 {
		if _, ok := seen[tid]; !ok {
			t.Errorf("triple %v present in one run but not the other", tid)
		}
	}
}

func TestComputePredicateFilterExcludesUnlistedPredicates(t *testing.T) {
	b := memory.New([]store.TriplePattern{
		{Subject: "http://ex/alice", Predicate: "http://ex/knows", Object: "http://ex/bob"},
		{Subject: "http://ex/alice", Predicate: "http://ex/dislikes", Object: "http://ex/carol"},
	})
	tr := translatorFor(b)
	aliceID := idspace.ContinuousID(b.IDOf("http://ex/alice", store.Subject))
	knowsID := b.IDOf("http://ex/knows", store.Predicate)

	cfg := Config{NumHops: 1, ContinuousMode: true, PredAllow: map[uint64]struct{}{knowsID: {}}}
	out, err := Compute(b, tr, cfg, []idspace.ContinuousID{aliceID}, 0, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected only the knows edge to survive, got %d: %v", len(out), out)
	}
	if out[0].P != knowsID {
		t.Errorf("expected surviving triple's predicate to be knows, got %d", out[0].P)
	}
}

func TestComputeAllSeedsUnknownYieldsEmpty(t *testing.T) {
	b := chainBackend()
	tr := translatorFor(b)

	out, err := Compute(b, tr, Config{NumHops: 1, ContinuousMode: true}, []idspace.ContinuousID{0}, 0, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no output for a seed that translates to 0, got %d", len(out))
	}
}
