package memory

import (
	"testing"

	"github.com/quadstore/hdthop/pkg/store"
)

func sampleTriples() []store.TriplePattern {
	return []store.TriplePattern{
		{Subject: "http://ex/alice", Predicate: "http://ex/knows", Object: "http://ex/bob"},
		{Subject: "http://ex/bob", Predicate: "http://ex/knows", Object: "http://ex/carol"},
		{Subject: "http://ex/alice", Predicate: "http://ex/name", Object: `"Alice"`},
	}
}

func TestSearchWildcard(t *testing.T) {
	b := New(sampleTriples())

	it, err := b.Search(store.TID{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	defer it.Close()

	var count int
	for it.HasNext() {
		if _, err := it.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
		count++
	}
	if count != len(sampleTriples()) {
		t.Errorf("expected %d results, got %d", len(sampleTriples()), count)
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	b := New(sampleTriples())

	run := func() []store.TID {
		it, err := b.Search(store.TID{})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		defer it.Close()
		var out []store.TID
		for it.HasNext() {
			tid, err := it.Next()
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			out = append(out, tid)
		}
		return out
	}

	a, b2 := run(), run()
	if len(a) != len(b2) {
		t.Fatalf("result length changed between runs")
	}
	for i := range a {
		if a[i] != b2[i] {
			t.Errorf("result order changed at index %d: %v vs %v", i, a[i], b2[i])
		}
	}
}

func TestSearchBoundSubject(t *testing.T) {
	b := New(sampleTriples())
	aliceID := b.IDOf("http://ex/alice", store.Subject)

	it, err := b.Search(store.TID{S: aliceID})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	defer it.Close()

	var count int
	for it.HasNext() {
		tid, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tid.S != aliceID {
			t.Errorf("result subject %d does not match pattern %d", tid.S, aliceID)
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 results for alice, got %d", count)
	}
}

func TestJoinUnifiesRepeatedVariable(t *testing.T) {
	b := New(sampleTriples())

	patterns := []store.TriplePattern{
		{Subject: "?x", Predicate: "http://ex/knows", Object: "?y"},
		{Subject: "?y", Predicate: "http://ex/knows", Object: "?z"},
	}

	it, err := b.Join(patterns, []string{"x", "y", "z"})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	defer it.Close()

	var bindings []store.Binding
	for it.HasNext() {
		bnd, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		bindings = append(bindings, bnd)
	}

	if len(bindings) != 1 {
		t.Fatalf("expected exactly 1 binding (alice-bob-carol chain), got %d", len(bindings))
	}
	b0 := bindings[0]
	if b0["x"] != "http://ex/alice" || b0["y"] != "http://ex/bob" || b0["z"] != "http://ex/carol" {
		t.Errorf("unexpected binding: %+v", b0)
	}
}

func TestJoinNoMatchYieldsEmpty(t *testing.T) {
	b := New(sampleTriples())

	patterns := []store.TriplePattern{
		{Subject: "?x", Predicate: "http://ex/unknown", Object: "?y"},
	}
	it, err := b.Join(patterns, []string{"x", "y"})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	defer it.Close()

	if it.HasNext() {
		t.Error("expected no bindings for an unknown predicate")
	}
}
