package join

import (
	"testing"

	"github.com/quadstore/hdthop/internal/backend/memory"
	"github.com/quadstore/hdthop/pkg/store"
)

func TestEvaluateUnsatisfiableJoinYieldsEmpty(t *testing.T) {
	b := memory.New([]store.TriplePattern{
		{Subject: "http://ex/a", Predicate: "http://ex/knows", Object: "http://ex/b"},
	})

	patterns := []store.TriplePattern{
		{Subject: "?x", Predicate: "http://ex/knows", Object: "?y"},
		{Subject: "?y", Predicate: "?p", Object: "?x"},
	}

	it, err := Evaluate(b, patterns)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	defer it.Close()

	// No triple actually satisfies the second pattern here (with x=a, y=b it
	// needs a triple from b back to a, and b is never a subject), so the
	// join should come back empty rather than error.
	if it.HasNext() {
		t.Error("expected no bindings for an unsatisfiable join")
	}
}

func TestEvaluateSingleVariablePattern(t *testing.T) {
	b := memory.New([]store.TriplePattern{
		{Subject: "http://ex/a", Predicate: "http://ex/knows", Object: "http://ex/b"},
	})

	patterns := []store.TriplePattern{
		{Subject: "?x", Predicate: "http://ex/knows", Object: "http://ex/b"},
	}

	it, err := Evaluate(b, patterns)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	defer it.Close()

	if !it.HasNext() {
		t.Fatal("expected one binding")
	}
	bnd, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if bnd["x"] != "http://ex/a" {
		t.Errorf("expected x=http://ex/a, got %q", bnd["x"])
	}
}
