package hdt

import (
	"testing"

	"github.com/quadstore/hdthop/internal/idspace"
	"github.com/quadstore/hdthop/pkg/rdf"
	"github.com/quadstore/hdthop/pkg/store"
)

func openSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Open(Options{Triples: []store.TriplePattern{
		{Subject: "http://ex/alice", Predicate: "http://ex/knows", Object: "http://ex/bob"},
		{Subject: "http://ex/bob", Predicate: "http://ex/knows", Object: "http://ex/carol"},
		{Subject: "http://ex/alice", Predicate: rdf.RDFType, Object: "http://ex/Person"},
	}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return doc
}

func TestOpenInMemory(t *testing.T) {
	doc := openSample(t)
	defer doc.Close()

	if doc.NTriples() != 3 {
		t.Errorf("expected 3 triples, got %d", doc.NTriples())
	}
}

func TestSearchResolvesStrings(t *testing.T) {
	doc := openSample(t)
	defer doc.Close()

	result, err := doc.Search("http://ex/alice", "", "", 0, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	defer result.Close()

	var count int
	for result.HasNext() {
		triple, err := result.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if triple.Subject != "http://ex/alice" {
			t.Errorf("unexpected subject %q", triple.Subject)
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 results for alice, got %d", count)
	}
}

func TestGlobalIDRoundTrip(t *testing.T) {
	doc := openSample(t)
	defer doc.Close()

	for _, term := range []string{"http://ex/alice", "http://ex/carol", "http://ex/Person"} {
		gid := doc.StringToGlobalID(term)
		if gid == 0 {
			t.Fatalf("StringToGlobalID(%q) returned 0", term)
		}
		back := doc.GlobalIDToString(gid)
		if back != term {
			t.Errorf("round trip mismatch for %q: got %q", term, back)
		}
	}
}

func TestComputeAllHopsFromSeed(t *testing.T) {
	doc := openSample(t)
	defer doc.Close()

	cfg, err := doc.ConfigureHops("", false, 2, nil, true)
	if err != nil {
		t.Fatalf("ConfigureHops: %v", err)
	}

	seed := doc.StringToGlobalID("http://ex/alice")
	res, err := doc.ComputeAllHops(cfg, []idspace.ContinuousID{seed})
	if err != nil {
		t.Fatalf("ComputeAllHops: %v", err)
	}

	var totalEdges int
	for _, g := range res.Groups {
		totalEdges += len(g.Edges)
	}
	if totalEdges != 3 {
		t.Errorf("expected 3 edges reachable within 2 hops of alice, got %d", totalEdges)
	}
}

func TestFilterTypesFindsPerson(t *testing.T) {
	doc := openSample(t)
	defer doc.Close()

	alice := doc.StringToGlobalID("http://ex/alice")
	bob := doc.StringToGlobalID("http://ex/bob")
	person := doc.StringToGlobalID("http://ex/Person")

	groups := doc.FilterTypes(true, []idspace.ContinuousID{alice, bob}, []idspace.ContinuousID{person})
	if len(groups) != 1 {
		t.Fatalf("expected 1 class group, got %d", len(groups))
	}
	if len(groups[0]) != 1 || groups[0][0] != alice {
		t.Errorf("expected only alice to match Person, got %v", groups[0])
	}
}

func TestSearchJoin(t *testing.T) {
	doc := openSample(t)
	defer doc.Close()

	it, err := doc.SearchJoin([]store.TriplePattern{
		{Subject: "?x", Predicate: "http://ex/knows", Object: "?y"},
	})
	if err != nil {
		t.Fatalf("SearchJoin: %v", err)
	}
	defer it.Close()

	var count int
	for it.HasNext() {
		if _, err := it.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 join solutions, got %d", count)
	}
}
