package typefilter

import (
	"testing"

	"github.com/quadstore/hdthop/internal/backend/memory"
	"github.com/quadstore/hdthop/internal/idspace"
	"github.com/quadstore/hdthop/pkg/rdf"
	"github.com/quadstore/hdthop/pkg/store"
)

func TestFilterTypesGroupsSeedsByClass(t *testing.T) {
	b := memory.New([]store.TriplePattern{
		{Subject: "http://ex/alice", Predicate: rdf.RDFType, Object: "http://ex/Person"},
		{Subject: "http://ex/bob", Predicate: rdf.RDFType, Object: "http://ex/Person"},
		{Subject: "http://ex/acme", Predicate: rdf.RDFType, Object: "http://ex/Organization"},
	})

	typePredID := b.IDOf(rdf.RDFType, store.Predicate)
	personID := idspace.ContinuousID(b.IDOf("http://ex/Person", store.Object))
	orgID := idspace.ContinuousID(b.IDOf("http://ex/Organization", store.Object))

	aliceID := idspace.ContinuousID(b.IDOf("http://ex/alice", store.Subject))
	bobID := idspace.ContinuousID(b.IDOf("http://ex/bob", store.Subject))
	acmeID := idspace.ContinuousID(b.IDOf("http://ex/acme", store.Subject))

	tr := idspace.Translator{NShared: b.NShared(), NSubjectsTotal: b.NSubjectsTotal(), NObjectsTotal: b.NObjectsTotal()}

	seeds := []idspace.ContinuousID{aliceID, bobID, acmeID}
	classes := []idspace.ContinuousID{personID, orgID}

	groups := FilterTypes(b, tr, false, typePredID, seeds, classes)
	if len(groups) != 2 {
		t.Fatalf("expected 2 class groups, got %d", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Errorf("expected 2 seeds matching Person, got %d", len(groups[0]))
	}
	if len(groups[1]) != 1 {
		t.Errorf("expected 1 seed matching Organization, got %d", len(groups[1]))
	}
}

func TestFilterTypesSeedWithNoMatchingClass(t *testing.T) {
	b := memory.New([]store.TriplePattern{
		{Subject: "http://ex/alice", Predicate: "http://ex/knows", Object: "http://ex/bob"},
	})
	typePredID := b.IDOf(rdf.RDFType, store.Predicate)
	tr := idspace.Translator{NShared: b.NShared(), NSubjectsTotal: b.NSubjectsTotal(), NObjectsTotal: b.NObjectsTotal()}

	aliceID := idspace.ContinuousID(b.IDOf("http://ex/alice", store.Subject))
	classes := []idspace.ContinuousID{idspace.ContinuousID(b.IDOf("http://ex/Person", store.Object))}

	groups := FilterTypes(b, tr, false, typePredID, []idspace.ContinuousID{aliceID}, classes)
	if len(groups) != 1 {
		t.Fatalf("expected 1 class group, got %d", len(groups))
	}
	if len(groups[0]) != 0 {
		t.Errorf("expected no seeds matching an undeclared class, got %d", len(groups[0]))
	}
}
