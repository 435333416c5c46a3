// Package hdt is the public facade: it composes components A-H behind the
// operations described in spec section 6, and is the only package most
// callers of this module need to import.
package hdt

import (
	"fmt"

	"github.com/quadstore/hdthop/internal/backend/disk"
	"github.com/quadstore/hdthop/internal/backend/memory"
	"github.com/quadstore/hdthop/internal/hop"
	"github.com/quadstore/hdthop/internal/idspace"
	"github.com/quadstore/hdthop/internal/join"
	"github.com/quadstore/hdthop/internal/matrix"
	"github.com/quadstore/hdthop/internal/prefixcfg"
	"github.com/quadstore/hdthop/internal/search"
	"github.com/quadstore/hdthop/internal/typefilter"
	"github.com/quadstore/hdthop/pkg/rdf"
	"github.com/quadstore/hdthop/pkg/store"
)

// Options configures Open. Path selects the storage engine: empty means an
// in-memory Backend (internal/backend/memory), non-empty opens a BadgerDB
// directory (internal/backend/disk). Triples is the raw triple set to
// index; loading triples from any on-disk exchange format is out of scope
// (see SPEC_FULL.md) and is the caller's responsibility before Open.
type Options struct {
	Path    string
	Triples []store.TriplePattern
}

// Document is an opened, queryable graph. It owns its Backend and is safe
// for concurrent readers once Open returns (the Backend contract has no
// mutating operations after construction).
type Document struct {
	backend    store.Backend
	translator idspace.Translator

	// typePredicateID is resolved once here rather than per FilterTypes
	// call, since rdf:type never changes for the lifetime of a Document.
	typePredicateID uint64
}

// Open builds a Document from Options. The returned Document owns the
// Backend; call Close when done with a disk-backed Document.
func Open(opts Options) (*Document, error) {
	var backend store.Backend
	var err error

	if opts.Path == "" {
		backend = memory.New(opts.Triples)
	} else {
		backend, err = disk.Open(opts.Path, opts.Triples)
		if err != nil {
			return nil, fmt.Errorf("hdt: open backend: %w", err)
		}
	}

	d := &Document{
		backend: backend,
		translator: idspace.Translator{
			NShared:        backend.NShared(),
			NSubjectsTotal: backend.NSubjectsTotal(),
			NObjectsTotal:  backend.NObjectsTotal(),
		},
	}
	d.typePredicateID = backend.IDOf(rdf.RDFType, store.Predicate)
	return d, nil
}

// Close releases the underlying storage engine, if any.
func (d *Document) Close() error {
	if c, ok := d.backend.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// StringTriple is one resolved (subject, predicate, object) result row.
type StringTriple struct {
	Subject, Predicate, Object string
}

// StringResult iterates Search results as resolved term strings.
type StringResult struct {
	d *Document
	r *search.Result
}

func (r *StringResult) HasNext() bool { return r.r.HasNext() }

func (r *StringResult) Next() (StringTriple, error) {
	tid, err := r.r.Next()
	if err != nil {
		return StringTriple{}, err
	}
	s, p, o := r.d.IDsToStringTriple(tid)
	return StringTriple{s, p, o}, nil
}

func (r *StringResult) Cardinality() uint64 { return r.r.Cardinality }
func (r *StringResult) Close() error        { return r.r.Close() }

// Search resolves a single triple pattern given as term strings (empty
// string is a wildcard) and returns a bounded, offset iterator over
// resolved string triples (component D).
func (d *Document) Search(s, p, o string, limit, offset uint64) (*StringResult, error) {
	r, err := search.Search(d.backend, s, p, o, limit, offset)
	if err != nil {
		return nil, err
	}
	return &StringResult{d: d, r: r}, nil
}

// SearchIDs is Search's id-space counterpart: the pattern and results are
// native dictionary ids rather than term strings.
func (d *Document) SearchIDs(pattern store.TID, limit, offset uint64) (*search.Result, error) {
	s := d.backend.StringOf(pattern.S, store.Subject)
	p := d.backend.StringOf(pattern.P, store.Predicate)
	o := d.backend.StringOf(pattern.O, store.Object)
	if pattern.S != 0 && s == "" {
		return nil, store.ErrNotFound
	}
	if pattern.P != 0 && p == "" {
		return nil, store.ErrNotFound
	}
	if pattern.O != 0 && o == "" {
		return nil, store.ErrNotFound
	}
	return search.Search(d.backend, s, p, o, limit, offset)
}

// SearchJoin evaluates a multi-pattern join (component E).
func (d *Document) SearchJoin(patterns []store.TriplePattern) (store.BindingIterator, error) {
	return join.Evaluate(d.backend, patterns)
}

// HopConfig is the immutable snapshot ConfigureHops produces; it is safe to
// reuse across many ComputeHops/ComputeAllHops calls (spec §9 design note:
// configuration is never mutated in place).
type HopConfig struct {
	cfg hop.Config
}

// ConfigureHops resolves a prefix tag and predicate allow-list into a
// HopConfig (component C, plus predicate resolution). An empty predicates
// slice means "any predicate".
func (d *Document) ConfigureHops(prefixTag string, includeLiterals bool, numHops int, predicates []string, continuousMode bool) (HopConfig, error) {
	prefix, err := prefixcfg.Configure(d.backend, prefixTag, includeLiterals)
	if err != nil {
		return HopConfig{}, fmt.Errorf("hdt: configure hops: %w", err)
	}

	var predAllow map[uint64]struct{}
	if len(predicates) > 0 {
		predAllow = make(map[uint64]struct{}, len(predicates))
		for _, name := range predicates {
			predAllow[d.backend.IDOf(name, store.Predicate)] = struct{}{}
		}
	}

	return HopConfig{cfg: hop.Config{
		NumHops:         numHops,
		PredAllow:       predAllow,
		Prefix:          prefix,
		ContinuousMode:  continuousMode,
		IncludeLiterals: includeLiterals,
	}}, nil
}

// ComputeHops runs the bounded hop expansion (component G) from seeds,
// given the limit/offset pair that spans the whole recursive computation,
// and assembles the result into a per-predicate adjacency matrix
// (component H).
func (d *Document) ComputeHops(cfg HopConfig, seeds []idspace.ContinuousID, limit, offset uint64) (matrix.Result, error) {
	triples, err := hop.Compute(d.backend, d.translator, cfg.cfg, seeds, limit, offset)
	if err != nil {
		return matrix.Result{}, err
	}
	return matrix.Build(d.translator, cfg.cfg.ContinuousMode, triples), nil
}

// ComputeAllHops is the degenerate no-limit, no-offset case: every
// reachable triple within num_hops, capped only by the store's own total
// triple count.
func (d *Document) ComputeAllHops(cfg HopConfig, seeds []idspace.ContinuousID) (matrix.Result, error) {
	return d.ComputeHops(cfg, seeds, d.backend.TotalTriples(), 0)
}

// FilterTypes groups seeds by which of classes each one declares via
// rdf:type (component F).
func (d *Document) FilterTypes(continuousMode bool, seeds, classes []idspace.ContinuousID) [][]idspace.ContinuousID {
	return typefilter.FilterTypes(d.backend, d.translator, continuousMode, d.typePredicateID, seeds, classes)
}

// IDToString resolves a single native id in the given role to its term
// string, or "" if unknown.
func (d *Document) IDToString(id uint64, role store.Role) string {
	return d.backend.StringOf(id, role)
}

// StringToID resolves a term string in the given role to its native id, or
// 0 if unknown.
func (d *Document) StringToID(term string, role store.Role) uint64 {
	return d.backend.IDOf(term, role)
}

// GlobalIDToString resolves a continuous id to its term string. Ids within
// the subject range are resolved as subjects (shared terms share the same
// native id under both roles); ids above it are translated to native
// object ids first.
func (d *Document) GlobalIDToString(id idspace.ContinuousID) string {
	if d.translator.IsAboveSubjectRange(id) {
		native := d.translator.ObjectContinuousToNative(id)
		return d.backend.StringOf(uint64(native), store.Object)
	}
	return d.backend.StringOf(uint64(id), store.Subject)
}

// StringToGlobalID resolves a term string to its continuous id, trying the
// subject dictionary first (which also covers shared terms) and falling
// back to the object dictionary. Returns 0 if the term is unknown in
// either role.
func (d *Document) StringToGlobalID(term string) idspace.ContinuousID {
	if id := d.backend.IDOf(term, store.Subject); id != 0 {
		return idspace.ContinuousID(id)
	}
	if id := d.backend.IDOf(term, store.Object); id != 0 {
		return d.translator.ObjectNativeToContinuous(idspace.NativeID(id))
	}
	return 0
}

// IDsToStringTriple resolves a full native-id triple to term strings.
func (d *Document) IDsToStringTriple(t store.TID) (subject, predicate, object string) {
	return d.backend.StringOf(t.S, store.Subject),
		d.backend.StringOf(t.P, store.Predicate),
		d.backend.StringOf(t.O, store.Object)
}

// NTriples, NSubjects, NPredicates, NObjects, NShared expose the store's
// dictionary cardinalities (spec §6 inspection operations).
func (d *Document) NTriples() uint64    { return d.backend.TotalTriples() }
func (d *Document) NSubjects() uint64   { return d.backend.NSubjectsTotal() }
func (d *Document) NPredicates() uint64 { return d.backend.NPredicates() }
func (d *Document) NObjects() uint64    { return d.backend.NObjectsTotal() }
func (d *Document) NShared() uint64     { return d.backend.NShared() }
