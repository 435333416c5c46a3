// Package memory provides an in-memory store.Backend (component A), built
// once from a fixed corpus of triples. It is adapted from the teacher's
// simple nested-index approach (internal/store in the teacher, and the
// plain map-based triple store in the graphfs example pack) but keyed by
// native dictionary ids instead of encoded RDF terms, and with a
// deterministic (sorted) iteration order so that hop computation is
// reproducible (spec determinism property).
package memory

import (
	"sort"

	"github.com/quadstore/hdthop/internal/dict"
	"github.com/quadstore/hdthop/pkg/store"
)

// Backend is a read-only, in-memory store.Backend.
type Backend struct {
	dict    *dict.Dictionary
	triples []store.TID
}

// New builds a Backend from a corpus of string triples.
func New(raw []store.TriplePattern) *Backend {
	d := dict.Build(raw)
	triples := make([]store.TID, 0, len(raw))
	for _, t := range raw {
		triples = append(triples, store.TID{
			S: d.IDOf(t.Subject, store.Subject),
			P: d.IDOf(t.Predicate, store.Predicate),
			O: d.IDOf(t.Object, store.Object),
		})
	}
	sort.Slice(triples, func(i, j int) bool { return less(triples[i], triples[j]) })
	return &Backend{dict: d, triples: triples}
}

func less(a, b store.TID) bool {
	if a.S != b.S {
		return a.S < b.S
	}
	if a.P != b.P {
		return a.P < b.P
	}
	return a.O < b.O
}

func (b *Backend) IDOf(term string, role store.Role) uint64   { return b.dict.IDOf(term, role) }
func (b *Backend) StringOf(id uint64, role store.Role) string { return b.dict.StringOf(id, role) }

func (b *Backend) NShared() uint64        { return b.dict.NShared() }
func (b *Backend) NSubjectsTotal() uint64 { return b.dict.NSubjectsTotal() }
func (b *Backend) NObjectsTotal() uint64  { return b.dict.NObjectsTotal() }
func (b *Backend) NPredicates() uint64    { return b.dict.NPredicates() }
func (b *Backend) MaxSubjectID() uint64   { return b.dict.NSubjectsTotal() }
func (b *Backend) MaxObjectID() uint64    { return b.dict.NObjectsTotal() }
func (b *Backend) TotalTriples() uint64   { return uint64(len(b.triples)) }

// Search returns an iterator over triples matching pattern, in ascending
// (s, p, o) order; a zero component is a wildcard.
func (b *Backend) Search(pattern store.TID) (store.TIDIterator, error) {
	matches := make([]store.TID, 0)
	for _, t := range b.triples {
		if pattern.S != 0 && pattern.S != t.S {
			continue
		}
		if pattern.P != 0 && pattern.P != t.P {
			continue
		}
		if pattern.O != 0 && pattern.O != t.O {
			continue
		}
		matches = append(matches, t)
	}
	return &tidIterator{matches: matches}, nil
}

type tidIterator struct {
	matches []store.TID
	pos     int
}

func (it *tidIterator) HasNext() bool { return it.pos < len(it.matches) }

func (it *tidIterator) Next() (store.TID, error) {
	if !it.HasNext() {
		return store.TID{}, store.ErrStoreFault
	}
	t := it.matches[it.pos]
	it.pos++
	return t, nil
}

func (it *tidIterator) Skip(k uint64) (uint64, error) {
	remaining := uint64(len(it.matches) - it.pos)
	if k > remaining {
		k = remaining
	}
	it.pos += int(k)
	return k, nil
}

func (it *tidIterator) EstimatedCardinality() uint64 { return uint64(len(it.matches)) }
func (it *tidIterator) Close() error                 { return nil }

// IDSuggestions returns, in ascending id order, ids of role-terms starting
// with prefix.
func (b *Backend) IDSuggestions(prefix string, role store.Role) (store.IDIterator, error) {
	ids := b.dict.IDSuggestions(prefix, role)
	return &idIterator{ids: ids}, nil
}

type idIterator struct {
	ids []uint64
	pos int
}

func (it *idIterator) HasNext() bool { return it.pos < len(it.ids) }
func (it *idIterator) Next() (uint64, error) {
	if !it.HasNext() {
		return 0, store.ErrStoreFault
	}
	v := it.ids[it.pos]
	it.pos++
	return v, nil
}
func (it *idIterator) Close() error { return nil }

// ObjectsIter returns object terms in ascending object-id order.
func (b *Backend) ObjectsIter() (store.StringIterator, error) {
	return &stringIterator{terms: b.dict.ObjectTermsAscending()}, nil
}

type stringIterator struct {
	terms []string
	pos   int
}

func (it *stringIterator) HasNext() bool { return it.pos < len(it.terms) }
func (it *stringIterator) Next() (string, error) {
	if !it.HasNext() {
		return "", store.ErrStoreFault
	}
	v := it.terms[it.pos]
	it.pos++
	return v, nil
}
func (it *stringIterator) Close() error { return nil }

// Join performs a nested-loop join over patterns, unifying repeated
// variables by checking a later pattern's bound value against a variable's
// value from an earlier one (component E delegates here faithfully; open
// question #3 of the spec's design notes leaves unification semantics to
// the store).
func (b *Backend) Join(patterns []store.TriplePattern, vars []string) (store.BindingIterator, error) {
	results := []store.Binding{{}}
	for _, p := range patterns {
		var next []store.Binding
		for _, binding := range results {
			s, sVar := resolve(p.Subject, binding)
			pr, pVar := resolve(p.Predicate, binding)
			o, oVar := resolve(p.Object, binding)

			matches, err := b.searchStrings(s, pr, o)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				candidate := cloneBinding(binding)
				if ok := bindVar(candidate, sVar, m.Subject); !ok {
					continue
				}
				if ok := bindVar(candidate, pVar, m.Predicate); !ok {
					continue
				}
				if ok := bindVar(candidate, oVar, m.Object); !ok {
					continue
				}
				next = append(next, candidate)
			}
		}
		results = next
		if len(results) == 0 {
			break
		}
	}
	return &bindingIterator{results: results}, nil
}

// resolve returns the bound string term for a pattern component (empty
// string if it is an as-yet-unbound variable) and the variable name if the
// component is a variable reference ("" if it is a literal term).
func resolve(component string, binding store.Binding) (string, string) {
	if len(component) > 0 && component[0] == '?' {
		name := component[1:]
		if bound, ok := binding[name]; ok {
			return bound, ""
		}
		return "", name
	}
	return component, ""
}

func (b *Backend) searchStrings(s, p, o string) ([]store.TriplePattern, error) {
	var sid, pid, oid uint64
	if s != "" {
		sid = b.dict.IDOf(s, store.Subject)
		if sid == 0 {
			return nil, nil
		}
	}
	if p != "" {
		pid = b.dict.IDOf(p, store.Predicate)
		if pid == 0 {
			return nil, nil
		}
	}
	if o != "" {
		oid = b.dict.IDOf(o, store.Object)
		if oid == 0 {
			return nil, nil
		}
	}
	it, err := b.Search(store.TID{S: sid, P: pid, O: oid})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []store.TriplePattern
	for it.HasNext() {
		t, err := it.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, store.TriplePattern{
			Subject:   b.dict.StringOf(t.S, store.Subject),
			Predicate: b.dict.StringOf(t.P, store.Predicate),
			Object:    b.dict.StringOf(t.O, store.Object),
		})
	}
	return out, nil
}

// cloneBinding makes a shallow copy so each candidate extension of the join
// is independent.
func cloneBinding(b store.Binding) store.Binding {
	out := make(store.Binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// bindVar binds varName to value in b, or (if varName is empty, meaning the
// pattern component was a literal term, not a variable) does nothing. It
// returns false if varName was already bound to a different value, which
// is how repeated variable occurrences across patterns are unified.
func bindVar(b store.Binding, varName, value string) bool {
	if varName == "" {
		return true
	}
	if existing, ok := b[varName]; ok {
		return existing == value
	}
	b[varName] = value
	return true
}

type bindingIterator struct {
	results []store.Binding
	pos     int
}

func (it *bindingIterator) HasNext() bool { return it.pos < len(it.results) }
func (it *bindingIterator) Next() (store.Binding, error) {
	if !it.HasNext() {
		return nil, store.ErrStoreFault
	}
	v := it.results[it.pos]
	it.pos++
	return v, nil
}
func (it *bindingIterator) Close() error { return nil }
