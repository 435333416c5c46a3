// Package search implements component D: a single triple-pattern lookup
// with limit/offset and cardinality estimation (spec section 4.2).
package search

import (
	"github.com/quadstore/hdthop/pkg/store"
)

// Result is one resolved triple pattern lookup: a bounded iterator over TIDs
// plus the cardinality the store estimated before any skipping.
type Result struct {
	it          store.TIDIterator
	limit       uint64
	yielded     uint64
	Cardinality uint64
}

// Search resolves (s, p, o) term strings to ids (empty string = wildcard),
// opens the backend iterator, applies the offset (see applyOffset), and
// returns a Result bounded to at most limit triples (limit == 0 means
// unbounded).
func Search(backend store.Backend, s, p, o string, limit, offset uint64) (*Result, error) {
	sid, ok := idOrZero(backend, s, store.Subject)
	if !ok {
		return empty(), nil
	}
	pid, ok := idOrZero(backend, p, store.Predicate)
	if !ok {
		return empty(), nil
	}
	oid, ok := idOrZero(backend, o, store.Object)
	if !ok {
		return empty(), nil
	}
	pattern := store.TID{S: sid, P: pid, O: oid}

	it, err := backend.Search(pattern)
	if err != nil {
		return nil, err
	}

	card := it.EstimatedCardinality()
	if err := applyOffset(it, offset, card); err != nil {
		it.Close()
		return nil, err
	}

	return &Result{it: it, limit: limit, Cardinality: card}, nil
}

// idOrZero resolves a pattern component: "" is a wildcard (ok=true, id=0).
// A non-empty term that the dictionary doesn't know resolves to id 0 too,
// but that is indistinguishable from "wildcard" once inside a store.TID, so
// it is reported as ok=false here and must short-circuit the whole search
// to no results rather than silently becoming unbound.
func idOrZero(backend store.Backend, term string, role store.Role) (uint64, bool) {
	if term == "" {
		return 0, true
	}
	id := backend.IDOf(term, role)
	return id, id != 0
}

// empty returns a Result that yields nothing, for a pattern containing an
// unknown term.
func empty() *Result {
	return &Result{it: &nullIterator{}}
}

type nullIterator struct{}

func (nullIterator) HasNext() bool                { return false }
func (nullIterator) Next() (store.TID, error)     { return store.TID{}, store.ErrStoreFault }
func (nullIterator) Skip(uint64) (uint64, error)  { return 0, nil }
func (nullIterator) EstimatedCardinality() uint64 { return 0 }
func (nullIterator) Close() error                 { return nil }

// applyOffset implements the two-phase skip from the original
// implementation this design generalizes from: if offset is within the
// store's cardinality estimate, a plain skip suffices; otherwise skip what
// the store allows (cardinality - 1) and step the remainder one at a time,
// since the store is allowed to refuse to skip past its own estimate.
func applyOffset(it store.TIDIterator, offset, cardinality uint64) error {
	if offset == 0 {
		return nil
	}
	if offset < cardinality {
		_, err := it.Skip(offset)
		return err
	}
	if cardinality > 0 {
		if _, err := it.Skip(cardinality - 1); err != nil {
			return err
		}
	}
	remaining := offset - cardinality + 1
	for i := uint64(0); i < remaining && it.HasNext(); i++ {
		if _, err := it.Next(); err != nil {
			return err
		}
	}
	return nil
}

// HasNext, Next, Close let a caller drain the bounded result.
func (r *Result) HasNext() bool {
	if r.limit != 0 && r.yielded >= r.limit {
		return false
	}
	return r.it.HasNext()
}

func (r *Result) Next() (store.TID, error) {
	t, err := r.it.Next()
	if err != nil {
		return store.TID{}, err
	}
	r.yielded++
	return t, nil
}

func (r *Result) Close() error { return r.it.Close() }
