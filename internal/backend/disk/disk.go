// Package disk provides a BadgerDB-backed store.Backend (component A),
// adapted from the teacher's internal/storage badger wrapper and
// internal/store index-selection logic: instead of encoded RDF terms, the
// persisted keys here are fixed-width native dictionary id triples.
package disk

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/quadstore/hdthop/internal/dict"
	"github.com/quadstore/hdthop/internal/storage"
	"github.com/quadstore/hdthop/pkg/store"
)

// Backend is a BadgerDB-backed store.Backend. The dictionary is built once
// in memory from the ingested corpus (the same native-id assignment the
// in-memory backend uses); only the triple indexes are persisted to disk.
type Backend struct {
	db   *storage.BadgerStorage
	dict *dict.Dictionary
}

// Open creates or reuses a BadgerDB directory at path and ingests raw as
// the corpus, writing its SPO/POS/OSP permutations.
func Open(path string, raw []store.TriplePattern) (*Backend, error) {
	db, err := storage.NewBadgerStorage(path)
	if err != nil {
		return nil, fmt.Errorf("hdthop/disk: %w: %w", store.ErrNotFound, err)
	}

	d := dict.Build(raw)
	b := &Backend{db: db, dict: d}

	txn, err := db.Begin(true)
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, t := range raw {
		tid := store.TID{
			S: d.IDOf(t.Subject, store.Subject),
			P: d.IDOf(t.Predicate, store.Predicate),
			O: d.IDOf(t.Object, store.Object),
		}
		if err := writeTriple(txn, tid); err != nil {
			txn.Rollback()
			db.Close()
			return nil, err
		}
	}
	if err := txn.Commit(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) Close() error { return b.db.Close() }

func writeTriple(txn storage.Transaction, t store.TID) error {
	empty := []byte{}
	if err := txn.Set(storage.TableSPO, encodeKey(t.S, t.P, t.O), empty); err != nil {
		return err
	}
	if err := txn.Set(storage.TablePOS, encodeKey(t.P, t.O, t.S), empty); err != nil {
		return err
	}
	if err := txn.Set(storage.TableOSP, encodeKey(t.O, t.S, t.P), empty); err != nil {
		return err
	}
	return nil
}

func encodeKey(a, bb, c uint64) []byte {
	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[0:8], a)
	binary.BigEndian.PutUint64(buf[8:16], bb)
	binary.BigEndian.PutUint64(buf[16:24], c)
	return buf
}

func lessTID(a, b store.TID) bool {
	if a.S != b.S {
		return a.S < b.S
	}
	if a.P != b.P {
		return a.P < b.P
	}
	return a.O < b.O
}

func decodeKey(key []byte) (a, bb, c uint64) {
	a = binary.BigEndian.Uint64(key[0:8])
	bb = binary.BigEndian.Uint64(key[8:16])
	c = binary.BigEndian.Uint64(key[16:24])
	return
}

func (b *Backend) IDOf(term string, role store.Role) uint64   { return b.dict.IDOf(term, role) }
func (b *Backend) StringOf(id uint64, role store.Role) string { return b.dict.StringOf(id, role) }

func (b *Backend) NShared() uint64        { return b.dict.NShared() }
func (b *Backend) NSubjectsTotal() uint64 { return b.dict.NSubjectsTotal() }
func (b *Backend) NObjectsTotal() uint64  { return b.dict.NObjectsTotal() }
func (b *Backend) NPredicates() uint64    { return b.dict.NPredicates() }
func (b *Backend) MaxSubjectID() uint64   { return b.dict.NSubjectsTotal() }
func (b *Backend) MaxObjectID() uint64    { return b.dict.NObjectsTotal() }

func (b *Backend) TotalTriples() uint64 {
	txn, err := b.db.Begin(false)
	if err != nil {
		return 0
	}
	defer txn.Rollback()
	it, err := txn.Scan(storage.TableSPO, nil, nil)
	if err != nil {
		return 0
	}
	defer it.Close()
	var n uint64
	for it.Next() {
		n++
	}
	return n
}

// Search chooses the index table whose leading key columns match the bound
// pattern components (mirroring the teacher's selectIndex), scans it under
// one read-only transaction, and returns the materialized, already-sorted
// matches.
func (b *Backend) Search(pattern store.TID) (store.TIDIterator, error) {
	txn, err := b.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("hdthop/disk: %w", err)
	}
	defer txn.Rollback()

	table, prefix, decode := selectIndex(pattern)

	it, err := txn.Scan(table, prefix, nil)
	if err != nil {
		return nil, fmt.Errorf("hdthop/disk: %w", store.ErrStoreFault)
	}
	defer it.Close()

	var matches []store.TID
	for it.Next() {
		key := it.Key()
		if len(key) != 24 {
			return nil, store.ErrStoreFault
		}
		x, y, z := decodeKey(key)
		matches = append(matches, decode(x, y, z))
	}
	sort.Slice(matches, func(i, j int) bool { return lessTID(matches[i], matches[j]) })
	return &tidIterator{matches: matches}, nil
}

// selectIndex returns the table to scan, the byte prefix built from bound
// leading components, and a function translating a raw (a,b,c) key tuple
// back into (s,p,o).
func selectIndex(p store.TID) (storage.Table, []byte, func(a, b, c uint64) store.TID) {
	sBound, pBound, oBound := p.S != 0, p.P != 0, p.O != 0

	asSPO := func(a, b, c uint64) store.TID { return store.TID{S: a, P: b, O: c} }
	asPOS := func(a, b, c uint64) store.TID { return store.TID{P: a, O: b, S: c} }
	asOSP := func(a, b, c uint64) store.TID { return store.TID{O: a, S: b, P: c} }

	switch {
	case sBound && pBound:
		return storage.TableSPO, prefixOf(p.S, p.P), asSPO
	case pBound && oBound:
		return storage.TablePOS, prefixOf(p.P, p.O), asPOS
	case oBound && sBound:
		return storage.TableOSP, prefixOf(p.O, p.S), asOSP
	case sBound:
		return storage.TableSPO, prefixOf(p.S), asSPO
	case pBound:
		return storage.TablePOS, prefixOf(p.P), asPOS
	case oBound:
		return storage.TableOSP, prefixOf(p.O), asOSP
	default:
		return storage.TableSPO, nil, asSPO
	}
}

func prefixOf(parts ...uint64) []byte {
	buf := make([]byte, 0, 8*len(parts))
	for _, p := range parts {
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, p)
		buf = append(buf, b...)
	}
	return buf
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

func (b *Backend) IDSuggestions(prefix string, role store.Role) (store.IDIterator, error) {
	return &idIterator{ids: b.dict.IDSuggestions(prefix, role)}, nil
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

// Join performs the same nested-loop unification as the memory backend,
// expressed against the disk-backed Search (open question #3: unification
// semantics belong to the store, not to the join evaluator).
func (b *Backend) Join(patterns []store.TriplePattern, vars []string) (store.BindingIterator, error) {
	results := []store.Binding{{}}
	for _, p := range patterns {
		var next []store.Binding
		for _, binding := range results {
			s, sVar := resolveVar(p.Subject, binding)
			pr, pVar := resolveVar(p.Predicate, binding)
			o, oVar := resolveVar(p.Object, binding)

			matches, err := b.searchStrings(s, pr, o)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				candidate := make(store.Binding, len(binding))
				for k, v := range binding {
					candidate[k] = v
				}
				if !bindVar(candidate, sVar, m.Subject) {
					continue
				}
				if !bindVar(candidate, pVar, m.Predicate) {
					continue
				}
				if !bindVar(candidate, oVar, m.Object) {
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

func resolveVar(component string, binding store.Binding) (string, string) {
	if len(component) > 0 && component[0] == '?' {
		name := component[1:]
		if bound, ok := binding[name]; ok {
			return bound, ""
		}
		return "", name
	}
	return component, ""
}

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

func (b *Backend) searchStrings(s, p, o string) ([]store.TriplePattern, error) {
	var sid, pid, oid uint64
	if s != "" {
		if sid = b.dict.IDOf(s, store.Subject); sid == 0 {
			return nil, nil
		}
	}
	if p != "" {
		if pid = b.dict.IDOf(p, store.Predicate); pid == 0 {
			return nil, nil
		}
	}
	if o != "" {
		if oid = b.dict.IDOf(o, store.Object); oid == 0 {
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
