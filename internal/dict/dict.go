// Package dict builds the native HDT-style dictionary from a corpus of RDF
// triples: four independently lexicographically-sorted partitions (shared
// subject/object terms, subject-only terms, object-only terms, predicates),
// matching the teacher's id-interning idiom (internal/encoding in the
// teacher hashed a term for a storage key; here the same hash function
// accelerates the dictionary's reverse string->id lookup instead).
package dict

import (
	"sort"

	"github.com/zeebo/xxh3"

	"github.com/quadstore/hdthop/pkg/store"
)

// Dictionary is a complete, built (read-only) native-id dictionary.
type Dictionary struct {
	shared   []string // ids 1..NShared, same ids under Subject and Object role
	subjOnly []string // ids NShared+1..NSubjectsTotal, subject role only
	objOnly  []string // ids NShared+1..NObjectsTotal, object role only
	preds    []string // ids 1..NPredicates

	// hash indexes accelerate IDOf; collisions are resolved by comparing
	// the candidate's actual string, so a 64-bit hash is sufficient.
	subjHash map[uint64][]termRef // shared ++ subjOnly, searched under Subject role
	objHash  map[uint64][]termRef // shared ++ objOnly, searched under Object role
	predHash map[uint64][]termRef
}

type section byte

const (
	secShared section = iota
	secSubjOnly
	secObjOnly
	secPred
)

type termRef struct {
	sec section
	idx int
}

// Build constructs a Dictionary from a corpus of triples given as string
// terms (subject, predicate, object).
func Build(triples []store.TriplePattern) *Dictionary {
	subjSet := make(map[string]struct{})
	objSet := make(map[string]struct{})
	predSet := make(map[string]struct{})

	for _, t := range triples {
		subjSet[t.Subject] = struct{}{}
		objSet[t.Object] = struct{}{}
		predSet[t.Predicate] = struct{}{}
	}

	shared := make([]string, 0, len(subjSet))
	for s := range subjSet {
		if _, ok := objSet[s]; ok {
			shared = append(shared, s)
		}
	}
	sort.Strings(shared)
	sharedSet := make(map[string]struct{}, len(shared))
	for _, s := range shared {
		sharedSet[s] = struct{}{}
	}

	subjOnly := setMinus(subjSet, sharedSet)
	objOnly := setMinus(objSet, sharedSet)
	preds := setToSorted(predSet)

	d := &Dictionary{
		shared:   shared,
		subjOnly: subjOnly,
		objOnly:  objOnly,
		preds:    preds,
	}
	d.buildHashIndexes()
	return d
}

func setMinus(set, remove map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		if _, ok := remove[s]; !ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func setToSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (d *Dictionary) buildHashIndexes() {
	d.subjHash = make(map[uint64][]termRef, len(d.shared)+len(d.subjOnly))
	d.objHash = make(map[uint64][]termRef, len(d.shared)+len(d.objOnly))
	d.predHash = make(map[uint64][]termRef, len(d.preds))

	for i, s := range d.shared {
		h := xxh3.HashString(s)
		ref := termRef{secShared, i}
		d.subjHash[h] = append(d.subjHash[h], ref)
		d.objHash[h] = append(d.objHash[h], ref)
	}
	for i, s := range d.subjOnly {
		h := xxh3.HashString(s)
		d.subjHash[h] = append(d.subjHash[h], termRef{secSubjOnly, i})
	}
	for i, s := range d.objOnly {
		h := xxh3.HashString(s)
		d.objHash[h] = append(d.objHash[h], termRef{secObjOnly, i})
	}
	for i, s := range d.preds {
		h := xxh3.HashString(s)
		d.predHash[h] = append(d.predHash[h], termRef{secPred, i})
	}
}

func (d *Dictionary) lookup(index map[uint64][]termRef, term string) (termRef, bool) {
	h := xxh3.HashString(term)
	for _, ref := range index[h] {
		switch ref.sec {
		case secShared:
			if d.shared[ref.idx] == term {
				return ref, true
			}
		case secSubjOnly:
			if d.subjOnly[ref.idx] == term {
				return ref, true
			}
		case secObjOnly:
			if d.objOnly[ref.idx] == term {
				return ref, true
			}
		case secPred:
			if d.preds[ref.idx] == term {
				return ref, true
			}
		}
	}
	return termRef{}, false
}

// IDOf returns the native id of term under role, or 0 if term is unknown.
func (d *Dictionary) IDOf(term string, role store.Role) uint64 {
	switch role {
	case store.Subject:
		ref, ok := d.lookup(d.subjHash, term)
		if !ok {
			return 0
		}
		return d.refToSubjectID(ref)
	case store.Object:
		ref, ok := d.lookup(d.objHash, term)
		if !ok {
			return 0
		}
		return d.refToObjectID(ref)
	case store.Predicate:
		ref, ok := d.lookup(d.predHash, term)
		if !ok {
			return 0
		}
		return uint64(ref.idx + 1)
	}
	return 0
}

func (d *Dictionary) refToSubjectID(ref termRef) uint64 {
	if ref.sec == secShared {
		return uint64(ref.idx + 1)
	}
	return uint64(len(d.shared) + ref.idx + 1)
}

func (d *Dictionary) refToObjectID(ref termRef) uint64 {
	if ref.sec == secShared {
		return uint64(ref.idx + 1)
	}
	return uint64(len(d.shared) + ref.idx + 1)
}

// StringOf returns the term string for a native id under role, or "" if out
// of range.
func (d *Dictionary) StringOf(id uint64, role store.Role) string {
	if id == 0 {
		return ""
	}
	nShared := uint64(len(d.shared))
	switch role {
	case store.Subject:
		if id <= nShared {
			return d.shared[id-1]
		}
		i := id - nShared - 1
		if i < uint64(len(d.subjOnly)) {
			return d.subjOnly[i]
		}
	case store.Object:
		if id <= nShared {
			return d.shared[id-1]
		}
		i := id - nShared - 1
		if i < uint64(len(d.objOnly)) {
			return d.objOnly[i]
		}
	case store.Predicate:
		if id >= 1 && id <= uint64(len(d.preds)) {
			return d.preds[id-1]
		}
	}
	return ""
}

func (d *Dictionary) NShared() uint64         { return uint64(len(d.shared)) }
func (d *Dictionary) NSubjectsTotal() uint64  { return uint64(len(d.shared) + len(d.subjOnly)) }
func (d *Dictionary) NObjectsTotal() uint64   { return uint64(len(d.shared) + len(d.objOnly)) }
func (d *Dictionary) NPredicates() uint64     { return uint64(len(d.preds)) }

// IDSuggestions returns, in ascending id order, the ids of role-terms whose
// string begins with prefix. Because each dictionary partition is
// independently sorted, matches within a partition form one contiguous
// range; the shared partition (lower ids) is always returned before the
// only-partition (higher ids).
func (d *Dictionary) IDSuggestions(prefix string, role store.Role) []uint64 {
	var out []uint64
	nShared := uint64(len(d.shared))

	appendRange := func(sorted []string, base uint64) {
		lo, hi := prefixRange(sorted, prefix)
		for i := lo; i < hi; i++ {
			out = append(out, base+uint64(i)+1)
		}
	}

	switch role {
	case store.Subject:
		appendRange(d.shared, 0)
		appendRange(d.subjOnly, nShared)
	case store.Object:
		appendRange(d.shared, 0)
		appendRange(d.objOnly, nShared)
	case store.Predicate:
		appendRange(d.preds, 0)
	}
	return out
}

// prefixRange returns [lo, hi) indexes into a sorted slice whose elements
// begin with prefix.
func prefixRange(sorted []string, prefix string) (int, int) {
	lo := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= prefix })
	hi := lo
	for hi < len(sorted) && hasPrefix(sorted[hi], prefix) {
		hi++
	}
	return lo, hi
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// ObjectTermsAscending returns every object term (shared, then object-only)
// in ascending object-id order, used only by the literal-cutoff scan
// (internal/prefixcfg).
func (d *Dictionary) ObjectTermsAscending() []string {
	out := make([]string, 0, len(d.shared)+len(d.objOnly))
	out = append(out, d.shared...)
	out = append(out, d.objOnly...)
	return out
}
