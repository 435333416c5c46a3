// Package typefilter implements component F: grouping seed entities by
// which of a set of candidate rdf:type classes they declare (spec section
// 4.4).
package typefilter

import (
	"github.com/quadstore/hdthop/internal/idspace"
	"github.com/quadstore/hdthop/pkg/store"
)

// FilterTypes takes typePredID already resolved (the caller caches
// id_of(rdf:type, predicate), matching the original's one-time resolution),
// and for each seed walks its (seed, typePredID, *) triples and records the
// seed against every requested class it matches. The result list order
// matches the input classes order (spec §4.4.4).
func FilterTypes(backend store.Backend, t idspace.Translator, continuousMode bool, typePredID uint64, seeds, classes []idspace.ContinuousID) [][]idspace.ContinuousID {
	nativeClasses := make([]uint64, len(classes))
	classIndex := make(map[uint64]int, len(classes))
	for i, c := range classes {
		native := toNativeObject(t, continuousMode, c)
		nativeClasses[i] = native
		if native != 0 {
			classIndex[native] = i
		}
	}

	out := make([][]idspace.ContinuousID, len(classes))

	for _, seed := range seeds {
		seedNative := toNativeSubject(t, continuousMode, seed)
		if seedNative == 0 {
			continue
		}
		matchesOf(backend, seedNative, typePredID, classIndex, out, seed)
	}
	return out
}

func matchesOf(backend store.Backend, seedNative, typePredID uint64, classIndex map[uint64]int, out [][]idspace.ContinuousID, seed idspace.ContinuousID) {
	it, err := backend.Search(store.TID{S: seedNative, P: typePredID, O: 0})
	if err != nil {
		return
	}
	defer it.Close()

	for it.HasNext() {
		tid, err := it.Next()
		if err != nil {
			return
		}
		if idx, ok := classIndex[tid.O]; ok {
			out[idx] = append(out[idx], seed)
		}
	}
}

func toNativeObject(t idspace.Translator, continuousMode bool, id idspace.ContinuousID) uint64 {
	if !continuousMode {
		return uint64(id)
	}
	return uint64(t.ObjectContinuousToNative(id))
}

func toNativeSubject(t idspace.Translator, continuousMode bool, id idspace.ContinuousID) uint64 {
	if !continuousMode {
		return uint64(id)
	}
	return uint64(t.SubjectContinuousToNative(id))
}
