// Package matrix implements component H: turning the hop engine's flat
// triple set into a compact per-predicate adjacency matrix with locally
// renumbered vertex ids (spec section 4.6).
package matrix

import (
	"sort"

	"github.com/quadstore/hdthop/internal/idspace"
	"github.com/quadstore/hdthop/pkg/store"
)

// Edge is one adjacency entry: subject and object as local, densely packed
// vertex indices into Result.Vertices.
type Edge struct {
	LocalS uint32
	LocalO uint32
}

// PredicateGroup is one predicate's edge list. Groups with no edges are
// never produced.
type PredicateGroup struct {
	Predicate uint64
	Edges     []Edge
}

// Result is the full matrix: the renumbered vertex table (in first-seen
// order under predicate-sorted traversal) and one group per predicate that
// had at least one surviving edge.
type Result struct {
	Vertices []idspace.ContinuousID
	Groups   []PredicateGroup
}

// Build sorts triples by (predicate, subject, object), then walks them
// once, assigning each distinct vertex (in continuous id space) the next
// free local index the first time it's seen and flushing a new
// PredicateGroup whenever the predicate changes. Subjects are never
// remapped between native and continuous space (they already coincide);
// objects are remapped through t only when continuousMode is set.
func Build(t idspace.Translator, continuousMode bool, triples []store.TID) Result {
	sorted := make([]store.TID, len(triples))
	copy(sorted, triples)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.P != b.P {
			return a.P < b.P
		}
		if a.S != b.S {
			return a.S < b.S
		}
		return a.O < b.O
	})

	var res Result
	index := make(map[idspace.ContinuousID]uint32)
	localOf := func(id idspace.ContinuousID) uint32 {
		if idx, ok := index[id]; ok {
			return idx
		}
		idx := uint32(len(res.Vertices))
		res.Vertices = append(res.Vertices, id)
		index[id] = idx
		return idx
	}

	var current *PredicateGroup
	for _, tid := range sorted {
		sCont := idspace.ContinuousID(tid.S)
		var oCont idspace.ContinuousID
		if continuousMode {
			oCont = t.ObjectNativeToContinuous(idspace.NativeID(tid.O))
		} else {
			oCont = idspace.ContinuousID(tid.O)
		}

		if current == nil || current.Predicate != tid.P {
			res.Groups = append(res.Groups, PredicateGroup{Predicate: tid.P})
			current = &res.Groups[len(res.Groups)-1]
		}
		current.Edges = append(current.Edges, Edge{LocalS: localOf(sCont), LocalO: localOf(oCont)})
	}

	return res
}
