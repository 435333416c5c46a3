// Package idspace implements the bidirectional translation between a
// store's native id space (separate subject/object/shared ranges) and the
// continuous id space used at hdthop's external boundary (component B).
//
// NativeID and ContinuousID are distinct types specifically so that mixing
// them is a compile error, per the "variant id spaces" design note: the
// source this was modeled on relied on informal convention to keep the two
// apart.
package idspace

// NativeID is an id in the store's own dictionary space: for objects,
// 1..NShared denotes the shared range and NShared+1..NObjectsTotal denotes
// object-only terms (a disjoint namespace from subject-only ids of the same
// numeric value).
type NativeID uint64

// ContinuousID is an id in the single dense external space: 1..NShared
// shared, NShared+1..NSubjectsTotal subject-only, and
// NSubjectsTotal+1..NSubjectsTotal+(NObjectsTotal-NShared) object-only,
// shifted above the subject range.
type ContinuousID uint64

// Translator holds the three counts needed to convert between spaces for
// one store; it is an immutable value, safe to share across calls.
type Translator struct {
	NShared        uint64
	NSubjectsTotal uint64
	NObjectsTotal  uint64
}

// Delta is N_subjects_total - N_shared, the amount by which object-only ids
// are shifted to make room for the subject range in continuous space.
func (t Translator) Delta() uint64 {
	return t.NSubjectsTotal - t.NShared
}

// ObjectNativeToContinuous translates a native object id to its continuous
// id. Shared ids (<= NShared) are unchanged.
func (t Translator) ObjectNativeToContinuous(id NativeID) ContinuousID {
	if uint64(id) > t.NShared {
		return ContinuousID(uint64(id) + t.Delta())
	}
	return ContinuousID(id)
}

// ObjectContinuousToNative translates a continuous object id back to its
// native id. Ids <= NSubjectsTotal are shared or subject-range and pass
// through unchanged (the caller is expected to already know this id is
// being interpreted as an object).
func (t Translator) ObjectContinuousToNative(id ContinuousID) NativeID {
	if uint64(id) > t.NSubjectsTotal {
		return NativeID(uint64(id) - t.Delta())
	}
	return NativeID(id)
}

// SubjectNativeToContinuous is the identity: subject ids already occupy
// 1..NSubjectsTotal in both spaces.
func (t Translator) SubjectNativeToContinuous(id NativeID) ContinuousID {
	return ContinuousID(id)
}

// SubjectContinuousToNative is the identity, the inverse of the above.
func (t Translator) SubjectContinuousToNative(id ContinuousID) NativeID {
	return NativeID(id)
}

// IsAboveSubjectRange reports whether a continuous id lies in the shifted
// object-only range, i.e. must be interpreted as an object rather than a
// subject (used when resolving a hop seed's ambiguous role, §4.5).
func (t Translator) IsAboveSubjectRange(id ContinuousID) bool {
	return uint64(id) > t.NSubjectsTotal
}
