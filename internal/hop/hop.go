// Package hop implements component G, the hop engine: the recursive,
// bounded, symmetric neighborhood expansion described in spec section 4.5.
// This is the system's core and the reason an explicit traversal context is
// used instead of hidden state (spec §9 design notes): ctx below is threaded
// through the recursion by pointer, not held in package-level variables.
package hop

import (
	"github.com/quadstore/hdthop/internal/idspace"
	"github.com/quadstore/hdthop/internal/prefixcfg"
	"github.com/quadstore/hdthop/pkg/store"
)

// Config is the immutable snapshot produced by configure_hops (component C
// plus the bare options) that parameterizes every compute_hops call.
type Config struct {
	NumHops         int
	PredAllow       map[uint64]struct{} // empty/nil means "any predicate"
	Prefix          prefixcfg.Config
	ContinuousMode  bool
	IncludeLiterals bool
}

// ctx is the mutable per-call accumulator graph: everything addhop reads
// and writes while recursing. One ctx is used per Compute call and never
// shared across calls.
type ctx struct {
	backend store.Backend
	cfg     Config

	nShared      uint64
	maxSubjectID uint64
	maxObjectID  uint64
	limit        uint64
	offset       uint64

	processedTerms   map[uint64]struct{} // native ids, spec §3: a single set, not role-tagged
	out              map[store.TID]struct{}
	skipped          map[store.TID]struct{}
	processedTriples uint64
	readTriples      uint64
}

// Compute runs compute_hops(seeds, limit, offset). A limit of 0 uses
// total_triples as the effective limit (compute_all_hops is exactly this
// degenerate case, per the original source's computeAllHopsIDs).
func Compute(backend store.Backend, t idspace.Translator, cfg Config, seeds []idspace.ContinuousID, limit, offset uint64) ([]store.TID, error) {
	if limit == 0 {
		limit = backend.TotalTriples()
	}

	c := &ctx{
		backend:          backend,
		cfg:              cfg,
		nShared:          backend.NShared(),
		maxSubjectID:     backend.MaxSubjectID(),
		maxObjectID:      backend.MaxObjectID(),
		limit:            limit,
		offset:           offset,
		processedTerms:   make(map[uint64]struct{}),
		out:              make(map[store.TID]struct{}),
		skipped:          make(map[store.TID]struct{}),
	}

	for _, seed := range seeds {
		if err := c.expandSeed(t, seed); err != nil {
			return nil, err
		}
	}

	result := make([]store.TID, 0, len(c.out))
	for tid := range c.out {
		result = append(result, tid)
	}
	return result, nil
}

func (c *ctx) expandSeed(t idspace.Translator, seed idspace.ContinuousID) error {
	if !c.cfg.ContinuousMode {
		if uint64(seed) == 0 {
			return nil
		}
		if err := c.addhop(uint64(seed), 1, store.Subject); err != nil {
			return err
		}
		return c.addhop(uint64(seed), 1, store.Object)
	}

	role := store.Subject
	native := uint64(seed)
	if t.IsAboveSubjectRange(seed) {
		role = store.Object
		native = uint64(t.ObjectContinuousToNative(seed))
	}
	if native == 0 {
		return nil // OutOfRange: silently skip, hop proceeds with remaining seeds
	}
	return c.addhop(native, 1, role)
}

// addhop is the symmetric recursive step (spec §4.5).
func (c *ctx) addhop(termID uint64, currentHop int, role store.Role) error {
	if c.processedTriples >= c.limit {
		return nil
	}
	c.processedTerms[termID] = struct{}{}

	if (role == store.Subject || termID <= c.nShared) && termID <= c.maxSubjectID {
		if err := c.subjectBranch(termID, currentHop); err != nil {
			return err
		}
	}
	if (role == store.Object || termID <= c.nShared) && termID <= c.maxObjectID {
		if err := c.objectBranch(termID, currentHop); err != nil {
			return err
		}
	}
	return nil
}

func (c *ctx) predicateAllowed(p uint64) bool {
	if len(c.cfg.PredAllow) == 0 {
		return true
	}
	_, ok := c.cfg.PredAllow[p]
	return ok
}

// acceptSubjectBranch is the prefix/literal filter for branch A, where the
// object o is the filtered term.
func (c *ctx) acceptSubjectBranch(o uint64) bool {
	if !c.cfg.Prefix.Active() {
		return true
	}
	lit := c.cfg.Prefix
	if c.cfg.IncludeLiterals && lit.HasLiteralCutoff() && o < lit.LiteralEndID() {
		return true
	}
	return lit.InSORange(o) || lit.InObjRange(o)
}

// acceptObjectBranch is the prefix/literal filter for branch B, where the
// subject s is the filtered term (spec §4.5 branch B, and SPEC_FULL's
// resolution of open question 2: both endpoints are checked against s, not
// mixed with o as the original source does).
func (c *ctx) acceptObjectBranch(s, o uint64) bool {
	if !c.cfg.Prefix.Active() {
		return true
	}
	lit := c.cfg.Prefix
	if c.cfg.IncludeLiterals && lit.HasLiteralCutoff() && o < lit.LiteralEndID() {
		return true
	}
	return lit.InSORange(s) || lit.InSubjRange(s)
}

func (c *ctx) subjectBranch(termID uint64, currentHop int) error {
	it, err := c.backend.Search(store.TID{S: termID})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.HasNext() {
		tid, err := it.Next()
		if err != nil {
			return store.ErrStoreFault
		}
		if !c.predicateAllowed(tid.P) {
			continue
		}
		if !c.acceptSubjectBranch(tid.O) {
			continue
		}
		if c.processedTriples >= c.limit {
			break
		}

		recurse, err := c.admit(tid)
		if err != nil {
			return err
		}
		if !recurse {
			continue
		}
		if currentHop+1 <= c.cfg.NumHops {
			if _, seen := c.processedTerms[tid.O]; !seen {
				if err := c.addhop(tid.O, currentHop+1, store.Object); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *ctx) objectBranch(termID uint64, currentHop int) error {
	it, err := c.backend.Search(store.TID{O: termID})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.HasNext() {
		tid, err := it.Next()
		if err != nil {
			return store.ErrStoreFault
		}
		if tid.S == tid.O && termID <= c.nShared {
			continue // avoid double-counting the shared-term symmetric loop
		}
		if !c.predicateAllowed(tid.P) {
			continue
		}
		if !c.acceptObjectBranch(tid.S, tid.O) {
			continue
		}
		if c.processedTriples >= c.limit {
			break
		}

		recurse, err := c.admit(tid)
		if err != nil {
			return err
		}
		if !recurse {
			continue
		}
		if currentHop+1 <= c.cfg.NumHops {
			if _, seen := c.processedTerms[tid.S]; !seen {
				if err := c.addhop(tid.S, currentHop+1, store.Subject); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// admit applies the offset gate and, on the non-offset path, inserts tid
// into out. It returns whether the caller should proceed to recurse: false
// exactly when tid was freshly counted against the offset (spec §4.5: "do
// not add to out and do not recurse").
func (c *ctx) admit(tid store.TID) (bool, error) {
	_, alreadySkipped := c.skipped[tid]

	if c.readTriples < c.offset && !alreadySkipped {
		c.skipped[tid] = struct{}{}
		c.readTriples++
		return false, nil
	}

	if !alreadySkipped {
		c.out[tid] = struct{}{}
		c.processedTriples = uint64(len(c.out))
	}
	return true, nil
}
