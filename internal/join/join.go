// Package join implements component E: multi-pattern join, delegated to the
// store's join facility (spec section 4.7). This package's only job is to
// collect the deduplicated variable set and hand both it and the pattern
// list to the backend; unification of repeated variables is the backend's
// responsibility (spec §9 design notes, open question 3).
package join

import "github.com/quadstore/hdthop/pkg/store"

// Evaluate parses patterns, collecting every component beginning with '?'
// as a variable name, deduplicates them, and delegates to backend.Join.
func Evaluate(backend store.Backend, patterns []store.TriplePattern) (store.BindingIterator, error) {
	seen := make(map[string]struct{})
	var vars []string
	collect := func(component string) {
		if len(component) == 0 || component[0] != '?' {
			return
		}
		name := component[1:]
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		vars = append(vars, name)
	}

	for _, p := range patterns {
		collect(p.Subject)
		collect(p.Predicate)
		collect(p.Object)
	}

	return backend.Join(patterns, vars)
}
