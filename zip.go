package dispatch

import "github.com/dconrad/dispatch/registry"

// Zip combines one or more same-length slices into the per-job argument
// tuples Map and ImapUnordered expect, the same role Python's builtin zip
// plays in a map(f, *iterables) call. Every iterable must have the same
// length; Zip panics otherwise, since a length mismatch can only be a
// caller bug.
//
// Each element of each iterable is boxed into an interface{} slot; the
// work-kind registered for the run is responsible for asserting it back to
// a concrete type.
func Zip[T any](iterables ...[]T) []registry.Args {
	if len(iterables) == 0 {
		return nil
	}
	n := len(iterables[0])
	for _, it := range iterables[1:] {
		if len(it) != n {
			panic("dispatch: Zip: iterables have mismatched lengths")
		}
	}
	out := make([]registry.Args, n)
	for i := 0; i < n; i++ {
		tuple := make(registry.Args, len(iterables))
		for j, it := range iterables {
			tuple[j] = it[i]
		}
		out[i] = tuple
	}
	return out
}
