package registry

import (
	"fmt"
	"time"
)

// maxCounterCardinality bounds the result-signature counter so a
// pathological workload (e.g. every job returning a distinct large struct)
// cannot exhaust broker memory.
const maxCounterCardinality = 20

// resultCounter tracks how many times each distinct result signature has
// been observed, and when it was last seen. Cardinality is capped; once the
// cap is hit, additional distinct signatures are folded into a shared
// "overflow" bucket rather than tracked individually.
type resultCounter struct {
	counts map[string]int
	seen   map[string]time.Time
	capHit bool
}

func newResultCounter() *resultCounter {
	return &resultCounter{counts: make(map[string]int), seen: make(map[string]time.Time)}
}

// observe records one occurrence of v's signature at time now.
func (c *resultCounter) observe(v interface{}, now time.Time) {
	sig := signature(v)
	if _, exists := c.counts[sig]; !exists {
		if len(c.counts) >= maxCounterCardinality {
			sig = "…overflow"
			c.capHit = true
		}
	}
	c.counts[sig]++
	c.seen[sig] = now
}

// signature returns a bounded key describing v: the value itself for
// scalar-like kinds, and a type tag for everything else, matching the
// original's "int/str counted by value, other classes by type" rule.
func signature(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("int:%v", t)
	case float32, float64:
		return fmt.Sprintf("float:%v", t)
	case bool:
		return fmt.Sprintf("bool:%v", t)
	case string:
		return fmt.Sprintf("string:%v", t)
	default:
		return fmt.Sprintf("type:%T", t)
	}
}

// snapshot returns copies of the counts and last-seen maps.
func (c *resultCounter) snapshot() (map[string]int, map[string]time.Time) {
	counts := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		counts[k] = v
	}
	seen := make(map[string]time.Time, len(c.seen))
	for k, v := range c.seen {
		seen[k] = v
	}
	return counts, seen
}
