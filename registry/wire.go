package registry

import "encoding/gob"

// RegisterWireType records a concrete type for transport inside an Args slot
// or an Outcome value. gob pre-registers the scalar kinds, so runs over
// ints, floats, strings, and bools need no call here; user-defined argument
// or result types must be registered once in code linked into both the
// client and the worker binary. An init function next to the work-kind's
// workkind.Register call is the natural place.
func RegisterWireType(v interface{}) { gob.Register(v) }
