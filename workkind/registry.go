// Package workkind gives a worker a compiled-in table of named handlers
// instead of importing an arbitrary user module by name at runtime: a
// work-kind is registered once, at init time, by the binary that is also
// built with dispatchctl's worker subcommand, so the name a broker
// publishes always resolves locally.
package workkind

import (
	"fmt"
	"sync"

	"github.com/dconrad/dispatch/registry"
)

// Func is a work-kind's handler: it receives the job's argument tuple and
// returns a result or an error. Panics are recovered by the caller (the
// worker runtime), not by Func itself.
type Func func(args registry.Args) (interface{}, error)

var (
	mu    sync.RWMutex
	table = map[string]Func{}
)

// Register adds fn under name. Registering the same name twice panics, the
// same way net/http's ServeMux or database/sql's driver registry treat a
// duplicate registration as a programmer error caught at init time.
func Register(name string, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := table[name]; exists {
		panic(fmt.Sprintf("workkind: %q already registered", name))
	}
	table[name] = fn
}

// Lookup resolves name to its handler.
func Lookup(name string) (Func, bool) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := table[name]
	return fn, ok
}
