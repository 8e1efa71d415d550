// Package dispatch is the client-facing entry point of the cluster-dispatch
// system. It starts a broker child process, registers one job per argument
// tuple, hands the run to a submission adapter, and drives the poll loop
// that turns the jobs registry's state into results: Map returns them in
// input order, once the whole run is complete; ImapUnordered streams them
// as they arrive.
//
// A caller first registers a work-kind (see package workkind) under a
// name, then calls Map or ImapUnordered with that name and the argument
// tuples to run it against. A worker resolves that name against its own
// statically-linked table rather than importing arbitrary code by name.
// Arguments and results cross the wire as gob-encoded interface values:
// scalar kinds travel as-is, while user-defined types must be recorded once
// with registry.RegisterWireType in code linked into both binaries.
package dispatch
