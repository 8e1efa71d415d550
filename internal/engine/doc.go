// Package engine is the in-process concurrency engine behind submit.Local.
//
// It is not part of the public coordination broker; it exists so a
// developer can run a dispatch.Map or dispatch.ImapUnordered call against
// simulated worker hosts on a single machine, without condor_submit or
// qsub, by running each scheduler task's worker invocation as a unit here
// instead of forking an OS process per task.
package engine
