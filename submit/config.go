// Package submit implements the Submission Adapter abstraction: given a
// running broker's URI and a job count, each adapter arranges for worker
// processes to be started somewhere, using whatever mechanism its backing
// scheduler provides. Condor and SGE shell out to real scheduler CLIs; Local
// is a dependency-free adapter for development and tests.
package submit

import "os"

// Config holds the scheduler directives common to the batch adapters
// (Condor, SGE).
type Config struct {
	// LogDirectory is where the scheduler writes per-task stdout/stderr/log
	// files.
	LogDirectory string
	// MemoryMB is the per-task memory request.
	MemoryMB int
	// NCPUs is the per-task cpu request.
	NCPUs int
	// NGPUs is the per-task GPU request; 0 omits the GPU requirement line.
	NGPUs int
	// LoadAvgMax bounds the host load average a task may be scheduled onto.
	// Zero means "unset": the effective value defaults to 2*NCPUs.
	LoadAvgMax float64
	// GroupSize is how many job ids one scheduler task processes.
	GroupSize int
	// NGroups, if > 0, overrides GroupSize so the run uses at most this many
	// scheduler tasks: GroupSize becomes ceil(total/NGroups).
	NGroups int
	// Wrapper is an optional command prefix around the worker invocation,
	// e.g. "/usr/bin/time -v" to monitor memory usage.
	Wrapper string
	// Environment entries are forwarded into each scheduler task's
	// environment, on top of the submitting process's own PATH and
	// LD_LIBRARY_PATH. A compiled worker binary needs no GOPATH-style
	// module path, so nothing else is forwarded implicitly.
	Environment map[string]string
	// WorkerExe is the path to the binary invoked as `<WorkerExe> worker
	// <broker-uri> ...`. Defaults to the calling process's own executable
	// (os.Executable) when empty, since dispatchctl embeds both the
	// orchestrator and the worker subcommand in one binary.
	WorkerExe string
}

// DefaultConfig returns the conservative defaults a single-task run should
// start from.
func DefaultConfig() Config {
	return Config{
		LogDirectory: "/tmp/dispatch-log",
		MemoryMB:     2000,
		NCPUs:        1,
		GroupSize:    1,
	}
}

// EffectiveLoadAvg returns LoadAvgMax if set, else 2*NCPUs.
func (c Config) EffectiveLoadAvg() float64 {
	if c.LoadAvgMax > 0 {
		return c.LoadAvgMax
	}
	return 2 * float64(c.NCPUs)
}

// groupSize resolves the actual per-task job count for total jobs, honoring
// NGroups when set.
func (c Config) groupSize(total int) int {
	if c.NGroups > 0 {
		return (total + c.NGroups - 1) / c.NGroups
	}
	if c.GroupSize > 0 {
		return c.GroupSize
	}
	return 1
}

func (c Config) workerExe() string {
	if c.WorkerExe != "" {
		return c.WorkerExe
	}
	exe, err := os.Executable()
	if err != nil {
		return "dispatchctl"
	}
	return exe
}

// chunks splits [0,n) into consecutive groups of size at most groupSize.
func chunks(n, groupSize int) [][2]int {
	if groupSize <= 0 {
		groupSize = 1
	}
	var out [][2]int
	for start := 0; start < n; start += groupSize {
		end := start + groupSize
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
