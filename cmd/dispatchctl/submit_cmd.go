package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dconrad/dispatch/submit"
)

// submitCmd renders the submission artifact a real run would hand to
// condor_submit or qsub, without invoking the scheduler: an operator
// convenience for inspecting the explicit-ids or array template a run
// would use. The real run path (submit.Condor.Submit / submit.SGE.Submit)
// renders the same template into a scoped temp file and then does invoke
// the scheduler.
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "render a submission artifact for inspection, without enqueuing it",
	RunE:  runSubmit,
}

func init() {
	f := submitCmd.Flags()
	f.String("scheduler", "condor", "condor or sge")
	f.String("broker-uri", "127.0.0.1:0", "broker URI to embed in the rendered artifact")
	f.Int("total", 1, "number of jobs the run would register")
	f.String("log-dir", "/tmp/dispatch-log", "scheduler log directory")
	f.Int("memory-mb", 2000, "per-task memory request")
	f.Int("n-cpus", 1, "per-task cpu request")
	f.Int("n-gpus", 0, "per-task gpu request")
	f.Float64("loadavg-max", 0, "host load eligibility bound; 0 defaults to 2*n-cpus")
	f.Int("groupsize", 1, "job ids per scheduler task")
	f.Int("ngroups", 0, "override groupsize by dividing total across this many tasks")
	f.String("wrapper", "", "command prefix wrapped around the worker invocation")
	f.String("config", "", "YAML file of submission directives; overrides the flags above when set")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	cfg := submit.Config{
		LogDirectory: stringFlag(cmd, "log-dir"),
		MemoryMB:     intFlag(cmd, "memory-mb"),
		NCPUs:        intFlag(cmd, "n-cpus"),
		NGPUs:        intFlag(cmd, "n-gpus"),
		LoadAvgMax:   float64Flag(cmd, "loadavg-max"),
		GroupSize:    intFlag(cmd, "groupsize"),
		NGroups:      intFlag(cmd, "ngroups"),
		Wrapper:      stringFlag(cmd, "wrapper"),
	}
	if path := stringFlag(cmd, "config"); path != "" {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return err
		}
		cfg = fc.ToSubmitConfig()
	}
	brokerURI := stringFlag(cmd, "broker-uri")
	total := intFlag(cmd, "total")

	switch stringFlag(cmd, "scheduler") {
	case "condor":
		return submit.Condor{Config: cfg}.Render(os.Stdout, brokerURI, total)
	case "sge":
		return submit.SGE{Config: cfg}.Render(os.Stdout, brokerURI, total)
	default:
		return fmt.Errorf("dispatchctl: unknown scheduler %q", stringFlag(cmd, "scheduler"))
	}
}
