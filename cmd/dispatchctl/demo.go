package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	dispatch "github.com/dconrad/dispatch"
	"github.com/dconrad/dispatch/registry"
	"github.com/dconrad/dispatch/submit"
	"github.com/dconrad/dispatch/workkind"
)

// demoCmd runs a small map over the local machine with no cluster and no
// scheduler available, exercising registry, broker, workerrt and the root
// package's Map in one process tree. It exists for operators verifying a
// fresh checkout works before pointing it at condor or qsub.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "run a small local map as a sanity check",
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().Int("n", 5, "how many values to square")
	rootCmd.AddCommand(demoCmd)
}

const demoKind = "dispatchctl-demo-square"

func init() {
	workkind.Register(demoKind, func(args registry.Args) (interface{}, error) {
		x, ok := args[0].(int)
		if !ok {
			return nil, fmt.Errorf("demo: want int argument, got %T", args[0])
		}
		return x * x, nil
	})
}

func runDemo(cmd *cobra.Command, _ []string) error {
	n := intFlag(cmd, "n")
	values := make([]int, n)
	for i := range values {
		values[i] = i
	}
	argSets := dispatch.Zip(values)

	// ctrl-C runs the stop-then-terminate cancellation path instead of
	// leaving a broker child behind.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := dispatch.Map[int](ctx, demoKind, argSets, dispatch.WithAdapter(submit.Local{}))
	if err != nil {
		return fmt.Errorf("dispatchctl: demo run: %w", err)
	}
	for _, r := range results {
		if !r.OK {
			fmt.Printf("job %d failed: %v\n", r.ID, r.Err)
			continue
		}
		fmt.Printf("%d squared is %d (%s)\n", values[r.ID], r.Value, r.Elapsed)
	}
	return nil
}
