package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dconrad/dispatch/workerrt"
)

// workerCmd is the worker command line contract exactly:
// "dispatchctl worker <broker-uri> <C|A> <mode-args...>". A scheduler task
// invokes this directly (via the argument string a submission adapter
// rendered); it is not hidden because it is a documented, externally
// invoked interface, unlike brokerCmd.
var workerCmd = &cobra.Command{
	Use:   "worker <broker-uri> <C|A> <mode-args...>",
	Short: "execute the job ids assigned to this scheduler task",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, args []string) error {
	brokerURI, mode := args[0], args[1]
	modeArgs := args[2:]

	code, err := workerrt.Run(context.Background(), brokerURI, mode, modeArgs, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}
