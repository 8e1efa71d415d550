// Command dispatchctl is the broker/worker binary a run invokes. Most users
// never run it directly: once dispatch.Map or dispatch.ImapUnordered starts
// a run, broker.Spawn re-invokes the binary's hidden "broker" subcommand,
// and the tasks submit.Condor and submit.SGE submit run its "worker"
// subcommand (submit.Local calls the worker runtime in-process instead). "submit" is an operator convenience for inspecting a
// submission artifact without enqueuing it; "demo" exercises the whole
// stack end to end against submit.Local, for a quick sanity check with no
// cluster available.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dispatchctl",
	Short: "broker, worker, and operator commands for the cluster-dispatch system",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func intFlag(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func float64Flag(cmd *cobra.Command, name string) float64 {
	v, _ := cmd.Flags().GetFloat64(name)
	return v
}

func stringFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
