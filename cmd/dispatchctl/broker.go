package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dconrad/dispatch/broker"
	"github.com/dconrad/dispatch/metrics"
	"github.com/dconrad/dispatch/registry"
)

// brokerCmd is never invoked by an operator. broker.Spawn execs this
// binary with --kind, --workdir and --nqueue (--metrics keeps its default
// unless given by hand), reads the URI it publishes on fd 3
// (see broker.Serve), and dials it; it runs the broker service as a
// genuine child process so cancellation can terminate it unconditionally.
var brokerCmd = &cobra.Command{
	Use:    "broker",
	Short:  "run the Jobs Registry broker for one run (internal)",
	Hidden: true,
	RunE:   runBroker,
}

func init() {
	brokerCmd.Flags().String("kind", "", "work-kind this run dispatches")
	brokerCmd.Flags().String("workdir", "", "working directory a worker must chdir into")
	brokerCmd.Flags().Int("nqueue", 0, "backpressure bound on the result queue; <= 0 is unbounded")
	brokerCmd.Flags().String("metrics", "noop", `metrics provider: "noop" or "otel"`)
	rootCmd.AddCommand(brokerCmd)
}

func runBroker(cmd *cobra.Command, _ []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.With(zap.String("component", "broker"))

	ref := registry.FunctionRef{
		Kind:    stringFlag(cmd, "kind"),
		WorkDir: stringFlag(cmd, "workdir"),
	}

	provider, shutdown := buildMetricsProvider(stringFlag(cmd, "metrics"), logger)
	defer shutdown()

	return broker.Serve(ref, intFlag(cmd, "nqueue"), provider, logger)
}

// buildMetricsProvider resolves the --metrics flag into a metrics.Provider
// and a shutdown func. "otel" wires a self-contained OTel SDK meter
// provider (metrics.OtelSDKMeterProvider) with a background collector that
// logs the number of distinct metric streams it sees every 10s, so the
// dependency is genuinely exercised rather than constructed and discarded.
func buildMetricsProvider(kind string, logger *zap.Logger) (metrics.Provider, func()) {
	if kind != "otel" {
		return metrics.NewNoopProvider(), func() {}
	}

	sdkProvider := metrics.NewOtelSDKMeterProvider()
	ctx, cancel := context.WithCancel(context.Background())
	go sdkProvider.StartCollector(ctx, 10*time.Second, func(n int, err error) {
		if err != nil {
			logger.Warn("metrics collection failed", zap.Error(err))
			return
		}
		logger.Debug("metrics collected", zap.Int("streams", n))
	})

	meter := sdkProvider.Meter("github.com/dconrad/dispatch")
	provider := metrics.NewOtelProvider(meter)

	return provider, func() {
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := sdkProvider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics provider shutdown failed", zap.Error(err))
		}
	}
}
