package metrics

import (
	"context"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// NewOtelSDKMeterProvider builds a self-contained OTel SDK meter provider
// with a manual reader, for operators who want OtelProvider wired up
// without standing up a collector. StartCollector periodically pulls the
// accumulated metrics so the reader doesn't grow unbounded; the broker
// logs each collection at debug volume (see cmd/dispatchctl/broker.go).
type OtelSDKMeterProvider struct {
	reader sdkmetric.Reader
	*sdkmetric.MeterProvider
}

// NewOtelSDKMeterProvider constructs the provider and its manual reader.
func NewOtelSDKMeterProvider() *OtelSDKMeterProvider {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return &OtelSDKMeterProvider{reader: reader, MeterProvider: mp}
}

// Collect pulls the current set of aggregated metrics from the reader. It
// is cheap to call periodically; the manual reader never exports on its
// own, unlike a periodic reader with a push exporter.
func (p *OtelSDKMeterProvider) Collect(ctx context.Context) (int, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return 0, err
	}
	n := 0
	for _, sm := range rm.ScopeMetrics {
		n += len(sm.Metrics)
	}
	return n, nil
}

// Shutdown flushes and releases the provider's resources.
func (p *OtelSDKMeterProvider) Shutdown(ctx context.Context) error {
	return p.MeterProvider.Shutdown(ctx)
}

// StartCollector runs Collect on a fixed interval until ctx is done,
// invoking onCollect with the number of distinct metric streams seen.
// The broker uses this to emit a periodic debug log line rather than
// silently accumulating data no one reads.
func (p *OtelSDKMeterProvider) StartCollector(ctx context.Context, interval time.Duration, onCollect func(n int, err error)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.Collect(ctx)
			if onCollect != nil {
				onCollect(n, err)
			}
		}
	}
}
