package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"
)

// OtelProvider adapts Provider onto an OpenTelemetry metric.Meter, for
// operators who already run an OTel collector alongside their batch
// scheduler. Instruments are created lazily and cached by name, same as
// BasicProvider.
type OtelProvider struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	updowns    map[string]metric.Int64UpDownCounter
	histograms map[string]metric.Float64Histogram
}

// NewOtelProvider builds a Provider backed by meter.
func NewOtelProvider(meter metric.Meter) *OtelProvider {
	return &OtelProvider{
		meter:      meter,
		counters:   make(map[string]metric.Int64Counter),
		updowns:    make(map[string]metric.Int64UpDownCounter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

func (p *OtelProvider) Counter(name string, opts ...InstrumentOption) Counter {
	cfg := applyOptions(opts)

	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.counters[name]
	if !ok {
		var err error
		c, err = p.meter.Int64Counter(name, metric.WithDescription(cfg.Description), metric.WithUnit(cfg.Unit))
		if err != nil {
			return noop{}
		}
		p.counters[name] = c
	}
	return otelCounter{c: c}
}

func (p *OtelProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	cfg := applyOptions(opts)

	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.updowns[name]
	if !ok {
		var err error
		u, err = p.meter.Int64UpDownCounter(name, metric.WithDescription(cfg.Description), metric.WithUnit(cfg.Unit))
		if err != nil {
			return noop{}
		}
		p.updowns[name] = u
	}
	return otelUpDownCounter{u: u}
}

func (p *OtelProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	cfg := applyOptions(opts)

	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.histograms[name]
	if !ok {
		var err error
		h, err = p.meter.Float64Histogram(name, metric.WithDescription(cfg.Description), metric.WithUnit(cfg.Unit))
		if err != nil {
			return noop{}
		}
		p.histograms[name] = h
	}
	return otelHistogram{h: h}
}

type otelCounter struct{ c metric.Int64Counter }

func (o otelCounter) Add(n int64) { o.c.Add(context.Background(), n) }

type otelUpDownCounter struct{ u metric.Int64UpDownCounter }

func (o otelUpDownCounter) Add(n int64) { o.u.Add(context.Background(), n) }

type otelHistogram struct{ h metric.Float64Histogram }

func (o otelHistogram) Record(v float64) { o.h.Record(context.Background(), v) }
