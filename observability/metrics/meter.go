package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "cryptopage/core"

// LedgerMeter mirrors the ledger operation metrics onto an OpenTelemetry
// meter so the OTLP exporter carries them.
type LedgerMeter struct {
	operations metric.Int64Counter
	latency    metric.Float64Histogram
	commits    metric.Int64Counter
}

// NewLedgerMeter creates the ledger instruments on provider, or on the global
// provider when nil. Instruments that cannot be created fall back to no-ops.
func NewLedgerMeter(provider metric.MeterProvider) *LedgerMeter {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)
	fallback := noop.NewMeterProvider().Meter(meterName)

	operations, err := meter.Int64Counter("cryptopage.ledger.operations",
		metric.WithDescription("Ledger operations segmented by name and outcome."))
	if err != nil {
		operations, _ = fallback.Int64Counter("cryptopage.ledger.operations")
	}
	latency, err := meter.Float64Histogram("cryptopage.ledger.operation.duration",
		metric.WithDescription("Latency of ledger operations."),
		metric.WithUnit("s"))
	if err != nil {
		latency, _ = fallback.Float64Histogram("cryptopage.ledger.operation.duration")
	}
	commits, err := meter.Int64Counter("cryptopage.ledger.commits",
		metric.WithDescription("State commits written to the database."))
	if err != nil {
		commits, _ = fallback.Int64Counter("cryptopage.ledger.commits")
	}
	return &LedgerMeter{operations: operations, latency: latency, commits: commits}
}

// Observe records the outcome and latency of a ledger operation.
func (m *LedgerMeter) Observe(ctx context.Context, op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	op = normalize(op)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
	m.latency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("op", op)))
}

// RecordCommit counts one state commit.
func (m *LedgerMeter) RecordCommit(ctx context.Context) {
	if m == nil {
		return
	}
	m.commits.Add(ctx, 1)
}
