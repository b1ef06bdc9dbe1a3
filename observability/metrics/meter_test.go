package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// collectSum returns the int64 sum datapoints of the named instrument.
func collectSum(t *testing.T, reader sdkmetric.Reader, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T, want an int64 sum", name, m.Data)
			}
			return sum.DataPoints
		}
	}
	return nil
}

func TestLedgerMeter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m := NewLedgerMeter(provider)
	ctx := context.Background()
	m.Observe(ctx, "mint", nil, time.Millisecond)
	m.Observe(ctx, "mint", nil, time.Millisecond)
	m.Observe(ctx, " ", errors.New("boom"), time.Millisecond)
	m.RecordCommit(ctx)

	counts := map[string]int64{}
	for _, dp := range collectSum(t, reader, "cryptopage.ledger.operations") {
		op, _ := dp.Attributes.Value(attribute.Key("op"))
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		counts[op.AsString()+"/"+outcome.AsString()] = dp.Value
	}
	if counts["mint/ok"] != 2 || counts["unknown/error"] != 1 {
		t.Fatalf("unexpected operation counts %v", counts)
	}
	commits := collectSum(t, reader, "cryptopage.ledger.commits")
	if len(commits) != 1 || commits[0].Value != 1 {
		t.Fatalf("unexpected commit datapoints %v", commits)
	}

	var nilMeter *LedgerMeter
	nilMeter.Observe(ctx, "noop", nil, 0)
	nilMeter.RecordCommit(ctx)
}
