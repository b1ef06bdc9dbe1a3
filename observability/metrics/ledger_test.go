package metrics

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestLedgerMetrics(t *testing.T) {
	m := Ledger()
	if Ledger() != m {
		t.Fatalf("expected a single registry")
	}

	m.Observe("mint", nil, time.Millisecond)
	m.Observe("mint", errors.New("boom"), time.Millisecond)
	if got := testutil.ToFloat64(m.operations.WithLabelValues("mint", "error")); got != 1 {
		t.Fatalf("error count %v, want 1", got)
	}

	supply := new(big.Int).Mul(big.NewInt(5), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	m.SetSupply(supply)
	if got := testutil.ToFloat64(m.supply); got != 5 {
		t.Fatalf("supply gauge %v, want 5", got)
	}

	m.RecordEvent("")
	if got := testutil.ToFloat64(m.events.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("unknown event count %v, want 1", got)
	}

	var nilMetrics *LedgerMetrics
	nilMetrics.Observe("noop", nil, 0)
}

func TestLedgerMetricsGathered(t *testing.T) {
	m := Ledger()
	m.RecordCommit()
	m.SetBankBalance(new(big.Int).Mul(big.NewInt(3), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)))

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	var (
		commits *dto.Counter
		bank    *dto.Gauge
	)
	for _, family := range families {
		if len(family.Metric) == 0 {
			continue
		}
		switch family.GetName() {
		case "cryptopage_ledger_commits_total":
			commits = family.Metric[0].Counter
		case "cryptopage_bank_balance":
			bank = family.Metric[0].Gauge
		}
	}
	if commits == nil || commits.GetValue() < 1 {
		t.Fatalf("commit counter not gathered: %v", commits)
	}
	if bank == nil || bank.GetValue() != 3 {
		t.Fatalf("bank gauge not gathered: %v", bank)
	}
}
