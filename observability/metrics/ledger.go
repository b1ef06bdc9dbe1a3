package metrics

import (
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics tracks ledger operations and headline balances.
type LedgerMetrics struct {
	operations  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	events      *prometheus.CounterVec
	supply      prometheus.Gauge
	bankBalance prometheus.Gauge
	commits     prometheus.Counter
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the lazily registered ledger metrics.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "cryptopage",
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Ledger operations segmented by name and outcome.",
			}, []string{"op", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "cryptopage",
				Subsystem: "ledger",
				Name:      "operation_duration_seconds",
				Help:      "Latency distribution of ledger operations.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"op"}),
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "cryptopage",
				Subsystem: "ledger",
				Name:      "events_total",
				Help:      "Events emitted by committed operations segmented by type.",
			}, []string{"type"}),
			supply: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "cryptopage",
				Subsystem: "token",
				Name:      "total_supply",
				Help:      "Circulating PAGE supply in whole tokens.",
			}),
			bankBalance: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "cryptopage",
				Subsystem: "bank",
				Name:      "balance",
				Help:      "PAGE held by the fee bank in whole tokens.",
			}),
			commits: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "cryptopage",
				Subsystem: "ledger",
				Name:      "commits_total",
				Help:      "State commits written to the database.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.operations,
			ledgerRegistry.latency,
			ledgerRegistry.events,
			ledgerRegistry.supply,
			ledgerRegistry.bankBalance,
			ledgerRegistry.commits,
		)
	})
	return ledgerRegistry
}

// Observe records the outcome and latency of a ledger operation.
func (m *LedgerMetrics) Observe(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	op = normalize(op)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RecordEvent counts one emitted event.
func (m *LedgerMetrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(normalize(eventType)).Inc()
}

// RecordCommit counts one state commit.
func (m *LedgerMetrics) RecordCommit() {
	if m == nil {
		return
	}
	m.commits.Inc()
}

// SetSupply publishes the token supply.
func (m *LedgerMetrics) SetSupply(amount *big.Int) {
	if m == nil {
		return
	}
	m.supply.Set(tokens(amount))
}

// SetBankBalance publishes the bank balance.
func (m *LedgerMetrics) SetBankBalance(amount *big.Int) {
	if m == nil {
		return
	}
	m.bankBalance.Set(tokens(amount))
}

func normalize(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unknown"
	}
	return label
}

var weiPerToken = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

func tokens(amount *big.Int) float64 {
	if amount == nil {
		return 0
	}
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), weiPerToken).Float64()
	return value
}
