package fees

import (
	"fmt"
	"math/big"
	"strings"

	"cryptopage/core/errors"
)

const (
	// BpsDenominator is the basis point scale.
	BpsDenominator = 10_000
	// MinFeeBps and MaxFeeBps bound every configurable fee rate.
	MinFeeBps = 10
	MaxFeeBps = 3_000

	// DefaultMintFeeBps and DefaultBurnFeeBps are the rates applied before
	// an operator changes them.
	DefaultMintFeeBps    = 1_000
	DefaultBurnFeeBps    = 0
	DefaultCommentFeeBps = 1_000
)

// NormalizeDomain canonicalises domain identifiers for consistent lookups.
func NormalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

// ValidateBps rejects rates outside [MinFeeBps, MaxFeeBps].
func ValidateBps(bps uint32) error {
	if bps < MinFeeBps || bps > MaxFeeBps {
		return errors.Newf(errors.KindFeeOutOfRange, "fee %d bps outside [%d, %d]", bps, MinFeeBps, MaxFeeBps)
	}
	return nil
}

// ApplyInput captures the gross amount and the rate to apply.
type ApplyInput struct {
	Domain string
	Gross  *big.Int
	Bps    uint32
}

// ApplyResult splits the gross amount into the fee routed to the treasury and
// the remainder.
type ApplyResult struct {
	Domain string
	Fee    *big.Int
	Net    *big.Int
}

// Apply computes fee = gross * bps / 10000 (rounded down) and net = gross - fee.
// Fee + Net always equals Gross.
func Apply(input ApplyInput) ApplyResult {
	result := ApplyResult{Domain: NormalizeDomain(input.Domain), Fee: big.NewInt(0)}
	if input.Gross != nil {
		result.Net = new(big.Int).Set(input.Gross)
	} else {
		result.Net = big.NewInt(0)
	}
	if result.Net.Sign() <= 0 || input.Bps == 0 {
		return result
	}
	fee := new(big.Int).Mul(result.Net, big.NewInt(int64(input.Bps)))
	fee.Quo(fee, big.NewInt(BpsDenominator))
	if fee.Cmp(result.Net) >= 0 {
		result.Fee = new(big.Int).Set(result.Net)
		result.Net = big.NewInt(0)
		return result
	}
	result.Fee = fee
	result.Net = new(big.Int).Sub(result.Net, fee)
	return result
}

// Portion returns amount * bps / 10000.
func Portion(amount *big.Int, bps uint32) *big.Int {
	return Apply(ApplyInput{Gross: amount, Bps: bps}).Fee
}

// Totals aggregates collected fees per domain.
type Totals struct {
	Domain string
	Fee    *big.Int
	Count  uint64
}

// Add folds a collected fee into the totals.
func (t *Totals) Add(fee *big.Int) error {
	if fee == nil || fee.Sign() < 0 {
		return fmt.Errorf("fees: invalid amount for domain %s", t.Domain)
	}
	if t.Fee == nil {
		t.Fee = big.NewInt(0)
	}
	t.Fee = new(big.Int).Add(t.Fee, fee)
	t.Count++
	return nil
}

// Clone returns a copy of the totals structure with duplicated big.Int values.
func (t Totals) Clone() Totals {
	clone := Totals{Domain: t.Domain, Count: t.Count}
	if t.Fee != nil {
		clone.Fee = new(big.Int).Set(t.Fee)
	}
	return clone
}
