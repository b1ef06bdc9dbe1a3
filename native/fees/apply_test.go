package fees

import (
	"errors"
	"math/big"
	"testing"

	pageerrors "cryptopage/core/errors"
)

func TestApplySplitsGross(t *testing.T) {
	gross, _ := new(big.Int).SetString("10000000000000000000", 10)
	result := Apply(ApplyInput{Domain: " Mint ", Gross: gross, Bps: DefaultMintFeeBps})
	if result.Domain != "mint" {
		t.Fatalf("unexpected domain %q", result.Domain)
	}
	wantFee, _ := new(big.Int).SetString("1000000000000000000", 10)
	wantNet, _ := new(big.Int).SetString("9000000000000000000", 10)
	if result.Fee.Cmp(wantFee) != 0 || result.Net.Cmp(wantNet) != 0 {
		t.Fatalf("unexpected split fee=%s net=%s", result.Fee, result.Net)
	}
	if sum := new(big.Int).Add(result.Fee, result.Net); sum.Cmp(gross) != 0 {
		t.Fatalf("fee+net must equal gross, got %s", sum)
	}
}

func TestApplyRoundsDownAndHandlesEmptyInput(t *testing.T) {
	result := Apply(ApplyInput{Gross: big.NewInt(99), Bps: 100})
	if result.Fee.Sign() != 0 || result.Net.Int64() != 99 {
		t.Fatalf("expected fee to round down to zero, got fee=%s net=%s", result.Fee, result.Net)
	}
	result = Apply(ApplyInput{Gross: nil, Bps: 500})
	if result.Fee.Sign() != 0 || result.Net.Sign() != 0 {
		t.Fatalf("nil gross must yield zero split")
	}
	if got := Portion(big.NewInt(20_000), 3_000); got.Int64() != 6_000 {
		t.Fatalf("unexpected portion %s", got)
	}
}

func TestValidateBpsBounds(t *testing.T) {
	for _, bps := range []uint32{MinFeeBps, 500, MaxFeeBps} {
		if err := ValidateBps(bps); err != nil {
			t.Fatalf("bps %d must be accepted: %v", bps, err)
		}
	}
	for _, bps := range []uint32{0, 9, 3001} {
		err := ValidateBps(bps)
		if !errors.Is(err, pageerrors.ErrFeeOutOfRange) {
			t.Fatalf("bps %d: expected FeeOutOfRange, got %v", bps, err)
		}
	}
}

func TestTotalsAccumulate(t *testing.T) {
	totals := Totals{Domain: "comment"}
	if err := totals.Add(big.NewInt(3)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := totals.Add(big.NewInt(4)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := totals.Add(big.NewInt(-1)); err == nil {
		t.Fatalf("expected negative fee to be rejected")
	}
	clone := totals.Clone()
	totals.Fee.SetInt64(0)
	if clone.Fee.Int64() != 7 || clone.Count != 2 {
		t.Fatalf("unexpected totals %+v", clone)
	}
}
