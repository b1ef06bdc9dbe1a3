package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorMatchesSentinelByKind(t *testing.T) {
	err := New(KindInsufficientBalance, "not enough balance")
	if !stderrors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected kind match against sentinel")
	}
	if stderrors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected match against different kind")
	}
	wrapped := fmt.Errorf("bank withdraw: %w", err)
	if !stderrors.Is(wrapped, ErrInsufficientBalance) {
		t.Fatalf("expected wrapped error to match")
	}
	if KindOf(wrapped) != KindInsufficientBalance {
		t.Fatalf("unexpected kind %q", KindOf(wrapped))
	}
	if ReasonOf(wrapped) != "not enough balance" {
		t.Fatalf("unexpected reason %q", ReasonOf(wrapped))
	}
}

func TestErrorStringIncludesReason(t *testing.T) {
	err := Newf(KindNotFound, "no comment with this ID %d", 7)
	if got := err.Error(); got != "NotFound: no comment with this ID 7" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ErrZeroAmount.Error(); got != "ZeroAmount" {
		t.Fatalf("unexpected sentinel message %q", got)
	}
	if KindOf(stderrors.New("plain")) != "" {
		t.Fatalf("plain errors must not report a kind")
	}
}
