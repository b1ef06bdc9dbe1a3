package bank

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

const (
	// EventTypeFeeCollected is emitted when a fee is credited to the bank.
	EventTypeFeeCollected = "bank.fee.collected"
	// EventTypeWithdrawn is emitted when the owner withdraws fees.
	EventTypeWithdrawn = "bank.withdrawn"
	// EventTypeTokenSet is emitted when the bank is linked to a token.
	EventTypeTokenSet = "bank.token.set"
)

// FeeCollectedEvent returns the structured event payload for a collected fee.
func FeeCollectedEvent(domain string, from common.Address, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeFeeCollected,
		Attributes: map[string]string{
			"domain": domain,
			"from":   from.Hex(),
			"amount": amount.String(),
		},
	}
}

// WithdrawnEvent returns the structured event payload for a withdrawal.
func WithdrawnEvent(to common.Address, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeWithdrawn,
		Attributes: map[string]string{
			"to":     to.Hex(),
			"amount": amount.String(),
		},
	}
}

// TokenSetEvent returns the structured event payload for a token link.
func TokenSetEvent(ref common.Address) *types.Event {
	return &types.Event{
		Type:       EventTypeTokenSet,
		Attributes: map[string]string{"token": ref.Hex()},
	}
}
