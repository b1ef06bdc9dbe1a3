package oracle

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

const (
	// EventTypePoolSet is emitted when a price slot is pointed at a pool.
	EventTypePoolSet = "oracle.pool.set"
	// EventTypeStaticSet is emitted when a static fallback rate changes.
	EventTypeStaticSet = "oracle.static.set"
)

// PoolSetEvent returns the structured event payload for a pool change.
func PoolSetEvent(slot types.PoolSlot, pool common.Address) *types.Event {
	return &types.Event{
		Type: EventTypePoolSet,
		Attributes: map[string]string{
			"slot": string(slot),
			"pool": pool.Hex(),
		},
	}
}

// StaticSetEvent returns the structured event payload for a static rate change.
func StaticSetEvent(slot types.PoolSlot, rate *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeStaticSet,
		Attributes: map[string]string{
			"slot": string(slot),
			"rate": rate.String(),
		},
	}
}
