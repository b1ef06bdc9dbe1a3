package token

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

const (
	// EventTypeStaked is emitted when an account opens a staking position.
	EventTypeStaked = "token.staked"
	// EventTypeUnstaked is emitted when an account withdraws from a position.
	EventTypeUnstaked = "token.unstaked"
)

// StakedEvent returns the structured event payload for a new position.
func StakedEvent(account common.Address, index uint64, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeStaked,
		Attributes: map[string]string{
			"account": account.Hex(),
			"index":   strconv.FormatUint(index, 10),
			"amount":  amount.String(),
		},
	}
}

// UnstakedEvent returns the structured event payload for a withdrawal.
func UnstakedEvent(account common.Address, index uint64, amount, reward *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeUnstaked,
		Attributes: map[string]string{
			"account": account.Hex(),
			"index":   strconv.FormatUint(index, 10),
			"amount":  amount.String(),
			"reward":  reward.String(),
		},
	}
}
