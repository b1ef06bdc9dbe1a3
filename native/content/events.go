package content

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

const (
	// EventTypeMinted is emitted when an item is minted.
	EventTypeMinted = "nft.minted"
	// EventTypeBurned is emitted when an item is burned.
	EventTypeBurned = "nft.burned"
	// EventTypeTransferred is emitted when an item changes owner.
	EventTypeTransferred = "nft.transferred"
	// EventTypeApproval is emitted when an item approval changes.
	EventTypeApproval = "nft.approval"
	// EventTypeFeePolicy is emitted when fee rates or the treasury change.
	EventTypeFeePolicy = "nft.fees.updated"
)

// MintedEvent returns the structured event payload for a mint.
func MintedEvent(item *types.ContentItem, reward, fee *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeMinted,
		Attributes: map[string]string{
			"id":         strconv.FormatUint(item.ID, 10),
			"owner":      item.Owner.Hex(),
			"creator":    item.Creator.Hex(),
			"uri":        item.URI,
			"collection": item.Collection,
			"reward":     reward.String(),
			"fee":        fee.String(),
		},
	}
}

// BurnedEvent returns the structured event payload for a burn.
func BurnedEvent(item *types.ContentItem, fee *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeBurned,
		Attributes: map[string]string{
			"id":    strconv.FormatUint(item.ID, 10),
			"owner": item.Owner.Hex(),
			"fee":   fee.String(),
		},
	}
}

// TransferredEvent returns the structured event payload for an ownership change.
func TransferredEvent(id uint64, from, to common.Address) *types.Event {
	return &types.Event{
		Type: EventTypeTransferred,
		Attributes: map[string]string{
			"id":   strconv.FormatUint(id, 10),
			"from": from.Hex(),
			"to":   to.Hex(),
		},
	}
}

// ApprovalEvent returns the structured event payload for an approval.
func ApprovalEvent(id uint64, owner, approved common.Address) *types.Event {
	return &types.Event{
		Type: EventTypeApproval,
		Attributes: map[string]string{
			"id":       strconv.FormatUint(id, 10),
			"owner":    owner.Hex(),
			"approved": approved.Hex(),
		},
	}
}

// FeePolicyEvent returns the structured event payload for a fee policy change.
func FeePolicyEvent(policy *types.FeePolicy) *types.Event {
	return &types.Event{
		Type: EventTypeFeePolicy,
		Attributes: map[string]string{
			"mintFeeBps":    strconv.FormatUint(uint64(policy.MintFeeBps), 10),
			"burnFeeBps":    strconv.FormatUint(uint64(policy.BurnFeeBps), 10),
			"commentFeeBps": strconv.FormatUint(uint64(policy.CommentFeeBps), 10),
			"treasury":      policy.Treasury.Hex(),
		},
	}
}
