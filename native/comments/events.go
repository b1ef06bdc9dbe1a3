package comments

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

const (
	// EventTypeCommentCreated is emitted for every appended comment.
	EventTypeCommentCreated = "comment.created"
	// EventTypeActivation is emitted when an item is opened or closed for comments.
	EventTypeActivation = "comment.activation"
	// EventTypeToggled is emitted when the global switch flips.
	EventTypeToggled = "comment.toggled"
)

// CommentCreatedEvent returns the structured event payload for a new comment.
func CommentCreatedEvent(c *types.Comment, caller common.Address) *types.Event {
	return &types.Event{
		Type: EventTypeCommentCreated,
		Attributes: map[string]string{
			"contentRef": c.ContentRef.Hex(),
			"itemId":     strconv.FormatUint(c.ItemID, 10),
			"commentId":  strconv.FormatUint(c.ID, 10),
			"author":     c.Author.Hex(),
			"caller":     caller.Hex(),
			"like":       strconv.FormatBool(c.Like),
		},
	}
}

// ActivationEvent returns the structured event payload for an activation change.
func ActivationEvent(ref common.Address, itemID uint64, active bool) *types.Event {
	return &types.Event{
		Type: EventTypeActivation,
		Attributes: map[string]string{
			"contentRef": ref.Hex(),
			"itemId":     strconv.FormatUint(itemID, 10),
			"active":     strconv.FormatBool(active),
		},
	}
}

// ToggledEvent returns the structured event payload for the global switch.
func ToggledEvent(active bool) *types.Event {
	return &types.Event{
		Type:       EventTypeToggled,
		Attributes: map[string]string{"active": strconv.FormatBool(active)},
	}
}
