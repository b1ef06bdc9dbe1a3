package roles

import (
	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

const (
	// EventTypeRoleGranted is emitted when an account receives a role.
	EventTypeRoleGranted = "roles.granted"
	// EventTypeRoleRevoked is emitted when an account loses a role.
	EventTypeRoleRevoked = "roles.revoked"
	// EventTypeOwnershipTransferred is emitted when a component changes owner.
	EventTypeOwnershipTransferred = "roles.ownership"
)

// RoleGrantedEvent returns the structured event payload for a role grant.
func RoleGrantedEvent(scope string, role common.Hash, account, sender common.Address) *types.Event {
	return &types.Event{
		Type: EventTypeRoleGranted,
		Attributes: map[string]string{
			"scope":   scope,
			"role":    types.RoleName(role),
			"account": account.Hex(),
			"sender":  sender.Hex(),
		},
	}
}

// RoleRevokedEvent returns the structured event payload for a role removal.
func RoleRevokedEvent(scope string, role common.Hash, account, sender common.Address) *types.Event {
	return &types.Event{
		Type: EventTypeRoleRevoked,
		Attributes: map[string]string{
			"scope":   scope,
			"role":    types.RoleName(role),
			"account": account.Hex(),
			"sender":  sender.Hex(),
		},
	}
}

// OwnershipTransferredEvent returns the structured event payload for an owner change.
func OwnershipTransferredEvent(scope string, previous, next common.Address) *types.Event {
	return &types.Event{
		Type: EventTypeOwnershipTransferred,
		Attributes: map[string]string{
			"scope":    scope,
			"previous": previous.Hex(),
			"owner":    next.Hex(),
		},
	}
}
