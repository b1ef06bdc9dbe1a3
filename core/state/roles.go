package state

import (
	"github.com/ethereum/go-ethereum/common"
)

func roleMembersKey(scope string, role common.Hash) []byte {
	return key("roles", scope, "members", role.Hex())
}

func roleAdminKey(scope string, role common.Hash) []byte {
	return key("roles", scope, "admin", role.Hex())
}

func roleOwnerKey(scope string) []byte { return key("roles", scope, "owner") }

func moduleInitKey(scope string) []byte { return key("module", scope, "initialized") }

// RoleHas reports whether addr holds role within scope.
func (m *Manager) RoleHas(scope string, role common.Hash, addr common.Address) (bool, error) {
	members, err := m.RoleMembers(scope, role)
	if err != nil {
		return false, err
	}
	for _, member := range members {
		if member == addr {
			return true, nil
		}
	}
	return false, nil
}

// RoleMembers returns the holders of role within scope in grant order.
func (m *Manager) RoleMembers(scope string, role common.Hash) ([]common.Address, error) {
	var raw [][]byte
	if err := m.KVGetList(roleMembersKey(scope, role), &raw); err != nil {
		return nil, err
	}
	out := make([]common.Address, len(raw))
	for i, b := range raw {
		out[i] = common.BytesToAddress(b)
	}
	return out, nil
}

// RoleGrant adds addr to role within scope. Repeated grants are ignored.
func (m *Manager) RoleGrant(scope string, role common.Hash, addr common.Address) error {
	return m.KVAppend(roleMembersKey(scope, role), addr.Bytes())
}

// RoleRevoke removes addr from role within scope.
func (m *Manager) RoleRevoke(scope string, role common.Hash, addr common.Address) error {
	return m.KVRemove(roleMembersKey(scope, role), addr.Bytes())
}

// RoleAdmin returns the role administering role. Unset entries default to the
// zero hash.
func (m *Manager) RoleAdmin(scope string, role common.Hash) (common.Hash, error) {
	var admin common.Hash
	if _, err := m.KVGet(roleAdminKey(scope, role), &admin); err != nil {
		return common.Hash{}, err
	}
	return admin, nil
}

// RoleSetAdmin records the administering role for role.
func (m *Manager) RoleSetAdmin(scope string, role, admin common.Hash) error {
	if admin == (common.Hash{}) {
		return m.KVDelete(roleAdminKey(scope, role))
	}
	return m.KVPut(roleAdminKey(scope, role), admin)
}

// RoleOwner returns the owner of scope.
func (m *Manager) RoleOwner(scope string) (common.Address, bool, error) {
	return m.getAddress(roleOwnerKey(scope))
}

// RoleSetOwner records the owner of scope.
func (m *Manager) RoleSetOwner(scope string, owner common.Address) error {
	return m.KVPut(roleOwnerKey(scope), owner)
}

// ModuleInitialized reports whether the module behind scope ran its
// one-shot initialisation.
func (m *Manager) ModuleInitialized(scope string) (bool, error) {
	return m.getFlag(moduleInitKey(scope))
}

// SetModuleInitialized marks the module behind scope as initialised.
func (m *Manager) SetModuleInitialized(scope string) error {
	return m.putFlag(moduleInitKey(scope), true)
}
