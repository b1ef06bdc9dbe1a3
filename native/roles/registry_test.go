package roles

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	pageerrors "cryptopage/core/errors"
	"cryptopage/core/events"
	"cryptopage/core/types"
)

type roleKey struct {
	scope string
	role  common.Hash
}

type mockState struct {
	members map[roleKey][]common.Address
	admins  map[roleKey]common.Hash
	owners  map[string]common.Address
}

func newMockState() *mockState {
	return &mockState{
		members: make(map[roleKey][]common.Address),
		admins:  make(map[roleKey]common.Hash),
		owners:  make(map[string]common.Address),
	}
}

func (m *mockState) RoleHas(scope string, role common.Hash, addr common.Address) (bool, error) {
	for _, member := range m.members[roleKey{scope, role}] {
		if member == addr {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockState) RoleMembers(scope string, role common.Hash) ([]common.Address, error) {
	return append([]common.Address(nil), m.members[roleKey{scope, role}]...), nil
}

func (m *mockState) RoleGrant(scope string, role common.Hash, addr common.Address) error {
	k := roleKey{scope, role}
	m.members[k] = append(m.members[k], addr)
	return nil
}

func (m *mockState) RoleRevoke(scope string, role common.Hash, addr common.Address) error {
	k := roleKey{scope, role}
	filtered := m.members[k][:0]
	for _, member := range m.members[k] {
		if member != addr {
			filtered = append(filtered, member)
		}
	}
	m.members[k] = filtered
	return nil
}

func (m *mockState) RoleAdmin(scope string, role common.Hash) (common.Hash, error) {
	return m.admins[roleKey{scope, role}], nil
}

func (m *mockState) RoleSetAdmin(scope string, role, admin common.Hash) error {
	m.admins[roleKey{scope, role}] = admin
	return nil
}

func (m *mockState) RoleOwner(scope string) (common.Address, bool, error) {
	owner, ok := m.owners[scope]
	return owner, ok, nil
}

func (m *mockState) RoleSetOwner(scope string, owner common.Address) error {
	m.owners[scope] = owner
	return nil
}

var (
	deployer = common.HexToAddress("0x1000000000000000000000000000000000000001")
	alice    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	bob      = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

func newTestRegistry(t *testing.T) (*Registry, *events.Recorder) {
	t.Helper()
	reg := NewRegistry(types.ModuleToken)
	reg.SetState(newMockState())
	rec := &events.Recorder{}
	reg.SetEmitter(rec)
	if err := reg.InitOwner(deployer); err != nil {
		t.Fatalf("init owner: %v", err)
	}
	return reg, rec
}

func TestInitOwnerIsOneShot(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if reg.Owner() != deployer {
		t.Fatalf("unexpected owner %s", reg.Owner().Hex())
	}
	if !reg.HasRole(types.DefaultAdminRole, deployer) {
		t.Fatalf("owner must hold the default admin role")
	}
	if err := reg.InitOwner(alice); !errors.Is(err, pageerrors.ErrAlreadyInitialized) {
		t.Fatalf("expected AlreadyInitialized, got %v", err)
	}
}

func TestGrantRequiresAdmin(t *testing.T) {
	reg, rec := newTestRegistry(t)

	err := reg.GrantRole(alice, types.MinterRole, bob)
	if !errors.Is(err, pageerrors.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	want := "account " + alice.Hex() + " is missing role DEFAULT_ADMIN_ROLE"
	if pageerrors.ReasonOf(err) != want {
		t.Fatalf("unexpected reason %q", pageerrors.ReasonOf(err))
	}

	if err := reg.GrantRole(deployer, types.MinterRole, bob); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !reg.HasRole(types.MinterRole, bob) {
		t.Fatalf("expected bob to be a minter")
	}
	if err := reg.GrantRole(deployer, types.MinterRole, bob); err != nil {
		t.Fatalf("repeated grant must be a no-op: %v", err)
	}
	if got := rec.OfType(EventTypeRoleGranted); len(got) != 2 {
		t.Fatalf("expected admin and minter grant events, got %d", len(got))
	}
	if err := reg.GrantRole(deployer, types.MinterRole, common.Address{}); !errors.Is(err, pageerrors.ErrNullAddress) {
		t.Fatalf("expected NullAddress, got %v", err)
	}
}

func TestRevokeAndRenounce(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if err := reg.GrantRole(deployer, types.BurnerRole, alice); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := reg.RevokeRole(bob, types.BurnerRole, alice); !errors.Is(err, pageerrors.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	if err := reg.RevokeRole(deployer, types.BurnerRole, alice); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if reg.HasRole(types.BurnerRole, alice) {
		t.Fatalf("role must be revoked")
	}
	if err := reg.GrantRole(deployer, types.BurnerRole, bob); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := reg.RenounceRole(bob, types.BurnerRole); err != nil {
		t.Fatalf("renounce: %v", err)
	}
	members, err := reg.RoleMembers(types.BurnerRole)
	if err != nil || len(members) != 0 {
		t.Fatalf("expected no burners, got %v err=%v", members, err)
	}
}

func TestSetRoleAdminDelegatesGrants(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if err := reg.GrantRole(deployer, types.MinterRole, alice); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := reg.SetRoleAdmin(deployer, types.BurnerRole, types.MinterRole); err != nil {
		t.Fatalf("set role admin: %v", err)
	}
	if err := reg.GrantRole(alice, types.BurnerRole, bob); err != nil {
		t.Fatalf("minter should administer burners: %v", err)
	}
	if err := reg.GrantRole(deployer, types.BurnerRole, alice); !errors.Is(err, pageerrors.ErrUnauthorized) {
		t.Fatalf("default admin no longer administers burners, got %v", err)
	}
}

func TestTransferOwnership(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if err := reg.TransferOwnership(alice, bob); !errors.Is(err, pageerrors.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	if err := reg.TransferOwnership(deployer, common.Address{}); !errors.Is(err, pageerrors.ErrNullAddress) {
		t.Fatalf("expected NullAddress, got %v", err)
	}
	if err := reg.TransferOwnership(deployer, alice); err != nil {
		t.Fatalf("transfer ownership: %v", err)
	}
	if err := reg.RequireOwner(alice); err != nil {
		t.Fatalf("alice should own the scope: %v", err)
	}
}
