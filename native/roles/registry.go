package roles

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/errors"
	"cryptopage/core/events"
	"cryptopage/core/types"
)

type engineState interface {
	RoleHas(scope string, role common.Hash, addr common.Address) (bool, error)
	RoleMembers(scope string, role common.Hash) ([]common.Address, error)
	RoleGrant(scope string, role common.Hash, addr common.Address) error
	RoleRevoke(scope string, role common.Hash, addr common.Address) error
	RoleAdmin(scope string, role common.Hash) (common.Hash, error)
	RoleSetAdmin(scope string, role, admin common.Hash) error
	RoleOwner(scope string) (common.Address, bool, error)
	RoleSetOwner(scope string, owner common.Address) error
}

// Registry tracks the owner and the role holders of a single component. Each
// component gets its own scope so a minter of the token is not implicitly a
// minter anywhere else.
type Registry struct {
	scope   string
	state   engineState
	emitter events.Emitter
}

// NewRegistry constructs a registry bound to scope.
func NewRegistry(scope string) *Registry {
	return &Registry{scope: scope, emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the registry.
func (r *Registry) SetState(state engineState) { r.state = state }

// SetEmitter configures the event emitter used by the registry.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// Scope returns the component the registry guards.
func (r *Registry) Scope() string { return r.scope }

func (r *Registry) emit(evt *types.Event) {
	if r == nil || evt == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(events.Wrap(evt))
}

func (r *Registry) ready() error {
	if r == nil || r.state == nil {
		return fmt.Errorf("roles: state not configured")
	}
	return nil
}

// InitOwner records the first owner and grants it the default admin role. It
// can only run once per scope.
func (r *Registry) InitOwner(owner common.Address) error {
	if err := r.ready(); err != nil {
		return err
	}
	if types.IsZeroAddress(owner) {
		return errors.New(errors.KindNullAddress, "owner can't be null")
	}
	if _, ok, err := r.state.RoleOwner(r.scope); err != nil {
		return err
	} else if ok {
		return errors.New(errors.KindAlreadyInitialized, r.scope+": owner already set")
	}
	if err := r.state.RoleSetOwner(r.scope, owner); err != nil {
		return err
	}
	r.emit(OwnershipTransferredEvent(r.scope, common.Address{}, owner))
	return r.grant(types.DefaultAdminRole, owner, owner)
}

// Owner returns the current owner. The zero address is returned before
// InitOwner.
func (r *Registry) Owner() common.Address {
	if r.ready() != nil {
		return common.Address{}
	}
	owner, _, err := r.state.RoleOwner(r.scope)
	if err != nil {
		return common.Address{}
	}
	return owner
}

// RequireOwner fails with Unauthorized unless caller is the owner.
func (r *Registry) RequireOwner(caller common.Address) error {
	if err := r.ready(); err != nil {
		return err
	}
	owner, ok, err := r.state.RoleOwner(r.scope)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.KindNotInitialized, r.scope+": owner not set")
	}
	if owner != caller {
		return errors.New(errors.KindUnauthorized, "caller is not the owner")
	}
	return nil
}

// TransferOwnership hands the scope to newOwner.
func (r *Registry) TransferOwnership(caller, newOwner common.Address) error {
	if err := r.RequireOwner(caller); err != nil {
		return err
	}
	if types.IsZeroAddress(newOwner) {
		return errors.New(errors.KindNullAddress, "new owner is the zero address")
	}
	if err := r.state.RoleSetOwner(r.scope, newOwner); err != nil {
		return err
	}
	r.emit(OwnershipTransferredEvent(r.scope, caller, newOwner))
	return nil
}

// HasRole reports whether account holds role. Read failures report false.
func (r *Registry) HasRole(role common.Hash, account common.Address) bool {
	if r.ready() != nil {
		return false
	}
	ok, err := r.state.RoleHas(r.scope, role, account)
	return err == nil && ok
}

// RoleMembers lists the holders of role in grant order.
func (r *Registry) RoleMembers(role common.Hash) ([]common.Address, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.state.RoleMembers(r.scope, role)
}

// AdminOf returns the role whose holders may grant and revoke role.
func (r *Registry) AdminOf(role common.Hash) (common.Hash, error) {
	if err := r.ready(); err != nil {
		return common.Hash{}, err
	}
	return r.state.RoleAdmin(r.scope, role)
}

// RequireRole fails with Unauthorized unless account holds role.
func (r *Registry) RequireRole(role common.Hash, account common.Address) error {
	if err := r.ready(); err != nil {
		return err
	}
	if !r.HasRole(role, account) {
		return errors.Newf(errors.KindUnauthorized, "account %s is missing role %s", account.Hex(), types.RoleName(role))
	}
	return nil
}

func (r *Registry) requireAdmin(caller common.Address, role common.Hash) error {
	admin, err := r.AdminOf(role)
	if err != nil {
		return err
	}
	return r.RequireRole(admin, caller)
}

// GrantRole gives role to account. The caller must hold the admin role of
// role. Granting a held role is a no-op.
func (r *Registry) GrantRole(caller common.Address, role common.Hash, account common.Address) error {
	if err := r.requireAdmin(caller, role); err != nil {
		return err
	}
	if types.IsZeroAddress(account) {
		return errors.New(errors.KindNullAddress, "account can't be null")
	}
	return r.grant(role, account, caller)
}

func (r *Registry) grant(role common.Hash, account, sender common.Address) error {
	if r.HasRole(role, account) {
		return nil
	}
	if err := r.state.RoleGrant(r.scope, role, account); err != nil {
		return err
	}
	r.emit(RoleGrantedEvent(r.scope, role, account, sender))
	return nil
}

// RevokeRole removes role from account. The caller must hold the admin role
// of role.
func (r *Registry) RevokeRole(caller common.Address, role common.Hash, account common.Address) error {
	if err := r.requireAdmin(caller, role); err != nil {
		return err
	}
	if types.IsZeroAddress(account) {
		return errors.New(errors.KindNullAddress, "account can't be null")
	}
	return r.revoke(role, account, caller)
}

// RenounceRole drops role from the caller.
func (r *Registry) RenounceRole(caller common.Address, role common.Hash) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.revoke(role, caller, caller)
}

func (r *Registry) revoke(role common.Hash, account, sender common.Address) error {
	if !r.HasRole(role, account) {
		return nil
	}
	if err := r.state.RoleRevoke(r.scope, role, account); err != nil {
		return err
	}
	r.emit(RoleRevokedEvent(r.scope, role, account, sender))
	return nil
}

// SetRoleAdmin changes the role administering role. The caller must hold the
// current admin role.
func (r *Registry) SetRoleAdmin(caller common.Address, role, admin common.Hash) error {
	if err := r.requireAdmin(caller, role); err != nil {
		return err
	}
	return r.state.RoleSetAdmin(r.scope, role, admin)
}
