package bank

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/errors"
	"cryptopage/core/events"
	"cryptopage/core/types"
	"cryptopage/native/fees"
	"cryptopage/native/oracle"
	"cryptopage/native/roles"
)

type engineState interface {
	BankToken() (common.Address, bool, error)
	BankSetToken(ref common.Address) error
	BankFeeTotal(domain string) (*big.Int, error)
	BankSetFeeTotal(domain string, total *big.Int) error
	ModuleInitialized(scope string) (bool, error)
	SetModuleInitialized(scope string) error
}

// Token is the reward token the bank holds fees in.
type Token interface {
	BalanceOf(addr common.Address) (*big.Int, error)
	Mint(caller, to common.Address, amount *big.Int) error
	Transfer(caller, to common.Address, amount *big.Int) error
	Access() *roles.Registry
}

// Engine is the fee treasury. Its balance is the reward token balance of the
// bank module account.
type Engine struct {
	state   engineState
	access  *roles.Registry
	token   Token
	oracle  *oracle.Adapter
	emitter events.Emitter
	address common.Address
}

// NewEngine constructs a bank engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		access:  roles.NewRegistry(types.ModuleBank),
		oracle:  oracle.NewAdapter(),
		emitter: events.NoopEmitter{},
		address: types.ModuleAddress(types.ModuleBank),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAccess replaces the role registry guarding the bank.
func (e *Engine) SetAccess(access *roles.Registry) {
	if access != nil {
		e.access = access
	}
}

// SetTokenEngine attaches the reward token implementation. Whether the bank
// may use it is governed by SetToken.
func (e *Engine) SetTokenEngine(token Token) { e.token = token }

// SetOracle replaces the price adapter whose static rates the bank manages.
func (e *Engine) SetOracle(adapter *oracle.Adapter) {
	if adapter != nil {
		e.oracle = adapter
	}
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// Access exposes the role registry of the bank.
func (e *Engine) Access() *roles.Registry { return e.access }

// Address returns the account holding the bank balance.
func (e *Engine) Address() common.Address { return e.address }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(events.Wrap(evt))
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return fmt.Errorf("bank: state not configured")
	}
	return nil
}

func (e *Engine) requireInitialized() error {
	if err := e.ready(); err != nil {
		return err
	}
	ok, err := e.state.ModuleInitialized(types.ModuleBank)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.KindNotInitialized, "bank: not initialized")
	}
	return nil
}

func (e *Engine) requireOwner(caller common.Address) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	return e.access.RequireOwner(caller)
}

func (e *Engine) linkedToken() (Token, error) {
	ref, ok, err := e.state.BankToken()
	if err != nil {
		return nil, err
	}
	if !ok || types.IsZeroAddress(ref) || e.token == nil {
		return nil, errors.New(errors.KindNotInitialized, "bank: token not set")
	}
	return e.token, nil
}

// Initialize makes caller the owner of the bank.
func (e *Engine) Initialize(caller common.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	if ok, err := e.state.ModuleInitialized(types.ModuleBank); err != nil {
		return err
	} else if ok {
		return errors.New(errors.KindAlreadyInitialized, "bank: already initialized")
	}
	if err := e.access.InitOwner(caller); err != nil {
		return err
	}
	return e.state.SetModuleInitialized(types.ModuleBank)
}

// SetToken links the bank to the reward token at ref. Owner only.
func (e *Engine) SetToken(caller, ref common.Address) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if types.IsZeroAddress(ref) {
		return errors.New(errors.KindNullAddress, "token can't be null")
	}
	if err := e.state.BankSetToken(ref); err != nil {
		return err
	}
	e.emit(TokenSetEvent(ref))
	return nil
}

// Token returns the linked reward token reference.
func (e *Engine) Token() common.Address {
	if e.ready() != nil {
		return common.Address{}
	}
	ref, _, err := e.state.BankToken()
	if err != nil {
		return common.Address{}
	}
	return ref
}

// Balance returns the withdrawable fee balance. An unlinked bank holds
// nothing.
func (e *Engine) Balance() (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	token, err := e.linkedToken()
	if errors.KindOf(err) == errors.KindNotInitialized {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	return token.BalanceOf(e.address)
}

// BalanceOf is an alias of Balance.
func (e *Engine) BalanceOf() (*big.Int, error) { return e.Balance() }

// Collect mints a fee for domain into the bank. The caller must be a minter
// of the linked token.
func (e *Engine) Collect(caller common.Address, domain string, amount *big.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	token, err := e.linkedToken()
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return errors.New(errors.KindInvalidAmount, "amount must not be negative")
	}
	if err := token.Access().RequireRole(types.MinterRole, caller); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := token.Mint(e.address, e.address, amount); err != nil {
		return err
	}
	domain = fees.NormalizeDomain(domain)
	current, err := e.state.BankFeeTotal(domain)
	if err != nil {
		return err
	}
	totals := fees.Totals{Domain: domain, Fee: current}
	if err := totals.Add(amount); err != nil {
		return err
	}
	if err := e.state.BankSetFeeTotal(domain, totals.Fee); err != nil {
		return err
	}
	e.emit(FeeCollectedEvent(domain, caller, amount))
	return nil
}

// FeeTotals returns the fees collected for domain.
func (e *Engine) FeeTotals(domain string) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.state.BankFeeTotal(fees.NormalizeDomain(domain))
}

// Withdraw sends amount of the bank balance to the owner. Owner only.
func (e *Engine) Withdraw(caller common.Address, amount *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return errors.New(errors.KindInvalidAmount, "amount must not be negative")
	}
	token, err := e.linkedToken()
	if err != nil {
		return err
	}
	balance, err := token.BalanceOf(e.address)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return errors.New(errors.KindInsufficientBalance, "not enough balance")
	}
	if err := token.Transfer(e.address, caller, amount); err != nil {
		return err
	}
	e.emit(WithdrawnEvent(caller, amount))
	return nil
}

// SetStaticUSDTPAGEPrice sets the USDT/PAGE fallback rate. Owner only.
func (e *Engine) SetStaticUSDTPAGEPrice(caller common.Address, rate *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.oracle.SetStatic(types.SlotUSDTPAGE, rate)
}

// SetStaticWETHUSDTPrice sets the WETH/USDT fallback rate. Owner only.
func (e *Engine) SetStaticWETHUSDTPrice(caller common.Address, rate *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.oracle.SetStatic(types.SlotWETHUSDT, rate)
}

func (e *Engine) StaticUSDTPAGEPrice() *big.Int { return e.oracle.Static(types.SlotUSDTPAGE) }
func (e *Engine) StaticWETHUSDTPrice() *big.Int { return e.oracle.Static(types.SlotWETHUSDT) }
func (e *Engine) GetUSDTPAGEPrice() *big.Int    { return e.oracle.Rate(types.SlotUSDTPAGE) }
func (e *Engine) GetWETHUSDTPrice() *big.Int    { return e.oracle.Rate(types.SlotWETHUSDT) }
