package token

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/errors"
	"cryptopage/core/events"
	"cryptopage/core/types"
	"cryptopage/native/oracle"
	"cryptopage/native/roles"
)

const (
	Name     = "Crypto.Page"
	Symbol   = "PAGE"
	Decimals = 18
	Version  = "1"

	// DefaultRewardPerHourDivisor yields 0.1% of the staked amount per hour.
	DefaultRewardPerHourDivisor = 1000

	addrTreasury = "treasury"
	addrBank     = "bank"
)

// DefaultInitialSupply is minted to the treasury on initialisation.
var DefaultInitialSupply = new(big.Int).Mul(big.NewInt(50_000_000), oracle.One)

type engineState interface {
	TokenBalance(addr common.Address) (*big.Int, error)
	TokenSetBalance(addr common.Address, amount *big.Int) error
	TokenAllowance(owner, spender common.Address) (*big.Int, error)
	TokenSetAllowance(owner, spender common.Address, amount *big.Int) error
	TokenStakeCount(addr common.Address) (uint64, error)
	TokenStakeGet(addr common.Address, index uint64) (*types.StakeRecord, bool, error)
	TokenStakePut(addr common.Address, index uint64, record *types.StakeRecord) error
	TokenAddress(name string) (common.Address, bool, error)
	TokenSetAddress(name string, addr common.Address) error
	TokenSupply(symbol string) (*big.Int, error)
	AdjustTokenSupply(symbol string, delta *big.Int) (*big.Int, error)
	ModuleInitialized(scope string) (bool, error)
	SetModuleInitialized(scope string) error
}

// Engine is the PAGE reward token: balances, supply, allowances, role gated
// mint and burn, price pass-through and a staking ledger.
type Engine struct {
	state         engineState
	access        *roles.Registry
	oracle        *oracle.Adapter
	emitter       events.Emitter
	nowFn         func() int64
	initialSupply *big.Int
	rewardDivisor int64
}

// NewEngine constructs a token engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		access:        roles.NewRegistry(types.ModuleToken),
		oracle:        oracle.NewAdapter(),
		emitter:       events.NoopEmitter{},
		nowFn:         func() int64 { return time.Now().Unix() },
		initialSupply: new(big.Int).Set(DefaultInitialSupply),
		rewardDivisor: DefaultRewardPerHourDivisor,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAccess replaces the role registry guarding the token.
func (e *Engine) SetAccess(access *roles.Registry) {
	if access != nil {
		e.access = access
	}
}

// SetOracle replaces the price adapter.
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

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetInitialSupply overrides the amount minted to the treasury on
// initialisation.
func (e *Engine) SetInitialSupply(amount *big.Int) {
	if amount == nil || amount.Sign() < 0 {
		return
	}
	e.initialSupply = new(big.Int).Set(amount)
}

// SetRewardPerHourDivisor overrides the staking reward rate.
func (e *Engine) SetRewardPerHourDivisor(divisor int64) {
	if divisor > 0 {
		e.rewardDivisor = divisor
	}
}

// Access exposes the role registry of the token.
func (e *Engine) Access() *roles.Registry { return e.access }

// Oracle exposes the price adapter used by the token.
func (e *Engine) Oracle() *oracle.Adapter { return e.oracle }

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return fmt.Errorf("token: state not configured")
	}
	return nil
}

func (e *Engine) requireInitialized() error {
	if err := e.ready(); err != nil {
		return err
	}
	ok, err := e.state.ModuleInitialized(types.ModuleToken)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.KindNotInitialized, "token: not initialized")
	}
	return nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.New(errors.KindInvalidAmount, "amount must not be negative")
	}
	return nil
}

// Initialize makes caller the owner and admin, records the treasury and the
// bank, grants MINTER and BURNER to the bank and mints the initial supply to
// the treasury. The bank balance only ever holds fees, so when the treasury is
// the bank the initial supply goes to caller instead.
func (e *Engine) Initialize(caller, treasury, bank common.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	if ok, err := e.state.ModuleInitialized(types.ModuleToken); err != nil {
		return err
	} else if ok {
		return errors.New(errors.KindAlreadyInitialized, "token: already initialized")
	}
	if types.IsZeroAddress(treasury) {
		return errors.New(errors.KindNullAddress, "treasury can't be null")
	}
	if types.IsZeroAddress(bank) {
		return errors.New(errors.KindNullAddress, "bank can't be null")
	}
	if err := e.access.InitOwner(caller); err != nil {
		return err
	}
	for _, role := range []common.Hash{types.MinterRole, types.BurnerRole} {
		if err := e.access.GrantRole(caller, role, bank); err != nil {
			return err
		}
	}
	if err := e.state.TokenSetAddress(addrTreasury, treasury); err != nil {
		return err
	}
	if err := e.state.TokenSetAddress(addrBank, bank); err != nil {
		return err
	}
	if err := e.state.SetModuleInitialized(types.ModuleToken); err != nil {
		return err
	}
	if e.initialSupply.Sign() > 0 {
		return e.mint(SupplyHolder(caller, treasury, bank), e.initialSupply, events.SupplyReasonMint)
	}
	return nil
}

// SupplyHolder returns the account that receives the initial supply.
func SupplyHolder(caller, treasury, bank common.Address) common.Address {
	if treasury == bank {
		return caller
	}
	return treasury
}

// Treasury returns the treasury recorded at initialisation.
func (e *Engine) Treasury() common.Address {
	return e.address(addrTreasury)
}

// Bank returns the bank account recorded at initialisation.
func (e *Engine) Bank() common.Address {
	return e.address(addrBank)
}

func (e *Engine) address(name string) common.Address {
	if e.ready() != nil {
		return common.Address{}
	}
	addr, _, err := e.state.TokenAddress(name)
	if err != nil {
		return common.Address{}
	}
	return addr
}

func (e *Engine) Name() string    { return Name }
func (e *Engine) Symbol() string  { return Symbol }
func (e *Engine) Decimals() uint8 { return Decimals }
func (e *Engine) Version() string { return Version }

// BalanceOf returns the balance of addr.
func (e *Engine) BalanceOf(addr common.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.state.TokenBalance(addr)
}

// TotalSupply returns the amount of PAGE in circulation.
func (e *Engine) TotalSupply() (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.state.TokenSupply(Symbol)
}

// IsEnoughOn reports whether addr holds at least amount.
func (e *Engine) IsEnoughOn(addr common.Address, amount *big.Int) (bool, error) {
	if err := checkAmount(amount); err != nil {
		return false, err
	}
	balance, err := e.BalanceOf(addr)
	if err != nil {
		return false, err
	}
	return balance.Cmp(amount) >= 0, nil
}

// Mint credits amount to to. The caller must hold MINTER_ROLE.
func (e *Engine) Mint(caller, to common.Address, amount *big.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.access.RequireRole(types.MinterRole, caller); err != nil {
		return err
	}
	if types.IsZeroAddress(to) {
		return errors.New(errors.KindNullAddress, "recipient can't be null")
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	return e.mint(to, amount, events.SupplyReasonMint)
}

// Burn debits amount from from. The caller must hold BURNER_ROLE.
func (e *Engine) Burn(caller, from common.Address, amount *big.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.access.RequireRole(types.BurnerRole, caller); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	return e.burn(from, amount, events.SupplyReasonBurn, "burn amount exceeds balance")
}

// Transfer moves amount from caller to to.
func (e *Engine) Transfer(caller, to common.Address, amount *big.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	return e.transfer(caller, to, amount)
}

// Approve sets the amount spender may move out of caller's balance.
func (e *Engine) Approve(caller, spender common.Address, amount *big.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if types.IsZeroAddress(caller) {
		return errors.New(errors.KindNullAddress, "owner can't be null")
	}
	if types.IsZeroAddress(spender) {
		return errors.New(errors.KindNullAddress, "spender can't be null")
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := e.state.TokenSetAllowance(caller, spender, amount); err != nil {
		return err
	}
	e.emit(events.Approval{Token: Symbol, Owner: caller, Spender: spender, Amount: new(big.Int).Set(amount)})
	return nil
}

// Allowance returns the amount spender may move out of owner's balance.
func (e *Engine) Allowance(owner, spender common.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.state.TokenAllowance(owner, spender)
}

// TransferFrom moves amount from from to to using caller's allowance.
func (e *Engine) TransferFrom(caller, from, to common.Address, amount *big.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	allowance, err := e.state.TokenAllowance(from, caller)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return errors.New(errors.KindInsufficientBalance, "insufficient allowance")
	}
	if err := e.transfer(from, to, amount); err != nil {
		return err
	}
	return e.state.TokenSetAllowance(from, caller, new(big.Int).Sub(allowance, amount))
}

func (e *Engine) transfer(from, to common.Address, amount *big.Int) error {
	if types.IsZeroAddress(from) {
		return errors.New(errors.KindNullAddress, "sender can't be null")
	}
	if types.IsZeroAddress(to) {
		return errors.New(errors.KindNullAddress, "recipient can't be null")
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	fromBalance, err := e.state.TokenBalance(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return errors.New(errors.KindInsufficientBalance, "transfer amount exceeds balance")
	}
	if err := e.state.TokenSetBalance(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	toBalance, err := e.state.TokenBalance(to)
	if err != nil {
		return err
	}
	if err := e.state.TokenSetBalance(to, new(big.Int).Add(toBalance, amount)); err != nil {
		return err
	}
	e.emit(events.Transfer{Token: Symbol, From: from, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

func (e *Engine) mint(to common.Address, amount *big.Int, reason string) error {
	if amount.Sign() == 0 {
		return nil
	}
	balance, err := e.state.TokenBalance(to)
	if err != nil {
		return err
	}
	if err := e.state.TokenSetBalance(to, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	total, err := e.state.AdjustTokenSupply(Symbol, amount)
	if err != nil {
		return err
	}
	e.emit(events.Transfer{Token: Symbol, To: to, Amount: new(big.Int).Set(amount)})
	e.emit(events.TokenSupply{Token: Symbol, Total: total, Delta: new(big.Int).Set(amount), Reason: reason})
	return nil
}

func (e *Engine) burn(from common.Address, amount *big.Int, reason, shortfall string) error {
	balance, err := e.state.TokenBalance(from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return errors.New(errors.KindInsufficientBalance, shortfall)
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := e.state.TokenSetBalance(from, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	delta := new(big.Int).Neg(amount)
	total, err := e.state.AdjustTokenSupply(Symbol, delta)
	if err != nil {
		return err
	}
	e.emit(events.Transfer{Token: Symbol, From: from, Amount: new(big.Int).Set(amount)})
	e.emit(events.TokenSupply{Token: Symbol, Total: total, Delta: delta, Reason: reason})
	return nil
}

// SetWETHUSDTPool points the WETH/USDT price slot at pool. Owner only.
func (e *Engine) SetWETHUSDTPool(caller, pool common.Address) error {
	return e.setPool(caller, types.SlotWETHUSDT, pool)
}

// SetUSDTPAGEPool points the USDT/PAGE price slot at pool. Owner only.
func (e *Engine) SetUSDTPAGEPool(caller, pool common.Address) error {
	return e.setPool(caller, types.SlotUSDTPAGE, pool)
}

func (e *Engine) setPool(caller common.Address, slot types.PoolSlot, pool common.Address) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.access.RequireOwner(caller); err != nil {
		return err
	}
	return e.oracle.SetPool(slot, pool)
}

// GetWETHUSDTPrice returns the WETH/USDT rate, 0 when unknown.
func (e *Engine) GetWETHUSDTPrice() *big.Int { return e.oracle.Rate(types.SlotWETHUSDT) }

// GetUSDTPAGEPrice returns the USDT/PAGE rate, 0 when unknown.
func (e *Engine) GetUSDTPAGEPrice() *big.Int { return e.oracle.Rate(types.SlotUSDTPAGE) }

// GetPrice returns PAGE per WETH, 0 when either leg is unknown.
func (e *Engine) GetPrice() *big.Int { return e.oracle.Price() }

// Convert values a WETH amount in PAGE at the current price.
func (e *Engine) Convert(value *big.Int) *big.Int { return e.oracle.Convert(value) }
