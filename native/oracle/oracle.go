package oracle

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"cryptopage/core/events"
	"cryptopage/core/types"
)

// PoolSource reads the current square-root price of a concentrated liquidity
// pool in Q64.96 fixed point. Unknown pools report nil or zero.
type PoolSource interface {
	SqrtPriceX96(pool common.Address) *uint256.Int
}

type engineState interface {
	OraclePool(slot types.PoolSlot) (common.Address, bool, error)
	OracleSetPool(slot types.PoolSlot, pool common.Address) error
	OracleStatic(slot types.PoolSlot) (*big.Int, error)
	OracleSetStatic(slot types.PoolSlot, rate *big.Int) error
}

var (
	// One is 10^18, the fixed-point unit of every rate.
	One = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	oneU256     = uint256.MustFromBig(One)
	q192        = new(uint256.Int).Lsh(uint256.NewInt(1), 192)
	maxSqrtBits = 160
)

// Adapter converts pool prices into linear 18-decimal rates. Reads never fail:
// missing or broken inputs fall back to the slot's static rate and then to 0.
type Adapter struct {
	state   engineState
	pools   PoolSource
	emitter events.Emitter
}

// NewAdapter constructs an adapter with no pool source attached.
func NewAdapter() *Adapter {
	return &Adapter{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the adapter.
func (a *Adapter) SetState(state engineState) { a.state = state }

// SetPoolSource configures where pool prices are read from.
func (a *Adapter) SetPoolSource(pools PoolSource) { a.pools = pools }

// SetEmitter configures the event emitter used by the adapter.
func (a *Adapter) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		a.emitter = events.NoopEmitter{}
		return
	}
	a.emitter = emitter
}

func (a *Adapter) emit(evt *types.Event) {
	if a == nil || evt == nil || a.emitter == nil {
		return
	}
	a.emitter.Emit(events.Wrap(evt))
}

func validSlot(slot types.PoolSlot) error {
	switch slot {
	case types.SlotWETHUSDT, types.SlotUSDTPAGE:
		return nil
	default:
		return fmt.Errorf("oracle: unknown pool slot %q", slot)
	}
}

// SetPool records the pool backing slot. The zero address unsets it. Callers
// are responsible for authorisation.
func (a *Adapter) SetPool(slot types.PoolSlot, pool common.Address) error {
	if a == nil || a.state == nil {
		return fmt.Errorf("oracle: state not configured")
	}
	if err := validSlot(slot); err != nil {
		return err
	}
	if err := a.state.OracleSetPool(slot, pool); err != nil {
		return err
	}
	a.emit(PoolSetEvent(slot, pool))
	return nil
}

// Pool returns the pool backing slot, the zero address when unset.
func (a *Adapter) Pool(slot types.PoolSlot) common.Address {
	if a == nil || a.state == nil {
		return common.Address{}
	}
	pool, _, err := a.state.OraclePool(slot)
	if err != nil {
		return common.Address{}
	}
	return pool
}

// SetStatic records the fallback rate for slot. Zero clears it.
func (a *Adapter) SetStatic(slot types.PoolSlot, rate *big.Int) error {
	if a == nil || a.state == nil {
		return fmt.Errorf("oracle: state not configured")
	}
	if err := validSlot(slot); err != nil {
		return err
	}
	if rate == nil {
		rate = big.NewInt(0)
	}
	if rate.Sign() < 0 {
		return fmt.Errorf("oracle: static rate must not be negative")
	}
	if err := a.state.OracleSetStatic(slot, rate); err != nil {
		return err
	}
	a.emit(StaticSetEvent(slot, rate))
	return nil
}

// Static returns the fallback rate for slot, 0 when unset.
func (a *Adapter) Static(slot types.PoolSlot) *big.Int {
	if a == nil || a.state == nil {
		return big.NewInt(0)
	}
	rate, err := a.state.OracleStatic(slot)
	if err != nil || rate == nil {
		return big.NewInt(0)
	}
	return rate
}

// Rate returns the 18-decimal price of slot read from its pool, else the
// static fallback, else 0.
func (a *Adapter) Rate(slot types.PoolSlot) *big.Int {
	if pool := a.Pool(slot); pool != (common.Address{}) && a.pools != nil {
		if rate := RateFromSqrtPriceX96(a.pools.SqrtPriceX96(pool)); rate.Sign() > 0 {
			return rate
		}
	}
	return a.Static(slot)
}

// Price returns reward tokens per WETH in 18-decimal fixed point, 0 when
// either leg is unknown.
func (a *Adapter) Price() *big.Int {
	wethUSDT := a.Rate(types.SlotWETHUSDT)
	usdtPAGE := a.Rate(types.SlotUSDTPAGE)
	if wethUSDT.Sign() <= 0 || usdtPAGE.Sign() <= 0 {
		return big.NewInt(0)
	}
	price := new(big.Int).Mul(wethUSDT, usdtPAGE)
	return price.Quo(price, One)
}

// Convert values a WETH-denominated amount in reward tokens.
func (a *Adapter) Convert(value *big.Int) *big.Int {
	if value == nil || value.Sign() <= 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(value, a.Price())
	return out.Quo(out, One)
}

// RateFromSqrtPriceX96 computes sqrtP^2 * 10^18 / 2^192 with a 512-bit
// intermediate. Values wider than 160 bits are not valid pool prices and
// yield 0.
func RateFromSqrtPriceX96(sqrtPriceX96 *uint256.Int) *big.Int {
	if sqrtPriceX96 == nil || sqrtPriceX96.IsZero() || sqrtPriceX96.BitLen() > maxSqrtBits {
		return big.NewInt(0)
	}
	scaled := new(uint256.Int).Mul(sqrtPriceX96, oneU256)
	rate, overflow := new(uint256.Int).MulDivOverflow(sqrtPriceX96, scaled, q192)
	if overflow {
		return big.NewInt(0)
	}
	return rate.ToBig()
}

// MemoryPools is an in-memory PoolSource.
type MemoryPools struct {
	mu     sync.RWMutex
	prices map[common.Address]*uint256.Int
}

// NewMemoryPools returns an empty pool source.
func NewMemoryPools() *MemoryPools {
	return &MemoryPools{prices: make(map[common.Address]*uint256.Int)}
}

// Set records the square-root price of pool.
func (m *MemoryPools) Set(pool common.Address, sqrtPriceX96 *uint256.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sqrtPriceX96 == nil {
		delete(m.prices, pool)
		return
	}
	m.prices[pool] = new(uint256.Int).Set(sqrtPriceX96)
}

// SetRate records a pool whose linear price equals rate (18 decimals),
// rounding the square root down.
func (m *MemoryPools) SetRate(pool common.Address, rate *big.Int) {
	if rate == nil || rate.Sign() <= 0 {
		m.Set(pool, nil)
		return
	}
	// sqrtP = sqrt(rate * 2^192 / 10^18)
	scaled := new(big.Int).Lsh(rate, 192)
	scaled.Quo(scaled, One)
	sqrt, overflow := uint256.FromBig(scaled.Sqrt(scaled))
	if overflow {
		return
	}
	m.Set(pool, sqrt)
}

// SqrtPriceX96 implements PoolSource.
func (m *MemoryPools) SqrtPriceX96(pool common.Address) *uint256.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	price, ok := m.prices[pool]
	if !ok {
		return nil
	}
	return new(uint256.Int).Set(price)
}
