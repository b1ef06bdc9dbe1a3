package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/errors"
	"cryptopage/core/events"
	"cryptopage/core/types"
)

// Position is a staking record as reported by HasStake.
type Position struct {
	Index  uint64
	Amount *big.Int
	Since  uint64
	Reward *big.Int
}

// StakeSummary aggregates the open positions of an account.
type StakeSummary struct {
	Staked    bool
	Total     *big.Int
	Rewards   *big.Int
	Positions []Position
}

// Reward returns the staking reward accrued by amount over elapsed seconds.
// It never decreases as elapsed grows.
func Reward(amount *big.Int, elapsed int64, divisor int64) *big.Int {
	if amount == nil || amount.Sign() <= 0 || elapsed <= 0 || divisor <= 0 {
		return big.NewInt(0)
	}
	reward := new(big.Int).Mul(amount, big.NewInt(elapsed))
	reward.Quo(reward, big.NewInt(3600))
	return reward.Quo(reward, big.NewInt(divisor))
}

func (e *Engine) elapsedSince(since uint64) int64 {
	now := e.now()
	if now <= int64(since) {
		return 0
	}
	return now - int64(since)
}

// Stake locks amount of caller's balance in a new position and returns its
// index. Staked tokens leave the circulating supply until withdrawn.
func (e *Engine) Stake(caller common.Address, amount *big.Int) (uint64, error) {
	if err := e.requireInitialized(); err != nil {
		return 0, err
	}
	if err := checkAmount(amount); err != nil {
		return 0, err
	}
	if amount.Sign() == 0 {
		return 0, errors.New(errors.KindZeroAmount, "cannot stake nothing")
	}
	if err := e.burn(caller, amount, events.SupplyReasonStake, "cannot stake more than you own"); err != nil {
		return 0, err
	}
	index, err := e.state.TokenStakeCount(caller)
	if err != nil {
		return 0, err
	}
	now := e.now()
	if now < 0 {
		now = 0
	}
	record := &types.StakeRecord{Amount: new(big.Int).Set(amount), Since: uint64(now)}
	if err := e.state.TokenStakePut(caller, index, record); err != nil {
		return 0, err
	}
	e.emit(events.Wrap(StakedEvent(caller, index, amount)))
	return index, nil
}

// WithdrawStake releases amount from the position at index, minting the
// principal plus the accrued reward back to caller. The reward is returned.
func (e *Engine) WithdrawStake(caller common.Address, amount *big.Int, index uint64) (*big.Int, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	record, ok, err := e.state.TokenStakeGet(caller, index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Newf(errors.KindNotFound, "no stake with index %d", index)
	}
	if amount.Sign() == 0 {
		return nil, errors.New(errors.KindZeroAmount, "cannot withdraw nothing")
	}
	if record.Amount.Cmp(amount) < 0 {
		return nil, errors.New(errors.KindExceedsStaked, "cannot withdraw more than you have staked")
	}
	reward := Reward(amount, e.elapsedSince(record.Since), e.rewardDivisor)
	record.Amount = new(big.Int).Sub(record.Amount, amount)
	if err := e.state.TokenStakePut(caller, index, record); err != nil {
		return nil, err
	}
	payout := new(big.Int).Add(amount, reward)
	if err := e.mint(caller, payout, events.SupplyReasonUnstake); err != nil {
		return nil, err
	}
	e.emit(events.Wrap(UnstakedEvent(caller, index, amount, reward)))
	return reward, nil
}

// HasStake summarises the open positions of account with rewards accrued up
// to now.
func (e *Engine) HasStake(account common.Address) (*StakeSummary, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	count, err := e.state.TokenStakeCount(account)
	if err != nil {
		return nil, err
	}
	summary := &StakeSummary{Total: big.NewInt(0), Rewards: big.NewInt(0)}
	for i := uint64(0); i < count; i++ {
		record, ok, err := e.state.TokenStakeGet(account, i)
		if err != nil {
			return nil, err
		}
		if !ok || record.Amount.Sign() == 0 {
			continue
		}
		reward := Reward(record.Amount, e.elapsedSince(record.Since), e.rewardDivisor)
		summary.Positions = append(summary.Positions, Position{
			Index:  i,
			Amount: new(big.Int).Set(record.Amount),
			Since:  record.Since,
			Reward: reward,
		})
		summary.Total.Add(summary.Total, record.Amount)
		summary.Rewards.Add(summary.Rewards, reward)
	}
	summary.Staked = summary.Total.Sign() > 0
	return summary, nil
}
