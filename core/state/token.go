package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

func tokenBalanceKey(addr common.Address) []byte {
	return key("token", "balance", addrPart(addr))
}

func tokenAllowanceKey(owner, spender common.Address) []byte {
	return key("token", "allowance", addrPart(owner), addrPart(spender))
}

func tokenStakeKey(addr common.Address, index uint64) []byte {
	return key("token", "stake", addrPart(addr), uintPart(index))
}

func tokenStakeCountKey(addr common.Address) []byte {
	return key("token", "stake", addrPart(addr), "count")
}

func tokenHoldersKey() []byte { return key("token", "holders") }

func tokenAddressKey(name string) []byte { return key("token", "config", name) }

// TokenBalance returns the reward token balance of addr.
func (m *Manager) TokenBalance(addr common.Address) (*big.Int, error) {
	return m.getBig(tokenBalanceKey(addr))
}

// TokenSetBalance overwrites the reward token balance of addr. Accounts that
// ever held a balance are tracked so supply audits can enumerate them.
func (m *Manager) TokenSetBalance(addr common.Address, amount *big.Int) error {
	if err := m.putBig(tokenBalanceKey(addr), amount); err != nil {
		return err
	}
	if amount != nil && amount.Sign() > 0 {
		return m.KVAppend(tokenHoldersKey(), addr.Bytes())
	}
	return nil
}

// TokenHolders lists every account that has held a balance, in order of first
// credit.
func (m *Manager) TokenHolders() ([]common.Address, error) {
	var raw [][]byte
	if err := m.KVGetList(tokenHoldersKey(), &raw); err != nil {
		return nil, err
	}
	out := make([]common.Address, len(raw))
	for i, b := range raw {
		out[i] = common.BytesToAddress(b)
	}
	return out, nil
}

// TokenAllowance returns the amount spender may move on behalf of owner.
func (m *Manager) TokenAllowance(owner, spender common.Address) (*big.Int, error) {
	return m.getBig(tokenAllowanceKey(owner, spender))
}

// TokenSetAllowance overwrites the allowance of spender over owner's balance.
func (m *Manager) TokenSetAllowance(owner, spender common.Address, amount *big.Int) error {
	return m.putBig(tokenAllowanceKey(owner, spender), amount)
}

// TokenStakeCount returns the number of staking positions ever opened by addr.
func (m *Manager) TokenStakeCount(addr common.Address) (uint64, error) {
	return m.getUint(tokenStakeCountKey(addr))
}

// TokenStakeGet loads the staking position at index.
func (m *Manager) TokenStakeGet(addr common.Address, index uint64) (*types.StakeRecord, bool, error) {
	record := new(types.StakeRecord)
	ok, err := m.KVGet(tokenStakeKey(addr, index), record)
	if err != nil || !ok {
		return nil, ok, err
	}
	if record.Amount == nil {
		record.Amount = big.NewInt(0)
	}
	return record, true, nil
}

// TokenStakePut stores the staking position at index, extending the position
// count when index is new.
func (m *Manager) TokenStakePut(addr common.Address, index uint64, record *types.StakeRecord) error {
	if record.Amount == nil {
		record.Amount = big.NewInt(0)
	}
	if err := m.KVPut(tokenStakeKey(addr, index), record); err != nil {
		return err
	}
	count, err := m.TokenStakeCount(addr)
	if err != nil {
		return err
	}
	if index >= count {
		return m.KVPut(tokenStakeCountKey(addr), index+1)
	}
	return nil
}

// TokenAddress returns a configured token-level account such as the treasury
// or the bank.
func (m *Manager) TokenAddress(name string) (common.Address, bool, error) {
	return m.getAddress(tokenAddressKey(name))
}

// TokenSetAddress records a token-level account.
func (m *Manager) TokenSetAddress(name string, addr common.Address) error {
	return m.KVPut(tokenAddressKey(name), addr)
}
