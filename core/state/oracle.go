package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

func oraclePoolKey(slot types.PoolSlot) []byte   { return key("oracle", "pool", string(slot)) }
func oracleStaticKey(slot types.PoolSlot) []byte { return key("oracle", "static", string(slot)) }

// OraclePool returns the pool address configured for slot.
func (m *Manager) OraclePool(slot types.PoolSlot) (common.Address, bool, error) {
	return m.getAddress(oraclePoolKey(slot))
}

// OracleSetPool records the pool for slot. The zero address clears it.
func (m *Manager) OracleSetPool(slot types.PoolSlot, pool common.Address) error {
	if pool == (common.Address{}) {
		return m.KVDelete(oraclePoolKey(slot))
	}
	return m.KVPut(oraclePoolKey(slot), pool)
}

// OracleStatic returns the static fallback rate for slot, zero when unset.
func (m *Manager) OracleStatic(slot types.PoolSlot) (*big.Int, error) {
	return m.getBig(oracleStaticKey(slot))
}

// OracleSetStatic records the static fallback rate for slot. Zero clears it.
func (m *Manager) OracleSetStatic(slot types.PoolSlot, rate *big.Int) error {
	return m.putBig(oracleStaticKey(slot), rate)
}
