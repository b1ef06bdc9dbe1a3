package state

import (
	"fmt"
	"math/big"
	"strings"
)

func tokenSupplyKey(symbol string) []byte {
	return key("token", "supply", strings.ToUpper(strings.TrimSpace(symbol)))
}

// TokenSupply returns the persisted total supply for the provided token.
// Missing entries default to zero.
func (m *Manager) TokenSupply(symbol string) (*big.Int, error) {
	if m == nil {
		return nil, errNilManager
	}
	if strings.TrimSpace(symbol) == "" {
		return nil, fmt.Errorf("token symbol required")
	}
	return m.getBig(tokenSupplyKey(symbol))
}

// AdjustTokenSupply applies delta to the stored total supply and returns the
// updated total. The supply never goes negative.
func (m *Manager) AdjustTokenSupply(symbol string, delta *big.Int) (*big.Int, error) {
	current, err := m.TokenSupply(symbol)
	if err != nil {
		return nil, err
	}
	if delta == nil {
		return current, nil
	}
	updated := new(big.Int).Add(current, delta)
	if updated.Sign() < 0 {
		return nil, fmt.Errorf("token %s supply underflow", strings.ToUpper(symbol))
	}
	if err := m.putBig(tokenSupplyKey(symbol), updated); err != nil {
		return nil, err
	}
	return updated, nil
}
