package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func bankTokenKey() []byte                 { return key("bank", "token") }
func bankFeeTotalKey(domain string) []byte { return key("bank", "fees", domain) }

// BankToken returns the reward token linked to the bank.
func (m *Manager) BankToken() (common.Address, bool, error) {
	return m.getAddress(bankTokenKey())
}

// BankSetToken links the bank to the reward token at ref.
func (m *Manager) BankSetToken(ref common.Address) error {
	return m.KVPut(bankTokenKey(), ref)
}

// BankFeeTotal returns the fees collected for domain.
func (m *Manager) BankFeeTotal(domain string) (*big.Int, error) {
	return m.getBig(bankFeeTotalKey(domain))
}

// BankSetFeeTotal overwrites the fees collected for domain.
func (m *Manager) BankSetFeeTotal(domain string, total *big.Int) error {
	return m.putBig(bankFeeTotalKey(domain), total)
}
