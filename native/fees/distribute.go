package fees

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Minter credits newly minted reward tokens.
type Minter interface {
	Mint(caller, to common.Address, amount *big.Int) error
}

// Collector is a treasury that books fees itself.
type Collector interface {
	Address() common.Address
	Collect(caller common.Address, domain string, amount *big.Int) error
}

// Distributor pays out a gross reward: the net share is minted to the
// recipient and the fee to the treasury. Fees owed to the collector's own
// account go through Collect so they are booked per domain.
type Distributor struct {
	Token     Minter
	Collector Collector
}

// Pay splits gross at bps and mints both shares on behalf of caller.
func (d Distributor) Pay(caller, recipient, treasury common.Address, domain string, gross *big.Int, bps uint32) (ApplyResult, error) {
	result := Apply(ApplyInput{Domain: domain, Gross: gross, Bps: bps})
	if result.Net.Sign() > 0 {
		if err := d.Token.Mint(caller, recipient, result.Net); err != nil {
			return result, err
		}
	}
	if err := d.Route(caller, treasury, result.Domain, result.Fee); err != nil {
		return result, err
	}
	return result, nil
}

// Route sends an already computed fee to the treasury.
func (d Distributor) Route(caller, treasury common.Address, domain string, fee *big.Int) error {
	if fee == nil || fee.Sign() == 0 {
		return nil
	}
	if d.Collector != nil && treasury == d.Collector.Address() {
		return d.Collector.Collect(caller, NormalizeDomain(domain), fee)
	}
	return d.Token.Mint(caller, treasury, fee)
}
