package events

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

const (
	// TypeTransfer is emitted for every reward token balance movement. Mints
	// use the null account as sender and burns use it as recipient.
	TypeTransfer = "token.transfer"
	// TypeApproval is emitted when an allowance changes.
	TypeApproval = "token.approval"
)

type Transfer struct {
	Token  string
	From   common.Address
	To     common.Address
	Amount *big.Int
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	attrs := map[string]string{}
	if asset := normalizeAsset(e.Token); asset != "" {
		attrs["token"] = asset
	}
	attrs["from"] = formatAddress(e.From)
	attrs["to"] = formatAddress(e.To)
	attrs["amount"] = formatAmount(e.Amount)
	return &types.Event{Type: TypeTransfer, Attributes: attrs}
}

type Approval struct {
	Token   string
	Owner   common.Address
	Spender common.Address
	Amount  *big.Int
}

func (Approval) EventType() string { return TypeApproval }

func (e Approval) Event() *types.Event {
	return &types.Event{Type: TypeApproval, Attributes: map[string]string{
		"token":   normalizeAsset(e.Token),
		"owner":   formatAddress(e.Owner),
		"spender": formatAddress(e.Spender),
		"amount":  formatAmount(e.Amount),
	}}
}
