package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ContentItem is a non-fungible content record. Burned items are kept with
// Burned set so identifiers are never reused.
type ContentItem struct {
	ID         uint64         `json:"id"`
	Owner      common.Address `json:"owner"`
	Creator    common.Address `json:"creator"`
	URI        string         `json:"uri"`
	Collection string         `json:"collection"`
	CreatedAt  uint64         `json:"createdAt"`
	Burned     bool           `json:"burned"`
}

// Clone returns a copy of the item.
func (c *ContentItem) Clone() *ContentItem {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Comment is an append-only reaction attached to a content item.
type Comment struct {
	ID         uint64         `json:"id"`
	ContentRef common.Address `json:"contentRef"`
	ItemID     uint64         `json:"itemId"`
	Author     common.Address `json:"author"`
	Text       []byte         `json:"text"`
	Like       bool           `json:"like"`
	CreatedAt  uint64         `json:"createdAt"`
}

// Statistic aggregates likes and dislikes. Total always equals
// Likes + Dislikes.
type Statistic struct {
	Likes    uint64 `json:"likes"`
	Dislikes uint64 `json:"dislikes"`
	Total    uint64 `json:"total"`
}

// Record folds a single reaction into the tally.
func (s *Statistic) Record(like bool) {
	if like {
		s.Likes++
	} else {
		s.Dislikes++
	}
	s.Total++
}

// StakeRecord is a single staking position. Emptied positions keep their
// index with a zero amount.
type StakeRecord struct {
	Amount *big.Int `json:"amount"`
	Since  uint64   `json:"since"`
}

// FeePolicy holds the fee rates in basis points and the treasury that
// receives them.
type FeePolicy struct {
	MintFeeBps    uint32         `json:"mintFeeBps"`
	BurnFeeBps    uint32         `json:"burnFeeBps"`
	CommentFeeBps uint32         `json:"commentFeeBps"`
	Treasury      common.Address `json:"treasury"`
}

// PoolSlot names one of the price pools consulted by the oracle.
type PoolSlot string

const (
	SlotWETHUSDT PoolSlot = "WETH/USDT"
	SlotUSDTPAGE PoolSlot = "USDT/PAGE"
)

// PoolSlots lists every supported slot.
func PoolSlots() []PoolSlot {
	return []PoolSlot{SlotWETHUSDT, SlotUSDTPAGE}
}

// Fee domains tracked by the bank.
const (
	FeeDomainMint    = "mint"
	FeeDomainBurn    = "burn"
	FeeDomainComment = "comment"
)
