package state

import (
	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

func contentItemKey(id uint64) []byte             { return key("nft", "item", uintPart(id)) }
func contentNextIDKey() []byte                    { return key("nft", "next") }
func contentOwnedKey(owner common.Address) []byte { return key("nft", "owned", addrPart(owner)) }
func contentCollectionsKey(owner common.Address) []byte {
	return key("nft", "collections", addrPart(owner))
}
func contentCollectionKey(owner common.Address, name string) []byte {
	return key("nft", "collection", addrPart(owner), name)
}
func contentApprovalKey(id uint64) []byte { return key("nft", "approval", uintPart(id)) }
func contentOperatorKey(owner, operator common.Address) []byte {
	return key("nft", "operator", addrPart(owner), addrPart(operator))
}
func contentFeePolicyKey() []byte { return key("nft", "fees") }
func contentBaseURIKey() []byte   { return key("nft", "baseuri") }

// ContentNextID returns the identifier the next mint will receive.
func (m *Manager) ContentNextID() (uint64, error) {
	return m.getUint(contentNextIDKey())
}

// ContentSetNextID advances the identifier counter.
func (m *Manager) ContentSetNextID(next uint64) error {
	return m.KVPut(contentNextIDKey(), next)
}

// ContentItemGet loads the item with id, including burned items.
func (m *Manager) ContentItemGet(id uint64) (*types.ContentItem, bool, error) {
	item := new(types.ContentItem)
	ok, err := m.KVGet(contentItemKey(id), item)
	if err != nil || !ok {
		return nil, ok, err
	}
	return item, true, nil
}

// ContentItemPut stores item.
func (m *Manager) ContentItemPut(item *types.ContentItem) error {
	return m.KVPut(contentItemKey(item.ID), item)
}

// ContentOwned lists the live items held by owner in acquisition order.
func (m *Manager) ContentOwned(owner common.Address) ([]uint64, error) {
	return m.uintList(contentOwnedKey(owner))
}

// ContentAddOwned appends id to the holdings of owner.
func (m *Manager) ContentAddOwned(owner common.Address, id uint64) error {
	return m.KVAppend(contentOwnedKey(owner), encodeUint(id))
}

// ContentRemoveOwned drops id from the holdings of owner.
func (m *Manager) ContentRemoveOwned(owner common.Address, id uint64) error {
	return m.KVRemove(contentOwnedKey(owner), encodeUint(id))
}

// ContentCollections lists the collection names owner has ever used, in
// first-use order.
func (m *Manager) ContentCollections(owner common.Address) ([]string, error) {
	var raw [][]byte
	if err := m.KVGetList(contentCollectionsKey(owner), &raw); err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, b := range raw {
		out[i] = string(b)
	}
	return out, nil
}

// ContentCollectionIDs lists the live items of owner filed under name.
func (m *Manager) ContentCollectionIDs(owner common.Address, name string) ([]uint64, error) {
	return m.uintList(contentCollectionKey(owner, name))
}

// ContentAddToCollection files id under name for owner and records the
// collection name.
func (m *Manager) ContentAddToCollection(owner common.Address, name string, id uint64) error {
	if err := m.KVAppend(contentCollectionsKey(owner), []byte(name)); err != nil {
		return err
	}
	return m.KVAppend(contentCollectionKey(owner, name), encodeUint(id))
}

// ContentRemoveFromCollection drops id from the collection. The collection
// name stays recorded.
func (m *Manager) ContentRemoveFromCollection(owner common.Address, name string, id uint64) error {
	return m.KVRemove(contentCollectionKey(owner, name), encodeUint(id))
}

// ContentApproval returns the account approved to move id.
func (m *Manager) ContentApproval(id uint64) (common.Address, error) {
	addr, _, err := m.getAddress(contentApprovalKey(id))
	return addr, err
}

// ContentSetApproval records the approved account for id. The zero address
// clears it.
func (m *Manager) ContentSetApproval(id uint64, approved common.Address) error {
	if approved == (common.Address{}) {
		return m.KVDelete(contentApprovalKey(id))
	}
	return m.KVPut(contentApprovalKey(id), approved)
}

// ContentOperator reports whether operator manages every item of owner.
func (m *Manager) ContentOperator(owner, operator common.Address) (bool, error) {
	return m.getFlag(contentOperatorKey(owner, operator))
}

// ContentSetOperator grants or revokes operator rights.
func (m *Manager) ContentSetOperator(owner, operator common.Address, approved bool) error {
	return m.putFlag(contentOperatorKey(owner, operator), approved)
}

// ContentFeePolicy loads the fee policy. The boolean is false before the
// registry is initialised.
func (m *Manager) ContentFeePolicy() (*types.FeePolicy, bool, error) {
	policy := new(types.FeePolicy)
	ok, err := m.KVGet(contentFeePolicyKey(), policy)
	if err != nil || !ok {
		return nil, ok, err
	}
	return policy, true, nil
}

// ContentSetFeePolicy stores the fee policy.
func (m *Manager) ContentSetFeePolicy(policy *types.FeePolicy) error {
	return m.KVPut(contentFeePolicyKey(), policy)
}

// ContentBaseURI returns the prefix used for items without an explicit URI.
func (m *Manager) ContentBaseURI() (string, error) {
	var uri string
	if _, err := m.KVGet(contentBaseURIKey(), &uri); err != nil {
		return "", err
	}
	return uri, nil
}

// ContentSetBaseURI records the base URI.
func (m *Manager) ContentSetBaseURI(uri string) error {
	if uri == "" {
		return m.KVDelete(contentBaseURIKey())
	}
	return m.KVPut(contentBaseURIKey(), uri)
}

func (m *Manager) uintList(key []byte) ([]uint64, error) {
	var raw [][]byte
	if err := m.KVGetList(key, &raw); err != nil {
		return nil, err
	}
	out := make([]uint64, len(raw))
	for i, b := range raw {
		out[i] = decodeUint(b)
	}
	return out, nil
}
