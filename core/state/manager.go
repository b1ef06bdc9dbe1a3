package state

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"cryptopage/storage/trie"
)

var errNilManager = errors.New("state: manager unavailable")

// Manager reads and writes ledger state on a trie. Every native module owns a
// key prefix; the typed accessors in this package are the only place those
// prefixes are spelled out.
type Manager struct {
	trie *trie.Trie
}

// NewManager creates a state manager operating on the provided trie.
func NewManager(tr *trie.Trie) *Manager {
	return &Manager{trie: tr}
}

// Trie exposes the trie backing the manager.
func (m *Manager) Trie() *trie.Trie {
	if m == nil {
		return nil
	}
	return m.trie
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

// key joins the module prefix and the remaining parts with '/'.
func key(parts ...string) []byte {
	return []byte(strings.Join(parts, "/"))
}

func addrPart(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func uintPart(v uint64) string {
	return fmt.Sprintf("%d", v)
}

// KVPut stores the provided value under the supplied key using RLP encoding.
// The key is hashed with keccak256 before it reaches the trie.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil {
		return errNilManager
	}
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.trie.Update(kvKey(key), encoded)
}

// KVGet decodes the value stored under key into out. The boolean reports
// whether the key existed.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if m == nil {
		return false, errNilManager
	}
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.trie.Get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the value stored under key.
func (m *Manager) KVDelete(key []byte) error {
	if m == nil {
		return errNilManager
	}
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return m.trie.Delete(kvKey(key))
}

// KVAppend appends value to the byte slice list stored under key. Duplicate
// values are ignored and insertion order is preserved.
func (m *Manager) KVAppend(key []byte, value []byte) error {
	var list [][]byte
	if err := m.KVGetList(key, &list); err != nil {
		return err
	}
	for _, existing := range list {
		if bytes.Equal(existing, value) {
			return nil
		}
	}
	list = append(list, append([]byte(nil), value...))
	return m.KVPut(key, list)
}

// KVRemove deletes value from the byte slice list stored under key keeping
// the order of the remaining entries. The key is dropped once the list is
// empty.
func (m *Manager) KVRemove(key []byte, value []byte) error {
	var list [][]byte
	if err := m.KVGetList(key, &list); err != nil {
		return err
	}
	filtered := list[:0]
	for _, existing := range list {
		if !bytes.Equal(existing, value) {
			filtered = append(filtered, existing)
		}
	}
	if len(filtered) == 0 {
		return m.KVDelete(key)
	}
	return m.KVPut(key, filtered)
}

// KVGetList decodes the RLP list stored under key into the slice pointed to by
// out. Missing keys yield an empty slice.
func (m *Manager) KVGetList(key []byte, out interface{}) error {
	ok, err := m.KVGet(key, out)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	val := reflect.ValueOf(out)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("kv: destination must be a non-nil pointer")
	}
	elem := val.Elem()
	if elem.Kind() != reflect.Slice {
		return fmt.Errorf("kv: destination must point to a slice")
	}
	elem.Set(reflect.MakeSlice(elem.Type(), 0, 0))
	return nil
}

func (m *Manager) getBig(key []byte) (*big.Int, error) {
	value := new(big.Int)
	ok, err := m.KVGet(key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

func (m *Manager) putBig(key []byte, value *big.Int) error {
	if value == nil || value.Sign() == 0 {
		return m.KVDelete(key)
	}
	if value.Sign() < 0 {
		return fmt.Errorf("state: negative amount for %s", key)
	}
	return m.KVPut(key, value)
}

func (m *Manager) getUint(key []byte) (uint64, error) {
	var value uint64
	if _, err := m.KVGet(key, &value); err != nil {
		return 0, err
	}
	return value, nil
}

func (m *Manager) getFlag(key []byte) (bool, error) {
	var value bool
	if _, err := m.KVGet(key, &value); err != nil {
		return false, err
	}
	return value, nil
}

func (m *Manager) putFlag(key []byte, value bool) error {
	if !value {
		return m.KVDelete(key)
	}
	return m.KVPut(key, true)
}

func (m *Manager) getAddress(key []byte) (common.Address, bool, error) {
	var addr common.Address
	ok, err := m.KVGet(key, &addr)
	return addr, ok, err
}

func encodeUint(v uint64) []byte {
	return new(big.Int).SetUint64(v).Bytes()
}

func decodeUint(b []byte) uint64 {
	return new(big.Int).SetBytes(b).Uint64()
}
