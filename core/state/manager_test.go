package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

func TestKVAppendAndRemovePreserveOrder(t *testing.T) {
	m := newTestManager(t)
	k := []byte("test/list")
	for _, v := range []string{"a", "b", "c", "b"} {
		if err := m.KVAppend(k, []byte(v)); err != nil {
			t.Fatalf("append %s: %v", v, err)
		}
	}
	if err := m.KVRemove(k, []byte("b")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	var list [][]byte
	if err := m.KVGetList(k, &list); err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(list) != 2 || string(list[0]) != "a" || string(list[1]) != "c" {
		t.Fatalf("unexpected list: %q", list)
	}
	for _, v := range []string{"a", "c"} {
		if err := m.KVRemove(k, []byte(v)); err != nil {
			t.Fatalf("remove %s: %v", v, err)
		}
	}
	if ok, err := m.KVGet(k, nil); err != nil || ok {
		t.Fatalf("expected empty list to be deleted, ok=%v err=%v", ok, err)
	}
}

func TestContentIndexesUseInsertionOrder(t *testing.T) {
	m := newTestManager(t)
	owner := common.HexToAddress("0x01")
	for _, id := range []uint64{0, 1, 2} {
		if err := m.ContentAddOwned(owner, id); err != nil {
			t.Fatalf("add owned: %v", err)
		}
		if err := m.ContentAddToCollection(owner, "art", id); err != nil {
			t.Fatalf("add to collection: %v", err)
		}
	}
	if err := m.ContentRemoveOwned(owner, 0); err != nil {
		t.Fatalf("remove owned: %v", err)
	}
	owned, err := m.ContentOwned(owner)
	if err != nil {
		t.Fatalf("owned: %v", err)
	}
	if len(owned) != 2 || owned[0] != 1 || owned[1] != 2 {
		t.Fatalf("unexpected owned ids: %v", owned)
	}
	for _, id := range []uint64{0, 1, 2} {
		if err := m.ContentRemoveFromCollection(owner, "art", id); err != nil {
			t.Fatalf("remove from collection: %v", err)
		}
	}
	names, err := m.ContentCollections(owner)
	if err != nil {
		t.Fatalf("collections: %v", err)
	}
	if len(names) != 1 || names[0] != "art" {
		t.Fatalf("collection names must be retained: %v", names)
	}
}

func TestCommentAppendAssignsContiguousIDs(t *testing.T) {
	m := newTestManager(t)
	ref := common.HexToAddress("0x0a")
	author := common.HexToAddress("0x0b")
	for i := 0; i < 3; i++ {
		c := &types.Comment{ContentRef: ref, ItemID: 7, Author: author, Text: []byte("hi"), Like: i%2 == 0}
		if err := m.CommentAppend(c); err != nil {
			t.Fatalf("append: %v", err)
		}
		if c.ID != uint64(i) {
			t.Fatalf("expected id %d, got %d", i, c.ID)
		}
	}
	ids, err := m.CommentIDsOf(ref, 7, author)
	if err != nil {
		t.Fatalf("ids of: %v", err)
	}
	if len(ids) != 3 || ids[0] != 0 || ids[2] != 2 {
		t.Fatalf("unexpected author ids: %v", ids)
	}
	if ok, _ := m.CommentHasLog(ref, 7); !ok {
		t.Fatalf("expected comment log")
	}
	if ok, _ := m.CommentHasLog(ref, 8); ok {
		t.Fatalf("unexpected comment log for untouched item")
	}
	active, err := m.CommentsActive()
	if err != nil || !active {
		t.Fatalf("comments must default to active, got %v err=%v", active, err)
	}
}

func TestRolesAndStakes(t *testing.T) {
	m := newTestManager(t)
	addr := common.HexToAddress("0x0c")
	if err := m.RoleGrant(types.ModuleToken, types.MinterRole, addr); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if ok, _ := m.RoleHas(types.ModuleToken, types.MinterRole, addr); !ok {
		t.Fatalf("expected role")
	}
	if ok, _ := m.RoleHas(types.ModuleBank, types.MinterRole, addr); ok {
		t.Fatalf("roles must be scoped")
	}
	if err := m.RoleRevoke(types.ModuleToken, types.MinterRole, addr); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := m.RoleHas(types.ModuleToken, types.MinterRole, addr); ok {
		t.Fatalf("expected role revoked")
	}

	if err := m.TokenStakePut(addr, 0, &types.StakeRecord{Amount: big.NewInt(5), Since: 10}); err != nil {
		t.Fatalf("stake put: %v", err)
	}
	count, err := m.TokenStakeCount(addr)
	if err != nil || count != 1 {
		t.Fatalf("unexpected stake count %d err=%v", count, err)
	}
	rec, ok, err := m.TokenStakeGet(addr, 0)
	if err != nil || !ok || rec.Amount.Int64() != 5 || rec.Since != 10 {
		t.Fatalf("unexpected stake record %+v ok=%v err=%v", rec, ok, err)
	}
}

func TestEnsureStateVersion(t *testing.T) {
	m := newTestManager(t)
	if err := EnsureStateVersion(m.Trie(), false); err != nil {
		t.Fatalf("empty state must pass: %v", err)
	}
	if err := m.SetStateVersion(StateVersion + 1); err != nil {
		t.Fatalf("set version: %v", err)
	}
	if err := EnsureStateVersion(m.Trie(), false); err == nil {
		t.Fatalf("expected version mismatch")
	}
	if err := EnsureStateVersion(m.Trie(), true); err != nil {
		t.Fatalf("migration override must pass: %v", err)
	}
}
