package content

import (
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	pageerrors "cryptopage/core/errors"
	"cryptopage/core/state"
	"cryptopage/core/types"
	"cryptopage/native/bank"
	"cryptopage/native/comments"
	"cryptopage/native/fees"
	"cryptopage/native/oracle"
	"cryptopage/native/token"
	"cryptopage/storage"
	"cryptopage/storage/trie"
)

var (
	deployer = common.HexToAddress("0x1000000000000000000000000000000000000001")
	alice    = common.HexToAddress("0x3000000000000000000000000000000000000003")
	bob      = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), oracle.One)
}

type testEnv struct {
	engine   *Engine
	token    *token.Engine
	bank     *bank.Engine
	comments *comments.Engine
	oracle   *oracle.Adapter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	tr, err := trie.NewTrie(db, nil)
	if err != nil {
		t.Fatalf("new trie: %v", err)
	}
	manager := state.NewManager(tr)
	adapter := oracle.NewAdapter()
	adapter.SetState(manager)

	tok := token.NewEngine()
	tok.SetState(manager)
	tok.Access().SetState(manager)
	tok.SetOracle(adapter)
	tok.SetInitialSupply(big.NewInt(0))

	vault := bank.NewEngine()
	vault.SetState(manager)
	vault.Access().SetState(manager)
	vault.SetOracle(adapter)
	vault.SetTokenEngine(tok)

	if err := tok.Initialize(deployer, vault.Address(), vault.Address()); err != nil {
		t.Fatalf("token initialize: %v", err)
	}
	if err := vault.Initialize(deployer); err != nil {
		t.Fatalf("bank initialize: %v", err)
	}
	if err := vault.SetToken(deployer, types.ModuleAddress(types.ModuleToken)); err != nil {
		t.Fatalf("bank set token: %v", err)
	}

	distributor := fees.Distributor{Token: tok, Collector: vault}
	engine := NewEngine()
	engine.SetState(manager)
	engine.Access().SetState(manager)
	engine.SetToken(tok)
	engine.SetDistributor(distributor)
	engine.SetNowFunc(func() int64 { return 7 })

	commentEngine := comments.NewEngine()
	commentEngine.SetState(manager)
	commentEngine.Access().SetState(manager)
	commentEngine.SetDistributor(distributor)
	commentEngine.SetFeeSource(engine)
	commentEngine.RegisterSource(engine.Address(), engine)
	engine.SetComments(commentEngine)

	if err := engine.Initialize(deployer, vault.Address(), "ipfs://base/"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := commentEngine.Initialize(deployer); err != nil {
		t.Fatalf("comments initialize: %v", err)
	}
	for _, module := range []common.Address{engine.Address(), commentEngine.Address()} {
		if err := tok.Access().GrantRole(deployer, types.MinterRole, module); err != nil {
			t.Fatalf("grant minter: %v", err)
		}
	}
	if err := tok.Access().GrantRole(deployer, types.BurnerRole, engine.Address()); err != nil {
		t.Fatalf("grant burner: %v", err)
	}
	return &testEnv{engine: engine, token: tok, bank: vault, comments: commentEngine, oracle: adapter}
}

func (env *testEnv) balance(t *testing.T, addr common.Address) *big.Int {
	t.Helper()
	bal, err := env.token.BalanceOf(addr)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal
}

func (env *testEnv) bankBalance(t *testing.T) *big.Int {
	t.Helper()
	bal, err := env.bank.Balance()
	if err != nil {
		t.Fatalf("bank balance: %v", err)
	}
	return bal
}

func TestMetadata(t *testing.T) {
	env := newTestEnv(t)
	if env.engine.Name() != "Crypto.Page NFT" || env.engine.Symbol() != "PAGE.NFT" {
		t.Fatalf("unexpected metadata %q %q", env.engine.Name(), env.engine.Symbol())
	}
	if err := env.engine.Initialize(deployer, alice, ""); !errors.Is(err, pageerrors.ErrAlreadyInitialized) {
		t.Fatalf("expected AlreadyInitialized, got %v", err)
	}
}

func TestSafeMintPaysRewardAndFee(t *testing.T) {
	env := newTestEnv(t)

	// No price known, so the flat reward applies.
	id, err := env.engine.SafeMint(bob, alice, "ipfs://x", "art", false)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected id 0, got %d", id)
	}
	if got := env.balance(t, alice); got.Cmp(ether(9)) != 0 {
		t.Fatalf("alice balance %s, want 9 PAGE", got)
	}
	if got := env.bankBalance(t); got.Cmp(ether(1)) != 0 {
		t.Fatalf("bank balance %s, want 1 PAGE", got)
	}
	totals, err := env.bank.FeeTotals(types.FeeDomainMint)
	if err != nil {
		t.Fatalf("fee totals: %v", err)
	}
	if totals.Cmp(ether(1)) != 0 {
		t.Fatalf("unexpected mint fee total %s", totals)
	}

	owner, err := env.engine.OwnerOf(id)
	if err != nil || owner != alice {
		t.Fatalf("owner %s err=%v", owner.Hex(), err)
	}
	item, err := env.engine.Item(id)
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	if item.Creator != bob || item.CreatedAt != 7 || item.URI != "ipfs://x" {
		t.Fatalf("unexpected item %+v", item)
	}

	if _, err := env.engine.SafeMint(bob, common.Address{}, "", "", false); pageerrors.ReasonOf(err) != "address can't be null" {
		t.Fatalf("expected null address error, got %v", err)
	}
}

func TestSafeMintUsesOraclePrice(t *testing.T) {
	env := newTestEnv(t)
	if err := env.oracle.SetStatic(types.SlotWETHUSDT, ether(2000)); err != nil {
		t.Fatalf("static weth: %v", err)
	}
	if err := env.oracle.SetStatic(types.SlotUSDTPAGE, ether(100)); err != nil {
		t.Fatalf("static page: %v", err)
	}
	if got := env.engine.BaseReward(); got.Cmp(ether(200)) != 0 {
		t.Fatalf("base reward %s, want 200 PAGE", got)
	}
	if _, err := env.engine.SafeMint(alice, alice, "", "", false); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if got := env.balance(t, alice); got.Cmp(ether(180)) != 0 {
		t.Fatalf("alice balance %s, want 180 PAGE", got)
	}
	if got := env.bankBalance(t); got.Cmp(ether(20)) != 0 {
		t.Fatalf("bank balance %s, want 20 PAGE", got)
	}
}

func TestSafeMintActivatesComments(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.engine.SafeMint(alice, alice, "", "", true)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	ok, err := env.comments.HasComments(env.engine.Address(), id)
	if err != nil || !ok {
		t.Fatalf("expected comments active, got %v err=%v", ok, err)
	}
	if _, err := env.comments.CreateComment(bob, env.engine.Address(), id, bob, []byte("gm"), true); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if got := env.balance(t, bob); got.Sign() <= 0 {
		t.Fatalf("commenter should be rewarded, got %s", got)
	}
}

func TestCollectionsAndTransfer(t *testing.T) {
	env := newTestEnv(t)
	for i, uri := range []string{"ipfs://a", "ipfs://b", ""} {
		collection := "art"
		if i == 1 {
			collection = "music"
		}
		if _, err := env.engine.SafeMint(alice, alice, uri, collection, false); err != nil {
			t.Fatalf("mint %d: %v", i, err)
		}
	}
	names, err := env.engine.GetCollectionsByAddress(alice)
	if err != nil || !reflect.DeepEqual(names, []string{"art", "music"}) {
		t.Fatalf("collections %v err=%v", names, err)
	}
	ids, err := env.engine.GetTokensIdsByCollectionName(alice, "art")
	if err != nil || !reflect.DeepEqual(ids, []uint64{0, 2}) {
		t.Fatalf("art ids %v err=%v", ids, err)
	}
	uris, err := env.engine.GetTokensURIsByCollectionName(alice, "art")
	if err != nil || !reflect.DeepEqual(uris, []string{"ipfs://a", "ipfs://base/2"}) {
		t.Fatalf("art uris %v err=%v", uris, err)
	}

	if err := env.engine.SafeTransferFrom(bob, alice, bob, 0); !errors.Is(err, pageerrors.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	if err := env.engine.SafeTransferFrom(alice, common.Address{}, bob, 0); pageerrors.ReasonOf(err) != "address can't be null" {
		t.Fatalf("expected null address error, got %v", err)
	}
	if err := env.engine.Approve(alice, bob, 0); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := env.engine.SafeTransferFrom(bob, alice, bob, 0); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if approved, _ := env.engine.GetApproved(0); approved != (common.Address{}) {
		t.Fatalf("approval must be cleared, got %s", approved.Hex())
	}
	ids, _ = env.engine.GetTokensIdsByCollectionName(alice, "art")
	if !reflect.DeepEqual(ids, []uint64{2}) {
		t.Fatalf("alice art ids after transfer %v", ids)
	}
	ids, _ = env.engine.GetTokensIdsByCollectionName(bob, "art")
	if !reflect.DeepEqual(ids, []uint64{0}) {
		t.Fatalf("bob art ids after transfer %v", ids)
	}
	if n, _ := env.engine.BalanceOf(alice); n != 2 {
		t.Fatalf("alice item count %d, want 2", n)
	}

	if err := env.engine.SetApprovalForAll(alice, bob, true); err != nil {
		t.Fatalf("set approval for all: %v", err)
	}
	if err := env.engine.TransferFrom(bob, alice, bob, 1); err != nil {
		t.Fatalf("operator transfer: %v", err)
	}
}

func TestBurn(t *testing.T) {
	env := newTestEnv(t)
	if err := env.engine.SetBurnFee(deployer, 1000); err != nil {
		t.Fatalf("set burn fee: %v", err)
	}
	id, err := env.engine.SafeMint(alice, bob, "", "art", false)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := env.engine.Burn(alice, id); !errors.Is(err, pageerrors.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	if err := env.engine.Burn(bob, 42); !errors.Is(err, pageerrors.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	// Owner cannot cover the burn fee.
	if err := env.token.Transfer(bob, alice, ether(9)); err != nil {
		t.Fatalf("drain bob: %v", err)
	}
	if err := env.engine.SafeBurn(bob, id); !errors.Is(err, pageerrors.ErrInsufficientBalance) {
		t.Fatalf("expected InsufficientBalance, got %v", err)
	}
	if owner, err := env.engine.OwnerOf(id); err != nil || owner != bob {
		t.Fatalf("item must remain with bob, owner=%s err=%v", owner.Hex(), err)
	}

	if err := env.token.Transfer(alice, bob, ether(2)); err != nil {
		t.Fatalf("fund bob: %v", err)
	}
	bankBefore := env.bankBalance(t)
	if err := env.engine.SafeBurn(bob, id); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if got := env.balance(t, bob); got.Cmp(ether(1)) != 0 {
		t.Fatalf("bob balance %s, want 1 PAGE", got)
	}
	if diff := new(big.Int).Sub(env.bankBalance(t), bankBefore); diff.Cmp(ether(1)) != 0 {
		t.Fatalf("bank gained %s, want 1 PAGE", diff)
	}
	if ok, _ := env.engine.Exists(id); ok {
		t.Fatalf("burned item must not exist")
	}
	if _, err := env.engine.OwnerOf(id); !errors.Is(err, pageerrors.ErrNotFound) {
		t.Fatalf("expected NotFound after burn, got %v", err)
	}
	if ids, _ := env.engine.GetTokensIdsByCollectionName(bob, "art"); len(ids) != 0 {
		t.Fatalf("burned item still indexed: %v", ids)
	}
	if total, _ := env.engine.TotalMinted(); total != 1 {
		t.Fatalf("ids are never reused, total %d", total)
	}
}

func TestFeeSetterBounds(t *testing.T) {
	cases := []struct {
		name string
		set  func(*Engine, uint32) error
		get  func(*types.FeePolicy) uint32
	}{
		{"fee", func(e *Engine, bps uint32) error { return e.SetFee(deployer, bps) }, func(p *types.FeePolicy) uint32 { return p.MintFeeBps }},
		{"mint", func(e *Engine, bps uint32) error { return e.SetMintFee(deployer, bps) }, func(p *types.FeePolicy) uint32 { return p.MintFeeBps }},
		{"burn", func(e *Engine, bps uint32) error { return e.SetBurnFee(deployer, bps) }, func(p *types.FeePolicy) uint32 { return p.BurnFeeBps }},
		{"comment", func(e *Engine, bps uint32) error { return e.SetCommentFee(deployer, bps) }, func(p *types.FeePolicy) uint32 { return p.CommentFeeBps }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			for _, bps := range []uint32{0, 9, 3001} {
				if err := tc.set(env.engine, bps); !errors.Is(err, pageerrors.ErrFeeOutOfRange) {
					t.Fatalf("bps %d: expected FeeOutOfRange, got %v", bps, err)
				}
			}
			for _, bps := range []uint32{10, 3000} {
				if err := tc.set(env.engine, bps); err != nil {
					t.Fatalf("bps %d: %v", bps, err)
				}
				policy, err := env.engine.FeePolicy()
				if err != nil {
					t.Fatalf("fee policy: %v", err)
				}
				if got := tc.get(policy); got != bps {
					t.Fatalf("stored %d, want %d", got, bps)
				}
			}
		})
	}
}

func TestFeeSetters(t *testing.T) {
	env := newTestEnv(t)
	if err := env.engine.SetFee(alice, 500); !errors.Is(err, pageerrors.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	for _, bps := range []uint32{9, 3001} {
		if err := env.engine.SetFee(deployer, bps); !errors.Is(err, pageerrors.ErrFeeOutOfRange) {
			t.Fatalf("bps %d: expected FeeOutOfRange, got %v", bps, err)
		}
	}
	for _, bps := range []uint32{10, 3000} {
		if err := env.engine.SetCommentFee(deployer, bps); err != nil {
			t.Fatalf("bps %d: %v", bps, err)
		}
	}
	if err := env.engine.SetTreasury(deployer, common.Address{}); !errors.Is(err, pageerrors.ErrNullAddress) {
		t.Fatalf("expected NullAddress, got %v", err)
	}
	if err := env.engine.SetTreasury(deployer, alice); err != nil {
		t.Fatalf("set treasury: %v", err)
	}
	policy, err := env.engine.FeePolicy()
	if err != nil {
		t.Fatalf("fee policy: %v", err)
	}
	if policy.CommentFeeBps != 3000 || policy.MintFeeBps != 1000 || policy.Treasury != alice {
		t.Fatalf("unexpected policy %+v", policy)
	}

	if _, err := env.engine.SafeMint(bob, bob, "", "", false); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if got := env.balance(t, alice); got.Cmp(ether(1)) != 0 {
		t.Fatalf("external treasury should receive 1 PAGE, got %s", got)
	}
}
