package content

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/errors"
	"cryptopage/core/events"
	"cryptopage/core/types"
	"cryptopage/native/fees"
	"cryptopage/native/oracle"
	"cryptopage/native/roles"
)

const (
	Name   = "Crypto.Page NFT"
	Symbol = "PAGE.NFT"
)

var (
	// DefaultFlatMintReward is paid per mint while no price is known.
	DefaultFlatMintReward = new(big.Int).Mul(big.NewInt(10), oracle.One)
	// DefaultMintValue is the WETH value a mint is worth when a price is known.
	DefaultMintValue = new(big.Int).Quo(oracle.One, big.NewInt(1000))
)

type engineState interface {
	ContentNextID() (uint64, error)
	ContentSetNextID(next uint64) error
	ContentItemGet(id uint64) (*types.ContentItem, bool, error)
	ContentItemPut(item *types.ContentItem) error
	ContentOwned(owner common.Address) ([]uint64, error)
	ContentAddOwned(owner common.Address, id uint64) error
	ContentRemoveOwned(owner common.Address, id uint64) error
	ContentCollections(owner common.Address) ([]string, error)
	ContentCollectionIDs(owner common.Address, name string) ([]uint64, error)
	ContentAddToCollection(owner common.Address, name string, id uint64) error
	ContentRemoveFromCollection(owner common.Address, name string, id uint64) error
	ContentApproval(id uint64) (common.Address, error)
	ContentSetApproval(id uint64, approved common.Address) error
	ContentOperator(owner, operator common.Address) (bool, error)
	ContentSetOperator(owner, operator common.Address, approved bool) error
	ContentFeePolicy() (*types.FeePolicy, bool, error)
	ContentSetFeePolicy(policy *types.FeePolicy) error
	ContentBaseURI() (string, error)
	ContentSetBaseURI(uri string) error
	ModuleInitialized(scope string) (bool, error)
	SetModuleInitialized(scope string) error
}

// Token is the reward token side of the registry.
type Token interface {
	BalanceOf(addr common.Address) (*big.Int, error)
	Burn(caller, from common.Address, amount *big.Int) error
	Convert(value *big.Int) *big.Int
}

// CommentActivator opens items for comments at mint time.
type CommentActivator interface {
	ActivateComments(caller, ref common.Address, itemID uint64) error
}

// Engine is the content NFT registry. Minting pays a price-linked reward in
// PAGE with a treasury fee; burning charges the owner a fee.
type Engine struct {
	state       engineState
	access      *roles.Registry
	token       Token
	distributor fees.Distributor
	comments    CommentActivator
	emitter     events.Emitter
	nowFn       func() int64
	mintValue   *big.Int
	flatReward  *big.Int
	address     common.Address
}

// NewEngine constructs a content engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		access:     roles.NewRegistry(types.ModuleContent),
		emitter:    events.NoopEmitter{},
		nowFn:      func() int64 { return time.Now().Unix() },
		mintValue:  new(big.Int).Set(DefaultMintValue),
		flatReward: new(big.Int).Set(DefaultFlatMintReward),
		address:    types.ModuleAddress(types.ModuleContent),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAccess replaces the role registry guarding the engine.
func (e *Engine) SetAccess(access *roles.Registry) {
	if access != nil {
		e.access = access
	}
}

// SetToken attaches the reward token.
func (e *Engine) SetToken(token Token) { e.token = token }

// SetDistributor configures how rewards and fees are minted.
func (e *Engine) SetDistributor(d fees.Distributor) { e.distributor = d }

// SetComments attaches the comment registry used by commentsEnabled mints.
func (e *Engine) SetComments(comments CommentActivator) { e.comments = comments }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetRewards overrides the WETH value of a mint and the flat fallback reward.
func (e *Engine) SetRewards(mintValue, flatReward *big.Int) {
	if mintValue != nil && mintValue.Sign() >= 0 {
		e.mintValue = new(big.Int).Set(mintValue)
	}
	if flatReward != nil && flatReward.Sign() >= 0 {
		e.flatReward = new(big.Int).Set(flatReward)
	}
}

// Access exposes the role registry of the engine.
func (e *Engine) Access() *roles.Registry { return e.access }

// Address returns the account the registry acts as.
func (e *Engine) Address() common.Address { return e.address }

func (e *Engine) Name() string   { return Name }
func (e *Engine) Symbol() string { return Symbol }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(events.Wrap(evt))
}

func (e *Engine) now() uint64 {
	var ts int64
	if e == nil || e.nowFn == nil {
		ts = time.Now().Unix()
	} else {
		ts = e.nowFn()
	}
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return fmt.Errorf("content: state not configured")
	}
	return nil
}

func (e *Engine) requireInitialized() error {
	if err := e.ready(); err != nil {
		return err
	}
	ok, err := e.state.ModuleInitialized(types.ModuleContent)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.KindNotInitialized, "content: not initialized")
	}
	if e.token == nil || e.distributor.Token == nil {
		return fmt.Errorf("content: token not configured")
	}
	return nil
}

func (e *Engine) requireOwner(caller common.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.access.RequireOwner(caller)
}

// Initialize makes caller the owner, records the treasury and the base URI and
// applies the default fee rates.
func (e *Engine) Initialize(caller, treasury common.Address, baseURI string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if ok, err := e.state.ModuleInitialized(types.ModuleContent); err != nil {
		return err
	} else if ok {
		return errors.New(errors.KindAlreadyInitialized, "content: already initialized")
	}
	if types.IsZeroAddress(treasury) {
		return errors.New(errors.KindNullAddress, "treasury can't be null")
	}
	if err := e.access.InitOwner(caller); err != nil {
		return err
	}
	policy := &types.FeePolicy{
		MintFeeBps:    fees.DefaultMintFeeBps,
		BurnFeeBps:    fees.DefaultBurnFeeBps,
		CommentFeeBps: fees.DefaultCommentFeeBps,
		Treasury:      treasury,
	}
	if err := e.state.ContentSetFeePolicy(policy); err != nil {
		return err
	}
	if err := e.state.ContentSetBaseURI(baseURI); err != nil {
		return err
	}
	return e.state.SetModuleInitialized(types.ModuleContent)
}

// FeePolicy returns the fee rates and the treasury.
func (e *Engine) FeePolicy() (*types.FeePolicy, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	policy, ok, err := e.state.ContentFeePolicy()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.KindNotInitialized, "content: not initialized")
	}
	return policy, nil
}

func (e *Engine) updatePolicy(caller common.Address, mutate func(*types.FeePolicy) error) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	policy, err := e.FeePolicy()
	if err != nil {
		return err
	}
	if err := mutate(policy); err != nil {
		return err
	}
	if err := e.state.ContentSetFeePolicy(policy); err != nil {
		return err
	}
	e.emit(FeePolicyEvent(policy))
	return nil
}

// SetFee sets the mint fee rate.
func (e *Engine) SetFee(caller common.Address, bps uint32) error {
	return e.SetMintFee(caller, bps)
}

// SetMintFee sets the fee rate charged on mint rewards. Owner only.
func (e *Engine) SetMintFee(caller common.Address, bps uint32) error {
	return e.updatePolicy(caller, func(p *types.FeePolicy) error {
		if err := fees.ValidateBps(bps); err != nil {
			return err
		}
		p.MintFeeBps = bps
		return nil
	})
}

// SetBurnFee sets the fee rate charged on burns. Owner only.
func (e *Engine) SetBurnFee(caller common.Address, bps uint32) error {
	return e.updatePolicy(caller, func(p *types.FeePolicy) error {
		if err := fees.ValidateBps(bps); err != nil {
			return err
		}
		p.BurnFeeBps = bps
		return nil
	})
}

// SetCommentFee sets the fee rate charged on comment rewards. Owner only.
func (e *Engine) SetCommentFee(caller common.Address, bps uint32) error {
	return e.updatePolicy(caller, func(p *types.FeePolicy) error {
		if err := fees.ValidateBps(bps); err != nil {
			return err
		}
		p.CommentFeeBps = bps
		return nil
	})
}

// SetTreasury changes the account receiving fees. Owner only.
func (e *Engine) SetTreasury(caller, treasury common.Address) error {
	return e.updatePolicy(caller, func(p *types.FeePolicy) error {
		if types.IsZeroAddress(treasury) {
			return errors.New(errors.KindNullAddress, "treasury can't be null")
		}
		p.Treasury = treasury
		return nil
	})
}

// SetBaseURI changes the prefix used for items minted without a URI. Owner
// only.
func (e *Engine) SetBaseURI(caller common.Address, uri string) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.state.ContentSetBaseURI(uri)
}

// BaseReward is the gross PAGE amount a mint is worth right now: the mint
// value converted at the oracle price, or the flat reward without a price.
func (e *Engine) BaseReward() *big.Int {
	if e.token != nil {
		if converted := e.token.Convert(e.mintValue); converted.Sign() > 0 {
			return converted
		}
	}
	return new(big.Int).Set(e.flatReward)
}

func (e *Engine) liveItem(id uint64) (*types.ContentItem, error) {
	item, ok, err := e.state.ContentItemGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || item.Burned {
		return nil, errors.New(errors.KindNotFound, "no content with this ID")
	}
	return item, nil
}

// SafeMint records a new item owned by to and pays the mint reward: the net
// amount to to and the fee to the treasury. It returns the new id.
func (e *Engine) SafeMint(caller, to common.Address, uri, collection string, commentsEnabled bool) (uint64, error) {
	if err := e.requireInitialized(); err != nil {
		return 0, err
	}
	if types.IsZeroAddress(to) {
		return 0, errors.New(errors.KindNullAddress, "address can't be null")
	}
	policy, err := e.FeePolicy()
	if err != nil {
		return 0, err
	}
	id, err := e.state.ContentNextID()
	if err != nil {
		return 0, err
	}
	item := &types.ContentItem{
		ID:         id,
		Owner:      to,
		Creator:    caller,
		URI:        uri,
		Collection: collection,
		CreatedAt:  e.now(),
	}
	if err := e.state.ContentItemPut(item); err != nil {
		return 0, err
	}
	if err := e.state.ContentSetNextID(id + 1); err != nil {
		return 0, err
	}
	if err := e.index(to, item); err != nil {
		return 0, err
	}
	split, err := e.distributor.Pay(e.address, to, policy.Treasury, types.FeeDomainMint, e.BaseReward(), policy.MintFeeBps)
	if err != nil {
		return 0, err
	}
	if commentsEnabled {
		if e.comments == nil {
			return 0, fmt.Errorf("content: comment registry not configured")
		}
		if err := e.comments.ActivateComments(e.address, e.address, id); err != nil {
			return 0, err
		}
	}
	e.emit(MintedEvent(item, split.Net, split.Fee))
	return id, nil
}

func (e *Engine) index(owner common.Address, item *types.ContentItem) error {
	if err := e.state.ContentAddOwned(owner, item.ID); err != nil {
		return err
	}
	if item.Collection == "" {
		return nil
	}
	return e.state.ContentAddToCollection(owner, item.Collection, item.ID)
}

func (e *Engine) unindex(owner common.Address, item *types.ContentItem) error {
	if err := e.state.ContentRemoveOwned(owner, item.ID); err != nil {
		return err
	}
	if item.Collection == "" {
		return nil
	}
	return e.state.ContentRemoveFromCollection(owner, item.Collection, item.ID)
}

// Burn destroys the item. Only its owner may burn it and the owner pays the
// burn fee to the treasury.
func (e *Engine) Burn(caller common.Address, id uint64) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	item, err := e.liveItem(id)
	if err != nil {
		return err
	}
	if item.Owner != caller {
		return errors.New(errors.KindUnauthorized, "allowed only for owner")
	}
	policy, err := e.FeePolicy()
	if err != nil {
		return err
	}
	fee := fees.Portion(e.BaseReward(), policy.BurnFeeBps)
	balance, err := e.token.BalanceOf(item.Owner)
	if err != nil {
		return err
	}
	if balance.Cmp(fee) < 0 {
		return errors.New(errors.KindInsufficientBalance, "not enough balance")
	}
	if fee.Sign() > 0 {
		if err := e.token.Burn(e.address, item.Owner, fee); err != nil {
			return err
		}
		if err := e.distributor.Route(e.address, policy.Treasury, types.FeeDomainBurn, fee); err != nil {
			return err
		}
	}
	if err := e.unindex(item.Owner, item); err != nil {
		return err
	}
	if err := e.state.ContentSetApproval(id, common.Address{}); err != nil {
		return err
	}
	item.Burned = true
	if err := e.state.ContentItemPut(item); err != nil {
		return err
	}
	e.emit(BurnedEvent(item, fee))
	return nil
}

// SafeBurn is an alias of Burn.
func (e *Engine) SafeBurn(caller common.Address, id uint64) error { return e.Burn(caller, id) }

func (e *Engine) isApprovedOrOwner(caller common.Address, item *types.ContentItem) (bool, error) {
	if caller == item.Owner {
		return true, nil
	}
	approved, err := e.state.ContentApproval(item.ID)
	if err != nil {
		return false, err
	}
	if approved == caller {
		return true, nil
	}
	return e.state.ContentOperator(item.Owner, caller)
}

// TransferFrom moves the item from from to to. The caller must be the owner,
// the approved account or an operator of the owner.
func (e *Engine) TransferFrom(caller, from, to common.Address, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if types.IsZeroAddress(from) || types.IsZeroAddress(to) {
		return errors.New(errors.KindNullAddress, "address can't be null")
	}
	item, err := e.liveItem(id)
	if err != nil {
		return err
	}
	if item.Owner != from {
		return errors.New(errors.KindUnauthorized, "transfer from incorrect owner")
	}
	ok, err := e.isApprovedOrOwner(caller, item)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.KindUnauthorized, "caller is not owner nor approved")
	}
	if err := e.unindex(from, item); err != nil {
		return err
	}
	if err := e.state.ContentSetApproval(id, common.Address{}); err != nil {
		return err
	}
	item.Owner = to
	if err := e.state.ContentItemPut(item); err != nil {
		return err
	}
	if err := e.index(to, item); err != nil {
		return err
	}
	e.emit(TransferredEvent(id, from, to))
	return nil
}

// SafeTransferFrom is an alias of TransferFrom.
func (e *Engine) SafeTransferFrom(caller, from, to common.Address, id uint64) error {
	return e.TransferFrom(caller, from, to, id)
}

// Approve lets approved move the item once. The caller must be the owner or
// one of its operators.
func (e *Engine) Approve(caller, approved common.Address, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	item, err := e.liveItem(id)
	if err != nil {
		return err
	}
	if approved == item.Owner {
		return errors.New(errors.KindUnauthorized, "approval to current owner")
	}
	if caller != item.Owner {
		operator, err := e.state.ContentOperator(item.Owner, caller)
		if err != nil {
			return err
		}
		if !operator {
			return errors.New(errors.KindUnauthorized, "caller is not owner nor approved for all")
		}
	}
	if err := e.state.ContentSetApproval(id, approved); err != nil {
		return err
	}
	e.emit(ApprovalEvent(id, item.Owner, approved))
	return nil
}

// GetApproved returns the account approved for the item.
func (e *Engine) GetApproved(id uint64) (common.Address, error) {
	if err := e.ready(); err != nil {
		return common.Address{}, err
	}
	if _, err := e.liveItem(id); err != nil {
		return common.Address{}, err
	}
	return e.state.ContentApproval(id)
}

// SetApprovalForAll grants or revokes operator rights over every item of
// caller.
func (e *Engine) SetApprovalForAll(caller, operator common.Address, approved bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	if caller == operator {
		return errors.New(errors.KindUnauthorized, "approve to caller")
	}
	if types.IsZeroAddress(operator) {
		return errors.New(errors.KindNullAddress, "address can't be null")
	}
	return e.state.ContentSetOperator(caller, operator, approved)
}

// IsApprovedForAll reports whether operator manages every item of owner.
func (e *Engine) IsApprovedForAll(owner, operator common.Address) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	return e.state.ContentOperator(owner, operator)
}

// OwnerOf returns the owner of a live item.
func (e *Engine) OwnerOf(id uint64) (common.Address, error) {
	if err := e.ready(); err != nil {
		return common.Address{}, err
	}
	item, err := e.liveItem(id)
	if err != nil {
		return common.Address{}, err
	}
	return item.Owner, nil
}

// Exists reports whether id refers to a live item.
func (e *Engine) Exists(id uint64) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	item, ok, err := e.state.ContentItemGet(id)
	if err != nil {
		return false, err
	}
	return ok && !item.Burned, nil
}

// Item returns the stored record of id, burned items included.
func (e *Engine) Item(id uint64) (*types.ContentItem, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	item, ok, err := e.state.ContentItemGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.KindNotFound, "no content with this ID")
	}
	return item, nil
}

// TotalMinted returns the number of ids ever assigned.
func (e *Engine) TotalMinted() (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	return e.state.ContentNextID()
}

// BalanceOf returns the number of live items held by owner.
func (e *Engine) BalanceOf(owner common.Address) (uint64, error) {
	ids, err := e.TokensOfOwner(owner)
	if err != nil {
		return 0, err
	}
	return uint64(len(ids)), nil
}

// TokensOfOwner lists the live items of owner in acquisition order.
func (e *Engine) TokensOfOwner(owner common.Address) ([]uint64, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.state.ContentOwned(owner)
}

// TokenURI returns the item URI, or the base URI followed by the id when the
// item was minted without one.
func (e *Engine) TokenURI(id uint64) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	item, err := e.liveItem(id)
	if err != nil {
		return "", err
	}
	if item.URI != "" {
		return item.URI, nil
	}
	base, err := e.state.ContentBaseURI()
	if err != nil {
		return "", err
	}
	if base == "" {
		return "", nil
	}
	return base + strconv.FormatUint(id, 10), nil
}

// TokenPrice returns the current valuation of a live item.
func (e *Engine) TokenPrice(id uint64) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if _, err := e.liveItem(id); err != nil {
		return nil, err
	}
	return e.BaseReward(), nil
}

// GetCollectionsByAddress lists every collection name owner has used.
func (e *Engine) GetCollectionsByAddress(owner common.Address) ([]string, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.state.ContentCollections(owner)
}

// GetTokensIdsByCollectionName lists the live items owner keeps under name.
func (e *Engine) GetTokensIdsByCollectionName(owner common.Address, name string) ([]uint64, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.state.ContentCollectionIDs(owner, name)
}

// GetTokensURIsByCollectionName lists the URIs of the live items owner keeps
// under name.
func (e *Engine) GetTokensURIsByCollectionName(owner common.Address, name string) ([]string, error) {
	ids, err := e.GetTokensIdsByCollectionName(owner, name)
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(ids))
	for _, id := range ids {
		uri, err := e.TokenURI(id)
		if err != nil {
			return nil, err
		}
		uris = append(uris, uri)
	}
	return uris, nil
}
