package comments

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/errors"
	"cryptopage/core/events"
	"cryptopage/core/types"
	"cryptopage/native/fees"
	"cryptopage/native/oracle"
	"cryptopage/native/roles"
)

// DefaultFlatCommentReward is the gross reward paid per comment.
var DefaultFlatCommentReward = new(big.Int).Set(oracle.One)

type engineState interface {
	CommentCount(ref common.Address, itemID uint64) (uint64, error)
	CommentGet(ref common.Address, itemID, id uint64) (*types.Comment, bool, error)
	CommentAppend(comment *types.Comment) error
	CommentIDsOf(ref common.Address, itemID uint64, author common.Address) ([]uint64, error)
	CommentStatistic(ref common.Address, itemID uint64) (types.Statistic, error)
	CommentSetStatistic(ref common.Address, itemID uint64, stat types.Statistic) error
	CommentTotals() (types.Statistic, error)
	CommentSetTotals(stat types.Statistic) error
	CommentActivated(ref common.Address, itemID uint64) (bool, error)
	CommentSetActivated(ref common.Address, itemID uint64, active bool) error
	CommentHasLog(ref common.Address, itemID uint64) (bool, error)
	CommentsActive() (bool, error)
	CommentsSetActive(active bool) error
	ModuleInitialized(scope string) (bool, error)
	SetModuleInitialized(scope string) error
}

// ContentSource is a content collection comments can attach to.
type ContentSource interface {
	Exists(id uint64) (bool, error)
	OwnerOf(id uint64) (common.Address, error)
}

// FeeSource supplies the comment fee rate and the treasury.
type FeeSource interface {
	FeePolicy() (*types.FeePolicy, error)
}

// StatisticWithComments pairs an item's tally with its comments.
type StatisticWithComments struct {
	Statistic types.Statistic
	Comments  []*types.Comment
}

// Engine keeps append-only comment logs keyed by (content reference, item id).
type Engine struct {
	state       engineState
	access      *roles.Registry
	distributor fees.Distributor
	feeSource   FeeSource
	sources     map[common.Address]ContentSource
	emitter     events.Emitter
	nowFn       func() int64
	reward      *big.Int
	address     common.Address
}

// NewEngine constructs a comment engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		access:  roles.NewRegistry(types.ModuleComments),
		sources: make(map[common.Address]ContentSource),
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
		reward:  new(big.Int).Set(DefaultFlatCommentReward),
		address: types.ModuleAddress(types.ModuleComments),
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

// SetDistributor configures how comment rewards are minted.
func (e *Engine) SetDistributor(d fees.Distributor) { e.distributor = d }

// SetFeeSource configures where the comment fee and treasury are read from.
func (e *Engine) SetFeeSource(source FeeSource) { e.feeSource = source }

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

// SetReward overrides the gross reward paid per comment. Zero disables it.
func (e *Engine) SetReward(amount *big.Int) {
	if amount == nil || amount.Sign() < 0 {
		return
	}
	e.reward = new(big.Int).Set(amount)
}

// RegisterSource makes the collection at ref commentable.
func (e *Engine) RegisterSource(ref common.Address, source ContentSource) {
	if source == nil {
		delete(e.sources, ref)
		return
	}
	e.sources[ref] = source
}

// Access exposes the role registry of the engine.
func (e *Engine) Access() *roles.Registry { return e.access }

// Address returns the account the engine acts as when minting rewards.
func (e *Engine) Address() common.Address { return e.address }

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
		return fmt.Errorf("comments: state not configured")
	}
	return nil
}

// Initialize makes caller the owner of the registry.
func (e *Engine) Initialize(caller common.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	if ok, err := e.state.ModuleInitialized(types.ModuleComments); err != nil {
		return err
	} else if ok {
		return errors.New(errors.KindAlreadyInitialized, "comments: already initialized")
	}
	if err := e.access.InitOwner(caller); err != nil {
		return err
	}
	return e.state.SetModuleInitialized(types.ModuleComments)
}

// Active reports the global comment switch.
func (e *Engine) Active() (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	return e.state.CommentsActive()
}

// ToggleActive flips the global comment switch and returns the new value.
// Owner only.
func (e *Engine) ToggleActive(caller common.Address) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	if err := e.access.RequireOwner(caller); err != nil {
		return false, err
	}
	active, err := e.state.CommentsActive()
	if err != nil {
		return false, err
	}
	if err := e.state.CommentsSetActive(!active); err != nil {
		return false, err
	}
	e.emit(ToggledEvent(!active))
	return !active, nil
}

func (e *Engine) source(ref common.Address) (ContentSource, error) {
	source, ok := e.sources[ref]
	if !ok {
		return nil, errors.New(errors.KindNotFound, "content collection does not exist")
	}
	return source, nil
}

func (e *Engine) requireItem(ref common.Address, itemID uint64) (ContentSource, error) {
	source, err := e.source(ref)
	if err != nil {
		return nil, err
	}
	exists, err := source.Exists(itemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New(errors.KindNotFound, "no content with this ID")
	}
	return source, nil
}

func (e *Engine) setActivated(caller, ref common.Address, itemID uint64, active bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	source, err := e.requireItem(ref, itemID)
	if err != nil {
		return err
	}
	if caller != ref {
		owner, err := source.OwnerOf(itemID)
		if err != nil {
			return err
		}
		if owner != caller {
			return errors.New(errors.KindUnauthorized, "allowed only for owner")
		}
	}
	if err := e.state.CommentSetActivated(ref, itemID, active); err != nil {
		return err
	}
	e.emit(ActivationEvent(ref, itemID, active))
	return nil
}

// ActivateComments opens the item for comments. Callable by the item owner or
// the content collection itself.
func (e *Engine) ActivateComments(caller, ref common.Address, itemID uint64) error {
	return e.setActivated(caller, ref, itemID, true)
}

// DeactivateComments closes the item for new comments. Existing comments stay
// readable.
func (e *Engine) DeactivateComments(caller, ref common.Address, itemID uint64) error {
	return e.setActivated(caller, ref, itemID, false)
}

// HasComments reports whether the item accepts comments.
func (e *Engine) HasComments(ref common.Address, itemID uint64) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	return e.state.CommentActivated(ref, itemID)
}

// HasLog fails with NotFound unless a comment log was opened for the item.
func (e *Engine) HasLog(ref common.Address, itemID uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	ok, err := e.state.CommentHasLog(ref, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.KindNotFound, "content collection does not exist")
	}
	return nil
}

// CreateComment appends a comment by author to the item, updates the tallies
// and pays the comment reward.
func (e *Engine) CreateComment(caller, ref common.Address, itemID uint64, author common.Address, text []byte, like bool) (*types.Comment, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	active, err := e.state.CommentsActive()
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, errors.New(errors.KindNotActivated, "comments are not active")
	}
	if _, err := e.requireItem(ref, itemID); err != nil {
		return nil, err
	}
	activated, err := e.state.CommentActivated(ref, itemID)
	if err != nil {
		return nil, err
	}
	if !activated {
		return nil, errors.New(errors.KindNotActivated, "comments are not activated for this item")
	}
	if types.IsZeroAddress(author) {
		return nil, errors.New(errors.KindNullAddress, "author can't be null")
	}

	comment := &types.Comment{
		ContentRef: ref,
		ItemID:     itemID,
		Author:     author,
		Text:       append([]byte(nil), text...),
		Like:       like,
		CreatedAt:  e.now(),
	}
	if err := e.state.CommentAppend(comment); err != nil {
		return nil, err
	}
	stat, err := e.state.CommentStatistic(ref, itemID)
	if err != nil {
		return nil, err
	}
	stat.Record(like)
	if err := e.state.CommentSetStatistic(ref, itemID, stat); err != nil {
		return nil, err
	}
	totals, err := e.state.CommentTotals()
	if err != nil {
		return nil, err
	}
	totals.Record(like)
	if err := e.state.CommentSetTotals(totals); err != nil {
		return nil, err
	}
	if err := e.payReward(author); err != nil {
		return nil, err
	}
	e.emit(CommentCreatedEvent(comment, caller))
	return comment, nil
}

func (e *Engine) payReward(author common.Address) error {
	if e.reward.Sign() == 0 || e.distributor.Token == nil {
		return nil
	}
	if e.feeSource == nil {
		return errors.New(errors.KindNotInitialized, "comments: fee policy not configured")
	}
	policy, err := e.feeSource.FeePolicy()
	if err != nil {
		return err
	}
	_, err = e.distributor.Pay(e.address, author, policy.Treasury, types.FeeDomainComment, e.reward, policy.CommentFeeBps)
	return err
}

// GetCommentByID returns a single comment of the item.
func (e *Engine) GetCommentByID(ref common.Address, itemID, id uint64) (*types.Comment, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	comment, ok, err := e.state.CommentGet(ref, itemID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.KindNotFound, "no comment with this ID")
	}
	return comment, nil
}

// GetCommentsByIDs returns the requested comments of the item in request
// order.
func (e *Engine) GetCommentsByIDs(ref common.Address, itemID uint64, ids []uint64) ([]*types.Comment, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errors.New(errors.KindEmptyInput, "ids length must be more than zero")
	}
	count, err := e.state.CommentCount(ref, itemID)
	if err != nil {
		return nil, err
	}
	if uint64(len(ids)) > count {
		return nil, errors.New(errors.KindTooMany, "ids length must be less or equal comments count")
	}
	out := make([]*types.Comment, 0, len(ids))
	for _, id := range ids {
		comment, err := e.GetCommentByID(ref, itemID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, comment)
	}
	return out, nil
}

// GetCommentsIDs lists every comment id of the item.
func (e *Engine) GetCommentsIDs(ref common.Address, itemID uint64) ([]uint64, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	count, err := e.state.CommentCount(ref, itemID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, count)
	for i := range ids {
		ids[i] = uint64(i)
	}
	return ids, nil
}

// GetComments returns every comment of the item in id order.
func (e *Engine) GetComments(ref common.Address, itemID uint64) ([]*types.Comment, error) {
	ids, err := e.GetCommentsIDs(ref, itemID)
	if err != nil {
		return nil, err
	}
	return e.load(ref, itemID, ids)
}

// GetCommentsOf returns the comments author wrote on the item.
func (e *Engine) GetCommentsOf(ref common.Address, itemID uint64, author common.Address) ([]*types.Comment, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	ids, err := e.state.CommentIDsOf(ref, itemID, author)
	if err != nil {
		return nil, err
	}
	return e.load(ref, itemID, ids)
}

func (e *Engine) load(ref common.Address, itemID uint64, ids []uint64) ([]*types.Comment, error) {
	out := make([]*types.Comment, 0, len(ids))
	for _, id := range ids {
		comment, err := e.GetCommentByID(ref, itemID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, comment)
	}
	return out, nil
}

// GetStatistic returns the like and dislike tally of the item.
func (e *Engine) GetStatistic(ref common.Address, itemID uint64) (types.Statistic, error) {
	if err := e.ready(); err != nil {
		return types.Statistic{}, err
	}
	return e.state.CommentStatistic(ref, itemID)
}

// GetStatisticWithComments returns the tally together with every comment.
func (e *Engine) GetStatisticWithComments(ref common.Address, itemID uint64) (*StatisticWithComments, error) {
	stat, err := e.GetStatistic(ref, itemID)
	if err != nil {
		return nil, err
	}
	list, err := e.GetComments(ref, itemID)
	if err != nil {
		return nil, err
	}
	return &StatisticWithComments{Statistic: stat, Comments: list}, nil
}

// TotalStats returns the tally across every item.
func (e *Engine) TotalStats() (types.Statistic, error) {
	if err := e.ready(); err != nil {
		return types.Statistic{}, err
	}
	return e.state.CommentTotals()
}
