package core

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"cryptopage/core/events"
	"cryptopage/core/state"
	"cryptopage/core/types"
	"cryptopage/native/bank"
	"cryptopage/native/comments"
	"cryptopage/native/content"
	"cryptopage/native/fees"
	"cryptopage/native/oracle"
	"cryptopage/native/token"
	"cryptopage/observability/metrics"
	"cryptopage/storage"
	"cryptopage/storage/trie"
)

var (
	headRootKey    = []byte("cryptopage/head/root")
	headVersionKey = []byte("cryptopage/head/version")
)

// Options configures a Ledger. Zero values keep the engine defaults.
type Options struct {
	Emitter    events.Emitter
	PoolSource oracle.PoolSource
	Now        func() int64
	Logger     *slog.Logger
	// MeterProvider receives the ledger instruments. Nil uses the global provider.
	MeterProvider        metric.MeterProvider
	InitialSupply        *big.Int
	RewardPerHourDivisor int64
	MintValue            *big.Int
	FlatMintReward       *big.Int
	FlatCommentReward    *big.Int
	// AllowMigrate lets Open resume state written under another layout version.
	AllowMigrate bool
}

// Ledger serialises every operation against the state trie. Update stages an
// operation on a copy of the trie and swaps it in only when the operation
// succeeds, so failed operations leave no trace.
type Ledger struct {
	mu      sync.Mutex
	db      storage.Database
	trie    *trie.Trie
	root    common.Hash
	version uint64
	opts    Options
	logger  *slog.Logger
	metrics *metrics.LedgerMetrics
	meter   *metrics.LedgerMeter
	tracer  trace.Tracer
}

// Tx exposes the engines bound to one staged state.
type Tx struct {
	ID       string
	Token    *token.Engine
	Bank     *bank.Engine
	Content  *content.Engine
	Comments *comments.Engine
	Oracle   *oracle.Adapter

	state *state.Manager
}

// State returns the state manager backing the transaction.
func (tx *Tx) State() *state.Manager { return tx.state }

// Open resumes the ledger from the head recorded in db, or starts from an empty
// state when none was committed.
func Open(db storage.Database, opts Options) (*Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("ledger: database required")
	}
	l := &Ledger{
		db:      db,
		opts:    opts,
		logger:  opts.Logger,
		metrics: metrics.Ledger(),
		meter:   metrics.NewLedgerMeter(opts.MeterProvider),
		tracer:  otel.Tracer("cryptopage/core"),
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.opts.Emitter == nil {
		l.opts.Emitter = events.NoopEmitter{}
	}

	var root []byte
	stored, err := db.Get(headRootKey)
	switch {
	case err == nil:
		root = stored
	case errors.Is(err, storage.ErrNotFound):
	default:
		return nil, fmt.Errorf("ledger: read head: %w", err)
	}
	tr, err := trie.NewTrie(db, root)
	if err != nil {
		return nil, fmt.Errorf("ledger: open state: %w", err)
	}
	if root != nil {
		if err := state.EnsureStateVersion(tr, opts.AllowMigrate); err != nil {
			return nil, err
		}
		l.root = common.BytesToHash(root)
		if raw, err := db.Get(headVersionKey); err == nil && len(raw) == 8 {
			l.version = binary.BigEndian.Uint64(raw)
		}
	}
	l.trie = tr
	return l, nil
}

func (l *Ledger) newTx(tr *trie.Trie, emitter events.Emitter, id string) *Tx {
	manager := state.NewManager(tr)

	adapter := oracle.NewAdapter()
	adapter.SetState(manager)
	adapter.SetPoolSource(l.opts.PoolSource)
	adapter.SetEmitter(emitter)

	tok := token.NewEngine()
	tok.SetState(manager)
	tok.Access().SetState(manager)
	tok.Access().SetEmitter(emitter)
	tok.SetOracle(adapter)
	tok.SetEmitter(emitter)
	tok.SetNowFunc(l.opts.Now)
	if l.opts.InitialSupply != nil {
		tok.SetInitialSupply(l.opts.InitialSupply)
	}
	if l.opts.RewardPerHourDivisor > 0 {
		tok.SetRewardPerHourDivisor(l.opts.RewardPerHourDivisor)
	}

	vault := bank.NewEngine()
	vault.SetState(manager)
	vault.Access().SetState(manager)
	vault.Access().SetEmitter(emitter)
	vault.SetOracle(adapter)
	vault.SetTokenEngine(tok)
	vault.SetEmitter(emitter)

	distributor := fees.Distributor{Token: tok, Collector: vault}

	registry := content.NewEngine()
	registry.SetState(manager)
	registry.Access().SetState(manager)
	registry.Access().SetEmitter(emitter)
	registry.SetToken(tok)
	registry.SetDistributor(distributor)
	registry.SetEmitter(emitter)
	registry.SetNowFunc(l.opts.Now)
	registry.SetRewards(l.opts.MintValue, l.opts.FlatMintReward)

	commentEngine := comments.NewEngine()
	commentEngine.SetState(manager)
	commentEngine.Access().SetState(manager)
	commentEngine.Access().SetEmitter(emitter)
	commentEngine.SetDistributor(distributor)
	commentEngine.SetFeeSource(registry)
	commentEngine.RegisterSource(registry.Address(), registry)
	commentEngine.SetEmitter(emitter)
	commentEngine.SetNowFunc(l.opts.Now)
	if l.opts.FlatCommentReward != nil {
		commentEngine.SetReward(l.opts.FlatCommentReward)
	}
	registry.SetComments(commentEngine)

	return &Tx{
		ID:       id,
		Token:    tok,
		Bank:     vault,
		Content:  registry,
		Comments: commentEngine,
		Oracle:   adapter,
		state:    manager,
	}
}

// Update runs fn against a staged copy of the state. On success the copy
// becomes the current state and the events raised by fn are delivered; on
// failure both are discarded.
func (l *Ledger) Update(ctx context.Context, op string, fn func(*Tx) error) error {
	if fn == nil {
		return fmt.Errorf("ledger: nil operation")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	txID := uuid.NewString()
	ctx, span := l.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(
		attribute.String("ledger.op", op),
		attribute.String("ledger.tx_id", txID),
	))
	defer span.End()
	start := time.Now()

	staged := l.trie.Copy()
	buffer := &events.Buffer{}
	tx := l.newTx(staged, buffer, txID)
	err := fn(tx)
	elapsed := time.Since(start)
	l.metrics.Observe(op, err, elapsed)
	l.meter.Observe(ctx, op, err, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.logger.WarnContext(ctx, "ledger operation failed",
			slog.String("op", op),
			slog.String("txID", txID),
			slog.Any("error", err))
		return err
	}

	l.trie = staged
	delivered := buffer.Flush(l.opts.Emitter)
	for _, evt := range delivered {
		l.metrics.RecordEvent(evt.EventType())
	}
	span.SetAttributes(attribute.Int("ledger.events", len(delivered)))
	l.publishGauges(tx)
	return nil
}

func (l *Ledger) publishGauges(tx *Tx) {
	if supply, err := tx.Token.TotalSupply(); err == nil {
		l.metrics.SetSupply(supply)
	}
	if balance, err := tx.Bank.Balance(); err == nil {
		l.metrics.SetBankBalance(balance)
	}
}

// View runs fn against the current state. Writes made by fn are discarded.
func (l *Ledger) View(ctx context.Context, fn func(*Tx) error) error {
	if fn == nil {
		return fmt.Errorf("ledger: nil operation")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	_, span := l.tracer.Start(ctx, "ledger.view")
	defer span.End()
	return fn(l.newTx(l.trie.Copy(), events.NoopEmitter{}, ""))
}

// Initialized reports whether Bootstrap has run on the current state.
func (l *Ledger) Initialized() (bool, error) {
	var ok bool
	err := l.View(context.Background(), func(tx *Tx) error {
		var err error
		ok, err = tx.state.ModuleInitialized(types.ModuleToken)
		return err
	})
	return ok, err
}

// Root returns the hash of the current, possibly uncommitted, state.
func (l *Ledger) Root() common.Hash {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.trie.Hash()
}

// Commit writes the current state to the database and records it as the head
// that Open resumes from.
func (l *Ledger) Commit() (common.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.version + 1
	root, err := l.trie.Commit(l.root, next)
	if err != nil {
		return common.Hash{}, fmt.Errorf("ledger: commit state: %w", err)
	}
	if err := l.db.Put(headRootKey, root.Bytes()); err != nil {
		return common.Hash{}, fmt.Errorf("ledger: write head: %w", err)
	}
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], next)
	if err := l.db.Put(headVersionKey, raw[:]); err != nil {
		return common.Hash{}, fmt.Errorf("ledger: write head version: %w", err)
	}
	l.root = root
	l.version = next
	l.metrics.RecordCommit()
	l.meter.RecordCommit(context.Background())
	return root, nil
}

// Version returns the number of commits written.
func (l *Ledger) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}
