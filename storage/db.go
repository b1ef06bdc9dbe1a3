package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	gethleveldb "github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// Database is a generic interface for a key-value store.
// This allows the ledger to use any database backend (in-memory or persistent).
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// TrieDB returns the trie node database sharing this store.
	TrieDB() *triedb.Database
	Close() // A way to gracefully shut down the database connection.
}

// kvStore adapts a go-ethereum key-value store to the Database interface.
type kvStore struct {
	disk ethdb.Database

	once   sync.Once
	trieDB *triedb.Database
}

func newKVStore(kv ethdb.KeyValueStore) *kvStore {
	return &kvStore{disk: rawdb.NewDatabase(kv)}
}

func (s *kvStore) Put(key []byte, value []byte) error {
	return s.disk.Put(key, value)
}

func (s *kvStore) Get(key []byte) ([]byte, error) {
	ok, err := s.disk.Has(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.disk.Get(key)
}

func (s *kvStore) Has(key []byte) (bool, error) {
	return s.disk.Has(key)
}

func (s *kvStore) TrieDB() *triedb.Database {
	s.once.Do(func() {
		s.trieDB = triedb.NewDatabase(s.disk, triedb.HashDefaults)
	})
	return s.trieDB
}

func (s *kvStore) close() {
	if s.trieDB != nil {
		s.trieDB.Close()
	}
	s.disk.Close()
}

// --- In-Memory DB (for testing) ---

type MemDB struct {
	*kvStore
}

func NewMemDB() *MemDB {
	return &MemDB{kvStore: newKVStore(memorydb.New())}
}

// Close satisfies the Database interface for MemDB.
func (db *MemDB) Close() {
	db.kvStore.close()
}

// --- Persistent DB ---

// LevelDBOptions tunes the persistent store.
type LevelDBOptions struct {
	CacheMB  int
	Handles  int
	ReadOnly bool
}

// LevelDB is a persistent key-value store using LevelDB.
type LevelDB struct {
	*kvStore
	path string
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	return NewLevelDBWithOptions(path, LevelDBOptions{})
}

// NewLevelDBWithOptions opens a LevelDB database applying the supplied
// cache, handle and read-only settings.
func NewLevelDBWithOptions(path string, opts LevelDBOptions) (*LevelDB, error) {
	kv, err := gethleveldb.NewCustom(path, "cryptopage/db/", func(o *opt.Options) {
		if opts.CacheMB > 0 {
			o.BlockCacheCapacity = opts.CacheMB / 2 * opt.MiB
			o.WriteBuffer = opts.CacheMB / 4 * opt.MiB
		}
		if opts.Handles > 0 {
			o.OpenFilesCacheCapacity = opts.Handles
		}
		o.ReadOnly = opts.ReadOnly
	})
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LevelDB{kvStore: newKVStore(kv), path: path}, nil
}

// Path returns the directory backing the database.
func (ldb *LevelDB) Path() string {
	return ldb.path
}

// Close closes the database connection.
func (ldb *LevelDB) Close() {
	ldb.kvStore.close()
}
