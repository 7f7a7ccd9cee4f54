package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/smartlearn/core"
)

type (
	// DB keeps values in a map. Nothing survives the process.
	DB struct {
		mutex sync.RWMutex
		table map[string][]byte
		quota int // max total bytes; 0 means unlimited
		used  int
	}

	Option func(db *DB)
)

var _ core.KVStore = (*DB)(nil) // interface compliance check

// WithQuota makes Set fail with core.ErrQuotaExceeded once `bytes` would be exceeded.
func WithQuota(bytes int) Option {
	return func(db *DB) { db.quota = bytes }
}

func Open(opts ...Option) *DB {
	db := &DB{table: make(map[string][]byte)}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

func (db *DB) Get(_ context.Context, key string) ([]byte, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if v, ok := db.table[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, core.ErrKeyNotFound
}

func (db *DB) Set(_ context.Context, key string, value []byte) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	used := db.used - len(db.table[key]) + len(value)
	if db.quota > 0 && used > db.quota {
		return core.ErrQuotaExceeded
	}
	db.table[key] = append([]byte(nil), value...)
	db.used = used
	return nil
}

func (db *DB) Delete(_ context.Context, key string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.used -= len(db.table[key])
	delete(db.table, key)
	return nil
}

// SetQuota changes the quota of a running store.
func (db *DB) SetQuota(bytes int) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.quota = bytes
}

func (db *DB) Close() error { return nil }
