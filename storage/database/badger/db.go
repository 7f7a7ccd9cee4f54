package badgerdb

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/smartlearn/core"
)

// DB is an embedded on-disk store, the default engine for a single machine.
type DB struct {
	db *badger.DB
}

var _ core.KVStore = (*DB)(nil) // interface compliance check

// Open opens (or creates) the store in `dir`. An empty dir keeps everything in memory.
func Open(dir string, logger core.Logger) (*DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger at %q", dir)
	}
	return &DB{db: db}, nil
}

func (s *DB) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting %q", key)
	}
	return value, nil
}

func (s *DB) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if errors.Is(err, badger.ErrTxnTooBig) {
		return errors.Wrapf(core.ErrQuotaExceeded, "setting %q", key)
	}
	return errors.Wrapf(err, "setting %q", key)
}

func (s *DB) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return errors.Wrapf(err, "deleting %q", key)
}

func (s *DB) Close() error {
	return s.db.Close()
}

// badgerLogger forwards badger's logs to a core.Logger.
type badgerLogger struct {
	logger core.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.logger.Error("badger: " + fmt.Sprintf(f, v...)) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.logger.Warn("badger: " + fmt.Sprintf(f, v...)) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.logger.Info("badger: " + fmt.Sprintf(f, v...)) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.logger.Debug("badger: " + fmt.Sprintf(f, v...)) }
