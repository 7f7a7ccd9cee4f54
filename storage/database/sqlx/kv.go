package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/smartlearn/core"
)

// pq error code raised when the database volume is full
const diskFullCode = "53100"

// KVStore keeps each key as one row of the kv_entries table.
type KVStore struct {
	db *sqlx.DB
}

var _ core.KVStore = (*KVStore)(nil) // interface compliance check

func NewKVStore(db *sqlx.DB) *KVStore {
	return &KVStore{db: db}
}

func (repo *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := repo.db.GetContext(ctx, &value, `SELECT value FROM kv_entries WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting %q", key)
	}
	return value, nil
}

func (repo *KVStore) Set(ctx context.Context, key string, value []byte) error {
	const q = `
		INSERT INTO kv_entries (key, value, updated_at, version)
		VALUES ($1, $2, now(), 1)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, version = kv_entries.version + 1`
	if _, err := repo.db.ExecContext(ctx, q, key, value); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == diskFullCode {
			return errors.Wrapf(core.ErrQuotaExceeded, "setting %q: %v", key, err)
		}
		return errors.Wrapf(err, "setting %q", key)
	}
	return nil
}

func (repo *KVStore) Delete(ctx context.Context, key string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	return errors.Wrapf(err, "deleting %q", key)
}

// Version returns how many times `key` was written.
func (repo *KVStore) Version(ctx context.Context, key string) (int64, error) {
	var version int64
	err := repo.db.GetContext(ctx, &version, `SELECT version FROM kv_entries WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return version, errors.Wrapf(err, "getting version of %q", key)
}

func (repo *KVStore) Close() error {
	return repo.db.Close()
}
