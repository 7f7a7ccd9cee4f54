package redisdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/smartlearn/core"
)

// DB stores each key as a plain redis string under a common prefix.
type DB struct {
	client *redis.Client
	prefix string
}

var _ core.KVStore = (*DB)(nil) // interface compliance check

func Open(ctx context.Context, conf core.RedisConfig) (*DB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", conf.Addr)
	}
	return &DB{client: client, prefix: conf.KeyPrefix}, nil
}

func (s *DB) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting %q", key)
	}
	return v, nil
}

func (s *DB) Set(ctx context.Context, key string, value []byte) error {
	err := s.client.Set(ctx, s.prefix+key, value, 0).Err()
	if err != nil && strings.HasPrefix(err.Error(), "OOM") {
		return errors.Wrapf(core.ErrQuotaExceeded, "setting %q: %v", key, err)
	}
	return errors.Wrapf(err, "setting %q", key)
}

func (s *DB) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(s.client.Del(ctx, s.prefix+key).Err(), "deleting %q", key)
}

func (s *DB) Close() error {
	return s.client.Close()
}
