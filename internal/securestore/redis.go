package securestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore shares sealed credentials between processes on one host (for
// example several CLI invocations driving the same account).
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	sealer *Sealer
}

func NewRedisStore(ctx context.Context, addr, prefix string, sealer *Sealer) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("securestore: missing redis addr")
	}
	if sealer == nil {
		return nil, errors.New("securestore: sealer required")
	}
	if prefix == "" {
		prefix = "connectu:"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("securestore: redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, prefix: prefix, sealer: sealer}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	plain, err := r.sealer.Open(raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	sealed, err := r.sealer.Seal([]byte(value))
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+key, sealed, 0).Err()
}

// Delete issues a single DEL so all keys go together.
func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.rdb.Del(ctx, full...).Err()
}

func (r *RedisStore) Close() error { return r.rdb.Close() }
