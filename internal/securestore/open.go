package securestore

import (
	"context"
	"fmt"
	"strings"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Options struct {
	Backend     string
	Path        string
	Passphrase  string
	RedisAddr   string
	RedisPrefix string
}

// Open builds the configured backend. Every persistent backend seals values
// with a key derived from Passphrase.
func Open(ctx context.Context, opts Options) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" || backend == BackendMemory {
		return NewMemoryStore(), nil
	}
	sealer, err := NewSealer(opts.Passphrase)
	if err != nil {
		return nil, err
	}
	switch backend {
	case BackendFile:
		return NewFileStore(opts.Path, sealer)
	case BackendSQLite:
		return NewSQLiteStore(opts.Path, sealer)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPrefix, sealer)
	default:
		return nil, fmt.Errorf("securestore: unknown backend %q", opts.Backend)
	}
}
