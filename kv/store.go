// Package kv provides the string key-value slots that saved recipes are
// persisted in. Every backend makes each Get and Set atomic for its key; none
// offers transactions across keys.
package kv

import (
	"context"
	"fmt"
	"io"

	"recipe-desk/config"
)

// Store is a flat string-to-string persistence collaborator.
type Store interface {
	// Get returns ok=false when key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the backend named by cfg.Driver. The returned closer releases
// any connection the backend holds.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, io.Closer, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemory(), nopCloser{}, nil
	case "file":
		s, err := NewFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case "redis":
		s, err := DialRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "sqlite":
		s, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
