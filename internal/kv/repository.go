// Package kv is the key-value store the user list is persisted in.
//
// The contract mirrors a browser's localStorage: Get returns (nil, nil) for
// an absent key, Set overwrites, Delete of an absent key is not an error.
// Backends: SQLite (default), Postgres, Redis, S3 and in-process memory.
package kv

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Updater is implemented by backends that can read-modify-write a key
// atomically.
type Updater interface {
	Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error
}

// Update applies fn to the value under key. It uses the backend's atomic
// Update when there is one and falls back to Get followed by Set.
func Update(ctx context.Context, r Repository, key string, fn func(old []byte) ([]byte, error)) error {
	if u, ok := r.(Updater); ok {
		return u.Update(ctx, key, fn)
	}

	old, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	next, err := fn(old)
	if err != nil {
		return err
	}
	return r.Set(ctx, key, next)
}
