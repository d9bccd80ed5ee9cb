package kv

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
	BackendMemory   = "memory"
)

// Options selects and configures a backend.
//
// DSN is the SQLite file path or the Postgres connection string. Prefix is
// prepended to every key by the Redis and S3 backends.
type Options struct {
	Backend     string
	DSN         string
	RedisAddr   string
	Prefix      string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open connects the configured backend. The returned Closer releases its
// connections and must be closed by the caller.
func Open(ctx context.Context, o Options) (Repository, io.Closer, error) {
	switch o.Backend {
	case BackendSQLite, "":
		db, err := OpenSQLite(ctx, o.DSN)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteRepository(db), db, nil

	case BackendPostgres:
		db, err := OpenPostgres(ctx, o.DSN)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresRepository(db), db, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: o.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisRepository(client, o.Prefix), client, nil

	case BackendS3:
		client, err := NewS3Client(ctx, o.S3Region, o.S3Endpoint, o.S3AccessKey, o.S3SecretKey)
		if err != nil {
			return nil, nil, err
		}
		return NewS3Repository(client, o.S3Bucket, o.Prefix), nopCloser{}, nil

	case BackendMemory:
		return NewMemoryRepository(), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", common.ErrUnknownBackend, o.Backend)
	}
}
