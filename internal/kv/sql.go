package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userforms/internal/dbx"
	"github.com/dmitrijs2005/userforms/internal/filex"
	"github.com/dmitrijs2005/userforms/internal/kv/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type queries struct {
	get string
	set string
	del string
}

var sqliteQueries = queries{
	get: `SELECT value FROM kv WHERE key = ?`,
	set: `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	del: `DELETE FROM kv WHERE key = ?`,
}

var postgresQueries = queries{
	get: `SELECT value FROM kv WHERE key = $1`,
	set: `INSERT INTO kv (key, value) VALUES ($1, $2)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	del: `DELETE FROM kv WHERE key = $1`,
}

// SQLRepository keeps every key as one row of the kv table.
type SQLRepository struct {
	conn   *sql.DB
	db     dbx.DBTX
	q      queries
	txOpts *sql.TxOptions
}

// NewSQLiteRepository expects db to allow one open connection, as OpenSQLite
// sets up, which serialises Update transactions.
func NewSQLiteRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{conn: db, db: db, q: sqliteQueries}
}

// NewPostgresRepository runs Update as a serializable transaction. Under
// READ COMMITTED two concurrent updates could both read the old value. A
// conflicting update now fails instead.
func NewPostgresRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{
		conn:   db,
		db:     db,
		q:      postgresQueries,
		txOpts: &sql.TxOptions{Isolation: sql.LevelSerializable},
	}
}

func (r *SQLRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, r.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLRepository) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, r.q.set, key, value); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.q.del, key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

// Update reads key, passes the value to fn and stores the result, all in
// one transaction.
func (r *SQLRepository) Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error {
	return dbx.WithTx(ctx, r.conn, r.txOpts, func(ctx context.Context, tx dbx.DBTX) error {
		txr := &SQLRepository{db: tx, q: r.q}

		old, err := txr.Get(ctx, key)
		if err != nil {
			return err
		}
		next, err := fn(old)
		if err != nil {
			return err
		}
		return txr.Set(ctx, key, next)
	})
}

// RunMigrations applies the embedded migrations for dialect ("sqlite3" or
// "postgres") to db. Already-applied migrations are skipped.
func RunMigrations(ctx context.Context, db *sql.DB, dialect string) error {
	dir := "sqlite"
	if dialect == "postgres" {
		dir = "postgres"
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, dir)
}

// OpenSQLite opens (creating if needed) the SQLite file at path and brings
// its schema up to date.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("db dir error: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db, "sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

// OpenPostgres connects through pgx and brings the schema up to date.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := RunMigrations(ctx, db, "postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}
