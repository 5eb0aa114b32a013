package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"backlog/internal/models"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type dialect struct {
	driver        string
	migrationsDir string
	txOptions     *sql.TxOptions
}

var dialects = map[string]dialect{
	DriverSQLite: {
		driver:        DriverSQLite,
		migrationsDir: "migrations/sqlite",
		// Write locking comes from _txlock=immediate in the DSN.
	},
	DriverPostgres: {
		driver:        DriverPostgres,
		migrationsDir: "migrations/postgres",
		txOptions:     &sql.TxOptions{Isolation: sql.LevelSerializable},
	},
}

// SQLStore implements the Store interface on top of database/sql.
type SQLStore struct {
	*queries
	db      *sqlx.DB
	dialect dialect
}

// NewSQLiteStore creates a new SQLite store with the given database path and applies migrations.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	dsn := dbPath + "?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000"
	return open(DriverSQLite, dsn)
}

// NewPostgresStore connects to Postgres through pgx and applies migrations.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	return open(DriverPostgres, dsn)
}

// New opens the store for the given driver name.
func New(driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite:
		return NewSQLiteStore(dsn)
	case DriverPostgres:
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewFromDB wraps an already opened database without running migrations.
func NewFromDB(db *sql.DB, driver string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	xdb := sqlx.NewDb(db, driver)
	return &SQLStore{queries: &queries{db: xdb}, db: xdb, dialect: d}, nil
}

func open(driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer, and in-memory databases live in one connection.
		db.SetMaxOpenConns(1)
	}

	store, err := NewFromDB(db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := store.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Driver returns the database driver name.
func (s *SQLStore) Driver() string {
	return s.dialect.driver
}

// Migrate applies pending schema migrations.
func (s *SQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db, s.dialect.migrationsDir)
}

// AppliedMigrations lists the migrations already recorded in the database.
func (s *SQLStore) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	return listAppliedMigrations(ctx, s.db)
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a transaction.
func (s *SQLStore) InTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, s.dialect.txOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &queries{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// queries implements Queries against either the database or an open transaction.
type queries struct {
	db sqlx.ExtContext
}

func (q *queries) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q.db, dest, q.db.Rebind(query), args...)
}

func (q *queries) list(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q.db, dest, q.db.Rebind(query), args...)
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.db.Rebind(query), args...)
}

// execOne runs a statement that must touch exactly one row identified by id.
// Driver failures are wrapped with action; a missing row is a bare NotFoundError.
func (q *queries) execOne(ctx context.Context, action, entity string, id int64, query string, args ...any) error {
	result, err := q.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if n == 0 {
		return models.NotFound(entity, id)
	}

	return nil
}

func (q *queries) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var exists bool
	if err := q.get(ctx, &exists, query, args...); err != nil {
		return false, err
	}
	return exists, nil
}
