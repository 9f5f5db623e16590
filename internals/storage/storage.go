package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("record already exists")
	ErrConstraint = errors.New("constraint violation")
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task TEXT NOT NULL,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);`

// Storage owns the connection pool. Request handlers never touch the pool
// directly; they check out a Session for the lifetime of one request.
type Storage struct {
	db *sql.DB
}

// New opens the SQLite file at path with foreign keys enforced and creates
// the schema if it does not exist yet.
func New(ctx context.Context, path string, maxOpenConns int) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	// Transactions take the write lock at BEGIN. A deferred transaction that
	// later upgrades from a read lock fails with SQLITE_BUSY without waiting.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Session checks out a dedicated connection. Callers must Close it.
func (s *Storage) Session(ctx context.Context) (*Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn}, nil
}

// Ping reports whether the database answers.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the pool; open sessions must be closed first.
func (s *Storage) Close() error {
	return s.db.Close()
}

// classify maps SQLite constraint failures onto the package sentinels.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	return err
}
