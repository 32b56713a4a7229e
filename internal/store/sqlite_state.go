package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const (
	sqliteFileName = "teamtz.sqlite"
	lockFileName   = "teamtz.lock"
)

// lockTimeout bounds how long a writer waits for another process (TUI vs
// CLI) to finish its write.
const lockTimeout = 5 * time.Second

var ErrStoreLocked = errors.New("store is locked by another process")

// SQLiteKV is a KV backed by a single-table SQLite file. Writes take an
// inter-process file lock.
type SQLiteKV struct {
	db   *sql.DB
	lock *flock.Flock
}

func (s Store) sqlitePath() string { return filepath.Join(s.Dir, sqliteFileName) }

func (s Store) lockPath() string { return filepath.Join(s.Dir, lockFileName) }

// OpenKV opens (creating if needed) the workspace SQLite file.
func (s Store) OpenKV(ctx context.Context) (*SQLiteKV, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteKV{db: db, lock: flock.New(s.lockPath())}, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (kv *SQLiteKV) Close() error {
	return kv.db.Close()
}

func (kv *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := kv.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (kv *SQLiteKV) Put(ctx context.Context, entries map[string]string) error {
	lctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	ok, err := kv.lock.TryLockContext(lctx, 25*time.Millisecond)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreLocked, err)
	}
	if !ok {
		return ErrStoreLocked
	}
	defer func() { _ = kv.lock.Unlock() }()

	tx, err := kv.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := time.Now().UTC().UnixMilli()
	for k, v := range entries {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`, k, v, nowMs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Keys lists stored keys with their last write time. Used by doctor.
func (kv *SQLiteKV) Keys(ctx context.Context) (map[string]time.Time, error) {
	rows, err := kv.db.QueryContext(ctx, `SELECT k, updated_at_unixms FROM kv`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]time.Time{}
	for rows.Next() {
		var k string
		var ms int64
		if err := rows.Scan(&k, &ms); err != nil {
			return nil, err
		}
		out[k] = time.UnixMilli(ms).UTC()
	}
	return out, rows.Err()
}
