package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wolfstreet/internal/repository"
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type KVRepository struct {
	db *sql.DB
}

func NewKVRepository(db *sql.DB) repository.KVStore {
	return &KVRepository{db: db}
}

func (r *KVRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createKVTable); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

func (r *KVRepository) View(ctx context.Context, fn func(tx repository.KVTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin view: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	return fn(&kvTx{tx: tx, readOnly: true})
}

func (r *KVRepository) Update(ctx context.Context, fn func(tx repository.KVTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}

	if err := fn(&kvTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

type kvTx struct {
	tx       *sql.Tx
	readOnly bool
}

func (t *kvTx) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := t.tx.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select key %s: %w", key, err)
	}
	return value, true, nil
}

func (t *kvTx) Set(ctx context.Context, key, value string) error {
	if t.readOnly {
		return repository.ErrReadOnly
	}
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO kv (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key,
		value,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert key %s: %w", key, err)
	}
	return nil
}

func (t *kvTx) Delete(ctx context.Context, key string) error {
	if t.readOnly {
		return repository.ErrReadOnly
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete key %s: %w", key, err)
	}
	return nil
}
