package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wolfstreet/internal/repository"
)

func openTestRepo(t *testing.T) repository.KVStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "wolfstreet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewKVRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestKVRepository_SetGetDelete(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, func(tx repository.KVTx) error {
		if err := tx.Set(ctx, "users", `[]`); err != nil {
			return err
		}
		return tx.Set(ctx, "users", `[{"id":"user-1"}]`)
	}))

	require.NoError(t, repo.View(ctx, func(tx repository.KVTx) error {
		v, ok, err := tx.Get(ctx, "users")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"user-1"}]`, v)

		_, ok, err = tx.Get(ctx, "groups")
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))

	require.NoError(t, repo.Update(ctx, func(tx repository.KVTx) error {
		return tx.Delete(ctx, "users")
	}))
	require.NoError(t, repo.View(ctx, func(tx repository.KVTx) error {
		_, ok, err := tx.Get(ctx, "users")
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestKVRepository_UpdateIsAtomic(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Update(ctx, func(tx repository.KVTx) error {
		if err := tx.Set(ctx, "vacancies", `[{"id":"vac-1"}]`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, repo.View(ctx, func(tx repository.KVTx) error {
		_, ok, err := tx.Get(ctx, "vacancies")
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestKVRepository_ViewIsReadOnly(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	err := repo.View(ctx, func(tx repository.KVTx) error {
		return tx.Set(ctx, "users", `[]`)
	})
	assert.ErrorIs(t, err, repository.ErrReadOnly)
}

func TestKVRepository_GetWrapsDBError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^SELECT\s+value\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\?$`).
		WithArgs("users").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	repo := NewKVRepository(db)
	err = repo.Update(context.Background(), func(tx repository.KVTx) error {
		_, _, err := tx.Get(context.Background(), "users")
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select key users: disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_CommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+kv`).
		WithArgs("users", "[]", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("locked"))

	repo := NewKVRepository(db)
	err = repo.Update(context.Background(), func(tx repository.KVTx) error {
		return tx.Set(context.Background(), "users", "[]")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit update")
	assert.NoError(t, mock.ExpectationsWereMet())
}
