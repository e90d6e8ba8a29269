package memory

import (
	"context"
	"sync"

	"wolfstreet/internal/repository"
)

// KVRepository keeps documents in process memory. Used by tests and by the
// server when no database path is configured.
type KVRepository struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewKVRepository() *KVRepository {
	return &KVRepository{data: make(map[string]string)}
}

func (r *KVRepository) Init(ctx context.Context) error {
	return nil
}

func (r *KVRepository) View(ctx context.Context, fn func(tx repository.KVTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(&kvTx{base: r.data, readOnly: true})
}

func (r *KVRepository) Update(ctx context.Context, fn func(tx repository.KVTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &kvTx{
		base:    r.data,
		staged:  make(map[string]string),
		deleted: make(map[string]struct{}),
	}
	if err := fn(tx); err != nil {
		return err
	}
	for key := range tx.deleted {
		delete(r.data, key)
	}
	for key, value := range tx.staged {
		r.data[key] = value
	}
	return nil
}

type kvTx struct {
	base     map[string]string
	staged   map[string]string
	deleted  map[string]struct{}
	readOnly bool
}

func (t *kvTx) Get(ctx context.Context, key string) (string, bool, error) {
	if _, gone := t.deleted[key]; gone {
		return "", false, nil
	}
	if v, ok := t.staged[key]; ok {
		return v, true, nil
	}
	v, ok := t.base[key]
	return v, ok, nil
}

func (t *kvTx) Set(ctx context.Context, key, value string) error {
	if t.readOnly {
		return repository.ErrReadOnly
	}
	delete(t.deleted, key)
	t.staged[key] = value
	return nil
}

func (t *kvTx) Delete(ctx context.Context, key string) error {
	if t.readOnly {
		return repository.ErrReadOnly
	}
	delete(t.staged, key)
	t.deleted[key] = struct{}{}
	return nil
}

var _ repository.KVStore = (*KVRepository)(nil)
