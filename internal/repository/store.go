package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"wolfstreet/internal/domain"
)

// Keys of the persisted layout.
const (
	KeyUsers       = "users"
	KeyGroups      = "groups"
	KeyVacancies   = "vacancies"
	KeyCurrentUser = "currentUser"
	KeyCredentials = "credentials"
)

// Store gives typed access to the users, groups and vacancies collections and
// the currentUser singleton.
type Store struct {
	kv KVStore
}

func NewStore(kv KVStore) *Store {
	return &Store{kv: kv}
}

// Init prepares the underlying key/value backend.
func (s *Store) Init(ctx context.Context) error {
	return s.kv.Init(ctx)
}

// View runs fn against a read-only snapshot of the collections.
func (s *Store) View(ctx context.Context, fn func(c *Collections) error) error {
	return s.kv.View(ctx, func(tx KVTx) error {
		return fn(&Collections{tx: tx})
	})
}

// Update runs fn as a single read-modify-write transaction.
func (s *Store) Update(ctx context.Context, fn func(c *Collections) error) error {
	return s.kv.Update(ctx, func(tx KVTx) error {
		return fn(&Collections{tx: tx})
	})
}

// Collections is the typed view over one transaction.
type Collections struct {
	tx KVTx
}

func (c *Collections) Users(ctx context.Context) ([]domain.User, error) {
	return readList[domain.User](ctx, c.tx, KeyUsers)
}

func (c *Collections) PutUsers(ctx context.Context, users []domain.User) error {
	return writeJSON(ctx, c.tx, KeyUsers, nonNil(users))
}

func (c *Collections) Groups(ctx context.Context) ([]domain.Group, error) {
	return readList[domain.Group](ctx, c.tx, KeyGroups)
}

func (c *Collections) PutGroups(ctx context.Context, groups []domain.Group) error {
	return writeJSON(ctx, c.tx, KeyGroups, nonNil(groups))
}

func (c *Collections) Vacancies(ctx context.Context) ([]domain.Vacancy, error) {
	return readList[domain.Vacancy](ctx, c.tx, KeyVacancies)
}

func (c *Collections) PutVacancies(ctx context.Context, vacancies []domain.Vacancy) error {
	return writeJSON(ctx, c.tx, KeyVacancies, nonNil(vacancies))
}

// CurrentUser returns the session snapshot, or nil when nobody is signed in.
func (c *Collections) CurrentUser(ctx context.Context) (*domain.User, error) {
	raw, ok, err := c.tx.Get(ctx, KeyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyCurrentUser, err)
	}
	if !ok || raw == "" || raw == "null" {
		return nil, nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyCurrentUser, err)
	}
	return &user, nil
}

func (c *Collections) SetCurrentUser(ctx context.Context, user domain.User) error {
	return writeJSON(ctx, c.tx, KeyCurrentUser, user)
}

func (c *Collections) ClearCurrentUser(ctx context.Context) error {
	if err := c.tx.Delete(ctx, KeyCurrentUser); err != nil {
		return fmt.Errorf("delete %s: %w", KeyCurrentUser, err)
	}
	return nil
}

// Credentials maps user ids to bcrypt password hashes. Only populated when
// password verification is enabled.
func (c *Collections) Credentials(ctx context.Context) (map[string]string, error) {
	raw, ok, err := c.tx.Get(ctx, KeyCredentials)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyCredentials, err)
	}
	creds := map[string]string{}
	if !ok || raw == "" || raw == "null" {
		return creds, nil
	}
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyCredentials, err)
	}
	return creds, nil
}

func (c *Collections) PutCredentials(ctx context.Context, creds map[string]string) error {
	return writeJSON(ctx, c.tx, KeyCredentials, creds)
}

func readList[T any](ctx context.Context, tx KVTx, key string) ([]T, error) {
	raw, ok, err := tx.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	items := []T{}
	if !ok || raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeJSON(ctx context.Context, tx KVTx, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := tx.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
