package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wolfstreet/internal/domain"
	"wolfstreet/internal/repository"
	"wolfstreet/internal/repository/memory"
	"wolfstreet/internal/storage"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store := repository.NewStore(memory.NewKVRepository())
	require.NoError(t, store.Init(context.Background()))
	return store
}

func allUsers(t *testing.T, store *repository.Store) []domain.User {
	t.Helper()
	var users []domain.User
	require.NoError(t, store.View(context.Background(), func(c *repository.Collections) error {
		var err error
		users, err = c.Users(context.Background())
		return err
	}))
	return users
}

func currentUser(t *testing.T, store *repository.Store) *domain.User {
	t.Helper()
	var current *domain.User
	require.NoError(t, store.View(context.Background(), func(c *repository.Collections) error {
		var err error
		current, err = c.CurrentUser(context.Background())
		return err
	}))
	return current
}

func signUp(t *testing.T, accounts AccountService, username, email string) *domain.User {
	t.Helper()
	user, err := accounts.SignUp(context.Background(), SignUpInput{
		Username:      username,
		Email:         email,
		Password:      "hunter22",
		ContactNumber: "555-0000",
	})
	require.NoError(t, err)
	return user
}

type fakeResumes struct {
	stored map[string]string
	err    error
}

func (f *fakeResumes) PutResume(ctx context.Context, userID string, upload storage.Upload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	body, err := io.ReadAll(upload.Body)
	if err != nil {
		return "", err
	}
	location := fmt.Sprintf("s3://bucket/resumes/%s/%s", userID, upload.Name)
	if f.stored == nil {
		f.stored = map[string]string{}
	}
	f.stored[location] = string(body)
	return location, nil
}

func (f *fakeResumes) ResumeURL(ctx context.Context, location string, expires time.Duration) (string, error) {
	return "https://signed.example/" + location[len("s3://"):], nil
}
