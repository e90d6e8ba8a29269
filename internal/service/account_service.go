package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"wolfstreet/internal/domain"
	"wolfstreet/internal/repository"
	"wolfstreet/internal/storage"
)

const (
	resumeLinkTTL = 15 * time.Minute
	// bcrypt only hashes the first 72 bytes and rejects longer input
	maxPasswordBytes = 72
)

// SignUpInput carries the sign-up form. Resume is optional.
type SignUpInput struct {
	Username      string
	Email         string
	Password      string
	ContactNumber string
	Resume        *storage.Upload
}

// AccountService covers sign-up, login and the current session slot.
type AccountService interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	LogIn(ctx context.Context, email, password string) (*domain.User, error)
	SignOut(ctx context.Context) error
	Current(ctx context.Context) (*domain.User, error)
	ResumeURL(ctx context.Context, userID string) (string, error)
}

type accountService struct {
	store           *repository.Store
	resumes         storage.Service
	verifyPasswords bool
}

// NewAccountService builds the account service. resumes may be nil, in which
// case only the résumé file name is recorded. With verifyPasswords unset,
// passwords are accepted but neither stored nor checked.
func NewAccountService(store *repository.Store, resumes storage.Service, verifyPasswords bool) AccountService {
	return &accountService{
		store:           store,
		resumes:         resumes,
		verifyPasswords: verifyPasswords,
	}
}

func (s *accountService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	user := domain.User{
		ID:            newID("user"),
		Username:      in.Username,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
	}

	if s.verifyPasswords && len(in.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	if in.Resume != nil {
		if s.resumes != nil {
			location, err := s.resumes.PutResume(ctx, user.ID, *in.Resume)
			if err != nil {
				return nil, fmt.Errorf("store resume: %w", err)
			}
			user.ResumeURL = location
		} else {
			user.ResumeURL = in.Resume.Name
			if user.ResumeURL == "" {
				user.ResumeURL = "resume.pdf"
			}
		}
	}

	var hash []byte
	if s.verifyPasswords {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	err := s.store.Update(ctx, func(c *repository.Collections) error {
		users, err := c.Users(ctx)
		if err != nil {
			return err
		}
		if err := c.PutUsers(ctx, append(users, user)); err != nil {
			return err
		}
		if hash != nil {
			creds, err := c.Credentials(ctx)
			if err != nil {
				return err
			}
			creds[user.ID] = string(hash)
			if err := c.PutCredentials(ctx, creds); err != nil {
				return err
			}
		}
		return c.SetCurrentUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *accountService) LogIn(ctx context.Context, email, password string) (*domain.User, error) {
	var found *domain.User
	err := s.store.Update(ctx, func(c *repository.Collections) error {
		users, err := c.Users(ctx)
		if err != nil {
			return err
		}
		for i := range users {
			if users[i].Email == email {
				found = &users[i]
				break
			}
		}
		if found == nil {
			return ErrInvalidCredentials
		}

		if s.verifyPasswords {
			creds, err := c.Credentials(ctx)
			if err != nil {
				return err
			}
			hash, ok := creds[found.ID]
			if !ok {
				return ErrInvalidCredentials
			}
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
				return ErrInvalidCredentials
			}
		}

		return c.SetCurrentUser(ctx, *found)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *accountService) SignOut(ctx context.Context) error {
	return s.store.Update(ctx, func(c *repository.Collections) error {
		return c.ClearCurrentUser(ctx)
	})
}

func (s *accountService) Current(ctx context.Context) (*domain.User, error) {
	var current *domain.User
	err := s.store.View(ctx, func(c *repository.Collections) error {
		var err error
		current, err = c.CurrentUser(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotLoggedIn
	}
	return current, nil
}

func (s *accountService) ResumeURL(ctx context.Context, userID string) (string, error) {
	var user *domain.User
	err := s.store.View(ctx, func(c *repository.Collections) error {
		users, err := c.Users(ctx)
		if err != nil {
			return err
		}
		for i := range users {
			if users[i].ID == userID {
				user = &users[i]
				return nil
			}
		}
		return ErrUserNotFound
	})
	if err != nil {
		return "", err
	}

	if user.ResumeURL == "" {
		return "", ErrResumeNotStored
	}
	if !storage.IsRemote(user.ResumeURL) {
		return user.ResumeURL, nil
	}
	if s.resumes == nil {
		return "", errors.New("resume storage is not configured")
	}
	return s.resumes.ResumeURL(ctx, user.ResumeURL, resumeLinkTTL)
}
