package service

import (
	"context"
	"time"

	"wolfstreet/internal/domain"
	"wolfstreet/internal/repository"
)

// VacancyInput carries the vacancy creation form.
type VacancyInput struct {
	Title        string
	Industry     string
	Description  string
	Requirements string
	Goals        string
	WhyJoin      string
}

// VacancyService manages team postings and applications.
type VacancyService interface {
	Create(ctx context.Context, sessionUserID string, in VacancyInput) (*domain.Vacancy, error)
	List(ctx context.Context, limit int) ([]domain.Vacancy, error)
	Get(ctx context.Context, id string) (*domain.Vacancy, error)
	Apply(ctx context.Context, sessionUserID, vacancyID string) (*domain.Vacancy, error)
}

type vacancyService struct {
	store *repository.Store
	now   func() time.Time
}

func NewVacancyService(store *repository.Store) VacancyService {
	return &vacancyService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create posts a vacancy on behalf of the authenticated session user, or of
// domain.UnknownCreator when sessionUserID is empty. A non-empty
// sessionUserID must still occupy the currentUser slot.
func (s *vacancyService) Create(ctx context.Context, sessionUserID string, in VacancyInput) (*domain.Vacancy, error) {
	vacancy := domain.Vacancy{
		ID:           newID("vac"),
		Title:        in.Title,
		CreatorID:    domain.UnknownCreator,
		Industry:     in.Industry,
		Description:  in.Description,
		Requirements: in.Requirements,
		Goals:        in.Goals,
		WhyJoin:      in.WhyJoin,
		CreatedAt:    s.now(),
		Applicants:   []domain.User{},
	}

	err := s.store.Update(ctx, func(c *repository.Collections) error {
		var current *domain.User
		if sessionUserID != "" {
			var err error
			current, err = sessionHolder(ctx, c, sessionUserID)
			if err != nil {
				return err
			}
			vacancy.CreatorID = current.ID
		}

		vacancies, err := c.Vacancies(ctx)
		if err != nil {
			return err
		}
		if err := c.PutVacancies(ctx, append(vacancies, vacancy)); err != nil {
			return err
		}

		if current == nil {
			return nil
		}
		current.CreatedVacancyID = vacancy.ID
		if err := c.SetCurrentUser(ctx, *current); err != nil {
			return err
		}

		users, err := c.Users(ctx)
		if err != nil {
			return err
		}
		for i := range users {
			if users[i].ID == current.ID {
				users[i].CreatedVacancyID = vacancy.ID
			}
		}
		return c.PutUsers(ctx, users)
	})
	if err != nil {
		return nil, err
	}
	return &vacancy, nil
}

// List returns vacancies in posting order; limit <= 0 returns all of them.
func (s *vacancyService) List(ctx context.Context, limit int) ([]domain.Vacancy, error) {
	var vacancies []domain.Vacancy
	err := s.store.View(ctx, func(c *repository.Collections) error {
		var err error
		vacancies, err = c.Vacancies(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(vacancies) > limit {
		vacancies = vacancies[:limit]
	}
	return vacancies, nil
}

func (s *vacancyService) Get(ctx context.Context, id string) (*domain.Vacancy, error) {
	var found *domain.Vacancy
	err := s.store.View(ctx, func(c *repository.Collections) error {
		vacancies, err := c.Vacancies(ctx)
		if err != nil {
			return err
		}
		found = findVacancy(vacancies, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrVacancyNotFound
	}
	return found, nil
}

// Apply appends a snapshot of the session user to the vacancy's applicants.
// sessionUserID must still occupy the currentUser slot. Creators are not
// prevented from applying to their own vacancy.
func (s *vacancyService) Apply(ctx context.Context, sessionUserID, vacancyID string) (*domain.Vacancy, error) {
	var updated domain.Vacancy
	err := s.store.Update(ctx, func(c *repository.Collections) error {
		current, err := sessionHolder(ctx, c, sessionUserID)
		if err != nil {
			return err
		}

		vacancies, err := c.Vacancies(ctx)
		if err != nil {
			return err
		}
		target := findVacancy(vacancies, vacancyID)
		if target == nil {
			return ErrVacancyNotFound
		}
		if target.HasApplicant(current.ID) {
			return ErrAlreadyApplied
		}

		target.Applicants = append(target.Applicants, *current)
		updated = *target
		return c.PutVacancies(ctx, vacancies)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func findVacancy(vacancies []domain.Vacancy, id string) *domain.Vacancy {
	for i := range vacancies {
		if vacancies[i].ID == id {
			return &vacancies[i]
		}
	}
	return nil
}

// sessionHolder returns the currentUser snapshot when it belongs to userID.
func sessionHolder(ctx context.Context, c *repository.Collections, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrNotLoggedIn
	}
	current, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotLoggedIn
	}
	if current.ID != userID {
		return nil, ErrSessionChanged
	}
	return current, nil
}
