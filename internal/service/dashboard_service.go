package service

import (
	"context"

	"wolfstreet/internal/domain"
	"wolfstreet/internal/repository"
)

// Dashboard is what a signed-in user sees: their pack and the vacancy they posted.
type Dashboard struct {
	User           domain.User
	Group          *domain.Group
	CreatedVacancy *domain.Vacancy
}

type DashboardService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type dashboardService struct {
	store *repository.Store
}

func NewDashboardService(store *repository.Store) DashboardService {
	return &dashboardService{store: store}
}

func (s *dashboardService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var dash *Dashboard
	err := s.store.View(ctx, func(c *repository.Collections) error {
		current, err := c.CurrentUser(ctx)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotLoggedIn
		}
		dash = &Dashboard{User: *current}

		groups, err := c.Groups(ctx)
		if err != nil {
			return err
		}
		dash.Group = findGroupForMember(groups, current.ID)

		if current.CreatedVacancyID == "" {
			return nil
		}
		vacancies, err := c.Vacancies(ctx)
		if err != nil {
			return err
		}
		dash.CreatedVacancy = findVacancy(vacancies, current.CreatedVacancyID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dash, nil
}
