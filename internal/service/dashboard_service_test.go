package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_RequiresSession(t *testing.T) {
	_, err := NewDashboardService(newTestStore(t)).Dashboard(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestDashboardService_GroupAndVacancy(t *testing.T) {
	store := newTestStore(t)
	accounts := NewAccountService(store, nil, false)
	vacancies := NewVacancyService(store)
	groups := NewGroupService(store)
	ctx := context.Background()

	bob := signUp(t, accounts, "bob", "b@x.com")
	jane := signUp(t, accounts, "jane", "j@x.com")
	vac, err := vacancies.Create(ctx, jane.ID, sampleVacancy("Alpha"))
	require.NoError(t, err)

	_, err = accounts.LogIn(ctx, "b@x.com", "")
	require.NoError(t, err)
	_, err = vacancies.Apply(ctx, bob.ID, vac.ID)
	require.NoError(t, err)
	group, err := groups.CreateGroup(ctx, "Pack", []string{jane.ID, bob.ID})
	require.NoError(t, err)

	_, err = accounts.LogIn(ctx, "j@x.com", "")
	require.NoError(t, err)

	dash, err := NewDashboardService(store).Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, jane.ID, dash.User.ID)
	require.NotNil(t, dash.Group)
	assert.Equal(t, group.ID, dash.Group.ID)
	require.NotNil(t, dash.CreatedVacancy)
	assert.Equal(t, vac.ID, dash.CreatedVacancy.ID)
	require.Len(t, dash.CreatedVacancy.Applicants, 1)
	assert.Equal(t, bob.ID, dash.CreatedVacancy.Applicants[0].ID)
}

func TestDashboardService_SessionSnapshotIsIndependent(t *testing.T) {
	store := newTestStore(t)
	accounts := NewAccountService(store, nil, false)
	groups := NewGroupService(store)
	ctx := context.Background()

	jane := signUp(t, accounts, "jane", "j@x.com")
	_, err := groups.CreateGroup(ctx, "Pack", []string{jane.ID})
	require.NoError(t, err)

	dash, err := NewDashboardService(store).Dashboard(ctx)
	require.NoError(t, err)
	assert.Empty(t, dash.User.GroupID)
	assert.NotNil(t, dash.Group)
	assert.Nil(t, dash.CreatedVacancy)
}
