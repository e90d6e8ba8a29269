package service

import (
	"context"
	"slices"
	"strings"

	"wolfstreet/internal/domain"
	"wolfstreet/internal/repository"
)

// GroupService holds the admin operations for forming packs.
type GroupService interface {
	CreateGroup(ctx context.Context, name string, userIDs []string) (*domain.Group, error)
	ListGroups(ctx context.Context) ([]domain.Group, error)
	UnassignedUsers(ctx context.Context) ([]domain.User, error)
	GroupForUser(ctx context.Context, userID string) (*domain.Group, error)
	LiveRoster(ctx context.Context, groupID string) ([]domain.User, error)
}

type groupService struct {
	store *repository.Store
}

func NewGroupService(store *repository.Store) GroupService {
	return &groupService{store: store}
}

// CreateGroup forms a pack from the selected users. Members are copied as
// they are at this moment, so the stored snapshots keep their previous
// groupId while the users collection is patched with the new one.
func (s *groupService) CreateGroup(ctx context.Context, name string, userIDs []string) (*domain.Group, error) {
	if len(userIDs) == 0 {
		return nil, ErrNoMembersSelected
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrGroupNameRequired
	}

	group := domain.Group{
		ID:      newID("group"),
		Name:    name,
		Members: []domain.User{},
	}

	err := s.store.Update(ctx, func(c *repository.Collections) error {
		users, err := c.Users(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			if slices.Contains(userIDs, u.ID) {
				group.Members = append(group.Members, u)
			}
		}

		groups, err := c.Groups(ctx)
		if err != nil {
			return err
		}
		if err := c.PutGroups(ctx, append(groups, group)); err != nil {
			return err
		}

		for i := range users {
			if slices.Contains(userIDs, users[i].ID) {
				users[i].GroupID = group.ID
			}
		}
		return c.PutUsers(ctx, users)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *groupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	err := s.store.View(ctx, func(c *repository.Collections) error {
		var err error
		groups, err = c.Groups(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// UnassignedUsers lists users whose groupId is not set.
func (s *groupService) UnassignedUsers(ctx context.Context) ([]domain.User, error) {
	var unassigned []domain.User
	err := s.store.View(ctx, func(c *repository.Collections) error {
		users, err := c.Users(ctx)
		if err != nil {
			return err
		}
		unassigned = make([]domain.User, 0, len(users))
		for _, u := range users {
			if !u.HasGroup() {
				unassigned = append(unassigned, u)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unassigned, nil
}

// GroupForUser returns the first group listing the user among its member
// snapshots, or nil. The user's own groupId field is not consulted.
func (s *groupService) GroupForUser(ctx context.Context, userID string) (*domain.Group, error) {
	var found *domain.Group
	err := s.store.View(ctx, func(c *repository.Collections) error {
		groups, err := c.Groups(ctx)
		if err != nil {
			return err
		}
		found = findGroupForMember(groups, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// LiveRoster resolves a group's members against the users collection,
// returning the current record for each member in roster order. Members no
// longer present in users are returned as stored.
func (s *groupService) LiveRoster(ctx context.Context, groupID string) ([]domain.User, error) {
	var roster []domain.User
	err := s.store.View(ctx, func(c *repository.Collections) error {
		groups, err := c.Groups(ctx)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(groups, func(g domain.Group) bool { return g.ID == groupID })
		if idx < 0 {
			return ErrGroupNotFound
		}

		users, err := c.Users(ctx)
		if err != nil {
			return err
		}
		byID := make(map[string]domain.User, len(users))
		for i := len(users) - 1; i >= 0; i-- {
			byID[users[i].ID] = users[i]
		}

		roster = make([]domain.User, 0, len(groups[idx].Members))
		for _, member := range groups[idx].Members {
			if live, ok := byID[member.ID]; ok {
				roster = append(roster, live)
				continue
			}
			roster = append(roster, member)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roster, nil
}

func findGroupForMember(groups []domain.Group, userID string) *domain.Group {
	for i := range groups {
		if groups[i].HasMember(userID) {
			return &groups[i]
		}
	}
	return nil
}
