package service

import (
	"slices"
	"sync"

	"wolfstreet/internal/domain"
)

// Selection is the admin's working set of users for the next pack. It never
// holds more than domain.MaxGroupMembers ids.
type Selection struct {
	mu  sync.Mutex
	ids []string
}

func NewSelection(ids ...string) (*Selection, error) {
	s := &Selection{}
	for _, id := range ids {
		if s.Contains(id) {
			continue
		}
		if _, err := s.Toggle(id); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Toggle adds the id, or removes it when already selected. Adding beyond the
// cap returns ErrSelectionFull and leaves the set unchanged.
func (s *Selection) Toggle(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.ids, userID); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return false, nil
	}
	if len(s.ids) >= domain.MaxGroupMembers {
		return false, ErrSelectionFull
	}
	s.ids = append(s.ids, userID)
	return true, nil
}

func (s *Selection) Contains(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, userID)
}

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
}
