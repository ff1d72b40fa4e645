package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"alumnet/internal/account/models"
	"alumnet/internal/identity"
	"alumnet/pkg/platform/sentinel"
)

// InMemory is an in-memory user store guarded by a single mutex. The
// secondary maps act as the unique indexes a relational backend would
// enforce, so duplicate writes fail the same way in both stores.
type InMemory struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*models.User
	idByEmail  map[string]uuid.UUID
	idByName   map[string]uuid.UUID
	idByGoogle map[string]uuid.UUID
	idByLinked map[string]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:       make(map[uuid.UUID]*models.User),
		idByEmail:  make(map[string]uuid.UUID),
		idByName:   make(map[string]uuid.UUID),
		idByGoogle: make(map[string]uuid.UUID),
		idByLinked: make(map[string]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	name := strings.ToLower(u.Username)
	if _, ok := s.idByEmail[email]; ok {
		return ErrDuplicateEmail
	}
	if _, ok := s.idByName[name]; ok {
		return ErrDuplicateUsername
	}
	if u.GoogleSubjectID != "" {
		if _, ok := s.idByGoogle[u.GoogleSubjectID]; ok {
			return ErrDuplicateSubject
		}
	}
	if u.LinkedInSubjectID != "" {
		if _, ok := s.idByLinked[u.LinkedInSubjectID]; ok {
			return ErrDuplicateSubject
		}
	}

	cp := *u
	s.byID[u.ID] = &cp
	s.idByEmail[email] = u.ID
	s.idByName[name] = u.ID
	if u.GoogleSubjectID != "" {
		s.idByGoogle[u.GoogleSubjectID] = u.ID
	}
	if u.LinkedInSubjectID != "" {
		s.idByLinked[u.LinkedInSubjectID] = u.ID
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.idByEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user by email: %w", sentinel.ErrNotFound)
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemory) FindByProviderSubject(_ context.Context, provider identity.Provider, subjectID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index := s.idByGoogle
	if provider == identity.ProviderLinkedIn {
		index = s.idByLinked
	}
	id, ok := index[subjectID]
	if !ok {
		return nil, fmt.Errorf("user by %s subject: %w", provider, sentinel.ErrNotFound)
	}
	cp := *s.byID[id]
	return &cp, nil
}

// LinkProviderSubject attaches a provider subject id to the user holding the
// given email, atomically with respect to concurrent links. An already linked
// subject id is left untouched and the user is returned as found.
func (s *InMemory) LinkProviderSubject(_ context.Context, email string, provider identity.Provider, subjectID string, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.idByEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user by email: %w", sentinel.ErrNotFound)
	}
	u := s.byID[id]
	switch provider {
	case identity.ProviderGoogle:
		if u.GoogleSubjectID == "" {
			if _, taken := s.idByGoogle[subjectID]; taken {
				return nil, ErrDuplicateSubject
			}
			u.GoogleSubjectID = subjectID
			u.UpdatedAt = now
			s.idByGoogle[subjectID] = id
		}
	case identity.ProviderLinkedIn:
		if u.LinkedInSubjectID == "" {
			if _, taken := s.idByLinked[subjectID]; taken {
				return nil, ErrDuplicateSubject
			}
			u.LinkedInSubjectID = subjectID
			u.UpdatedAt = now
			s.idByLinked[subjectID] = id
		}
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, sentinel.ErrNotFound)
	}
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func (s *InMemory) List(_ context.Context, filter ListFilter) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.byID))
	for _, u := range s.byID {
		if filter.CollegeID != nil && (u.CollegeID == nil || *u.CollegeID != *filter.CollegeID) {
			continue
		}
		if filter.PendingOnly && u.Approved {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}
