package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"alumnet/internal/college/models"
	"alumnet/pkg/platform/sentinel"
)

// InMemory keeps colleges in memory for tests and development. A single
// mutex guards both indexes so create is atomic with respect to the
// uniqueness checks.
type InMemory struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*models.College
	idByCode map[string]uuid.UUID
	idByName map[string]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:     make(map[uuid.UUID]*models.College),
		idByCode: make(map[string]uuid.UUID),
		idByName: make(map[string]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, college *models.College) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.idByCode[college.Code]; ok {
		return fmt.Errorf("college code already in use: %w", sentinel.ErrConflict)
	}
	if _, ok := s.idByName[college.Name]; ok {
		return fmt.Errorf("college name already in use: %w", sentinel.ErrConflict)
	}
	copied := *college
	s.byID[college.ID] = &copied
	s.idByCode[college.Code] = college.ID
	s.idByName[college.Name] = college.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.College, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.byID[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, fmt.Errorf("college not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) FindByCode(_ context.Context, code string) (*models.College, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.idByCode[code]; ok {
		copied := *s.byID[id]
		return &copied, nil
	}
	return nil, fmt.Errorf("college not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) List(_ context.Context) ([]*models.College, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.College, 0, len(s.byID))
	for _, c := range s.byID {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}
