package storage

import (
	"context"
	"errors"
	"sync"

	"startup-foundry/internal/models"
)

// ErrProjectNotFound is returned when a project id is unknown to the store
var ErrProjectNotFound = errors.New("project not found")

// ProjectStore is the injected persistence abstraction for generated
// projects. The in-memory implementation is the default; a MongoDB-backed
// implementation can be swapped in without touching call sites.
type ProjectStore interface {
	Put(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id string) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

// MemoryProjectStore keeps projects in a process-local map
type MemoryProjectStore struct {
	mutex    sync.RWMutex
	projects map[string]models.Project
}

// NewMemoryProjectStore creates an empty in-memory project store
func NewMemoryProjectStore() *MemoryProjectStore {
	return &MemoryProjectStore{
		projects: make(map[string]models.Project),
	}
}

// Put stores or replaces a project
func (s *MemoryProjectStore) Put(_ context.Context, project *models.Project) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.projects[project.ID] = *project
	return nil
}

// Get retrieves a project by id
func (s *MemoryProjectStore) Get(_ context.Context, id string) (*models.Project, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	project, exists := s.projects[id]
	if !exists {
		return nil, ErrProjectNotFound
	}
	return &project, nil
}

// Delete removes a project by id. Deleting an unknown id is not an error.
func (s *MemoryProjectStore) Delete(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.projects, id)
	return nil
}
