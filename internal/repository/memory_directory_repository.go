package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

type memoryDirectoryRepository struct {
	mu      sync.RWMutex
	entries map[string]domain.ModuleAssignment
}

// NewMemoryDirectoryRepository returns a process-local module directory.
func NewMemoryDirectoryRepository() DirectoryRepository {
	return &memoryDirectoryRepository{entries: make(map[string]domain.ModuleAssignment)}
}

func (r *memoryDirectoryRepository) List(_ context.Context) ([]domain.ModuleAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.ModuleAssignment, 0, len(r.entries))
	for _, a := range r.entries {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Module < result[j].Module })
	return result, nil
}

func (r *memoryDirectoryRepository) Get(_ context.Context, module string) (*domain.ModuleAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.entries[module]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *memoryDirectoryRepository) Upsert(_ context.Context, a domain.ModuleAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[a.Module] = a
	return nil
}

func (r *memoryDirectoryRepository) SeedIfEmpty(_ context.Context, entries []domain.ModuleAssignment) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) > 0 {
		return 0, nil
	}
	for _, a := range entries {
		r.entries[a.Module] = a
	}
	return len(entries), nil
}
