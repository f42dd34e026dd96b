package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository returns a process-local user store.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]domain.User)}
}

func (r *memoryUserRepository) Register(_ context.Context, user *domain.User, assign RoleAssigner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return ErrConflict
	}
	user.Role = assign(int64(len(r.users)))
	r.insertLocked(user)
	return nil
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return ErrConflict
	}
	r.insertLocked(user)
	return nil
}

func (r *memoryUserRepository) insertLocked(user *domain.User) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.Username] = *user
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Username < result[j].Username
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryUserRepository) Update(ctx context.Context, username string, mutate func(*domain.User) error) (*domain.User, error) {
	return r.UpdateGuarded(ctx, username, nil, mutate)
}

func (r *memoryUserRepository) UpdateGuarded(_ context.Context, username string, guard UserGuard, mutate func(*domain.User) error) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guardLocked(guard); err != nil {
		return nil, err
	}
	user, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	if err := mutate(&user); err != nil {
		return nil, err
	}
	user.Username = username
	r.users[username] = user
	return &user, nil
}

func (r *memoryUserRepository) Delete(_ context.Context, username string, guard UserGuard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guardLocked(guard); err != nil {
		return err
	}
	if _, ok := r.users[username]; !ok {
		return ErrNotFound
	}
	delete(r.users, username)
	return nil
}

func (r *memoryUserRepository) guardLocked(guard UserGuard) error {
	if guard == nil {
		return nil
	}
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	return guard(users)
}
