package memory

import (
	"context"
	"fmt"
	"sync"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/repository"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
	order []string
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[string]domain.User)}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[u.ID]; exists {
		return fmt.Errorf("%w: user %s already exists", domain.ErrConflict, u.ID)
	}
	r.users[u.ID] = *u
	r.order = append(r.order, u.ID)
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User, from domain.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, u.ID)
	}
	if stored.Status != from {
		return fmt.Errorf("%w: user %s is already %s", domain.ErrInvalidState, u.ID, stored.Status)
	}
	r.users[u.ID] = *u
	return nil
}

func (r *userRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		u := r.users[id]
		if filter.Matches(&u) {
			out = append(out, u)
		}
	}
	return out, nil
}
