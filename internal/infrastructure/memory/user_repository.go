// Package memory provides map-backed repositories for local runs without a
// database and for tests.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	domainUser "product-catalog/internal/domain/user"
)

// UserRepository implements domainUser.Repository in memory
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domainUser.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]domainUser.User)}
}

func (r *UserRepository) Create(_ context.Context, u *domainUser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domainUser.ErrUserAlreadyExists
		}
	}

	r.nextID++
	now := time.Now()
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u

	return nil
}

func (r *UserRepository) GetByID(_ context.Context, userID int64) (*domainUser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, domainUser.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domainUser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, domainUser.ErrUserNotFound
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, domainUser.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return domainUser.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	r.users[userID] = u

	return nil
}
