package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iamasit07/blog/backend/internal/domain"
)

// UserRepo keeps identities in process memory. Email is unique.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[int64]*domain.User
	byEmail map[string]int64
	nextID  int64
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[int64]*domain.User),
		byEmail: make(map[string]int64),
		nextID:  1,
	}
}

func (r *UserRepo) Insert(ctx context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return 0, domain.ErrConflict
	}

	stored := *user
	stored.ID = r.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.nextID++

	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID
	return stored.ID, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user := *r.byID[id]
	return &user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user := *stored
	return &user, nil
}
