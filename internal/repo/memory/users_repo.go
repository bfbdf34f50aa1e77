package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/eventdesk/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UsersRepo struct {
	mu    sync.RWMutex
	users map[string]user.User // keyed by email
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		users: make(map[string]user.User),
	}
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.users[email]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[email]; exists {
		return user.User{}, user.ErrEmailTaken
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[email] = u

	return u, nil
}
