package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/eventdesk/internal/domain/user"
)

type RefreshTokensRepo struct {
	mu     sync.Mutex
	tokens map[string]user.RefreshToken
}

func NewRefreshTokensRepo() *RefreshTokensRepo {
	return &RefreshTokensRepo{
		tokens: make(map[string]user.RefreshToken),
	}
}

func (r *RefreshTokensRepo) Create(ctx context.Context, row user.RefreshToken) error {
	r.mu.Lock()
	r.tokens[row.ID] = row
	r.mu.Unlock()

	return nil
}

func (r *RefreshTokensRepo) Get(ctx context.Context, id string) (user.RefreshToken, error) {
	r.mu.Lock()
	row, ok := r.tokens[id]
	r.mu.Unlock()

	if !ok {
		return user.RefreshToken{}, user.ErrRefreshTokenNotFound
	}

	return row, nil
}

func (r *RefreshTokensRepo) Revoke(ctx context.Context, id string, replacedBy *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.tokens[id]
	if !ok || row.RevokedAt != nil {
		return user.ErrRefreshTokenNotFound
	}

	now := time.Now().UTC()
	row.RevokedAt = &now
	row.ReplacedBy = replacedBy
	r.tokens[id] = row

	return nil
}

func (r *RefreshTokensRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	for id, row := range r.tokens {
		if row.UserID == userID && row.RevokedAt == nil {
			row.RevokedAt = &now
			r.tokens[id] = row
		}
	}

	return nil
}
