package user

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // never expose hash in JSON
	Name         string             `bson:"name" json:"name"`
	Role         string             `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// RefreshToken is one rotation-tracked session credential. Only the HMAC of
// the raw token is ever stored.
type RefreshToken struct {
	ID         string     `bson:"_id"`
	UserID     string     `bson:"userId"`
	TokenHash  string     `bson:"tokenHash"`
	ExpiresAt  time.Time  `bson:"expiresAt"`
	RevokedAt  *time.Time `bson:"revokedAt,omitempty"`
	ReplacedBy *string    `bson:"replacedBy,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt"`
}

var ErrRefreshTokenNotFound = errors.New("refresh token not found")
