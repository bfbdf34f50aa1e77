package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/eventdesk/internal/domain/user"
	"github.com/geocoder89/eventdesk/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UsersRepo struct {
	col     *mongo.Collection
	metrics *observability.Prom
}

func NewUsersRepo(database *mongo.Database, metrics *observability.Prom) *UsersRepo {
	return &UsersRepo{
		col:     database.Collection("users"),
		metrics: metrics,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.metrics == nil {
		return fn()
	}

	return r.metrics.ObserveDB(op, fn)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error) {
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

	err := r.observe("users.create", func() error {
		_, err := r.col.InsertOne(ctx, u)
		return err
	})

	if err != nil {
		// unique email index
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}
