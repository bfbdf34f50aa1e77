package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/eventdesk/internal/domain/user"
	"github.com/geocoder89/eventdesk/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type RefreshTokensRepo struct {
	col     *mongo.Collection
	metrics *observability.Prom
}

func NewRefreshTokensRepo(database *mongo.Database, metrics *observability.Prom) *RefreshTokensRepo {
	return &RefreshTokensRepo{
		col:     database.Collection("refresh_tokens"),
		metrics: metrics,
	}
}

func (r *RefreshTokensRepo) observe(op string, fn func() error) error {
	if r.metrics == nil {
		return fn()
	}

	return r.metrics.ObserveDB(op, fn)
}

func (r *RefreshTokensRepo) Create(ctx context.Context, row user.RefreshToken) error {
	return r.observe("refresh.create", func() error {
		_, err := r.col.InsertOne(ctx, row)
		return err
	})
}

func (r *RefreshTokensRepo) Get(ctx context.Context, id string) (user.RefreshToken, error) {
	var row user.RefreshToken

	err := r.observe("refresh.get", func() error {
		return r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&row)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.RefreshToken{}, user.ErrRefreshTokenNotFound
		}

		return user.RefreshToken{}, err
	}

	return row, nil
}

// Revoke marks a token revoked, but only if it has not been revoked already.
// The filtered update is the document-store stand-in for the row-lock a
// relational rotation would take: two concurrent rotations race on the same
// token and exactly one of them wins.
func (r *RefreshTokensRepo) Revoke(ctx context.Context, id string, replacedBy *string) error {
	now := time.Now().UTC()

	set := bson.M{"revokedAt": now}
	if replacedBy != nil {
		set["replacedBy"] = *replacedBy
	}

	var res *mongo.UpdateResult

	err := r.observe("refresh.revoke", func() error {
		var err error
		res, err = r.col.UpdateOne(ctx,
			bson.M{"_id": id, "revokedAt": bson.M{"$exists": false}},
			bson.M{"$set": set},
		)
		return err
	})

	if err != nil {
		return err
	}

	if res.ModifiedCount == 0 {
		return user.ErrRefreshTokenNotFound
	}

	return nil
}

func (r *RefreshTokensRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	return r.observe("refresh.revoke_all", func() error {
		_, err := r.col.UpdateMany(ctx,
			bson.M{"userId": userID, "revokedAt": bson.M{"$exists": false}},
			bson.M{"$set": bson.M{"revokedAt": time.Now().UTC()}},
		)
		return err
	})
}
