package db

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/eventdesk/internal/config"
	"github.com/geocoder89/eventdesk/internal/domain/user"
	"github.com/geocoder89/eventdesk/internal/security"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func EnsureAdminUser(ctx context.Context, database *mongo.Database, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	col := database.Collection("users")

	// check if the user exists

	err := col.FindOne(ctx, bson.M{"email": cfg.AdminEmail}).Err()

	if err == nil {
		return nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           primitive.NewObjectID(),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		Role:         cfg.AdminRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = col.InsertOne(ctx, u)

	// another instance may have seeded concurrently; the unique email index
	// turns that into a duplicate-key error we can ignore
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return nil
	}

	return err
}
