package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func Connect(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(5).
		SetServerSelectionTimeout(5*time.Second))

	if err != nil {
		return nil, err
	}

	err = client.Ping(ctx, readpref.Primary())

	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return client, nil
}

// EnsureIndexes creates the unique indexes the gateway relies on. Name
// uniqueness must live in the store itself: a check-then-insert in the
// application would race under concurrent creates.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection("events").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "eventName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	if err != nil {
		return err
	}

	_, err = database.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return err
}
