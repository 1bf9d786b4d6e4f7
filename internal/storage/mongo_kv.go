package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const kvCollection = "kv"

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// mongoStorage implements SecureStorage on a MongoDB collection.
type mongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage creates a SecureStorage backed by the "kv" collection of db.
func NewMongoStorage(db *mongo.Database) SecureStorage {
	return &mongoStorage{coll: db.Collection(kvCollection)}
}

func (s *mongoStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error finding kv item %s: %w", key, err)
	}
	return doc.Value, true, nil
}

func (s *mongoStorage) SetItem(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert kv item %s: %w", key, err)
	}
	return nil
}

func (s *mongoStorage) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete kv item %s: %w", key, err)
	}
	return nil
}
