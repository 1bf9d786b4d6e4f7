// Package storage provides the key-value "secure storage" used to persist
// small per-user documents such as search history.
package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"localpro/browse/internal/config"
)

// SecureStorage is a string key-value store. GetItem reports found=false
// for a missing key rather than an error.
type SecureStorage interface {
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// New returns the backend selected by cfg.HistoryBackend.
func New(ctx context.Context, cfg *config.Config, db *mongo.Database, rdb redis.Cmdable) (SecureStorage, error) {
	switch cfg.HistoryBackend {
	case config.HistoryBackendRedis, "":
		return NewRedisStorage(rdb), nil
	case config.HistoryBackendMongo:
		return NewMongoStorage(db), nil
	case config.HistoryBackendS3:
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Storage(client, cfg.AwsS3Bucket, cfg.AwsS3Prefix), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.HistoryBackend)
}
