package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RoomTTL bounds the lifetime of all room-scoped keys; every
	// mutation batch refreshes it.
	RoomTTL = 24 * time.Hour
	// UserTTL bounds user records; refreshed on create and join.
	UserTTL = 7 * 24 * time.Hour

	// RoomsActiveKey is the set of live room codes.
	RoomsActiveKey = "rooms:active"

	defaultRedisURL = "redis://localhost:6379/0"
)

// Store wraps the Redis client behind the server's key layout. Services
// issue multi-key mutations through TxPipeline so external readers never
// observe a partial write.
type Store struct {
	client *redis.Client
}

// NewFromEnv connects using REDIS_URL, falling back to a local instance.
func NewFromEnv() (*Store, error) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = defaultRedisURL
	}
	return New(url)
}

func New(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Store{client: redis.NewClient(opts)}, nil
}

// Client exposes the underlying connection for pipelined batches.
func (s *Store) Client() *redis.Client { return s.client }

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *Store) Close() error { return s.client.Close() }

// Get returns the value at key; ok is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// HGet returns a hash field; ok is false when the field is absent.
func (s *Store) HGet(ctx context.Context, key, field string) (string, bool, error) {
	val, err := s.client.HGet(ctx, key, field).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// HGetAll returns all fields of a hash; an absent key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.client.HGetAll(ctx, key).Result()
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	return n > 0, err
}
