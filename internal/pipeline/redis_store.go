package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
)

const runRecordTTL = 24 * time.Hour

// RedisRunStore persists run records in Redis so status survives restarts.
type RedisRunStore struct {
	client *redis.Client
}

// NewRedisRunStore connects to Redis using the configured URL.
func NewRedisRunStore(cfg *config.Config) (*RedisRunStore, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRunStore{client: client}, nil
}

func (s *RedisRunStore) Put(ctx context.Context, record *RunRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	if err := s.client.Set(ctx, runKey(record.RunID), payload, runRecordTTL).Err(); err != nil {
		return fmt.Errorf("failed to store run record: %w", err)
	}
	return nil
}

func (s *RedisRunStore) Get(ctx context.Context, runID string) (*RunRecord, error) {
	payload, err := s.client.Get(ctx, runKey(runID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run record: %w", err)
	}

	var record RunRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}
	return &record, nil
}

func (s *RedisRunStore) Close() error {
	return s.client.Close()
}

func runKey(runID string) string {
	return fmt.Sprintf("pipeline:run:%s", runID)
}
