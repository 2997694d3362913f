package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"ledgerly/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps subscribers in one hash, field = email, value = JSON record.
// HSETNX makes the insert conditional on the email being absent.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Exists(ctx context.Context, email string) (bool, error) {
	ok, err := s.client.HExists(ctx, s.key, email).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check subscriber: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Add(ctx context.Context, sub models.Subscriber) (bool, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return false, fmt.Errorf("failed to encode subscriber: %w", err)
	}

	created, err := s.client.HSetNX(ctx, s.key, sub.Email, payload).Result()
	if err != nil {
		return false, fmt.Errorf("failed to insert subscriber: %w", err)
	}
	return created, nil
}

// All returns subscribers newest first.
func (s *RedisStore) All(ctx context.Context) ([]models.Subscriber, error) {
	vals, err := s.client.HVals(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load subscribers: %w", err)
	}

	subs := make([]models.Subscriber, 0, len(vals))
	for _, v := range vals {
		var sub models.Subscriber
		if err := json.Unmarshal([]byte(v), &sub); err != nil {
			return nil, fmt.Errorf("failed to decode subscriber: %w", err)
		}
		subs = append(subs, sub)
	}

	slices.SortFunc(subs, func(a, b models.Subscriber) int {
		if c := b.SignupDate.Compare(a.SignupDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Email, b.Email)
	})
	return subs, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
