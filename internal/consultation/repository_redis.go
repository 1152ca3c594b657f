package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "consultation:"

// RedisRepository keeps consultations as JSON documents with a sliding TTL.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository returns a Redis backed repository. A zero ttl keeps
// records forever.
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func redisKey(id uuid.UUID) string { return redisKeyPrefix + id.String() }

func (r *RedisRepository) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get consultation: %w", err)
	}
	var c Consultation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consultation: %w", err)
	}
	return &c, nil
}

func (r *RedisRepository) Save(ctx context.Context, c *Consultation) error {
	key := redisKey(c.ID)
	expected := c.Version

	now := time.Now().UTC()
	stored := *c
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	stored.Version = expected + 1

	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if expected != 0 {
				return ErrConflict
			}
		case err != nil:
			return err
		default:
			var existing Consultation
			if err := json.Unmarshal(current, &existing); err != nil {
				return fmt.Errorf("failed to unmarshal consultation: %w", err)
			}
			if existing.Version != expected {
				return ErrConflict
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	if err != nil {
		return err
	}

	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = stored.UpdatedAt
	c.Version = stored.Version
	return nil
}
