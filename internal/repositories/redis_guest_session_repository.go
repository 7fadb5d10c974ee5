package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisGuestSessionRepository struct {
	client *redis.Client
}

func NewRedisGuestSessionRepo(client *redis.Client) GuestSessionRepository {
	return &redisGuestSessionRepository{client: client}
}

func guestSessionKey(sessionID string) string {
	return guestSessionKeyBase + ":" + sessionID
}

func (r *redisGuestSessionRepository) Touch(ctx context.Context, sessionID string) error {

	key := guestSessionKey(sessionID)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, "created_at", now)
		pipe.HSet(ctx, key, "updated_at", now)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record guest session %s in redis: %w", sessionID, err)
	}

	return nil
}

func (r *redisGuestSessionRepository) DeleteBySessionID(ctx context.Context, sessionID string) error {

	if err := r.client.Del(ctx, guestSessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete guest session %s from redis: %w", sessionID, err)
	}

	return nil
}
