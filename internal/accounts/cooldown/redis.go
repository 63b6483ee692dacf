package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "accounts:code-cooldown:"

// Redis shares the cooldown across replicas with SET NX PX.
type Redis struct {
	client redis.UniversalClient
	window time.Duration
}

func NewRedis(client redis.UniversalClient, window time.Duration) *Redis {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Redis{client: client, window: window}
}

func (r *Redis) Allow(ctx context.Context, key Key) (bool, error) {
	ok, err := r.client.SetNX(ctx, redisKeyPrefix+key.String(), 1, r.window).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown: %w", err)
	}
	return ok, nil
}

// Ping verifies the Redis connection for readiness checks.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
