package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker keeps the ids of signed-out tokens until they would have expired.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const revokedKeyPrefix = "session:revoked:"

type redisRevoker struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRevoker stores revoked token ids in Redis with a TTL matching the
// token's remaining lifetime. A nil client yields a nil Revoker.
func NewRedisRevoker(client *redis.Client) Revoker {
	if client == nil {
		return nil
	}
	return &redisRevoker{client: client, now: time.Now}
}

func (r *redisRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (r *redisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
