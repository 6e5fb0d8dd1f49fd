package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// releaseScript deletes the lock key only when the stored token matches,
// so an expired lease cannot release a lock another run now holds.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker on a shared Redis, for multi-instance
// deployments.
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a locker over an existing Redis client.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func lockKey(tripID types.ID) string {
	return "plan-lock:" + tripID.String()
}

// Acquire implements Locker with SET NX PX: the key holds the lease token
// and expires after ttl.
func (l *RedisLocker) Acquire(ctx context.Context, tripID types.ID, ttl time.Duration) (*Lease, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, lockKey(tripID), token, ttl).Result()
	if err != nil {
		return nil, types.WrapError(types.LOCK_UNAVAILABLE, "planning lock store unreachable", err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lease{
		TripID:    tripID,
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// Release implements Locker via the compare-and-delete script.
func (l *RedisLocker) Release(ctx context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{lockKey(lease.TripID)}, lease.Token).Err(); err != nil && err != redis.Nil {
		return types.WrapError(types.LOCK_UNAVAILABLE, "planning lock release failed", err)
	}
	return nil
}
