package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/potion-bottler/internal/port"
)

const (
	deliveryKeyPrefix = "delivery:"
	deliveryKeyTTL    = 24 * time.Hour
	deliveryDone      = "done"
)

// releaseDeliveryScript deletes a claim only if it still holds the caller's
// token, so a stale release cannot drop someone else's claim.
var releaseDeliveryScript = redis.NewScript(`
local key = KEYS[1]
local token = ARGV[1]

if redis.call('GET', key) == token then
	return redis.call('DEL', key)
end

return 0
`)

// completeDeliveryScript swaps the caller's token for the completed marker.
// It returns 0 when the claim expired or belongs to someone else.
var completeDeliveryScript = redis.NewScript(`
local key = KEYS[1]
local token = ARGV[1]
local done = ARGV[2]
local ttl = tonumber(ARGV[3])

if redis.call('GET', key) == token then
	redis.call('SET', key, done, 'PX', ttl)
	return 1
end

return 0
`)

var _ port.CacheRepository = (*RedisAdapter)(nil)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func deliveryKey(orderID int) string {
	return deliveryKeyPrefix + strconv.Itoa(orderID)
}

func (r *RedisAdapter) ClaimDelivery(ctx context.Context, orderID int, token string) (port.ClaimState, error) {
	key := deliveryKey(orderID)
	ok, err := r.client.SetNX(ctx, key, token, deliveryKeyTTL).Result()
	if err != nil {
		return port.ClaimInFlight, err
	}
	if ok {
		return port.ClaimAcquired, nil
	}

	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Released or expired between the two calls; the caller may retry.
		return port.ClaimInFlight, nil
	}
	if err != nil {
		return port.ClaimInFlight, err
	}
	if val == deliveryDone {
		return port.ClaimCompleted, nil
	}
	return port.ClaimInFlight, nil
}

func (r *RedisAdapter) CompleteDelivery(ctx context.Context, orderID int, token string) error {
	n, err := completeDeliveryScript.Run(ctx, r.client, []string{deliveryKey(orderID)},
		token, deliveryDone, deliveryKeyTTL.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("delivery %d claim lost before completion", orderID)
	}
	return nil
}

func (r *RedisAdapter) ReleaseDelivery(ctx context.Context, orderID int, token string) error {
	return releaseDeliveryScript.Run(ctx, r.client, []string{deliveryKey(orderID)}, token).Err()
}
