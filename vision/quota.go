package vision

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQuotaStore keeps the monthly counter in Redis so multiple scanner
// processes share one budget. The check-and-increment runs as a single Lua
// script: two callers racing on the last remaining unit cannot both win.
type RedisQuotaStore struct {
	rdb *redis.Client
}

// NewRedisQuotaStore creates a RedisQuotaStore.
func NewRedisQuotaStore(rdb *redis.Client) *RedisQuotaStore {
	return &RedisQuotaStore{rdb: rdb}
}

var reserveScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
if used >= tonumber(ARGV[1]) then
  return -1
end
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('EXPIRE', KEYS[1], tonumber(ARGV[2]))
end
return n
`)

var refundScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
if used > 0 then
  return redis.call('DECR', KEYS[1])
end
return 0
`)

// quotaKeyTTL keeps spent months around long enough for reporting, then
// lets them expire. Correctness comes from the month-stamped key, not the
// TTL.
const quotaKeyTTL = 62 * 24 * time.Hour

func quotaKey(monthKey string) string {
	return "vision:quota:" + monthKey
}

// Reserve atomically claims one unit of the month's budget. Returns false
// when the budget is exhausted.
func (s *RedisQuotaStore) Reserve(ctx context.Context, monthKey string, limit int) (bool, error) {
	n, err := reserveScript.Run(ctx, s.rdb, []string{quotaKey(monthKey)},
		limit, int(quotaKeyTTL.Seconds())).Int64()
	if err != nil {
		return false, fmt.Errorf("quota reserve: %w", err)
	}
	return n != -1, nil
}

// Refund returns one unit after a failed analysis. Never drops below zero.
func (s *RedisQuotaStore) Refund(ctx context.Context, monthKey string) error {
	if err := refundScript.Run(ctx, s.rdb, []string{quotaKey(monthKey)}).Err(); err != nil {
		return fmt.Errorf("quota refund: %w", err)
	}
	return nil
}

// Used returns the number of units consumed this month.
func (s *RedisQuotaStore) Used(ctx context.Context, monthKey string) (int, error) {
	n, err := s.rdb.Get(ctx, quotaKey(monthKey)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("quota read: %w", err)
	}
	return n, nil
}
