package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts messages per chat in one-minute windows.
type RateLimiter struct {
	rdb       *redis.Client
	prefix    string
	perMinute int
}

func NewRateLimiter(rdb *redis.Client, prefix string, perMinute int) *RateLimiter {
	return &RateLimiter{rdb: rdb, prefix: prefix, perMinute: perMinute}
}

// Allow counts one message for chatID and reports whether it is within the
// limit.
func (r *RateLimiter) Allow(ctx context.Context, chatID int64) (bool, error) {
	key := r.prefix + strconv.FormatInt(chatID, 10)

	pipe := r.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("check rate limit of chat %d: %w", chatID, err)
	}

	return incr.Val() <= int64(r.perMinute), nil
}
