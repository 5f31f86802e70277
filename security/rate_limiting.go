package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRateLimited reports an exhausted lookup window.
var ErrRateLimited = errors.New("rate limit exceeded")

// LookupLimiter throttles manual code lookups. Ticket codes are short and
// human-typeable, so an unthrottled lookup endpoint would be a code
// enumeration oracle; a fixed per-minute window per staff member and
// event is enough to make guessing impractical at the door.
type LookupLimiter struct {
	redis     *redis.Client
	perMinute int
}

func NewLookupLimiter(redisClient *redis.Client, perMinute int) *LookupLimiter {
	return &LookupLimiter{redis: redisClient, perMinute: perMinute}
}

// Allow consumes one lookup attempt for the given staff member and event.
// Redis trouble fails open: losing the throttle for a window beats
// turning every manual lookup into an outage.
func (l *LookupLimiter) Allow(ctx context.Context, staffID, eventID string) error {
	if l.perMinute <= 0 {
		return nil
	}

	key := fmt.Sprintf("lookup:window:%s:%s", eventID, staffID)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return nil
	}
	if count == 1 {
		l.redis.Expire(ctx, key, time.Minute)
	}
	if count > int64(l.perMinute) {
		return ErrRateLimited
	}
	return nil
}
