package usage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Quota reports the state of a caller's daily allowance after one increment.
// FailedOpen marks a quota that was granted because Redis was unreachable, so
// callers can log the degradation.
type Quota struct {
	Limit      int
	Used       int
	ResetAfter time.Time
	Exceeded   bool
	FailedOpen bool
}

// Limiter enforces a per-key daily question allowance backed by Redis
// counters. Redis being down must never block answering, so all Redis
// failures fail open with a warning.
type Limiter struct {
	rdb   *redis.Client
	limit int
}

// NewLimiter creates a limiter allowing dailyLimit questions per key per UTC
// day. A non-positive limit or nil client disables limiting.
func NewLimiter(rdb *redis.Client, dailyLimit int) *Limiter {
	return &Limiter{rdb: rdb, limit: dailyLimit}
}

// Allow consumes one unit of the key's daily allowance and reports the
// resulting quota. The counter expires at the next UTC midnight.
func (l *Limiter) Allow(ctx context.Context, key string) Quota {
	midnight := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	if l.rdb == nil || l.limit <= 0 {
		return Quota{Limit: l.limit, ResetAfter: midnight}
	}

	counterKey := fmt.Sprintf("usage:%s:%s", key, time.Now().UTC().Format("2006-01-02"))

	used, err := l.rdb.Incr(ctx, counterKey).Result()
	if err != nil {
		return Quota{Limit: l.limit, ResetAfter: midnight, FailedOpen: true}
	}
	if used == 1 {
		if err := l.rdb.ExpireAt(ctx, counterKey, midnight).Err(); err != nil {
			log.Printf("[WARN] failed to set usage counter expiry: %v", err)
		}
	}

	return Quota{
		Limit:      l.limit,
		Used:       int(used),
		ResetAfter: midnight,
		Exceeded:   int(used) > l.limit,
	}
}
