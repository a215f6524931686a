package reminders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLog stores last-reminder timestamps in Redis with a TTL
type RedisLog struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLog creates a Redis-backed reminder log
func NewRedisLog(client *redis.Client, prefix string, ttl time.Duration) *RedisLog {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "libraryhub:reminder"
	}
	return &RedisLog{client: client, prefix: prefix, ttl: ttl}
}

func (l *RedisLog) key(transactionID uint) string {
	return fmt.Sprintf("%s:%d", l.prefix, transactionID)
}

// Record stores at as the last reminder time for transactionID
func (l *RedisLog) Record(ctx context.Context, transactionID uint, at time.Time) error {
	return l.client.Set(ctx, l.key(transactionID), at.UTC().Unix(), l.ttl).Err()
}

// LastSent returns the last reminder time, if any
func (l *RedisLog) LastSent(ctx context.Context, transactionID uint) (time.Time, bool, error) {
	raw, err := l.client.Get(ctx, l.key(transactionID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid reminder timestamp %q: %w", raw, err)
	}
	return time.Unix(secs, 0).UTC(), true, nil
}
