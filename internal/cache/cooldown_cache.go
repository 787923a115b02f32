// Package cache keeps last-attempt timestamps in Redis so cooldown polls do
// not hit MongoDB. Entries carry a TTL equal to the attempt window, so a
// present key always means a live cooldown.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-platform/internal/cooldown"
)

type CooldownCache struct {
	rdb *redis.Client
}

func NewCooldownCache(addr, password string, db int) (*CooldownCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &CooldownCache{rdb: rdb}, nil
}

func key(quizID, userID string) string {
	return fmt.Sprintf("cooldown:%s:%s", quizID, userID)
}

// GetLastAttempt reports the cached attempt timestamp. A miss is not an
// error; the caller falls back to the database.
func (c *CooldownCache) GetLastAttempt(ctx context.Context, quizID, userID string) (time.Time, bool) {
	val, err := c.rdb.Get(ctx, key(quizID, userID)).Int64()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cooldown cache read failed: %v", err)
		}
		return time.Time{}, false
	}
	return time.Unix(val, 0).UTC(), true
}

// SetLastAttempt stores the timestamp with the remaining cooldown as TTL.
// Cache failures are logged and ignored; the database remains authoritative.
func (c *CooldownCache) SetLastAttempt(ctx context.Context, quizID, userID string, at time.Time) {
	ttl := cooldown.Window - time.Since(at)
	if ttl <= 0 {
		return
	}
	if err := c.rdb.Set(ctx, key(quizID, userID), at.Unix(), ttl).Err(); err != nil {
		log.Printf("cooldown cache write failed: %v", err)
	}
}

func (c *CooldownCache) Close() error {
	return c.rdb.Close()
}
