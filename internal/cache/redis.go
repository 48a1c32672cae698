// Package cache keeps computed summaries in Redis between requests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tinoosan/fintrack/internal/ledger"
)

const keyPrefix = "fintrack:summary:"

// Open connects to Redis and pings it.
func Open(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

// Summaries is a JSON-backed Redis cache for summary results.
// Every key written for a user is tracked in a per-user set so Invalidate can drop them together.
type Summaries struct {
	client *goredis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewSummaries(client *goredis.Client, ttl time.Duration, logger *slog.Logger) *Summaries {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summaries{client: client, ttl: ttl, log: logger}
}

// Ready pings Redis for the readiness probe.
func (c *Summaries) Ready(ctx context.Context) error { return c.client.Ping(ctx).Err() }

func userSetKey(userID uuid.UUID) string { return keyPrefix + "keys:" + userID.String() }

// Get returns a cached summary. Misses and decode failures both report false.
func (c *Summaries) Get(ctx context.Context, key string) (ledger.Summary, bool) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("summary cache read failed", "key", key, "err", err)
		}
		return ledger.Summary{}, false
	}
	var s ledger.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		c.log.Warn("summary cache decode failed", "key", key, "err", err)
		return ledger.Summary{}, false
	}
	return s, true
}

// Set stores s under key and records the key for the user.
func (c *Summaries) Set(ctx context.Context, userID uuid.UUID, key string, s ledger.Summary) {
	data, err := json.Marshal(s)
	if err != nil {
		c.log.Warn("summary cache encode failed", "key", key, "err", err)
		return
	}
	set := userSetKey(userID)
	_, err = c.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, keyPrefix+key, data, c.ttl)
		p.SAdd(ctx, set, keyPrefix+key)
		if c.ttl > 0 {
			p.Expire(ctx, set, c.ttl)
		}
		return nil
	})
	if err != nil {
		c.log.Warn("summary cache write failed", "key", key, "err", err)
	}
}

// Invalidate deletes every summary cached for the user.
func (c *Summaries) Invalidate(ctx context.Context, userID uuid.UUID) {
	set := userSetKey(userID)
	keys, err := c.client.SMembers(ctx, set).Result()
	if err != nil {
		c.log.Warn("summary cache invalidate failed", "user_id", userID, "err", err)
		return
	}
	if err := c.client.Del(ctx, append(keys, set)...).Err(); err != nil {
		c.log.Warn("summary cache invalidate failed", "user_id", userID, "err", err)
	}
}
