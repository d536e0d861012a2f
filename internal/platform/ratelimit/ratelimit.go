// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit decides whether a client may issue another request.

Two implementations exist:

  - Local: an in-process token bucket per client key (golang.org/x/time/rate).
  - Redis: a fixed window counter shared by every API instance.
*/
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/taibuivan/pals/internal/platform/constants"
)

// Limiter reports whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// # In-process limiter

type localClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Local keeps one token bucket per key in memory.
type Local struct {
	mu      sync.Mutex
	clients map[string]*localClient
	rps     rate.Limit
	burst   int
	ttl     time.Duration
}

// NewLocal creates an in-process limiter allowing rps requests per second
// with the given burst.
func NewLocal(rps float64, burst int) *Local {
	return &Local{
		clients: make(map[string]*localClient),
		rps:     rate.Limit(rps),
		burst:   burst,
		ttl:     constants.RateLimitClientTTL,
	}
}

// Allow consumes one token from the bucket of key.
func (limiter *Local) Allow(_ context.Context, key string) (bool, error) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	client, found := limiter.clients[key]
	if !found {
		client = &localClient{limiter: rate.NewLimiter(limiter.rps, limiter.burst)}
		limiter.clients[key] = client
	}
	client.lastSeen = time.Now()

	return client.limiter.Allow(), nil
}

// Cleanup evicts idle clients every interval until ctx is cancelled.
func (limiter *Local) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.evict(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

// evict removes clients idle for longer than the ttl.
func (limiter *Local) evict(now time.Time) int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	evicted := 0
	for key, client := range limiter.clients {
		if now.Sub(client.lastSeen) > limiter.ttl {
			delete(limiter.clients, key)
			evicted++
		}
	}
	return evicted
}

// # Shared limiter

// Redis counts requests per key in fixed windows stored in Redis.
type Redis struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedis creates a limiter allowing rps requests per second and key,
// counted over fixed windows. The per-window limit is at least one.
func NewRedis(client *redis.Client, rps float64, window time.Duration) *Redis {
	limit := int64(math.Ceil(rps * window.Seconds()))
	if limit < 1 {
		limit = 1
	}
	return &Redis{client: client, limit: limit, window: window}
}

// Allow increments the counter of key in one MULTI/EXEC together with an
// EXPIRE NX, so every counter carries a TTL.
func (limiter *Redis) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := constants.RedisPrefixRateLimit + key

	var incr *redis.IntCmd
	_, err := limiter.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, limiter.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis_ratelimit_incr_failed: %w", err)
	}

	return incr.Val() <= limiter.limit, nil
}
