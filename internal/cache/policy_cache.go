// Package cache provides the redis read-through cache for active SLA
// policies and the breach notification dedup keys used by the sweep.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

const (
	activePoliciesKey = "sla:policies:active"
	breachKeyPrefix   = "sla:breach:"
)

// PolicyCache caches the active policy set. Cache failures are logged and
// treated as misses; the store remains the source of truth.
type PolicyCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewPolicyCache constructs the cache. A nil client disables caching.
func NewPolicyCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *PolicyCache {
	return &PolicyCache{client: client, ttl: ttl, logger: logger}
}

// GetActive returns the cached active policies, reporting a miss when absent.
func (c *PolicyCache) GetActive(ctx context.Context) ([]domain.SLAPolicy, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, activePoliciesKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("policy cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var policies []domain.SLAPolicy
	if err := json.Unmarshal(raw, &policies); err != nil {
		c.logger.Warn("policy cache payload corrupt", zap.Error(err))
		return nil, false
	}
	return policies, true
}

// SetActive stores the active policy set with the configured TTL.
func (c *PolicyCache) SetActive(ctx context.Context, policies []domain.SLAPolicy) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(policies)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, activePoliciesKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("policy cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached policy set after a policy mutation.
func (c *PolicyCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, activePoliciesKey).Err(); err != nil {
		c.logger.Warn("policy cache invalidation failed", zap.Error(err))
	}
}

// MarkBreachNotified records that a breach event was published for the given
// ticket/clock pair. Returns true the first time within the TTL, so the
// sweep emits each breach once. Without redis every breach is reported.
func (c *PolicyCache) MarkBreachNotified(ctx context.Context, kind domain.TicketKind, ticketID, clock string, ttl time.Duration) bool {
	if c == nil || c.client == nil {
		return true
	}
	key := breachKeyPrefix + string(kind) + ":" + ticketID + ":" + clock
	ok, err := c.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		c.logger.Warn("breach dedup failed", zap.Error(err))
		return true
	}
	return ok
}
