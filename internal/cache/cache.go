package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/emi-tracker/internal/domain"
)

const dashboardKeyPrefix = "emi:dashboard:"

// allBorrowers is the key suffix of the unfiltered dashboard.
const allBorrowers = "*all*"

// generationKey counts invalidations. It sits outside the dashboard prefix so
// Invalidate never deletes it.
const generationKey = "emi:dashboard-generation"

// SummaryCache stores dashboard projections keyed by borrower. An empty
// borrower means the dashboard over every loan.
type SummaryCache interface {
	// Get returns the cached summary and whether it was found
	Get(ctx context.Context, borrowerEmail string) (*domain.DashboardSummary, bool, error)

	// Generation returns the invalidation counter. Read it before loading the
	// data a summary is computed from.
	Generation(ctx context.Context) (int64, error)

	// Set stores summary until the cache TTL expires. The write is dropped
	// when an invalidation happened after generation was read.
	Set(ctx context.Context, borrowerEmail string, generation int64, summary *domain.DashboardSummary) error

	// Invalidate drops every cached summary
	Invalidate(ctx context.Context) error
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) SummaryCache {
	return &redisSummaryCache{client: client, ttl: ttl}
}

func (c *redisSummaryCache) Get(ctx context.Context, borrowerEmail string) (*domain.DashboardSummary, bool, error) {
	raw, err := c.client.Get(ctx, dashboardKey(borrowerEmail)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary domain.DashboardSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached dashboard: %w", err)
	}

	return &summary, true, nil
}

func (c *redisSummaryCache) Generation(ctx context.Context) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

func (c *redisSummaryCache) Set(ctx context.Context, borrowerEmail string, generation int64, summary *domain.DashboardSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dashboardKey(borrowerEmail), raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)

	// an Invalidate landed between WATCH and EXEC
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (c *redisSummaryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return err
	}

	iter := c.client.Scan(ctx, 0, dashboardKeyPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	return c.client.Del(ctx, keys...).Err()
}

func dashboardKey(borrowerEmail string) string {
	if borrowerEmail == "" {
		return dashboardKeyPrefix + allBorrowers
	}
	return dashboardKeyPrefix + borrowerEmail
}

// NoopSummaryCache never stores anything. Used when redis is not configured.
type NoopSummaryCache struct{}

func (NoopSummaryCache) Get(context.Context, string) (*domain.DashboardSummary, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) Generation(context.Context) (int64, error) {
	return 0, nil
}

func (NoopSummaryCache) Set(context.Context, string, int64, *domain.DashboardSummary) error {
	return nil
}

func (NoopSummaryCache) Invalidate(context.Context) error {
	return nil
}
