package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/linktrack-go/internal/tracking"
)

// CachedClickStore wraps a tracking.Repository with Redis caching for the
// scan-heavy reads (Recent and All, which backs stats aggregation). Writes
// bump a generation counter so stale entries are never served; superseded
// entries simply age out via TTL.
//
// ByEmail is deliberately not cached: its key space is unbounded and the
// query is already index-backed.
type CachedClickStore struct {
	store  tracking.Repository
	client *redis.Client
	ttl    time.Duration
}

const clickGenKey = "clicks:gen"

// NewCachedClickStore creates a Redis-cached click ledger decorator.
func NewCachedClickStore(store tracking.Repository, client *redis.Client, ttl time.Duration) *CachedClickStore {
	return &CachedClickStore{
		store:  store,
		client: client,
		ttl:    ttl,
	}
}

// Insert appends to the underlying ledger and invalidates cached reads by
// advancing the generation counter. Cache failures are ignored: the ledger
// is the source of truth.
func (c *CachedClickStore) Insert(ctx context.Context, click *tracking.ClickRecord) error {
	if err := c.store.Insert(ctx, click); err != nil {
		return err
	}

	_ = c.client.Incr(ctx, clickGenKey).Err()

	return nil
}

func (c *CachedClickStore) Recent(ctx context.Context, limit int) ([]tracking.ClickRecord, error) {
	key := fmt.Sprintf("clicks:recent:%s:%d", c.generation(ctx), limit)

	if clicks, ok := c.getCached(ctx, key); ok {
		return clicks, nil
	}

	clicks, err := c.store.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	c.setCached(ctx, key, clicks)

	return clicks, nil
}

func (c *CachedClickStore) ByEmail(ctx context.Context, email string) ([]tracking.ClickRecord, error) {
	return c.store.ByEmail(ctx, email)
}

func (c *CachedClickStore) All(ctx context.Context) ([]tracking.ClickRecord, error) {
	key := "clicks:all:" + c.generation(ctx)

	if clicks, ok := c.getCached(ctx, key); ok {
		return clicks, nil
	}

	clicks, err := c.store.All(ctx)
	if err != nil {
		return nil, err
	}

	c.setCached(ctx, key, clicks)

	return clicks, nil
}

func (c *CachedClickStore) generation(ctx context.Context) string {
	gen, err := c.client.Get(ctx, clickGenKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "0"
		}
		// Redis unavailable: use a key no writer bumps so reads fall
		// through to the store.
		return "-"
	}

	return gen
}

func (c *CachedClickStore) getCached(ctx context.Context, key string) ([]tracking.ClickRecord, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var clicks []tracking.ClickRecord
	if err := json.Unmarshal(data, &clicks); err != nil {
		return nil, false
	}

	return clicks, true
}

func (c *CachedClickStore) setCached(ctx context.Context, key string, clicks []tracking.ClickRecord) {
	data, err := json.Marshal(clicks)
	if err != nil {
		return
	}

	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}

var _ tracking.Repository = (*CachedClickStore)(nil)
