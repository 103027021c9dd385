// Package cache provides a Redis read-through cache for catalog lookups.
// Receipt formatting hits the catalog for every printed line; products
// change rarely, so a short TTL removes most of that read traffic.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/partheepan17/POSGrocery-sub002/internal/domain/catalogs/product"
	"github.com/partheepan17/POSGrocery-sub002/pkg/logger"
)

// DefaultProductTTL bounds staleness of cached product rows.
const DefaultProductTTL = 5 * time.Minute

// ProductCache is a read-through product.Reader backed by Redis.
// Cache failures degrade to direct reads; they are logged, never surfaced.
type ProductCache struct {
	client *redis.Client
	source product.Reader
	ttl    time.Duration
}

// Compile-time check that ProductCache implements product.Reader.
var _ product.Reader = (*ProductCache)(nil)

// NewProductCache creates a read-through cache in front of source.
func NewProductCache(addr, password string, db int, source product.Reader) *ProductCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &ProductCache{
		client: client,
		source: source,
		ttl:    DefaultProductTTL,
	}
}

// Ping verifies the Redis connection.
func (c *ProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis client.
func (c *ProductCache) Close() error {
	return c.client.Close()
}

func productKey(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}

// GetByID retrieves a product, consulting the cache first.
func (c *ProductCache) GetByID(ctx context.Context, productID int64) (product.Product, error) {
	if p, ok := c.get(ctx, productID); ok {
		return p, nil
	}

	p, err := c.source.GetByID(ctx, productID)
	if err != nil {
		return product.Product{}, err
	}
	c.set(ctx, p)
	return p, nil
}

// GetByIDs retrieves products keyed by id, fetching only cache misses
// from the source.
func (c *ProductCache) GetByIDs(ctx context.Context, productIDs []int64) (map[int64]product.Product, error) {
	result := make(map[int64]product.Product, len(productIDs))

	var misses []int64
	for _, pid := range productIDs {
		if p, ok := c.get(ctx, pid); ok {
			result[p.ID] = p
		} else {
			misses = append(misses, pid)
		}
	}

	if len(misses) == 0 {
		return result, nil
	}

	fetched, err := c.source.GetByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for pid, p := range fetched {
		result[pid] = p
		c.set(ctx, p)
	}
	return result, nil
}

func (c *ProductCache) get(ctx context.Context, productID int64) (product.Product, bool) {
	val, err := c.client.Get(ctx, productKey(productID)).Result()
	if err == redis.Nil {
		return product.Product{}, false
	}
	if err != nil {
		logger.Warn(ctx, "product cache read failed", "product_id", productID, "error", err)
		return product.Product{}, false
	}

	var p product.Product
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		logger.Warn(ctx, "product cache entry malformed", "product_id", productID, "error", err)
		return product.Product{}, false
	}
	return p, true
}

func (c *ProductCache) set(ctx context.Context, p product.Product) {
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productKey(p.ID), payload, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "product cache write failed", "product_id", p.ID, "error", err)
	}
}
