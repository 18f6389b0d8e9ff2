package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// MinTTL is the shortest lifetime worth writing; entries expiring sooner are skipped
const MinTTL = time.Second

// RedisConfig configures the shared price cache
type RedisConfig struct {
	Address  string
	Password string
	Database int
	// Prefix is prepended to all keys, e.g. "industry:price"
	Prefix  string
	Timeout time.Duration
}

// RedisPriceCache stores price stats as gzipped JSON with a TTL ending at their expiry
type RedisPriceCache struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	clock   shared.Clock
}

// NewRedisPriceCache connects to redis and verifies the connection
func NewRedisPriceCache(ctx context.Context, cfg RedisConfig, clock shared.Clock) (*RedisPriceCache, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.Database,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisPriceCacheWithClient(client, cfg.Prefix, cfg.Timeout, clock), nil
}

// NewRedisPriceCacheWithClient wraps an existing client
func NewRedisPriceCacheWithClient(client *redis.Client, prefix string, timeout time.Duration, clock shared.Clock) *RedisPriceCache {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RedisPriceCache{client: client, prefix: prefix, timeout: timeout, clock: clock}
}

// Key returns the redis key of an item's stat in a region
func Key(prefix string, itemID, regionID int64) string {
	return fmt.Sprintf("%s:%d:%d", prefix, regionID, itemID)
}

// TTL returns the remaining lifetime of an entry expiring at expiresAt, and false when
// it is below MinTTL
func TTL(now, expiresAt time.Time) (time.Duration, bool) {
	ttl := expiresAt.Sub(now)
	return ttl, ttl >= MinTTL
}

func (c *RedisPriceCache) Get(ctx context.Context, itemID, regionID int64) (*market.PriceStat, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.client.Get(ctx, Key(c.prefix, itemID, regionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read price cache: %w", err)
	}

	stat, err := Decode(data)
	if err != nil {
		return nil, false, err
	}
	return stat, true, nil
}

// Set writes the stat until expiresAt. Stats already expiring within MinTTL are not written.
func (c *RedisPriceCache) Set(ctx context.Context, stat *market.PriceStat, expiresAt time.Time) error {
	ttl, ok := TTL(c.clock.Now(), expiresAt)
	if !ok {
		return nil
	}

	data, err := Encode(stat)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.client.Set(ctx, Key(c.prefix, stat.ItemID, stat.RegionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write price cache: %w", err)
	}
	return nil
}

func (c *RedisPriceCache) Delete(ctx context.Context, itemID, regionID int64) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Del(ctx, Key(c.prefix, itemID, regionID)).Err()
}

func (c *RedisPriceCache) Close() error {
	return c.client.Close()
}

// Encode serializes a stat as gzipped JSON
func Encode(stat *market.PriceStat) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(stat); err != nil {
		return nil, fmt.Errorf("failed to encode price stat: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress price stat: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode
func Decode(data []byte) (*market.PriceStat, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress price stat: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress price stat: %w", err)
	}
	var stat market.PriceStat
	if err := json.Unmarshal(raw, &stat); err != nil {
		return nil, fmt.Errorf("failed to decode price stat: %w", err)
	}
	return &stat, nil
}

var _ market.PriceCache = (*RedisPriceCache)(nil)
