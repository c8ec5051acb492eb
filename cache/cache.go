// Package cache is a cache-aside layer for read-only query results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Prefix namespaces every key written by this service.
const Prefix = "discovery:"

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Purge deletes every key under Prefix and reports how many went.
	Purge(ctx context.Context) (int, error)
}

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Purge(ctx context.Context) (int, error) {
	const scanCount = 100
	pattern := Prefix + "*"

	var keys []string
	var cursor uint64
	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return 0, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}

	pipe := r.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Nop never stores anything. It is used when Redis is not configured.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (Nop) Purge(context.Context) (int, error) {
	return 0, nil
}

// Key derives a stable key from a namespace and query parameters; parameter
// and value order do not matter.
func Key(namespace string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		values := append([]string(nil), params[key]...)
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	raw := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(raw))
	return Prefix + namespace + ":" + hex.EncodeToString(sum[:])
}

// Fetch returns the cached value under key or loads, stores and returns it.
// Cache failures are logged and never fail the read.
func Fetch[T any](ctx context.Context, c Cache, log *zap.Logger, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if data, ok, err := c.Get(ctx, key); err != nil {
		log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			log.Debug("cache hit", zap.String("key", key))
			return v, nil
		}
		log.Warn("cache entry undecodable", zap.String("key", key))
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
