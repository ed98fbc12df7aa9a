package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/xxh3"

	"github.com/andresuchdata/warehouse-recon/internal/config"
	"github.com/andresuchdata/warehouse-recon/internal/export"
	"github.com/andresuchdata/warehouse-recon/internal/pipeline"
)

const resultKeyPrefix = "recon:reports"

// ResultCache stores rendered report tables of a run, keyed by its
// parameters and input fingerprint.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]*export.Table, bool, error)
	Set(ctx context.Context, key string, tables []*export.Table) error
	InvalidateAll(ctx context.Context) error
}

type redisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopResultCache struct{}

func NewResultCache(cfg config.CacheConfig) (ResultCache, error) {
	if !cfg.Enabled {
		return &noopResultCache{}, nil
	}
	client, ttl, err := dialRedis(cfg)
	if err != nil {
		return nil, err
	}
	return &redisResultCache{client: client, ttl: ttl}, nil
}

func NewNoopResultCache() ResultCache {
	return &noopResultCache{}
}

func (c *redisResultCache) Get(ctx context.Context, key string) ([]*export.Table, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var tables []*export.Table
	if err := json.Unmarshal(payload, &tables); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return tables, true, nil
}

func (c *redisResultCache) Set(ctx context.Context, key string, tables []*export.Table) error {
	payload, err := json.Marshal(export.Stringify(tables))
	if err != nil {
		return fmt.Errorf("failed to marshal reports: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisResultCache) InvalidateAll(ctx context.Context) error {
	return purge(ctx, c.client, resultKeyPrefix)
}

func (c *noopResultCache) Get(context.Context, string) ([]*export.Table, bool, error) {
	return nil, false, nil
}

func (c *noopResultCache) Set(context.Context, string, []*export.Table) error { return nil }

func (c *noopResultCache) InvalidateAll(context.Context) error { return nil }

// Key derives the cache key of a run. Client and warehouse order does not
// matter.
func Key(p pipeline.Params, fingerprint string) string {
	var b strings.Builder
	b.WriteString("start=" + day(p.Start))
	b.WriteString("|end=" + day(p.End))

	clients := slices.Clone(p.Clients)
	slices.Sort(clients)
	b.WriteString("|clients=" + strings.Join(clients, ","))

	warehouses := make([]string, len(p.Warehouses))
	for i, w := range p.Warehouses {
		warehouses[i] = string(w)
	}
	slices.Sort(warehouses)
	b.WriteString("|warehouses=" + strings.Join(warehouses, ","))

	initial := make([]string, 0, len(p.InitialInventory))
	for c, v := range p.InitialInventory {
		initial = append(initial, c+"="+strconv.FormatFloat(v, 'f', -1, 64))
	}
	slices.Sort(initial)
	b.WriteString("|initial=" + strings.Join(initial, ","))
	b.WriteString("|inputs=" + fingerprint)

	sum := sha1.Sum([]byte(b.String()))
	return resultKeyPrefix + ":" + hex.EncodeToString(sum[:])
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// Fingerprint hashes the names and contents of the given files in order.
// Missing files contribute their name only.
func Fingerprint(paths ...string) (string, error) {
	h := xxh3.New()
	for _, p := range paths {
		_, _ = io.WriteString(h, p+"\x00")
		f, err := os.Open(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", p, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", p, err)
		}
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}
