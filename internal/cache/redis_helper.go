package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/warehouse-recon/internal/config"
)

const (
	defaultTTL  = time.Hour
	dialTimeout = 5 * time.Second
	purgeBatch  = 500
	defaultHost = "127.0.0.1"
	defaultPort = "6379"
)

// dialRedis connects and pings the server.
func dialRedis(cfg config.CacheConfig) (*redis.Client, time.Duration, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, 0, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, 0, fmt.Errorf("failed to reach redis at %s: %w", opts.Addr, err)
	}

	ttl := defaultTTL
	if cfg.TTLSeconds > 0 {
		ttl = time.Duration(cfg.TTLSeconds) * time.Second
	}
	return client, ttl, nil
}

// redisOptions prefers REDIS_URL over the host/port fields.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	var opts *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		host, port := cfg.RedisHost, cfg.RedisPort
		if host == "" {
			host = defaultHost
		}
		if port == "" {
			port = defaultPort
		}
		opts = &redis.Options{
			Addr:     net.JoinHostPort(host, port),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}
	opts.DialTimeout = dialTimeout
	opts.WriteTimeout = 10 * time.Second
	return opts, nil
}

// purge unlinks every key under prefix in batches.
func purge(ctx context.Context, client *redis.Client, prefix string) error {
	iter := client.Scan(ctx, 0, prefix+"*", purgeBatch).Iterator()
	batch := make([]string, 0, purgeBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to drop cached reports: %w", err)
		}
		batch = batch[:0]
		return nil
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached reports: %w", err)
	}
	return flush()
}
