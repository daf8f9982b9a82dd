package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RedisConfig holds connection parameters for the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every key, e.g. "controletok:"
}

// Redis is a KVStore backed by plain Redis strings.
type Redis struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	logger.Info("redis store ready", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &Redis{client: client, prefix: cfg.Prefix, logger: logger}, nil
}

// Close closes the client connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_, span := tracer.Start(ctx, "Redis.Get")
	defer span.End()
	span.SetAttributes(attribute.String("kv.key", key))

	value, err := r.client.Get(r.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	_, span := tracer.Start(ctx, "Redis.Set")
	defer span.End()
	span.SetAttributes(attribute.String("kv.key", key), attribute.Int("kv.size", len(value)))

	if err := r.client.Set(r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	r.logger.Debug("redis: key stored", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	_, span := tracer.Start(ctx, "Redis.Remove")
	defer span.End()
	span.SetAttributes(attribute.String("kv.key", key))

	if err := r.client.Del(r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis remove %q: %w", key, err)
	}
	return nil
}

// Ping checks the connection (used by /healthz).
func (r *Redis) Ping(_ context.Context) error {
	return r.client.Ping().Err()
}
