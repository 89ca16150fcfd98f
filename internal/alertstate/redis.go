package alertstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SRSentinel/internal/model"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "srsentinel:last_alert:"

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // 0 keeps keys forever
}

// RedisStore keeps the last alert per symbol in Redis so it survives restarts
// and is shared between instances.
type RedisStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and pings the server.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("redis alert store connected")
	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

func (r *RedisStore) Last(ctx context.Context, symbol string) (model.SignalKind, bool, error) {
	v, err := r.client.Get(ctx, keyPrefix+symbol).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get last alert: %w", err)
	}
	return model.SignalKind(v), true, nil
}

func (r *RedisStore) Remember(ctx context.Context, symbol string, kind model.SignalKind) error {
	if err := r.client.Set(ctx, keyPrefix+symbol, string(kind), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set last alert: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
