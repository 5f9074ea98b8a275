package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/bookchat/internal/config"
)

// Redis хранилище в redis. Позволяет нескольким экземплярам web-shell
// разделять одну сессию.
type Redis struct {
	Db     *redis.Client
	prefix string
}

// NewRedis подключается к redis и проверяет соединение.
func NewRedis(ctx context.Context, cfg config.RedisConnection) (*Redis, error) {
	const op = "storage.NewRedis"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Redis{Db: db, prefix: cfg.KeyPrefix}, nil
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "storage.Redis.Get"
	val, err := r.Db.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	const op = "storage.Redis.Set"
	if err := r.Db.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	const op = "storage.Redis.Delete"
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	if err := r.Db.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение.
func (r *Redis) Close() error {
	return r.Db.Close()
}
