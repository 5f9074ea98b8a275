// Package storage реализует постоянное хранилище клиентской сессии:
// токен доступа, роль и идентификатор активного диалога.
//
// Все компоненты работают с хранилищем только через интерфейс Store и
// фиксированные ключи. Менять пару токен/роль имеет право только
// хранилище сессии (services/session); HTTP-клиент её только читает.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/bookchat/internal/config"
)

// Фиксированные ключи хранилища.
const (
	KeyAccessToken    = "access_token"
	KeyRole           = "role"
	KeyConversationID = "convId"
)

// Поддерживаемые backend-ы.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ErrUnknownBackend возвращается Open для неизвестного backend.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Store описывает key-value хранилище клиентского состояния.
type Store interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set сохраняет значение.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключи; отсутствующие ключи не считаются ошибкой.
	Delete(ctx context.Context, keys ...string) error
}

// Open создаёт хранилище по настройкам cfg.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	const op = "storage.Open"

	switch cfg.Storage.Backend {
	case BackendFile, "":
		var key []byte
		if cfg.EncryptionKey != "" {
			k, err := ParseKey(cfg.EncryptionKey)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			key = k
		}
		fs, err := NewFile(cfg.Path, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return fs, nil
	case BackendRedis:
		rs, err := NewRedis(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return rs, nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownBackend, cfg.Storage.Backend)
	}
}
