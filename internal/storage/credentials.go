package storage

import (
	"context"
	"fmt"
)

// Credentials типизированная обёртка над Store для ключей сессии.
type Credentials struct {
	store Store
}

// NewCredentials оборачивает store.
func NewCredentials(store Store) *Credentials {
	return &Credentials{store: store}
}

// Token возвращает сохранённый токен доступа или "".
func (c *Credentials) Token(ctx context.Context) (string, error) {
	const op = "storage.Credentials.Token"
	v, _, err := c.store.Get(ctx, KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// Role возвращает сохранённую роль или "".
func (c *Credentials) Role(ctx context.Context) (string, error) {
	const op = "storage.Credentials.Role"
	v, _, err := c.store.Get(ctx, KeyRole)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// Save сохраняет токен и роль.
func (c *Credentials) Save(ctx context.Context, token, role string) error {
	const op = "storage.Credentials.Save"
	if err := c.store.Set(ctx, KeyAccessToken, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.store.Set(ctx, KeyRole, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear удаляет токен и роль. Идентификатор диалога не трогается.
func (c *Credentials) Clear(ctx context.Context) error {
	const op = "storage.Credentials.Clear"
	if err := c.store.Delete(ctx, KeyAccessToken, KeyRole); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConversationID возвращает идентификатор активного диалога или "".
func (c *Credentials) ConversationID(ctx context.Context) (string, error) {
	const op = "storage.Credentials.ConversationID"
	v, _, err := c.store.Get(ctx, KeyConversationID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// SetConversationID сохраняет идентификатор активного диалога; "" удаляет его.
func (c *Credentials) SetConversationID(ctx context.Context, id string) error {
	const op = "storage.Credentials.SetConversationID"
	var err error
	if id == "" {
		err = c.store.Delete(ctx, KeyConversationID)
	} else {
		err = c.store.Set(ctx, KeyConversationID, id)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
