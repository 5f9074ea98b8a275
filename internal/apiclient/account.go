package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/bookchat/internal/models"
)

// Me возвращает профиль текущего пользователя.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	const op = "apiclient.Me"
	var out models.User
	if err := c.Do(ctx, http.MethodGet, "/account/me", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// Overview возвращает состояние подписки и расход.
func (c *Client) Overview(ctx context.Context) (*models.Overview, error) {
	const op = "apiclient.Overview"
	var out models.Overview
	if err := c.Do(ctx, http.MethodGet, "/account/overview", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// ChangePassword меняет пароль текущего пользователя.
func (c *Client) ChangePassword(ctx context.Context, req models.PasswordChange) (*models.MessageResponse, error) {
	const op = "apiclient.ChangePassword"
	var out models.MessageResponse
	if err := c.Do(ctx, http.MethodPost, "/account/change-password", nil, req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}
