package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/bookchat/internal/models"
)

const adminUserRoute = "/admin/users/{id}"

// ListUsers возвращает всех пользователей.
func (c *Client) ListUsers(ctx context.Context) ([]models.AdminUser, error) {
	const op = "apiclient.ListUsers"
	var out []models.AdminUser
	if err := c.Do(ctx, http.MethodGet, "/admin/users", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// CreateUser создаёт пользователя от имени администратора.
func (c *Client) CreateUser(ctx context.Context, req models.AdminUserCreate) (*models.AdminUser, error) {
	const op = "apiclient.CreateUser"
	var out models.AdminUser
	if err := c.Do(ctx, http.MethodPost, "/admin/users", nil, req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// UpdateUser меняет имя, роль и (опционально) пароль пользователя id.
func (c *Client) UpdateUser(ctx context.Context, id string, req models.AdminUserUpdate) error {
	const op = "apiclient.UpdateUser"
	err := c.send(ctx, call{
		method: http.MethodPut,
		route:  adminUserRoute,
		path:   "/admin/users/" + url.PathEscape(id),
		body:   req,
	}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteUser удаляет пользователя id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	const op = "apiclient.DeleteUser"
	err := c.send(ctx, call{
		method: http.MethodDelete,
		route:  adminUserRoute,
		path:   "/admin/users/" + url.PathEscape(id),
	}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPlans возвращает тарифные планы backend.
func (c *Client) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "apiclient.ListPlans"
	var out []models.Plan
	if err := c.Do(ctx, http.MethodGet, "/admin/plans", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ListLogs возвращает последние записи журнала действий.
func (c *Client) ListLogs(ctx context.Context) ([]models.ActionLog, error) {
	const op = "apiclient.ListLogs"
	var out []models.ActionLog
	if err := c.Do(ctx, http.MethodGet, "/admin/logs", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
