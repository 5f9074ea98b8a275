package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/bookchat/internal/models"
)

// CreateSubscription активирует план planCode.
func (c *Client) CreateSubscription(ctx context.Context, planCode string) (*models.SubscriptionResult, error) {
	const op = "apiclient.CreateSubscription"
	q := url.Values{}
	q.Set("plan", planCode)
	var out models.SubscriptionResult
	if err := c.Do(ctx, http.MethodPost, "/subscriptions/create", q, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// CheckRemaining проверяет, остались ли у пользователя сообщения.
// Исчерпанный лимит приходит как 403.
func (c *Client) CheckRemaining(ctx context.Context) (*models.CheckResult, error) {
	const op = "apiclient.CheckRemaining"
	var out models.CheckResult
	if err := c.Do(ctx, http.MethodGet, "/subscriptions/check", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// ConsumeAttempt списывает одно сообщение.
func (c *Client) ConsumeAttempt(ctx context.Context) (*models.ConsumeResult, error) {
	const op = "apiclient.ConsumeAttempt"
	var out models.ConsumeResult
	if err := c.Do(ctx, http.MethodPost, "/subscriptions/consume", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// Checkout симулирует оплату. amount в минимальных единицах валюты.
func (c *Client) Checkout(ctx context.Context, amount int, currency string) (*models.CheckoutResult, error) {
	const op = "apiclient.Checkout"
	var out models.CheckoutResult
	req := models.CheckoutRequest{Amount: amount, Currency: currency}
	if err := c.Do(ctx, http.MethodPost, "/subscriptions/checkout", nil, req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}
