package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/bookchat/internal/models"
)

// Register регистрирует нового пользователя.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "apiclient.Register"
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	var out models.User
	err := c.send(ctx, call{
		method: http.MethodPost,
		route:  "/auth/register",
		path:   "/auth/register",
		body:   req,
		public: true,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// Login обменивает учётные данные на токен. Backend ждёт OAuth2-форму,
// поэтому email передаётся в поле username.
func (c *Client) Login(ctx context.Context, identifier, secret string) (*models.LoginResult, error) {
	const op = "apiclient.Login"
	form := url.Values{}
	form.Set("username", identifier)
	form.Set("password", secret)

	var out models.LoginResult
	err := c.send(ctx, call{
		method: http.MethodPost,
		route:  "/auth/login",
		path:   "/auth/login",
		form:   form,
		public: true,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// ForgotPassword запрашивает письмо для сброса пароля.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*models.MessageResponse, error) {
	const op = "apiclient.ForgotPassword"
	var out models.MessageResponse
	err := c.send(ctx, call{
		method: http.MethodPost,
		route:  "/auth/forgot-password",
		path:   "/auth/forgot-password",
		body:   map[string]string{"email": email},
		public: true,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// ResetPassword задаёт новый пароль по токену из письма.
func (c *Client) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	const op = "apiclient.ResetPassword"
	var out models.MessageResponse
	err := c.send(ctx, call{
		method: http.MethodPost,
		route:  "/auth/reset-password",
		path:   "/auth/reset-password",
		body:   req,
		public: true,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}
