// Package apiclient реализует HTTP-адаптер к backend книжного ассистента.
//
// Client добавляет к каждому запросу заголовок Authorization с сохранённым
// токеном, ограничивает частоту запросов и собирает метрики. На ответ 401
// клиент синхронно вызывает обработчик сброса сессии и только после этого
// возвращает ошибку вызывающему коду. Остальные ошибки возвращаются как
// *apierr.APIError без изменений.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/bookchat/internal/config"
	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
)

const maxBodySize = 1 << 20

// TokenSource источник сохранённого токена доступа.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// UnauthorizedFunc вызывается на каждый ответ 401.
type UnauthorizedFunc func(ctx context.Context)

// Client HTTP-клиент backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedFunc
	limiter        *rate.Limiter
	metrics        *Metrics
	log            *slog.Logger
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUnauthorizedHandler задаёт обработчик ответов 401.
func WithUnauthorizedHandler(fn UnauthorizedFunc) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithLimiter задаёт ограничитель частоты запросов; nil отключает ограничение.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithMetrics включает сбор метрик.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New создаёт клиент для backend по адресу cfg.BaseURL.
func New(cfg config.API, tokens TokenSource, log *slog.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        log,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized задаёт обработчик ответов 401 после создания клиента.
// Нужен, когда владелец обработчика сам зависит от клиента.
func (c *Client) OnUnauthorized(fn UnauthorizedFunc) {
	c.onUnauthorized = fn
}

// BaseURL адрес backend.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call описание одного запроса.
type call struct {
	method string
	route  string // шаблон пути для метрик, например /admin/users/{id}
	path   string
	query  url.Values
	body   any
	form   url.Values
	// public запросы к /auth/* не сбрасывают сессию на 401:
	// отказ в логине не должен трогать сохранённое состояние.
	public bool
}

// Do выполняет JSON-запрос и декодирует ответ в out (если out != nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.send(ctx, call{method: method, route: path, path: path, query: query, body: body}, out)
}

// DoForm выполняет запрос с телом application/x-www-form-urlencoded.
func (c *Client) DoForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.send(ctx, call{method: http.MethodPost, route: path, path: path, form: form}, out)
}

func (c *Client) send(ctx context.Context, cl call, out any) error {
	const op = "apiclient.send"

	log := c.log.With(
		sl.Op(op),
		slog.String("method", cl.method),
		slog.String("route", cl.route),
	)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, apierr.Network(err))
		}
	}

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(cl.method, cl.route, 0, time.Since(start))
		log.Error("request failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, apierr.Network(err))
	}
	defer resp.Body.Close()
	c.metrics.observe(cl.method, cl.route, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read response body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, apierr.Network(err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := apierr.FromResponse(resp.StatusCode, raw)
		if resp.StatusCode == http.StatusUnauthorized && !cl.public && c.onUnauthorized != nil {
			log.Warn("session rejected by backend")
			c.onUnauthorized(ctx)
		}
		log.Debug("backend returned error",
			slog.Int("status", resp.StatusCode),
			slog.String("kind", apiErr.Kind.String()),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Error("failed to decode response body", sl.Err(err))
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case cl.form != nil:
		body = strings.NewReader(cl.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case cl.body != nil:
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}
