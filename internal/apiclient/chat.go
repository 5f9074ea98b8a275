package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/models"
)

// SendChat отправляет сообщение ассистенту. Пустое сообщение отклоняется
// без обращения к backend.
func (c *Client) SendChat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	const op = "apiclient.SendChat"
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%s: %w", op, apierr.Validation("message must not be empty"))
	}
	if req.Where == nil {
		req.Where = map[string]any{}
	}
	var out models.ChatResponse
	if err := c.Do(ctx, http.MethodPost, "/chat", nil, req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}
