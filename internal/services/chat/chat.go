// Package chat ведёт диалог пользователя с книжным ассистентом.
//
// Каждое сообщение проходит три шага: проверка остатка сообщений,
// списание попытки и собственно запрос к ассистенту. Любая ошибка
// превращается в реплику ассистента с текстом ошибки; исчерпанный
// лимит блокирует ввод до конца жизни контроллера.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/models"
)

// Greeting первая реплика ассистента в каждом диалоге.
const Greeting = "Hi! Tell me which book you are looking for today? 📚✨"

const (
	errorPrefix     = "⚠️ "
	fallbackMessage = "Failed to process the request."
)

var (
	// ErrLocked ввод заблокирован исчерпанным лимитом.
	ErrLocked = errors.New("chat is locked: plan limit reached")
	// ErrBusy предыдущее сообщение ещё обрабатывается.
	ErrBusy = errors.New("previous message is still in flight")
)

// Backend вызовы backend, нужные чату.
type Backend interface {
	CheckRemaining(ctx context.Context) (*models.CheckResult, error)
	ConsumeAttempt(ctx context.Context) (*models.ConsumeResult, error)
	SendChat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// ConversationStore хранилище идентификатора активного диалога.
type ConversationStore interface {
	ConversationID(ctx context.Context) (string, error)
	SetConversationID(ctx context.Context, id string) error
}

// OverviewRefresher перезапрашивает обзор подписки после отправки сообщения.
type OverviewRefresher interface {
	RefreshOverview(ctx context.Context)
}

// Option настройка Controller.
type Option func(*Controller)

// WithOverviewRefresher задаёт, кого уведомлять о расходе попытки.
func WithOverviewRefresher(r OverviewRefresher) Option {
	return func(c *Controller) {
		c.overview = r
	}
}

// Snapshot состояние страницы чата.
type Snapshot struct {
	Messages       []models.Message `json:"messages"`
	ConversationID *uuid.UUID       `json:"conversation_id,omitempty"`
	Locked         bool             `json:"locked"`
	Loading        bool             `json:"loading"`
}

// Controller контроллер страницы чата.
type Controller struct {
	api      Backend
	convs    ConversationStore
	overview OverviewRefresher
	log      *slog.Logger

	mu       sync.Mutex
	messages []models.Message
	conv     *uuid.UUID
	locked   bool
	loading  bool
}

// New создаёт контроллер и подхватывает сохранённый идентификатор диалога.
func New(ctx context.Context, api Backend, convs ConversationStore, log *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		convs:    convs,
		log:      log,
		messages: []models.Message{greeting()},
	}
	for _, opt := range opts {
		opt(c)
	}

	raw, err := convs.ConversationID(ctx)
	if err != nil {
		log.Warn("failed to read conversation id", sl.Err(err))
		return c
	}
	if raw == "" {
		return c
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("ignoring malformed conversation id", slog.String("value", raw))
		return c
	}
	c.conv = &id
	return c
}

func greeting() models.Message {
	return models.Message{Role: models.MessageRoleAssistant, Content: Greeting}
}

// Snapshot возвращает копию состояния.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]models.Message, len(c.messages))
	copy(msgs, c.messages)
	var conv *uuid.UUID
	if c.conv != nil {
		id := *c.conv
		conv = &id
	}
	return Snapshot{
		Messages:       msgs,
		ConversationID: conv,
		Locked:         c.locked,
		Loading:        c.loading,
	}
}

// Send отправляет сообщение text. Пустое сообщение игнорируется.
// Ошибка возвращается только если сообщение не принято к отправке
// (ErrLocked, ErrBusy); ошибки backend попадают в транскрипт.
func (c *Controller) Send(ctx context.Context, text string) error {
	const op = "chat.Send"
	log := c.log.With(sl.Op(op))

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	switch {
	case c.locked:
		c.mu.Unlock()
		return ErrLocked
	case c.loading:
		c.mu.Unlock()
		return ErrBusy
	}
	c.loading = true
	c.messages = append(c.messages, models.Message{Role: models.MessageRoleUser, Content: text})
	conv := c.conv
	c.mu.Unlock()

	reply, err := c.exchange(ctx, text, conv)
	c.finish(ctx, log, reply, err)

	if c.overview != nil {
		c.overview.RefreshOverview(ctx)
	}
	return nil
}

func (c *Controller) finish(ctx context.Context, log *slog.Logger, reply *models.ChatResponse, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		log.Info("message failed", sl.Err(err))
		c.messages = append(c.messages, models.Message{
			Role:    models.MessageRoleAssistant,
			Content: errorPrefix + apierr.Message(err, fallbackMessage),
			Error:   true,
		})
		if errors.Is(err, apierr.ErrQuotaExceeded) {
			c.locked = true
		}
		return
	}

	if c.conv == nil || *c.conv != reply.ConversationID {
		id := reply.ConversationID
		c.conv = &id
		if err := c.convs.SetConversationID(ctx, id.String()); err != nil {
			log.Warn("failed to persist conversation id", sl.Err(err))
		}
	}
	c.messages = append(c.messages, models.Message{Role: models.MessageRoleAssistant, Content: reply.Answer})
}

func (c *Controller) exchange(ctx context.Context, text string, conv *uuid.UUID) (*models.ChatResponse, error) {
	const op = "chat.exchange"

	if _, err := c.api.CheckRemaining(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := c.api.ConsumeAttempt(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reply, err := c.api.SendChat(ctx, models.ChatRequest{Message: text, ConversationID: conv})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reply, nil
}

// NewConversation забывает активный диалог и начинает транскрипт заново.
// Блокировка по лимиту сохраняется.
func (c *Controller) NewConversation(ctx context.Context) error {
	const op = "chat.NewConversation"

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrBusy
	}
	if err := c.convs.SetConversationID(ctx, ""); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.conv = nil
	c.messages = []models.Message{greeting()}
	return nil
}
