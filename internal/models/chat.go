package models

import "github.com/google/uuid"

// MessageRole автор реплики в чате.
type MessageRole string

const (
	// MessageRoleUser — реплика пользователя.
	MessageRoleUser MessageRole = "user"
	// MessageRoleAssistant — ответ ассистента или сообщение об ошибке.
	MessageRoleAssistant MessageRole = "assistant"
)

// Message реплика в транскрипте.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
	Error   bool        `json:"error,omitempty"`
}

// ChatRequest тело POST /chat. ConversationID пуст на первом ходе.
type ChatRequest struct {
	Message        string         `json:"message"`
	ConversationID *uuid.UUID     `json:"conversation_id,omitempty"`
	Where          map[string]any `json:"where"`
}

// ChatResponse ответ POST /chat.
type ChatResponse struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Answer         string    `json:"answer"`
	Title          string    `json:"title,omitempty"`
	Reason         string    `json:"reason,omitempty"`
}
