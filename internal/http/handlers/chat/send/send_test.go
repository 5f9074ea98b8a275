package send

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/services/chat"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Send(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

func (m *ServiceMock) Snapshot(ctx context.Context) chat.Snapshot {
	args := m.Called(ctx)
	return args.Get(0).(chat.Snapshot)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSendHandler_ServeHTTP(t *testing.T) {
	snap := chat.Snapshot{Messages: []models.Message{
		{Role: models.MessageRoleAssistant, Content: chat.Greeting},
		{Role: models.MessageRoleUser, Content: "fantasy"},
		{Role: models.MessageRoleAssistant, Content: "Try The Hobbit"},
	}}

	tests := []struct {
		name           string
		body           string
		sendErr        error
		callSend       bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "сообщение отправлено",
			body:           `{"message":"fantasy"}`,
			callSend:       true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "чат заблокирован",
			body:           `{"message":"fantasy"}`,
			sendErr:        chat.ErrLocked,
			callSend:       true,
			wantStatusCode: http.StatusForbidden,
			wantError:      "Message limit reached for your plan. Choose another plan to continue.",
		},
		{
			name:           "предыдущее сообщение в обработке",
			body:           `{"message":"fantasy"}`,
			sendErr:        chat.ErrBusy,
			callSend:       true,
			wantStatusCode: http.StatusConflict,
			wantError:      "The previous message is still being processed.",
		},
		{
			name:           "некорректный JSON",
			body:           `message`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callSend {
				svc.On("Send", mock.Anything, "fantasy").Return(tt.sendErr).Once()
			}
			if tt.callSend && tt.sendErr == nil {
				svc.On("Snapshot", mock.Anything).Return(snap).Once()
			}

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got struct {
				Status string        `json:"status"`
				Error  string        `json:"error"`
				Data   chat.Snapshot `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			if tt.wantError != "" {
				assert.Equal(t, "Error", got.Status)
				assert.Equal(t, tt.wantError, got.Error)
			} else {
				assert.Equal(t, "OK", got.Status)
				assert.Equal(t, snap.Messages, got.Data.Messages)
			}
			svc.AssertExpectations(t)
		})
	}
}
