package chat

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bookchat/internal/apiclient"
	"github.com/magabrotheeeer/bookchat/internal/config"
	"github.com/magabrotheeeer/bookchat/internal/lib/fakeapi"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/storage"
)

const (
	routeCheck   = "GET /subscriptions/check"
	routeConsume = "POST /subscriptions/consume"
	routeChat    = "POST /chat"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T) (*fakeapi.Server, *storage.Credentials, *apiclient.Client) {
	t.Helper()
	api := fakeapi.New()
	t.Cleanup(api.Close)

	u := api.AddUser("reader@example.com", "password1", models.RoleUser)
	creds := storage.NewCredentials(storage.NewMemory())
	require.NoError(t, creds.Save(context.Background(), api.Token(u), string(models.RoleUser)))

	client := apiclient.New(config.API{BaseURL: api.URL, Timeout: 5 * time.Second}, creds, newNoopLogger())
	return api, creds, client
}

func TestController_StartsWithGreeting(t *testing.T) {
	_, creds, client := setup(t)

	c := New(context.Background(), client, creds, newNoopLogger())
	snap := c.Snapshot()

	require.Len(t, snap.Messages, 1)
	assert.Equal(t, models.MessageRoleAssistant, snap.Messages[0].Role)
	assert.Equal(t, Greeting, snap.Messages[0].Content)
	assert.Nil(t, snap.ConversationID)
	assert.False(t, snap.Locked)
}

func TestController_SendAdoptsAndPersistsConversation(t *testing.T) {
	api, creds, client := setup(t)
	c := New(context.Background(), client, creds, newNoopLogger())

	require.NoError(t, c.Send(context.Background(), "a cozy mystery"))
	first := c.Snapshot()
	require.NotNil(t, first.ConversationID)

	stored, err := creds.ConversationID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID.String(), stored)

	require.NoError(t, c.Send(context.Background(), "something shorter"))
	second := c.Snapshot()

	assert.Equal(t, *first.ConversationID, *second.ConversationID)
	require.Len(t, second.Messages, 5)
	assert.Equal(t, models.MessageRoleUser, second.Messages[3].Role)
	assert.Contains(t, second.Messages[4].Content, "something shorter")
	assert.Equal(t, 2, api.Hits(routeCheck))
	assert.Equal(t, 2, api.Hits(routeConsume))
	assert.Equal(t, 2, api.Hits(routeChat))
}

func TestController_UsesStoredConversation(t *testing.T) {
	_, creds, client := setup(t)
	id := uuid.New()
	require.NoError(t, creds.SetConversationID(context.Background(), id.String()))

	c := New(context.Background(), client, creds, newNoopLogger())
	require.NoError(t, c.Send(context.Background(), "epic fantasy"))

	snap := c.Snapshot()
	require.NotNil(t, snap.ConversationID)
	assert.Equal(t, id, *snap.ConversationID)
}

func TestController_MalformedStoredConversationIgnored(t *testing.T) {
	_, creds, client := setup(t)
	require.NoError(t, creds.SetConversationID(context.Background(), "not-a-uuid"))

	c := New(context.Background(), client, creds, newNoopLogger())

	assert.Nil(t, c.Snapshot().ConversationID)
}

func TestController_ConsumeForbiddenLocksChat(t *testing.T) {
	api, creds, client := setup(t)
	api.Fail(routeConsume, http.StatusForbidden, "No attempts left")
	c := New(context.Background(), client, creds, newNoopLogger())

	require.NoError(t, c.Send(context.Background(), "recommend me a thriller"))

	snap := c.Snapshot()
	assert.True(t, snap.Locked)
	assert.False(t, snap.Loading)
	require.Len(t, snap.Messages, 3)
	assert.Equal(t, models.MessageRoleUser, snap.Messages[1].Role)
	assert.Equal(t, "⚠️ No attempts left", snap.Messages[2].Content)
	assert.True(t, snap.Messages[2].Error)
	assert.Zero(t, api.Hits(routeChat))

	err := c.Send(context.Background(), "recommend me a thriller")

	assert.ErrorIs(t, err, ErrLocked)
	assert.Len(t, c.Snapshot().Messages, 3)
	assert.Equal(t, 1, api.Hits(routeConsume))
}

func TestController_ExhaustedPlanLocksOnCheck(t *testing.T) {
	api, creds, client := setup(t)
	c := New(context.Background(), client, creds, newNoopLogger())

	for range 5 {
		require.NoError(t, c.Send(context.Background(), "next book"))
	}
	require.False(t, c.Snapshot().Locked)

	require.NoError(t, c.Send(context.Background(), "one more"))

	snap := c.Snapshot()
	assert.True(t, snap.Locked)
	assert.Contains(t, snap.Messages[len(snap.Messages)-1].Content, "limit")
	assert.Equal(t, 5, api.Hits(routeConsume))
}

func TestController_ErrorBubbles(t *testing.T) {
	tests := []struct {
		name       string
		route      string
		status     int
		detail     string
		wantLocked bool
	}{
		{"limit mentioned in detail", routeChat, http.StatusBadRequest, "Daily LIMIT exceeded", true},
		{"server error keeps chat open", routeChat, http.StatusInternalServerError, "model crashed", false},
		{"check forbidden", routeCheck, http.StatusForbidden, "Plan expired", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, creds, client := setup(t)
			api.Fail(tt.route, tt.status, tt.detail)
			c := New(context.Background(), client, creds, newNoopLogger())

			require.NoError(t, c.Send(context.Background(), "hello"))

			snap := c.Snapshot()
			assert.Equal(t, tt.wantLocked, snap.Locked)
			last := snap.Messages[len(snap.Messages)-1]
			assert.Equal(t, "⚠️ "+tt.detail, last.Content)
			assert.Nil(t, snap.ConversationID)
		})
	}
}

func TestController_IgnoresBlankInput(t *testing.T) {
	api, creds, client := setup(t)
	c := New(context.Background(), client, creds, newNoopLogger())

	require.NoError(t, c.Send(context.Background(), "   "))

	assert.Len(t, c.Snapshot().Messages, 1)
	assert.Zero(t, api.TotalHits())
}

func TestController_RejectsSendWhileLoading(t *testing.T) {
	api, creds, client := setup(t)
	api.Delay(routeChat, 200*time.Millisecond)
	c := New(context.Background(), client, creds, newNoopLogger())

	done := make(chan error, 1)
	go func() { done <- c.Send(context.Background(), "first") }()

	require.Eventually(t, func() bool { return c.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.Send(context.Background(), "second"), ErrBusy)
	assert.ErrorIs(t, c.NewConversation(context.Background()), ErrBusy)

	require.NoError(t, <-done)
	snap := c.Snapshot()
	assert.Len(t, snap.Messages, 3)
	assert.Equal(t, 1, api.Hits(routeChat))
}

func TestController_NewConversation(t *testing.T) {
	_, creds, client := setup(t)
	c := New(context.Background(), client, creds, newNoopLogger())
	require.NoError(t, c.Send(context.Background(), "space opera"))

	require.NoError(t, c.NewConversation(context.Background()))

	snap := c.Snapshot()
	assert.Nil(t, snap.ConversationID)
	require.Len(t, snap.Messages, 1)
	stored, err := creds.ConversationID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

type OverviewRefresherMock struct{ mock.Mock }

func (m *OverviewRefresherMock) RefreshOverview(ctx context.Context) {
	m.Called(ctx)
}

func TestController_SendRefreshesOverview(t *testing.T) {
	tests := []struct {
		name  string
		route string
	}{
		{"успешный ответ", ""},
		{"попытка списана, ответа нет", routeChat},
		{"лимит исчерпан", routeConsume},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, creds, client := setup(t)
			if tt.route != "" {
				api.Fail(tt.route, http.StatusForbidden, "No attempts left")
			}
			refresher := new(OverviewRefresherMock)
			refresher.On("RefreshOverview", mock.Anything).Return().Once()
			c := New(context.Background(), client, creds, newNoopLogger(), WithOverviewRefresher(refresher))

			require.NoError(t, c.Send(context.Background(), "a short novel"))

			refresher.AssertExpectations(t)
		})
	}
}

func TestController_RejectedSendSkipsOverview(t *testing.T) {
	_, creds, client := setup(t)
	refresher := new(OverviewRefresherMock)
	c := New(context.Background(), client, creds, newNoopLogger(), WithOverviewRefresher(refresher))

	require.NoError(t, c.Send(context.Background(), "  "))

	refresher.AssertNotCalled(t, "RefreshOverview", mock.Anything)
}
