package current

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/services/session"
)

type staticSession session.State

func (s staticSession) Snapshot() session.State { return session.State(s) }

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCurrentHandler_ServeHTTP(t *testing.T) {
	limit := 100
	tests := []struct {
		name       string
		state      staticSession
		wantStatus string
		wantPlan   string
		wantUsage  bool
	}{
		{
			name:       "загрузка",
			state:      staticSession{Status: session.StatusLoading},
			wantStatus: "loading",
		},
		{
			name:       "без входа",
			state:      staticSession{Status: session.StatusUnauthenticated},
			wantStatus: "unauthenticated",
		},
		{
			name: "с подпиской",
			state: staticSession{
				Status: session.StatusAuthenticated,
				User:   &models.User{Email: "reader@example.com", Role: models.RoleUser},
				Overview: &models.Overview{Subscription: &models.Subscription{
					Plan:          models.PlanStandard,
					MessagesUsed:  80,
					MessagesLimit: &limit,
				}},
			},
			wantStatus: "authenticated",
			wantPlan:   models.PlanStandard,
			wantUsage:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(newNoopLogger(), tt.state).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			var got struct {
				Data Response `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantStatus, got.Data.Status)
			assert.Equal(t, tt.wantPlan, got.Data.Plan)
			if tt.wantUsage {
				require.NotNil(t, got.Data.Usage)
				assert.True(t, got.Data.Usage.NearLimit)
				assert.InDelta(t, 80.0, got.Data.Usage.Percent, 0.001)
			} else {
				assert.Nil(t, got.Data.Usage)
			}
		})
	}
}
