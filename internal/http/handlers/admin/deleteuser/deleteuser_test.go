package deleteuser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/services/admin"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ServiceMock) Snapshot() admin.Snapshot {
	args := m.Called()
	return args.Get(0).(admin.Snapshot)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestDeleteUserHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		err            error
		wantStatusCode int
		wantContains   string
	}{
		{
			name:           "пользователь удален",
			id:             "u-2",
			wantStatusCode: http.StatusOK,
			wantContains:   `"total_users":1`,
		},
		{
			name:           "пользователь не найден",
			id:             "missing",
			err:            fmt.Errorf("admin.DeleteUser: %w", apierr.FromResponse(http.StatusNotFound, []byte(`{"detail":"User not found"}`))),
			wantStatusCode: http.StatusNotFound,
			wantContains:   `"error":"User not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("DeleteUser", mock.Anything, tt.id).Return(tt.err).Once()
			if tt.err == nil {
				users := []models.AdminUser{{ID: "u-1", Email: "admin@example.com", Role: models.RoleAdmin}}
				svc.On("Snapshot").Return(admin.Snapshot{Users: users, Stats: admin.ComputeStats(users)}).Once()
			}

			r := chi.NewRouter()
			r.Delete("/admin/users/{id}", New(newNoopLogger(), svc).ServeHTTP)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/users/"+tt.id, nil))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
			svc.AssertExpectations(t)
		})
	}
}
