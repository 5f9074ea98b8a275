package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/services/authforms"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*authforms.Result, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*authforms.Result)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	body := Request{Name: "Ana", Email: "ana@example.com", Password: "password123"}
	want := models.RegisterRequest{Email: body.Email, Name: body.Name, Password: body.Password}

	tests := []struct {
		name           string
		mockResp       *authforms.Result
		mockErr        error
		wantStatusCode int
		wantBody       string
	}{
		{
			name:           "valid registration",
			mockResp:       &authforms.Result{Target: "/login", Message: "Account created successfully! You can sign in now."},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"status":"OK","data":{"target":"/login","message":"Account created successfully! You can sign in now."}}`,
		},
		{
			name:           "email already registered",
			mockErr:        apierr.FromResponse(http.StatusBadRequest, []byte(`{"detail":"Email already registered"}`)),
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       `{"status":"Error","error":"Email already registered"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("Register", mock.Anything, want).Return(tt.mockResp, tt.mockErr).Once()
			handler := New(newNoopLogger(), svc)

			raw, _ := json.Marshal(body)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(raw)))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestRegisterHandler_InvalidJSON(t *testing.T) {
	svc := new(ServiceMock)
	handler := New(newNoopLogger(), svc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte("{"))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}
