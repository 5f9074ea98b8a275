package pay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/services/plans"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Pay(ctx context.Context, code string, form plans.PaymentForm) (*plans.Result, error) {
	args := m.Called(ctx, code, form)
	res, _ := args.Get(0).(*plans.Result)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPayHandler_ServeHTTP(t *testing.T) {
	form := plans.PaymentForm{CardNumber: "4242 4242 4242 4242", Expiry: "12/30", CVV: "123"}
	body := `{"card_number":"4242 4242 4242 4242","expiry":"12/30","cvv":"123"}`
	premium, _ := plans.Find("PREMIUM")

	tests := []struct {
		name           string
		code           string
		mockResp       *plans.Result
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "оплата прошла",
			code:           "PREMIUM",
			mockResp:       &plans.Result{Plan: premium, Activated: true},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "неизвестный план",
			code:           "GOLD",
			mockErr:        fmt.Errorf("plans.Pay: %w", plans.ErrUnknownPlan),
			wantStatusCode: http.StatusNotFound,
			wantError:      "unknown plan",
		},
		{
			name:           "бесплатный план",
			code:           "FREE",
			mockErr:        fmt.Errorf("plans.Pay: %w", plans.ErrFreePlan),
			wantStatusCode: http.StatusBadRequest,
			wantError:      "the free plan requires no payment",
		},
		{
			name:           "неверная карта",
			code:           "PREMIUM",
			mockErr:        fmt.Errorf("plans.Pay: %w", apierr.Validation("cvv must be exactly 3 characters long")),
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "cvv must be exactly 3 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("Pay", mock.Anything, tt.code, form).Return(tt.mockResp, tt.mockErr).Once()

			r := chi.NewRouter()
			r.Post("/plans/{code}/pay", New(newNoopLogger(), svc).ServeHTTP)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plans/"+tt.code+"/pay", strings.NewReader(body)))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantError != "" {
				assert.JSONEq(t, `{"status":"Error","error":"`+tt.wantError+`"}`, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"activated":true`)
			}
			svc.AssertExpectations(t)
		})
	}
}
