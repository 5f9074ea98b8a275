package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		detail string
		want   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, "Could not validate credentials", KindAuth},
		{"forbidden", http.StatusForbidden, "Access denied", KindQuota},
		{"limit in detail", http.StatusBadRequest, "Message LIMIT reached for plan FREE", KindQuota},
		{"limit on server error", http.StatusInternalServerError, "limit exceeded", KindQuota},
		{"bad request", http.StatusBadRequest, "Parola curentă este incorectă.", KindValidation},
		{"unprocessable", http.StatusUnprocessableEntity, "field required", KindValidation},
		{"not found", http.StatusNotFound, "User not found", KindNotFound},
		{"server", http.StatusBadGateway, "upstream", KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status, tt.detail))
		})
	}
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"Incorrect email or password"}`, "Incorrect email or password"},
		{"validation list", `{"detail":[{"loc":["body","password"],"msg":"too short"}]}`, "too short"},
		{"error envelope", `{"status":"Error","error":"boom"}`, "boom"},
		{"not json", `<html>`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDetail([]byte(tt.body)))
		})
	}
}

func TestFromResponse_FallsBackToStatusText(t *testing.T) {
	err := FromResponse(http.StatusServiceUnavailable, nil)

	assert.Equal(t, "Service Unavailable", err.Detail)
	assert.Equal(t, KindServer, err.Kind)
}

func TestAPIError_Is(t *testing.T) {
	wrapped := fmt.Errorf("chat.Send: %w", FromResponse(http.StatusForbidden, []byte(`{"detail":"Limit reached"}`)))

	assert.True(t, errors.Is(wrapped, ErrQuotaExceeded))
	assert.False(t, errors.Is(wrapped, ErrAuth))

	apiErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, http.StatusForbidden, StatusOf(wrapped))
}

func TestNetwork(t *testing.T) {
	cause := errors.New("connection refused")
	err := Network(cause)

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, 0, StatusOf(err))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Incorrect password", Message(Validation("Incorrect password"), "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("plain"), "fallback"))
}
