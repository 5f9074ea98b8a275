package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"auth", apierr.FromResponse(http.StatusUnauthorized, nil), http.StatusUnauthorized},
		{"quota", apierr.FromResponse(http.StatusForbidden, nil), http.StatusForbidden},
		{"validation", apierr.Validation("bad"), http.StatusUnprocessableEntity},
		{"not found", apierr.FromResponse(http.StatusNotFound, nil), http.StatusNotFound},
		{"network", apierr.Network(errors.New("down")), http.StatusBadGateway},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/account", nil)

	Redirect(w, r, "/login", "/account")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, Response{Status: StatusRedirect, Redirect: "/login", From: "/account"}, body)
}

func TestFromError(t *testing.T) {
	t.Run("auth error redirects to login", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/chat", nil)

		FromError(w, r, apierr.FromResponse(http.StatusUnauthorized, nil), "failed")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.JSONEq(t, `{"status":"Redirect","redirect":"/login","from":"/chat"}`, w.Body.String())
	})

	t.Run("auth error on login page stays", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login", nil)

		FromError(w, r, apierr.FromResponse(http.StatusUnauthorized, []byte(`{"detail":"Incorrect email or password"}`)), "failed")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"status":"Error","error":"Incorrect email or password"}`, w.Body.String())
	})

	t.Run("fallback message", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/account", nil)

		FromError(w, r, errors.New("boom"), "could not load account")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"status":"Error","error":"could not load account"}`, w.Body.String())
	})
}
