package fakeapi

import (
	"context"
	"net/http"
)

func withUser(r *http.Request, id string) context.Context {
	return context.WithValue(r.Context(), ctxKey{}, id)
}
