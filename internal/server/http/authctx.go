package httpserver

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const tokenKey ctxKey = "ct.token"

// WithToken stores the caller's bearer token in context.
func WithToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, tokenKey, tok)
}

// TokenFromCtx fetches the bearer token from context.
func TokenFromCtx(ctx context.Context) (string, bool) {
	v := ctx.Value(tokenKey)
	if v == nil {
		return "", false
	}
	tok, ok := v.(string)
	return tok, ok && tok != ""
}

// BearerToken extracts "Authorization: Bearer <token>" into the request
// context. Requests without the header pass through; handlers that need the
// token reject them.
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok && tok != "" {
			r = r.WithContext(WithToken(r.Context(), tok))
		}
		next.ServeHTTP(w, r)
	})
}
