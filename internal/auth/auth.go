// Package auth adapts the external identity provider to the request path.
// The service never manages credentials itself: a trusted gateway (or a
// static token table for development) yields a verified user identifier per
// request, or nothing.
package auth

import (
	"context"
	"net/http"
	"strings"
)

// Provider resolves the authenticated user for a request. An empty string
// means the request is unauthenticated.
type Provider interface {
	UserID(r *http.Request) string
}

// HeaderProvider trusts a user identifier set by an authenticating reverse
// proxy in a request header. Must not be exposed without such a proxy in
// front.
type HeaderProvider struct {
	Header string
}

func (p HeaderProvider) UserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(p.Header))
}

// StaticTokenProvider maps bearer tokens to user identifiers from
// configuration.
type StaticTokenProvider struct {
	tokens map[string]string
}

func NewStaticTokenProvider(tokens map[string]string) *StaticTokenProvider {
	return &StaticTokenProvider{tokens: tokens}
}

func (p *StaticTokenProvider) UserID(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return p.tokens[strings.TrimSpace(token)]
}

// contextKey avoids collisions with other packages' context values.
type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, or "" when the
// request is unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// Middleware resolves the request's user through the provider and stores it
// in the request context. It does not reject unauthenticated requests;
// handlers decide, since some routes (the audit trail view) are open.
func Middleware(provider Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := provider.UserID(r); userID != "" {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
