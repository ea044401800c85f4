// Package middleware provides the bearer-token scope checks guarding the
// HTTP surface. Token validation itself is an external concern; this layer
// only maps static API tokens onto scopes and enforces them per route.
package middleware

import (
	"net/http"
	"strings"

	"github.com/platinummonkey/chronicle/pkg/httputil"
)

// Scopes guarding the event endpoints.
const (
	ScopeReadEvent  = "read:audit_event"
	ScopeWriteEvent = "write:audit_event"
	ScopeSystem     = "system"
)

// ScopeAuth enforces bearer-token scopes. With no tokens configured the
// middleware is disabled and every request passes; local development runs
// this way.
type ScopeAuth struct {
	tokens map[string][]string
}

// NewScopeAuth creates scope-checking middleware from a token→scopes table.
func NewScopeAuth(tokens map[string][]string) *ScopeAuth {
	return &ScopeAuth{tokens: tokens}
}

// Enabled reports whether any tokens are configured.
func (a *ScopeAuth) Enabled() bool {
	return len(a.tokens) > 0
}

// Require wraps a handler so it only runs when the request carries a bearer
// token holding the given scope. Missing or unknown tokens get 401; a known
// token without the scope gets 403.
func (a *ScopeAuth) Require(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				httputil.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			scopes, ok := a.tokens[parts[1]]
			if !ok {
				httputil.WriteUnauthorized(w, "invalid token")
				return
			}

			for _, s := range scopes {
				if s == scope {
					next.ServeHTTP(w, r)
					return
				}
			}
			httputil.WriteForbidden(w, "insufficient scope")
		})
	}
}

// RequireByMethod applies the write scope to mutating methods and the read
// scope to everything else, for use as a subrouter middleware.
func (a *ScopeAuth) RequireByMethod(read, write string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := read
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				scope = write
			}
			a.Require(scope)(next).ServeHTTP(w, r)
		})
	}
}
