package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AdminTokenHeader carries the admin token when no Authorization header is sent
const AdminTokenHeader = "X-Admin-Token"

// AdminAuth guards world-editing routes (enemy spawns, direct buffs) with a
// shared token. An empty token disables the check.
type AdminAuth struct {
	token string
}

// NewAdminAuth creates the guard
func NewAdminAuth(token string) AdminAuth {
	return AdminAuth{token: token}
}

// Enabled reports whether a token is configured
func (a AdminAuth) Enabled() bool {
	return a.token != ""
}

// Middleware rejects requests without the token
func (a AdminAuth) Middleware(next http.Handler) http.Handler {
	if !a.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.valid(requestToken(r)) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			writeError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a AdminAuth) valid(got string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(a.token)) == 1
}

func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if tok, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	return r.Header.Get(AdminTokenHeader)
}
