package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/contentforge/contentforge/internal/api/response"
)

// SharedSecret guards the internal worker and cron endpoints with a
// constant-time bearer comparison against a single shared secret.
func SharedSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" ||
				subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				response.Error(w, http.StatusUnauthorized,
					"UNAUTHORIZED", "Missing or invalid worker secret", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
