package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/auth"
	"github.com/cmlabs-hris/academy-shift-go/internal/handler/http/response"
)

// CronSecret admits requests carrying "Authorization: Bearer <secret>".
// An empty secret rejects everything.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			provided, found := strings.CutPrefix(header, "Bearer ")
			if secret == "" || !found || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				response.HandleError(w, auth.ErrInvalidSecret)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
