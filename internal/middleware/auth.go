package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"fieldguide/internal/httputil"
	"fieldguide/internal/session"
)

// AdminAuth resolves the bearer token against the session store and
// attaches the admin principal to the request context. Missing, unknown
// and expired tokens all get the same 401; nothing about resource
// existence leaks.
func AdminAuth(store *session.RedisStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			data, err := store.Lookup(r.Context(), token)
			if err != nil {
				logger.Debug("session lookup failed", "path", r.URL.Path)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, httputil.WithAdmin(r, httputil.Admin{
				ID:          data.AdminID,
				Email:       data.Email,
				DisplayName: data.DisplayName,
			}))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
