package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const adminKey contextKey = "admin"

// Admin is the authenticated principal attached to admin requests.
// It is threaded explicitly through the request context, never read
// from ambient storage.
type Admin struct {
	ID          string
	Email       string
	DisplayName string
}

// WithAdmin returns a request whose context carries the admin principal.
func WithAdmin(r *http.Request, admin Admin) *http.Request {
	ctx := context.WithValue(r.Context(), adminKey, admin)
	return r.WithContext(ctx)
}

// GetAdmin retrieves the admin principal, reporting whether one is set.
func GetAdmin(r *http.Request) (Admin, bool) {
	admin, ok := r.Context().Value(adminKey).(Admin)
	return admin, ok
}
