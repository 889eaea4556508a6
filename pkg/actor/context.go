// Package actor carries the identity of the user on whose behalf an event or
// request is being processed.
package actor

import (
	"context"
	"strings"
)

type contextKey string

const userIDKey contextKey = "actor_user_id"

// HeaderUserID is set by the host platform's auth proxy on every API request.
const HeaderUserID = "X-User-ID"

// WithUser returns a context that carries the acting user id.
func WithUser(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDKey, strings.TrimSpace(userID))
}

// FromContext returns the acting user id, or "" when the action is anonymous
// (system jobs, imports without a session).
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Required returns the acting user id and false when none is present.
func Required(ctx context.Context) (string, bool) {
	id := FromContext(ctx)
	return id, id != ""
}
