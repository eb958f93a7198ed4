package authgate

import "context"

// contextKey is an unexported type for context keys to prevent collisions
type contextKey string

const (
	principalContextKey contextKey = "github.com/lifelog/authgate:principal"
	requestIDContextKey contextKey = "github.com/lifelog/authgate:request_id"
)

// WithPrincipal stores an authenticated principal in the request context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFrom retrieves the principal stored by the middleware.
// Always check the ok return value before using it.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	if !ok || p.IsZero() {
		return Principal{}, false
	}
	return p, true
}

// MustPrincipal retrieves the principal and panics if not present.
// Use only behind Middleware or UnaryServerInterceptor.
func MustPrincipal(ctx context.Context) Principal {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		panic("authgate: principal not found in context")
	}
	return p
}

// WithRequestID stores a request ID in context for correlation
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFrom retrieves the request ID from context
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}
