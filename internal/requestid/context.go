package requestid

import "context"

type contextKey struct{}

// WithContext returns a context carrying the request identifier.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the request identifier stored in ctx, or "" if none.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok {
		return ""
	}
	return id
}
