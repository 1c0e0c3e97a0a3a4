package transport

import (
	"context"
)

type (
	contextKey string
)

const (
	ContextRequestIDKey contextKey = "requestID"
)

// WithRequestID returns a context carrying the request ID sent in RequestIDHeader.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextRequestIDKey, id)
}

func getRequestID(ctx context.Context) string {
	if v := ctx.Value(ContextRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
