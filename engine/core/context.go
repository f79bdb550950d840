package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Request ID
// -----------------------------------------------------------------------------

type contextKey string

const requestIDKey contextKey = "request_id"

// ErrNoRequestID signals that the context carries no request id.
var ErrNoRequestID = errors.New("no request id in context")

// NewRequestID returns a fresh request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID stores a request id in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id from the context.
func GetRequestID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNoRequestID
	}
	id, ok := ctx.Value(requestIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoRequestID
	}
	return id, nil
}
