package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	userIDKey    ctxKey = "user_id"
	requestIDKey ctxKey = "request_id"
	entryIDKey   ctxKey = "entry_id"
	pageIDKey    ctxKey = "page_id"
)

// WithUserID stores the user ID in the context.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx extracts the user ID from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	return idFromCtx(ctx, userIDKey)
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithEntryID marks the entry a command operates on (the editor's current block).
func WithEntryID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, entryIDKey, id)
}

// EntryIDFromCtx returns the current entry ID, if one was set.
func EntryIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	return idFromCtx(ctx, entryIDKey)
}

// WithPageID marks the page a batch command operates on.
func WithPageID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, pageIDKey, id)
}

// PageIDFromCtx returns the current page ID, if one was set.
func PageIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	return idFromCtx(ctx, pageIDKey)
}

func idFromCtx(ctx context.Context, key ctxKey) (uuid.UUID, bool) {
	id, ok := ctx.Value(key).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
