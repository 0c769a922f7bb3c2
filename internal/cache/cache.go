package cache

import (
	"context"
	"time"
)

// BytesCache is a best-effort byte cache: callers must tolerate misses
// and errors without failing the request.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// SeenStore keeps, per viewer, the note count last acknowledged for an
// occurrence. It backs the unread-note badge only; it is not authoritative
// state and is never synced across stores.
type SeenStore interface {
	LastSeen(ctx context.Context, viewerID, occurrenceID string) (int, error)
	MarkSeen(ctx context.Context, viewerID, occurrenceID string, noteCount int) error
}
