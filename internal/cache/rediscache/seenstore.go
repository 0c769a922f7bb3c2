package rediscache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// SeenStore records the last-seen note count per viewer and occurrence.
// Keys are plain strings so entries survive restarts but carry no TTL:
// the value is a tiny acknowledgment counter, not cached data.
type SeenStore struct {
	c *redis.Client
}

func NewSeenStore(addr string) *SeenStore {
	return &SeenStore{
		c: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func seenKey(viewerID, occurrenceID string) string {
	return fmt.Sprintf("seen:%s:%s", viewerID, occurrenceID)
}

func (s *SeenStore) LastSeen(ctx context.Context, viewerID, occurrenceID string) (int, error) {
	val, err := s.c.Get(ctx, seenKey(viewerID, occurrenceID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "redis seen get")
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *SeenStore) MarkSeen(ctx context.Context, viewerID, occurrenceID string, noteCount int) error {
	if err := s.c.Set(ctx, seenKey(viewerID, occurrenceID), noteCount, 0).Err(); err != nil {
		return errors.Wrap(err, "redis seen set")
	}
	return nil
}
