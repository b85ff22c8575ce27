// Package cache keeps rendered dashboard views keyed by path, so the next
// request can reuse them until a mutation marks them stale.
package cache

import (
	"context"
	"errors"
)

var ErrMiss = errors.New("cache miss")

// Views is a cache of rendered views keyed by path.
type Views interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Set(ctx context.Context, path string, body []byte) error
	Invalidate(ctx context.Context, path string) error
}

func key(path string) string {
	return "view:" + path
}
