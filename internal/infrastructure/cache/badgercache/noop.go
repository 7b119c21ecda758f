package badgercache

import (
	"context"
	"time"
)

// Noop satisfies the cache port when no backend is configured: every read
// misses and every write is dropped, transparently to callers.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Noop) Set(context.Context, string, []byte, time.Duration) {}
