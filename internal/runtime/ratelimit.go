package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/rpclog/rpclog/internal/runtime/config"
	rlerrors "github.com/rpclog/rpclog/internal/runtime/errors"
	"github.com/rpclog/rpclog/internal/runtime/ids"
)

// window is one client's fixed-window counter.
type window struct {
	count   int
	resetAt time.Time
}

// rateLimiter implements best-effort fixed-window rate limiting. The table
// is owned exclusively by one middleware instance and swept lazily on every
// invocation; the sweep is O(table size) per call, acceptable for the key
// cardinalities this is meant for. Not a hard quota.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	cfg     config.RateLimitConfig
	now     func() time.Time
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		windows: make(map[string]*window),
		cfg:     cfg.WithDefaults(),
		now:     time.Now,
	}
}

// defaultKey derives the client key: user ID, then request ID, then the
// anonymous sentinel, in that priority order.
func defaultKey(ctx context.Context) string {
	if id, ok := UserIDFromContext(ctx); ok {
		return id
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		return id
	}
	return "anonymous"
}

func (rl *rateLimiter) key(ctx context.Context) string {
	if rl.cfg.Key != nil {
		return rl.cfg.Key(ctx)
	}
	return defaultKey(ctx)
}

// allow sweeps expired windows, then counts this call against the key's
// window. It returns nil when the call is admitted, or a terminal
// RateLimitError once the post-increment count exceeds the allowance.
func (rl *rateLimiter) allow(ctx context.Context) error {
	key := rl.key(ctx)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, k)
		}
	}

	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		rl.windows[key] = &window{count: 1, resetAt: now.Add(rl.cfg.Window)}
		return nil
	}

	w.count++
	if w.count > rl.cfg.MaxRequests {
		return &rlerrors.RateLimitError{Key: key, Limit: rl.cfg.MaxRequests, ResetAt: w.resetAt}
	}
	return nil
}

// NewRequestID exposes ULID generation for hosts that assign their own
// request identifiers before entering the chain.
func NewRequestID() string {
	return ids.NewRequestID()
}
