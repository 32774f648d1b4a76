package cache

import (
	"errors"
	"time"

	"github.com/matzehuels/seamcarve/pkg/httputil"
)

// Sentinel errors for caching operations.
var (
	// ErrNetwork is returned when a remote backend (Redis, MongoDB) cannot be reached.
	ErrNetwork = errors.New("network error")

	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache closed")
)

// backendBackoff governs retries of transient Redis and MongoDB failures.
// It is shorter than HTTP fetch backoff since a cache miss is cheaper than
// a long wait.
var backendBackoff = httputil.Backoff{Attempts: 3, Delay: 100 * time.Millisecond}
