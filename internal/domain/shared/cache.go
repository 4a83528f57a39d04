package shared

import (
	"context"
	"time"
)

// NameCache stores id→display-name tables shared between requests.
// Get reports a miss with found=false and a nil error.
type NameCache interface {
	Get(ctx context.Context, key string) (names map[string]string, found bool, err error)
	Set(ctx context.Context, key string, names map[string]string, ttl time.Duration) error
}
