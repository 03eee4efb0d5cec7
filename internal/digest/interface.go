package digest

import (
	"context"
	"time"
)

// Store is the log of digests that were posted.
type Store interface {
	WasSent(ctx context.Context, userID string, weekStart time.Time) (bool, error)
	Record(ctx context.Context, rec Record) error
	Recent(ctx context.Context, userID string, limit int) ([]Record, error)
}
