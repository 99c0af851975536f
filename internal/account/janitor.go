package account

import (
	"context"
	"log/slog"
	"time"
)

type purger interface {
	Purge(ctx context.Context) (int64, error)
}

// runJanitor purges expired and consumed codes every interval until ctx is
// done.
func runJanitor(ctx context.Context, p purger, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := p.Purge(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "failed to purge otp records", "error", err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "otp records purged", "count", n)
			}
		}
	}
}
