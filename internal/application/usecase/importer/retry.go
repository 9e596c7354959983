package importer

import (
	"context"
	"time"

	"github.com/btc-tracker/backend/internal/domain/valueobject"
)

// Retry calls op until it succeeds, the policy's attempts are used up or ctx
// is done. It waits policy.Backoff between attempts and returns the last
// error. onRetry, when set, is called before every wait.
func Retry[T any](
	ctx context.Context,
	policy valueobject.RetryPolicy,
	op func(ctx context.Context) (T, error),
	onRetry func(attempt int, err error),
) (T, error) {
	attempts := max(policy.MaxAttempts, 1)

	var (
		result T
		err    error
	)
	for attempt := 1; ; attempt++ {
		result, err = op(ctx)
		if err == nil || attempt >= attempts {
			return result, err
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}
		if waitErr := wait(ctx, policy.Backoff); waitErr != nil {
			return result, waitErr
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
