package adapter

import "context"

// ImportLock guarantees at most one in-flight import per report.
type ImportLock interface {
	// Acquire takes the lock for reportID. It returns false without error
	// when another holder owns it. The returned token releases the lock.
	Acquire(ctx context.Context, reportID string) (token string, ok bool, err error)

	// Release frees the lock if token still owns it.
	Release(ctx context.Context, reportID, token string) error
}
