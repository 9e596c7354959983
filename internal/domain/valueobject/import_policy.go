// Package valueobject contains domain value objects for the BTC Tracker system.
package valueobject

import "time"

// PaginationPolicy bounds a paginated import run.
type PaginationPolicy struct {
	PageSize int

	// Consecutive page thresholds, tracked independently
	MaxEmptyPages        int // pages with zero records
	MaxUnproductivePages int // pages with records but nothing accepted

	// Hard ceilings
	MaxRecords int
	MaxOffset  int

	// Throttle between successful page fetches
	PageDelay time.Duration
}

// DefaultPaginationPolicy returns the default pagination policy.
func DefaultPaginationPolicy() PaginationPolicy {
	return PaginationPolicy{
		PageSize:             100,
		MaxEmptyPages:        5,
		MaxUnproductivePages: 3,
		MaxRecords:           10000,
		MaxOffset:            50000,
		PageDelay:            500 * time.Millisecond,
	}
}

// MaxPages returns the number of pages the offset ceiling allows. A page is
// only fetched when it ends at or below MaxOffset.
func (p PaginationPolicy) MaxPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return p.MaxOffset / p.PageSize
}

// RetryPolicy describes how often and how far apart a failed call is retried.
type RetryPolicy struct {
	MaxAttempts int           // total attempts including the first
	Backoff     time.Duration // fixed delay between attempts
}

// DefaultRetryPolicy returns the default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     2 * time.Second,
	}
}

// NoRetry is a policy that performs a single attempt.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}
