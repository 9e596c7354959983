package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
	"github.com/btc-tracker/backend/internal/domain/valueobject"
)

// Merger receives every record that passed validation and deduplication.
type Merger interface {
	Merge(ctx context.Context, record entity.Record) entity.MergeOutcome
}

// MergerFunc adapts a function to the Merger interface.
type MergerFunc func(ctx context.Context, record entity.Record) entity.MergeOutcome

// Merge calls f.
func (f MergerFunc) Merge(ctx context.Context, record entity.Record) entity.MergeOutcome {
	return f(ctx, record)
}

// RunInput describes one paginated run over one upstream kind.
type RunInput struct {
	UserIdentity string
	ConfigID     string
	Kind         entity.ImportKind
	Detector     *Detector
	Merger       Merger
	Progress     adapter.ProgressSink
}

// RunResult is the end-of-run summary.
type RunResult struct {
	Accepted   []entity.Record
	Stats      entity.ImportStats
	StopReason entity.StopReason
	Status     entity.ImportStatus
}

// Controller drives the fetch collaborator page by page until one of the
// stopping conditions holds.
type Controller struct {
	fetcher adapter.PageFetcher
	policy  valueobject.PaginationPolicy
	retry   valueobject.RetryPolicy
	now     func() time.Time
}

// NewController creates a new Controller.
func NewController(fetcher adapter.PageFetcher, policy valueobject.PaginationPolicy, retry valueobject.RetryPolicy) *Controller {
	return &Controller{
		fetcher: fetcher,
		policy:  policy,
		retry:   retry,
		now:     time.Now,
	}
}

// Policy returns the pagination policy the controller runs with.
func (c *Controller) Policy() valueobject.PaginationPolicy {
	return c.policy
}

// run is the mutable state of one Run call.
type run struct {
	in                 RunInput
	logger             *slog.Logger
	result             *RunResult
	offset             int
	emptyStreak        int
	unproductiveStreak int
	acceptedInLastPage int
	recordsInLastPage  int
}

// Run fetches pages sequentially, streaming accepted records to the merger.
// Only a first-page failure returns an error; every other stop, including
// cancellation, ends the run as complete with the records merged so far.
func (c *Controller) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	if in.Detector == nil {
		in.Detector = NewDetector(in.Kind, nil)
	}
	logger := slog.Default().With("kind", in.Kind, "configID", in.ConfigID)
	r := &run{
		in:     in,
		logger: logger,
		result: &RunResult{Accepted: []entity.Record{}},
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.policy.PageDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(c.policy.PageDelay), 1)
	}

	r.logger.Info("Import run started", "pageSize", c.policy.PageSize, "maxOffset", c.policy.MaxOffset)
	c.report(r, entity.ImportStatusLoading, "Starting import")

	reason, err := c.loop(ctx, r, limiter)
	r.result.StopReason = reason

	if err != nil {
		r.result.Status = entity.ImportStatusError
		r.logger.Error("Import run failed on first page", "error", err)
		c.report(r, entity.ImportStatusError, err.Error())
		return r.result, err
	}

	r.result.Status = entity.ImportStatusComplete
	r.logger.Info("Import run finished",
		"stopReason", reason,
		"pages", r.result.Stats.Pages,
		"imported", r.result.Stats.Imported,
		"duplicated", r.result.Stats.Duplicated,
		"filtered", r.result.Stats.Filtered,
		"errors", r.result.Stats.Errors,
	)
	c.report(r, entity.ImportStatusComplete, r.result.Stats.Summary(reason))
	return r.result, nil
}

func (c *Controller) loop(ctx context.Context, r *run, limiter *rate.Limiter) (entity.StopReason, error) {
	for page := 0; ; page++ {
		if ctx.Err() != nil {
			return entity.StopReasonCancelled, nil
		}
		if c.policy.PageSize <= 0 || r.offset+c.policy.PageSize > c.policy.MaxOffset {
			return entity.StopReasonMaxOffset, nil
		}
		if err := limiter.Wait(ctx); err != nil {
			return entity.StopReasonCancelled, nil
		}

		req := entity.PageRequest{Kind: r.in.Kind, Limit: c.policy.PageSize, Offset: r.offset}
		logger := r.logger.With("offset", r.offset, "page", page+1)

		result, err := c.fetch(ctx, r, req, page == 0, logger)
		if err != nil {
			if ctx.Err() != nil {
				return entity.StopReasonCancelled, nil
			}
			if page == 0 {
				return entity.StopReasonFirstPageError, domainerror.NewImportError(
					domainerror.ErrCodeFirstPageFailed,
					"failed to fetch first page",
					errors.Join(domainerror.ErrFirstPageFailed, err),
				)
			}
			logger.Warn("Page fetch failed after retries, stopping", "error", err)
			return entity.StopReasonPageFetchFailed, nil
		}

		records := result.Data
		if result.IsEmpty {
			records = nil
		}
		r.result.Stats.Pages++

		if c.process(ctx, r, records) {
			c.report(r, entity.ImportStatusLoading, c.pageMessage(r, page))
			return entity.StopReasonMaxRecords, nil
		}
		c.report(r, entity.ImportStatusLoading, c.pageMessage(r, page))

		logger.Debug("Page processed",
			"records", r.recordsInLastPage,
			"accepted", r.acceptedInLastPage,
			"emptyStreak", r.emptyStreak,
			"unproductiveStreak", r.unproductiveStreak,
		)

		if ctx.Err() != nil {
			return entity.StopReasonCancelled, nil
		}

		n := len(records)
		switch {
		case n > 0 && n < c.policy.PageSize:
			return entity.StopReasonAPIEndOfData, nil
		case r.emptyStreak >= c.policy.MaxEmptyPages:
			return entity.StopReasonEmptyPages, nil
		case r.unproductiveStreak >= c.policy.MaxUnproductivePages:
			return entity.StopReasonUnproductivePages, nil
		}

		r.offset += c.policy.PageSize
	}
}

// fetch gets one page. The first page is tried once; later pages are retried
// under the retry policy.
func (c *Controller) fetch(ctx context.Context, r *run, req entity.PageRequest, first bool, logger *slog.Logger) (*entity.PageResult, error) {
	policy := c.retry
	if first {
		policy = valueobject.NoRetry()
	}

	return Retry(ctx, policy, func(ctx context.Context) (*entity.PageResult, error) {
		result, err := c.fetcher.FetchPage(ctx, r.in.UserIdentity, r.in.ConfigID, req)
		if err != nil {
			return nil, err
		}
		if result == nil || !result.Success {
			msg := "unsuccessful response"
			if result != nil && result.Error != "" {
				msg = result.Error
			}
			return nil, fmt.Errorf("%w: %s", domainerror.ErrPageFetchFailed, msg)
		}
		return result, nil
	}, func(attempt int, err error) {
		logger.Warn("Retrying page fetch", "attempt", attempt, "maxAttempts", policy.MaxAttempts, "error", err)
	})
}

// process validates, deduplicates and merges one page in upstream order.
// It reports whether the accepted record ceiling was reached.
func (c *Controller) process(ctx context.Context, r *run, records []entity.RawRecord) bool {
	stats := &r.result.Stats
	accepted := 0
	defer func() {
		r.recordsInLastPage = len(records)
		r.acceptedInLastPage = accepted
		switch {
		case len(records) == 0:
			r.emptyStreak++
		case accepted == 0:
			r.emptyStreak = 0
			r.unproductiveStreak++
		default:
			r.emptyStreak = 0
			r.unproductiveStreak = 0
		}
	}()

	for _, raw := range records {
		// the rest of a cancelled page is left unprocessed
		if ctx.Err() != nil {
			return false
		}
		if c.policy.MaxRecords > 0 && len(r.result.Accepted) >= c.policy.MaxRecords {
			return true
		}
		stats.Processed++

		if v := Validate(r.in.Kind, raw); !v.Accepted {
			stats.Filtered++
			r.logger.Debug("Record filtered", "reason", v.Reason, "id", stringField(raw, "id", "uid"))
			continue
		}

		record, err := Convert(r.in.Kind, raw, c.now())
		if err != nil {
			stats.Errors++
			r.logger.Warn("Record conversion failed", "error", err)
			continue
		}

		check := r.in.Detector.Check(record)
		if check.Decision == DecisionDuplicate {
			stats.Duplicated++
			r.logger.Debug("Duplicate record skipped", "key", check.Key)
			continue
		}

		outcome := entity.MergeOutcome{Result: entity.MergeResultAdded, RecordID: record.ID}
		if r.in.Merger != nil {
			outcome = r.in.Merger.Merge(context.WithoutCancel(ctx), record)
		}
		switch outcome.Result {
		case entity.MergeResultAdded:
			if outcome.RecordID != "" {
				record.ID = outcome.RecordID
			}
			stats.Imported++
			accepted++
			r.result.Accepted = append(r.result.Accepted, record)
		case entity.MergeResultDuplicate:
			stats.Duplicated++
		default:
			stats.Errors++
			r.logger.Warn("Record merge failed", "key", check.Key, "reason", outcome.Reason)
		}
	}

	return c.policy.MaxRecords > 0 && len(r.result.Accepted) >= c.policy.MaxRecords
}

func (c *Controller) pageMessage(r *run, page int) string {
	s := r.result.Stats
	return fmt.Sprintf("Page %d: %d imported, %d duplicates, %d filtered", page+1, s.Imported, s.Duplicated, s.Filtered)
}

// report sends a progress update. Total is an estimate: while loading it
// assumes one more full page.
func (c *Controller) report(r *run, status entity.ImportStatus, message string) {
	if r.in.Progress == nil {
		return
	}
	current := r.result.Stats.Processed
	total := current
	percentage := 100.0
	if status == entity.ImportStatusLoading {
		total = current + max(c.policy.PageSize, 1)
		percentage = float64(current) / float64(total) * 100
	}
	r.in.Progress.ReportProgress(entity.ImportProgress{
		Current:    current,
		Total:      total,
		Percentage: percentage,
		Status:     status,
		Message:    message,
	})
}
