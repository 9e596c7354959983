package adapter

import "github.com/btc-tracker/backend/internal/domain/entity"

// ProgressSink observes import progress. It applies no back-pressure.
type ProgressSink interface {
	ReportProgress(progress entity.ImportProgress)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(progress entity.ImportProgress)

// ReportProgress implements ProgressSink.
func (f ProgressFunc) ReportProgress(progress entity.ImportProgress) {
	f(progress)
}
