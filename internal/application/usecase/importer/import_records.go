package importer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/application/usecase/report"
	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

// RecordStore is the part of the report store an import needs.
type RecordStore interface {
	Report(id string) (*entity.Report, error)
	ActiveReport() (*entity.Report, error)
	AddRecord(ctx context.Context, record entity.Record, targetReportID string, opts report.AddOptions) entity.MergeOutcome
	NotifyBulkCompleted(ctx context.Context, reportID string, detail map[string]any)
	AssociateConfig(ctx context.Context, reportID, configID string) error
}

// ImportInput represents the input for one import run.
type ImportInput struct {
	UserIdentity string
	ConfigID     string
	Kind         entity.ImportKind
	ReportID     string // empty means the active report
	Progress     adapter.ProgressSink
}

// ImportOutput represents the result of one import run.
type ImportOutput struct {
	ReportID   string              `json:"reportId"`
	Kind       entity.ImportKind   `json:"kind"`
	Stats      entity.ImportStats  `json:"stats"`
	StopReason entity.StopReason   `json:"stopReason"`
	Status     entity.ImportStatus `json:"status"`
	Summary    string              `json:"summary"`
}

// ImportAllOutput aggregates the runs of every kind.
type ImportAllOutput struct {
	ReportID string              `json:"reportId"`
	Runs     []*ImportOutput     `json:"runs"`
	Totals   entity.ImportStats  `json:"totals"`
	Status   entity.ImportStatus `json:"status"`
}

// ImportUseCase runs imports into a report under a per-report lock.
type ImportUseCase struct {
	store      RecordStore
	controller *Controller
	lock       adapter.ImportLock
}

// NewImportUseCase creates a new ImportUseCase instance.
func NewImportUseCase(store RecordStore, controller *Controller, lock adapter.ImportLock) *ImportUseCase {
	return &ImportUseCase{
		store:      store,
		controller: controller,
		lock:       lock,
	}
}

// Execute imports one upstream kind into the target report.
func (uc *ImportUseCase) Execute(ctx context.Context, input ImportInput) (*ImportOutput, error) {
	if !input.Kind.IsValid() {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeInvalidImportKind,
			"unknown import kind "+string(input.Kind),
			domainerror.ErrInvalidImportKind,
		)
	}

	target, err := uc.resolveTarget(input.ReportID)
	if err != nil {
		return nil, domainerror.NewImportError(domainerror.ErrCodeImportTargetMissing, "import target report not found", err)
	}

	logger := slog.Default().With("reportID", target.ID, "kind", input.Kind, "configID", input.ConfigID)

	if uc.lock != nil {
		token, ok, err := uc.lock.Acquire(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domainerror.NewImportError(
				domainerror.ErrCodeImportAlreadyRunning,
				"an import is already running for report "+target.ID,
				domainerror.ErrImportAlreadyRunning,
			)
		}
		defer func() {
			if err := uc.lock.Release(context.WithoutCancel(ctx), target.ID, token); err != nil {
				logger.Warn("Failed to release import lock", "error", err)
			}
		}()
	}

	startTime := time.Now()
	kind := input.Kind.RecordKind()
	result, err := uc.controller.Run(ctx, RunInput{
		UserIdentity: input.UserIdentity,
		ConfigID:     input.ConfigID,
		Kind:         input.Kind,
		Detector:     NewDetector(input.Kind, target.Records(kind)),
		Merger: MergerFunc(func(ctx context.Context, record entity.Record) entity.MergeOutcome {
			return uc.store.AddRecord(ctx, record, target.ID, report.AddOptions{SuppressNotify: true})
		}),
		Progress: input.Progress,
	})

	output := &ImportOutput{
		ReportID: target.ID,
		Kind:     input.Kind,
	}
	if result != nil {
		output.Stats = result.Stats
		output.StopReason = result.StopReason
		output.Status = result.Status
		output.Summary = result.Stats.Summary(result.StopReason)
	}
	if err != nil {
		output.Status = entity.ImportStatusError
		return output, err
	}

	// the run may have been cancelled; the follow-up writes must still land
	detached := context.WithoutCancel(ctx)
	if output.Stats.Imported > 0 {
		uc.store.NotifyBulkCompleted(detached, target.ID, map[string]any{
			"operation":  "import",
			"kind":       string(kind),
			"imported":   output.Stats.Imported,
			"duplicated": output.Stats.Duplicated,
			"errors":     output.Stats.Errors,
			"stopReason": string(output.StopReason),
		})
	}
	if input.ConfigID != "" {
		if err := uc.store.AssociateConfig(detached, target.ID, input.ConfigID); err != nil {
			logger.Warn("Failed to associate config with report", "error", err)
		}
	}

	logger.Info("Import completed",
		"summary", output.Summary,
		"duration", time.Since(startTime).String(),
	)
	return output, nil
}

// ImportAll imports trades, deposits and withdrawals in that order. A failed
// kind does not stop the others; its error is joined into the result.
func (uc *ImportUseCase) ImportAll(ctx context.Context, input ImportInput) (*ImportAllOutput, error) {
	target, err := uc.resolveTarget(input.ReportID)
	if err != nil {
		return nil, domainerror.NewImportError(domainerror.ErrCodeImportTargetMissing, "import target report not found", err)
	}
	input.ReportID = target.ID

	out := &ImportAllOutput{ReportID: target.ID, Runs: []*ImportOutput{}, Status: entity.ImportStatusComplete}
	var errs []error
	for _, kind := range []entity.ImportKind{entity.ImportKindTrade, entity.ImportKindDeposit, entity.ImportKindWithdrawal} {
		if ctx.Err() != nil {
			break
		}
		input.Kind = kind
		res, err := uc.Execute(ctx, input)
		if res != nil {
			out.Runs = append(out.Runs, res)
			out.Totals.Add(res.Stats)
		}
		if err != nil {
			out.Status = entity.ImportStatusError
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}

func (uc *ImportUseCase) resolveTarget(reportID string) (*entity.Report, error) {
	if reportID != "" {
		return uc.store.Report(reportID)
	}
	return uc.store.ActiveReport()
}
