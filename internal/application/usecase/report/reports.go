package report

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

// UpdateReportInput carries the optional fields of a report update.
type UpdateReportInput struct {
	Name        *string
	Description *string
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxReportNameLength {
		return "", domainerror.NewReportError(
			domainerror.ErrCodeInvalidReportName,
			"report name must be between 1 and 100 characters",
			domainerror.ErrInvalidReportName,
		)
	}
	return name, nil
}

// CreateReport adds a new, inactive report.
func (s *Store) CreateReport(ctx context.Context, name, description string) (*entity.Report, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	var created entity.Report
	err = s.mutate(ctx, func(next *entity.ReportCollection, now time.Time) ([]entity.StoreEvent, error) {
		created = s.newReport(name, strings.TrimSpace(description), now)
		next.Reports = append(next.Reports, created)
		if len(next.Reports) == 1 {
			next.ActiveReportID = created.ID
			created.IsActive = true
		}
		return []entity.StoreEvent{{
			Name:     entity.EventReportAdded,
			ReportID: created.ID,
			Detail:   map[string]any{"name": created.Name},
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateReport renames a report or changes its description.
func (s *Store) UpdateReport(ctx context.Context, id string, input UpdateReportInput) (*entity.Report, error) {
	var name string
	if input.Name != nil {
		validated, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		name = validated
	}

	var updated entity.Report
	err := s.mutate(ctx, func(next *entity.ReportCollection, now time.Time) ([]entity.StoreEvent, error) {
		idx := next.Find(id)
		if idx < 0 {
			return nil, reportNotFound(id)
		}
		report := &next.Reports[idx]

		detail := map[string]any{}
		if input.Name != nil {
			report.Name = name
			detail["name"] = name
		}
		if input.Description != nil {
			report.Description = strings.TrimSpace(*input.Description)
			detail["description"] = report.Description
		}
		touch(report, now)
		updated = report.Clone()

		return []entity.StoreEvent{{Name: entity.EventReportUpdated, ReportID: id, Detail: detail}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SelectActiveReport makes id the active report. Flags are reassigned in the
// same mutation, so no intermediate state with zero or two active reports
// is ever persisted. Selecting the active report is a no-op.
func (s *Store) SelectActiveReport(ctx context.Context, id string) error {
	return s.mutate(ctx, func(next *entity.ReportCollection, now time.Time) ([]entity.StoreEvent, error) {
		if next.Find(id) < 0 {
			return nil, reportNotFound(id)
		}
		if next.ActiveReportID == id {
			return nil, errNoChange
		}
		previous := next.ActiveReportID
		next.ActiveReportID = id
		return []entity.StoreEvent{{
			Name:     entity.EventReportSelected,
			ReportID: id,
			Detail:   map[string]any{"previousReportId": previous},
		}}, nil
	})
}

// DeleteReport removes a report. The last remaining report cannot be
// deleted; deleting the active report promotes the first remaining one.
func (s *Store) DeleteReport(ctx context.Context, id string) error {
	return s.mutate(ctx, func(next *entity.ReportCollection, now time.Time) ([]entity.StoreEvent, error) {
		idx := next.Find(id)
		if idx < 0 {
			return nil, reportNotFound(id)
		}
		if len(next.Reports) == 1 {
			return nil, domainerror.NewReportError(domainerror.ErrCodeLastReport, "cannot delete the last report", domainerror.ErrLastReport)
		}

		next.Reports = slices.Delete(next.Reports, idx, idx+1)
		events := []entity.StoreEvent{{Name: entity.EventReportDeleted, ReportID: id}}

		if next.ActiveReportID == id {
			next.ActiveReportID = next.Reports[0].ID
			events = append(events, entity.StoreEvent{
				Name:     entity.EventReportSelected,
				ReportID: next.ActiveReportID,
				Detail:   map[string]any{"previousReportId": id},
			})
		}
		return events, nil
	})
}

// AssociateConfig records that configID imported into the report. It is a
// no-op when the association already exists.
func (s *Store) AssociateConfig(ctx context.Context, reportID, configID string) error {
	return s.mutate(ctx, func(next *entity.ReportCollection, now time.Time) ([]entity.StoreEvent, error) {
		idx := next.Find(reportID)
		if idx < 0 {
			return nil, reportNotFound(reportID)
		}
		report := &next.Reports[idx]
		if slices.Contains(report.AssociatedLNMarketsConfigIDs, configID) {
			return nil, errNoChange
		}
		report.AssociatedLNMarketsConfigIDs = append(report.AssociatedLNMarketsConfigIDs, configID)
		touch(report, now)
		return []entity.StoreEvent{{
			Name:     entity.EventReportUpdated,
			ReportID: reportID,
			Detail:   map[string]any{"associatedConfigId": configID},
		}}, nil
	})
}
