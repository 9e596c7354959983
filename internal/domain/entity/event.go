package entity

import "time"

// EventName identifies a store mutation event.
type EventName string

const (
	EventReportSelected         EventName = "report-selected"
	EventReportAdded            EventName = "report-added"
	EventReportDeleted          EventName = "report-deleted"
	EventReportUpdated          EventName = "report-updated"
	EventInvestmentAdded        EventName = "investment-added"
	EventProfitAdded            EventName = "profit-added"
	EventWithdrawalAdded        EventName = "withdrawal-added"
	EventInvestmentDeleted      EventName = "investment-deleted"
	EventProfitDeleted          EventName = "profit-deleted"
	EventWithdrawalDeleted      EventName = "withdrawal-deleted"
	EventBulkOperationCompleted EventName = "bulk-operation-completed"
)

// AddedEvent returns the event emitted when a record of kind is added.
func AddedEvent(kind RecordKind) EventName {
	switch kind {
	case RecordKindInvestment:
		return EventInvestmentAdded
	case RecordKindProfit:
		return EventProfitAdded
	default:
		return EventWithdrawalAdded
	}
}

// DeletedEvent returns the event emitted when a record of kind is deleted.
func DeletedEvent(kind RecordKind) EventName {
	switch kind {
	case RecordKindInvestment:
		return EventInvestmentDeleted
	case RecordKindProfit:
		return EventProfitDeleted
	default:
		return EventWithdrawalDeleted
	}
}

// StoreEvent is a mutation notification emitted by the report store.
type StoreEvent struct {
	Name       EventName      `json:"name"`
	ReportID   string         `json:"reportId"`
	Detail     map[string]any `json:"detail,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}
