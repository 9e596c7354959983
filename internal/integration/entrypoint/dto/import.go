package dto

// StartImportRequest represents the request body for starting an import job.
type StartImportRequest struct {
	ConfigID string `json:"configId" binding:"required,uuid"`
	Kind     string `json:"kind" binding:"required,oneof=trade deposit withdrawal all"`
	ReportID string `json:"reportId,omitempty"`
}
