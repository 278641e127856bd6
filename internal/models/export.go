package models

import "time"

// ExportFormat identifies the rendered document type.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatCSV ExportFormat = "csv"
)

// ExportStatus tracks an export job through its lifecycle.
type ExportStatus string

// Export job statuses.
const (
	ExportStatusQueued    ExportStatus = "QUEUED"
	ExportStatusRunning   ExportStatus = "RUNNING"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

// ExportJob describes an asynchronous assessment or schedule export.
type ExportJob struct {
	ID          string       `json:"id"`
	StudentID   string       `json:"student_id"`
	Kind        string       `json:"kind"`
	Format      ExportFormat `json:"format"`
	Status      ExportStatus `json:"status"`
	FilePath    string       `json:"-"`
	DownloadURL string       `json:"download_url,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	FinishedAt  *time.Time   `json:"finished_at,omitempty"`
}
