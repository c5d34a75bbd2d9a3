package models

import "time"

// SyncRun records one batch-import job: status moves queued -> running ->
// success/partial/failed and the summary counters mirror the import
// endpoint's response.
type SyncRun struct {
	ID          uint   `gorm:"primary_key" json:"id"`
	Status      string `gorm:"size:20;not null" json:"status"`
	TriggeredBy string `gorm:"size:20" json:"triggered_by"`

	ListType      string `gorm:"size:20" json:"list_type"`
	PageSize      int    `json:"page_size"`
	IncludeClosed bool   `json:"include_closed"`
	ForceReimport bool   `json:"force_reimport"`

	Processed  int `json:"processed"`
	Imported   int `json:"imported"`
	Skipped    int `json:"skipped"`
	ErrorCount int `json:"error_count"`

	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	DurationMs int64      `json:"duration_ms"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SyncError is a per-record failure inside a batch run. Failures never abort
// the batch; they are recorded and the job moves on.
type SyncError struct {
	ID          uint   `gorm:"primary_key" json:"id"`
	SyncRunId   uint   `gorm:"index;not null" json:"sync_run_id"`
	CaseFamily  string `gorm:"size:20" json:"case_family"`
	ExternalId  string `gorm:"size:128" json:"external_id"`
	ErrorCode   string `gorm:"size:64" json:"error_code"`
	Message     string `gorm:"type:text" json:"message"`
	PayloadJSON []byte `gorm:"type:json" json:"payload"`
	Retryable   bool   `gorm:"default:false" json:"retryable"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// WebhookEvent is the delivery audit log: one row per received webhook,
// whatever its outcome.
type WebhookEvent struct {
	ID         uint   `gorm:"primary_key" json:"id"`
	WebhookId  string `gorm:"size:64;index" json:"webhook_id"`
	Event      string `gorm:"size:50" json:"event"`
	TaskId     string `gorm:"size:64;index" json:"task_id"`
	ListId     string `gorm:"size:64" json:"list_id"`
	CaseFamily string `gorm:"size:20" json:"case_family"`
	Outcome    string `gorm:"size:20;not null" json:"outcome"`
	Error      string `gorm:"type:text" json:"error"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
