package clickupsync

import "encoding/json"

// ClickUp wire types. Only the fields the sync engine reads are declared;
// payloads carry much more that we deliberately ignore.

type clickupStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type clickupPriority struct {
	ID       string `json:"id"`
	Priority string `json:"priority"`
}

type clickupAssignee struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
}

type clickupFieldOption struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Label      string      `json:"label"`
	OrderIndex json.Number `json:"orderindex"`
}

type clickupTypeConfig struct {
	Options []clickupFieldOption `json:"options"`
}

type clickupCustomField struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Value      json.RawMessage   `json:"value"`
	TypeConfig clickupTypeConfig `json:"type_config"`
}

type clickupListRef struct {
	ID string `json:"id"`
}

// clickupTask is the authoritative task representation fetched from the API.
// Timestamps arrive as millisecond-epoch strings; older lists still deliver
// ISO strings, so parsing accepts both.
type clickupTask struct {
	ID           string               `json:"id"`
	CustomID     string               `json:"custom_id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Status       clickupStatus        `json:"status"`
	Priority     *clickupPriority     `json:"priority"`
	Assignees    []clickupAssignee    `json:"assignees"`
	CustomFields []clickupCustomField `json:"custom_fields"`
	StartDate    string               `json:"start_date"`
	DueDate      string               `json:"due_date"`
	DateCreated  string               `json:"date_created"`
	DateUpdated  string               `json:"date_updated"`
	DateClosed   string               `json:"date_closed"`
	List         clickupListRef       `json:"list"`
}

type webhookHistoryItem struct {
	ParentID string `json:"parent_id"`
}

type webhookPayload struct {
	Event        string               `json:"event"`
	TaskID       string               `json:"task_id"`
	ListID       string               `json:"list_id"`
	WebhookID    string               `json:"webhook_id"`
	HistoryItems []webhookHistoryItem `json:"history_items"`
}

// API payload types for the import and inspection endpoints.

type ImportRequest struct {
	ListType      string `json:"list_type" binding:"required"`
	PageSize      int    `json:"page_size"`
	IncludeClosed bool   `json:"include_closed"`
	ForceReimport bool   `json:"force_reimport"`
}

type ImportSummary struct {
	Processed int `json:"processed"`
	Imported  int `json:"imported"`
	Errors    int `json:"errors"`
	Skipped   int `json:"skipped"`
}

type ImportTaskResult struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"` // imported | skipped | error
	Message string `json:"message,omitempty"`
}

type ImportResponse struct {
	Success bool               `json:"success"`
	Summary ImportSummary      `json:"summary"`
	Results []ImportTaskResult `json:"results"`
}

type SyncRunResponse struct {
	ID         uint    `json:"id"`
	Status     string  `json:"status"`
	ListType   string  `json:"listType"`
	StartedAt  *string `json:"startedAt"`
	FinishedAt *string `json:"finishedAt"`
	DurationMs int64   `json:"durationMs"`
	Processed  int     `json:"processed"`
	Imported   int     `json:"imported"`
	Skipped    int     `json:"skipped"`
	ErrorCount int     `json:"errorCount"`
}

type SyncHistoryResponse struct {
	Items []SyncRunResponse `json:"items"`
}

type SyncErrorResponse struct {
	ID         uint   `json:"id"`
	CaseFamily string `json:"caseFamily"`
	ExternalId string `json:"externalId"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
}

type SyncRunDetailResponse struct {
	SyncRunResponse
	Errors []SyncErrorResponse `json:"errors"`
}

type WebhookEventResponse struct {
	ID         uint   `json:"id"`
	WebhookId  string `json:"webhookId"`
	Event      string `json:"event"`
	TaskId     string `json:"taskId"`
	ListId     string `json:"listId"`
	CaseFamily string `json:"caseFamily"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"createdAt"`
}
