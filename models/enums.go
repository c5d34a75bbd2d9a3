package models

type CaseFamily string

const (
	CaseFamilyContract CaseFamily = "contract"
	CaseFamilyPrivate  CaseFamily = "private"
	CaseFamilyBusiness CaseFamily = "business"
)

type CasePriority string

const (
	CasePriorityUrgent CasePriority = "urgent"
	CasePriorityHigh   CasePriority = "high"
	CasePriorityNormal CasePriority = "normal"
)

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

const (
	SyncTriggeredManual = "manual"
	SyncTriggeredSystem = "system"
)

const (
	WebhookOutcomeProcessed = "processed"
	WebhookOutcomeIgnored   = "ignored"
	WebhookOutcomeFailed    = "failed"
)
