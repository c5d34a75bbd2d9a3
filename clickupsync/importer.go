package clickupsync

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/config"
	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/begoneskadedjur/kundportal-sub005/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultImportPageSize = 100
	maxImportPageSize     = 100
)

// ImportHandler is the pull entry point: a manually triggered batch import
// of one or both standalone lists. The run is synchronous; the response
// carries the summary plus a per-task result list.
func (s *Service) ImportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "clickupsync.import")
		defer span.End()

		var req ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
			return
		}

		req.ListType = strings.ToLower(strings.TrimSpace(req.ListType))
		switch req.ListType {
		case "private", "business", "both":
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "list_type must be private, business or both"})
			return
		}
		if req.PageSize <= 0 || req.PageSize > maxImportPageSize {
			req.PageSize = defaultImportPageSize
		}

		resp, err := s.runImport(ctx, req)
		if err != nil {
			config.LogError(s.logger, "clickupsync", "ImportHandler", "runImport", req, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

type importTarget struct {
	category models.CaseFamily
	listID   string
}

func (s *Service) importTargets(listType string) []importTarget {
	var targets []importTarget
	if listType == "private" || listType == "both" {
		targets = append(targets, importTarget{category: models.CaseFamilyPrivate, listID: s.privateListId})
	}
	if listType == "business" || listType == "both" {
		targets = append(targets, importTarget{category: models.CaseFamilyBusiness, listID: s.businessListId})
	}
	return targets
}

// runImport executes one batch job under a sync_runs row. Per-task failures
// are recorded as sync_errors and never abort the run; the run ends failed
// only when nothing at all was imported.
func (s *Service) runImport(ctx context.Context, req ImportRequest) (*ImportResponse, error) {
	startedAt := s.now().UTC()
	run := &models.SyncRun{
		Status:        models.SyncRunStatusRunning,
		TriggeredBy:   models.SyncTriggeredManual,
		ListType:      req.ListType,
		PageSize:      req.PageSize,
		IncludeClosed: req.IncludeClosed,
		ForceReimport: req.ForceReimport,
		StartedAt:     &startedAt,
	}
	if err := s.store.CreateSyncRun(ctx, run); err != nil {
		return nil, err
	}

	resp := &ImportResponse{Results: []ImportTaskResult{}}
	for _, target := range targetsOrSkip(s.importTargets(req.ListType)) {
		s.importList(ctx, run, target, req, resp)
	}

	finishedAt := s.now().UTC()
	run.FinishedAt = &finishedAt
	run.DurationMs = finishedAt.Sub(startedAt).Milliseconds()
	run.Processed = resp.Summary.Processed
	run.Imported = resp.Summary.Imported
	run.Skipped = resp.Summary.Skipped
	run.ErrorCount = resp.Summary.Errors

	switch {
	case resp.Summary.Errors > 0 && resp.Summary.Imported == 0:
		run.Status = models.SyncRunStatusFailed
	case resp.Summary.Errors > 0:
		run.Status = models.SyncRunStatusPartial
	default:
		run.Status = models.SyncRunStatusSuccess
	}
	resp.Success = run.Status != models.SyncRunStatusFailed

	if err := s.store.UpdateSyncRun(ctx, run); err != nil {
		config.LogError(s.logger, "clickupsync", "runImport", "UpdateSyncRun", run.ID, err)
	}
	return resp, nil
}

func targetsOrSkip(targets []importTarget) []importTarget {
	out := targets[:0]
	for _, t := range targets {
		if strings.TrimSpace(t.listID) != "" {
			out = append(out, t)
		}
	}
	return out
}

// importList walks one list page by page until a short page signals the end.
// A failed page fetch is one sync error for the whole list; pagination stops
// there rather than looping on a broken cursor.
func (s *Service) importList(ctx context.Context, run *models.SyncRun, target importTarget, req ImportRequest, resp *ImportResponse) {
	for page := 0; ; page++ {
		if page > 0 && s.pageDelay > 0 {
			time.Sleep(s.pageDelay)
		}

		tasks, err := s.api.GetListTasks(ctx, target.listID, page, req.PageSize, req.IncludeClosed)
		if err != nil {
			resp.Summary.Errors++
			s.recordSyncError(ctx, run.ID, target.category, target.listID, "list_fetch_failed", err, nil)
			resp.Results = append(resp.Results, ImportTaskResult{
				TaskID:  target.listID,
				Status:  "error",
				Message: err.Error(),
			})
			return
		}

		for i := range tasks {
			task := &tasks[i]
			resp.Summary.Processed++

			result := s.importTask(ctx, run, target, req, task)
			switch result.Status {
			case "imported":
				resp.Summary.Imported++
			case "skipped":
				resp.Summary.Skipped++
			case "error":
				resp.Summary.Errors++
			}
			resp.Results = append(resp.Results, result)
		}

		if len(tasks) < req.PageSize {
			return
		}
	}
}

func (s *Service) importTask(ctx context.Context, run *models.SyncRun, target importTarget, req ImportRequest, task *clickupTask) ImportTaskResult {
	prev, err := s.store.FindServiceCase(ctx, task.ID)
	if err != nil {
		s.recordSyncError(ctx, run.ID, target.category, task.ID, "lookup_failed", err, task)
		return ImportTaskResult{TaskID: task.ID, Status: "error", Message: err.Error()}
	}
	if prev != nil && !req.ForceReimport {
		return ImportTaskResult{TaskID: task.ID, Status: "skipped", Message: "already imported"}
	}

	record, err := s.mapServiceCase(ctx, task, target.category, prev)
	if err != nil {
		s.recordSyncError(ctx, run.ID, target.category, task.ID, "mapping_failed", err, task)
		return ImportTaskResult{TaskID: task.ID, Status: "error", Message: err.Error()}
	}
	if err := s.store.UpsertServiceCase(ctx, record); err != nil {
		s.recordSyncError(ctx, run.ID, target.category, task.ID, "upsert_failed", err, task)
		return ImportTaskResult{TaskID: task.ID, Status: "error", Message: err.Error()}
	}
	return ImportTaskResult{TaskID: task.ID, Status: "imported"}
}

func (s *Service) recordSyncError(ctx context.Context, runID uint, family models.CaseFamily, externalID string, code string, cause error, payload interface{}) {
	syncErr := &models.SyncError{
		SyncRunId:  runID,
		CaseFamily: string(family),
		ExternalId: externalID,
		ErrorCode:  code,
		Message:    cause.Error(),
		Retryable:  code == "list_fetch_failed" || code == "lookup_failed" || code == "upsert_failed",
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			syncErr.PayloadJSON = raw
		}
	}
	if err := s.store.CreateSyncError(ctx, syncErr); err != nil {
		config.LogError(s.logger, "clickupsync", "recordSyncError", code, externalID, err)
	}
}
