package clickupsync

import (
	"net/http"
	"strconv"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/config"
	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 20

// SyncHistoryHandler lists recent batch runs, newest first.
func SyncHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", defaultHistoryLimit)

		var runs []models.SyncRun
		db := config.GetDB().WithContext(c.Request.Context())
		if err := db.Order("id desc").Limit(limit).Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := SyncHistoryResponse{Items: make([]SyncRunResponse, 0, len(runs))}
		for _, run := range runs {
			resp.Items = append(resp.Items, syncRunResponse(run))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// SyncRunDetailHandler returns one run with its recorded per-task errors.
func SyncRunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		db := config.GetDB().WithContext(c.Request.Context())

		var run models.SyncRun
		if err := db.Take(&run, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "sync run not found"})
			return
		}

		var syncErrors []models.SyncError
		if err := db.Where("sync_run_id = ?", run.ID).Order("id asc").Find(&syncErrors).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := SyncRunDetailResponse{
			SyncRunResponse: syncRunResponse(run),
			Errors:          make([]SyncErrorResponse, 0, len(syncErrors)),
		}
		for _, e := range syncErrors {
			resp.Errors = append(resp.Errors, SyncErrorResponse{
				ID:         e.ID,
				CaseFamily: e.CaseFamily,
				ExternalId: e.ExternalId,
				Message:    e.Message,
				Retryable:  e.Retryable,
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}

// WebhookEventsHandler lists the webhook delivery audit log, newest first,
// optionally filtered by task id.
func WebhookEventsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", defaultHistoryLimit)

		db := config.GetDB().WithContext(c.Request.Context())
		query := db.Order("id desc").Limit(limit)
		if taskId := c.Query("taskId"); taskId != "" {
			query = query.Where("task_id = ?", taskId)
		}

		var events []models.WebhookEvent
		if err := query.Find(&events).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]WebhookEventResponse, 0, len(events))
		for _, e := range events {
			items = append(items, WebhookEventResponse{
				ID:         e.ID,
				WebhookId:  e.WebhookId,
				Event:      e.Event,
				TaskId:     e.TaskId,
				ListId:     e.ListId,
				CaseFamily: e.CaseFamily,
				Outcome:    e.Outcome,
				Error:      e.Error,
				CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// RefreshTechnicianCacheHandler drops the cached technician directory so the
// next sync sees directory edits immediately instead of after the TTL.
func RefreshTechnicianCacheHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := models.InvalidateTechnicianCache(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "technician cache invalidated"})
	}
}

func syncRunResponse(run models.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:         run.ID,
		Status:     run.Status,
		ListType:   run.ListType,
		StartedAt:  formatTime(run.StartedAt),
		FinishedAt: formatTime(run.FinishedAt),
		DurationMs: run.DurationMs,
		Processed:  run.Processed,
		Imported:   run.Imported,
		Skipped:    run.Skipped,
		ErrorCount: run.ErrorCount,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 200 {
		return fallback
	}
	return n
}
