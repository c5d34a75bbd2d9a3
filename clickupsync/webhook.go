package clickupsync

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/config"
	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/begoneskadedjur/kundportal-sub005/utils"
	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
)

// handledWebhookEvents is the ingress whitelist. Anything else is
// acknowledged with 200 and ignored so ClickUp never retries events we do
// not care about.
var handledWebhookEvents = map[string]bool{
	"taskCreated":         true,
	"taskUpdated":         true,
	"taskDeleted":         true,
	"taskStatusUpdated":   true,
	"taskAssigneeUpdated": true,
}

// WebhookHandler is the push ingress. The payload is treated as a trigger
// only: except for deletions, the full task is re-fetched from the API and
// mapped from scratch, so out-of-order deliveries converge on the latest
// upstream state.
func (s *Service) WebhookHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "clickupsync.webhook")
		defer span.End()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read body"})
			return
		}

		// The signature covers the raw body, so it is checked before any
		// parsing; an unauthenticated body is never unmarshalled.
		if s.webhookSecret != "" && !s.verifySignature(body, c.GetHeader("X-Signature")) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if strings.TrimSpace(payload.TaskID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "task_id is required"})
			return
		}

		ctx = utils.SetWebhookIdInContext(ctx, payload.WebhookID)

		if !handledWebhookEvents[payload.Event] {
			s.recordWebhook(ctx, payload, "", models.WebhookOutcomeIgnored, "")
			c.JSON(http.StatusOK, gin.H{"message": "event ignored"})
			return
		}

		// Deletions never resolve a list; the task is already gone upstream.
		if payload.Event == "taskDeleted" {
			s.handleTaskDeleted(ctx, c, payload)
			return
		}

		family, customer, err := s.resolveFamily(ctx, listIdFromPayload(payload))
		if err != nil {
			s.recordWebhook(ctx, payload, "", models.WebhookOutcomeFailed, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if family == "" {
			s.recordWebhook(ctx, payload, "", models.WebhookOutcomeIgnored, "list not tracked")
			c.JSON(http.StatusOK, gin.H{"message": "list not tracked"})
			return
		}

		release := s.acquireTaskLock(ctx, payload.TaskID)
		defer release()

		if err := s.syncTask(ctx, payload.TaskID, family, customer); err != nil {
			config.LogError(s.logger, "clickupsync", "WebhookHandler", "syncTask", payload, err)
			s.recordWebhook(ctx, payload, string(family), models.WebhookOutcomeFailed, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		s.recordWebhook(ctx, payload, string(family), models.WebhookOutcomeProcessed, "")
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "processed"})
	}
}

func (s *Service) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

// listIdFromPayload prefers the top-level list id and falls back to the
// parent recorded in the first history item; status-change deliveries often
// carry the list only there.
func listIdFromPayload(payload webhookPayload) string {
	if id := strings.TrimSpace(payload.ListID); id != "" {
		return id
	}
	for _, item := range payload.HistoryItems {
		if id := strings.TrimSpace(item.ParentID); id != "" {
			return id
		}
	}
	return ""
}

// resolveFamily classifies a list id: one of the two standalone lists, a
// contracted customer's dedicated list, or "" when the list is not ours.
func (s *Service) resolveFamily(ctx context.Context, listID string) (models.CaseFamily, *models.ContractCustomer, error) {
	if listID == "" {
		return "", nil, nil
	}
	switch listID {
	case s.privateListId:
		return models.CaseFamilyPrivate, nil, nil
	case s.businessListId:
		return models.CaseFamilyBusiness, nil, nil
	}
	customer, err := s.store.CustomerByListId(ctx, listID)
	if err != nil {
		return "", nil, err
	}
	if customer == nil {
		return "", nil, nil
	}
	return models.CaseFamilyContract, customer, nil
}

// handleTaskDeleted soft-deletes: the stored row keeps its data and only the
// status moves to the removed sentinel. Unknown tasks are acknowledged.
func (s *Service) handleTaskDeleted(ctx context.Context, c *gin.Context, payload webhookPayload) {
	name, code := s.registry.Removed()

	marked, err := s.store.MarkContractCaseRemoved(ctx, payload.TaskID, name, code)
	if err != nil {
		s.recordWebhook(ctx, payload, string(models.CaseFamilyContract), models.WebhookOutcomeFailed, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if marked {
		s.recordWebhook(ctx, payload, string(models.CaseFamilyContract), models.WebhookOutcomeProcessed, "")
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "case removed"})
		return
	}

	marked, err = s.store.MarkServiceCaseRemoved(ctx, payload.TaskID, name, code)
	if err != nil {
		s.recordWebhook(ctx, payload, "", models.WebhookOutcomeFailed, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if marked {
		s.recordWebhook(ctx, payload, "", models.WebhookOutcomeProcessed, "")
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "case removed"})
		return
	}

	s.recordWebhook(ctx, payload, "", models.WebhookOutcomeIgnored, "task not known")
	c.JSON(http.StatusOK, gin.H{"message": "task not known"})
}

// syncTask is the shared re-fetch + map + upsert path used by the webhook
// ingress and, per task, by the batch importer.
func (s *Service) syncTask(ctx context.Context, taskID string, family models.CaseFamily, customer *models.ContractCustomer) error {
	task, err := s.api.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if family == models.CaseFamilyContract {
		prev, err := s.store.FindContractCase(ctx, taskID)
		if err != nil {
			return err
		}
		record, err := s.mapContractCase(ctx, task, customer, prev)
		if err != nil {
			return err
		}
		return s.store.UpsertContractCase(ctx, record)
	}

	prev, err := s.store.FindServiceCase(ctx, taskID)
	if err != nil {
		return err
	}
	record, err := s.mapServiceCase(ctx, task, family, prev)
	if err != nil {
		return err
	}
	return s.store.UpsertServiceCase(ctx, record)
}

// acquireTaskLock serialises concurrent deliveries for the same task.
// Best effort: when Redis is unavailable or contended the sync proceeds
// anyway, the atomic upsert keeps the row consistent.
func (s *Service) acquireTaskLock(ctx context.Context, taskID string) func() {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}
	}
	lock, err := locker.Obtain(ctx, "clickup-task-sync:"+taskID, 30*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(200*time.Millisecond), 10),
	})
	if err != nil {
		return func() {}
	}
	return func() { _ = lock.Release(ctx) }
}

func (s *Service) recordWebhook(ctx context.Context, payload webhookPayload, family string, outcome string, errMsg string) {
	webhookId, _ := utils.GetWebhookIdFromContext(ctx)
	event := &models.WebhookEvent{
		WebhookId:  webhookId,
		Event:      payload.Event,
		TaskId:     payload.TaskID,
		ListId:     listIdFromPayload(payload),
		CaseFamily: family,
		Outcome:    outcome,
		Error:      errMsg,
	}
	if err := s.store.RecordWebhookEvent(ctx, event); err != nil {
		config.LogError(s.logger, "clickupsync", "recordWebhook", "create", payload, err)
	}
}
