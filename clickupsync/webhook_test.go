package clickupsync

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/gin-gonic/gin"
)

func performWebhook(svc *Service, body string, headers map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/clickup/webhook", svc.WebhookHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/clickup/webhook", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_MalformedPayload(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeAPI())

	if w := performWebhook(svc, `{not json`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", w.Code)
	}
	if w := performWebhook(svc, `{"event":"taskUpdated"}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing task_id, got %d", w.Code)
	}
}

func TestWebhookHandler_UnknownEventIgnored(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeAPI())

	w := performWebhook(svc, `{"event":"taskCommentPosted","task_id":"task-1","list_id":"list-private"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for unhandled event, got %d", w.Code)
	}
	if len(store.serviceCases) != 0 {
		t.Fatal("unhandled event must not write a case")
	}
	if len(store.webhookEvents) != 1 || store.webhookEvents[0].Outcome != models.WebhookOutcomeIgnored {
		t.Fatalf("expected one ignored audit row, got %+v", store.webhookEvents)
	}
}

func TestWebhookHandler_ProcessesPrivateTask(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI()
	api.tasks["task-1"] = privateTask("task-1")
	svc := newTestService(store, api)

	w := performWebhook(svc, `{"event":"taskCreated","task_id":"task-1","list_id":"list-private","webhook_id":"wh-1"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	record := store.serviceCases["task-1"]
	if record == nil {
		t.Fatal("expected the case to be upserted")
	}
	if record.CaseCategory != models.CaseFamilyPrivate {
		t.Fatalf("expected private category, got %s", record.CaseCategory)
	}
	if record.StatusName != "Bokad" {
		t.Fatalf("expected canonical status, got %q", record.StatusName)
	}

	if len(store.webhookEvents) != 1 {
		t.Fatalf("expected one audit row, got %d", len(store.webhookEvents))
	}
	event := store.webhookEvents[0]
	if event.Outcome != models.WebhookOutcomeProcessed || event.WebhookId != "wh-1" || event.CaseFamily != "private" {
		t.Fatalf("unexpected audit row %+v", event)
	}
}

func TestWebhookHandler_ContractListViaHistoryItems(t *testing.T) {
	store := newFakeStore()
	store.customers["list-cust-42"] = &models.ContractCustomer{ID: 42, CompanyName: "Avtalskund AB", ClickupListId: "list-cust-42"}
	api := newFakeAPI()
	task := privateTask("task-9")
	task.List = clickupListRef{ID: "list-cust-42"}
	api.tasks["task-9"] = task
	svc := newTestService(store, api)

	body := `{"event":"taskStatusUpdated","task_id":"task-9","history_items":[{"parent_id":"list-cust-42"}]}`
	w := performWebhook(svc, body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	record := store.contractCases["task-9"]
	if record == nil {
		t.Fatal("expected a contract case")
	}
	if record.CustomerId != 42 {
		t.Fatalf("expected customer id 42, got %d", record.CustomerId)
	}
}

func TestWebhookHandler_UntrackedListAcknowledged(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeAPI())

	w := performWebhook(svc, `{"event":"taskUpdated","task_id":"task-1","list_id":"someone-elses-list"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for untracked list, got %d", w.Code)
	}
	if len(store.serviceCases)+len(store.contractCases) != 0 {
		t.Fatal("untracked list must not write a case")
	}
	if len(store.webhookEvents) != 1 || store.webhookEvents[0].Outcome != models.WebhookOutcomeIgnored {
		t.Fatalf("expected an ignored audit row, got %+v", store.webhookEvents)
	}
}

func TestWebhookHandler_TaskDeletedSoftDeletes(t *testing.T) {
	store := newFakeStore()
	store.serviceCases["task-1"] = &models.ServiceCase{ClickupTaskId: "task-1", StatusName: "Bokad", StatusCode: "bokad"}
	svc := newTestService(store, newFakeAPI())

	w := performWebhook(svc, `{"event":"taskDeleted","task_id":"task-1"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	record := store.serviceCases["task-1"]
	if record.StatusCode != models.StatusCodeRemoved || record.StatusName != models.StatusNameRemoved {
		t.Fatalf("expected removed sentinel, got %s/%s", record.StatusName, record.StatusCode)
	}
}

func TestWebhookHandler_TaskDeletedUnknownTask(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeAPI())

	w := performWebhook(svc, `{"event":"taskDeleted","task_id":"never-seen"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown task, got %d", w.Code)
	}
	if len(store.webhookEvents) != 1 || store.webhookEvents[0].Outcome != models.WebhookOutcomeIgnored {
		t.Fatalf("expected an ignored audit row, got %+v", store.webhookEvents)
	}
}

func TestWebhookHandler_UpstreamFailure(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI()
	api.taskErr = errUpstream
	svc := newTestService(store, api)

	w := performWebhook(svc, `{"event":"taskUpdated","task_id":"task-1","list_id":"list-private"}`, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on upstream failure, got %d", w.Code)
	}
	if len(store.webhookEvents) != 1 || store.webhookEvents[0].Outcome != models.WebhookOutcomeFailed {
		t.Fatalf("expected a failed audit row, got %+v", store.webhookEvents)
	}
}

func TestWebhookHandler_SignatureEnforcement(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI()
	api.tasks["task-1"] = privateTask("task-1")
	svc := newTestService(store, api)
	svc.webhookSecret = "hemlig"

	body := `{"event":"taskCreated","task_id":"task-1","list_id":"list-private"}`

	if w := performWebhook(svc, body, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without signature, got %d", w.Code)
	}
	if w := performWebhook(svc, body, map[string]string{"X-Signature": "deadbeef"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a bad signature, got %d", w.Code)
	}
	// Signature is verified over the raw body before parsing, so an unsigned
	// malformed body is rejected as unauthenticated, not as malformed.
	if w := performWebhook(svc, `{not json`, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unsigned malformed body, got %d", w.Code)
	}

	mac := hmac.New(sha256.New, []byte("hemlig"))
	mac.Write([]byte(body))
	signature := hex.EncodeToString(mac.Sum(nil))
	if w := performWebhook(svc, body, map[string]string{"X-Signature": signature}); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid signature, got %d", w.Code)
	}
}
