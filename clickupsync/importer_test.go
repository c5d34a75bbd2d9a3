package clickupsync

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/gin-gonic/gin"
)

func performImport(svc *Service, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/clickup/import", svc.ImportHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/clickup/import", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestImportHandler_ValidatesListType(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeAPI())

	cases := []string{
		`{}`,
		`{"list_type":"contract"}`,
		`{"list_type":"everything"}`,
	}
	for _, body := range cases {
		if w := performImport(svc, body); w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestImportHandler_BindingFailureReportsFields(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeAPI())

	w := performImport(svc, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Fields["ListType"] != "required" {
		t.Fatalf("expected ListType=required in field errors, got %v", resp.Fields)
	}
}

func TestRunImport_ImportsBothLists(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI()

	private := privateTask("task-p1")
	business := privateTask("task-b1")
	business.List = clickupListRef{ID: "list-business"}
	api.pages["list-private"] = [][]clickupTask{{*private}}
	api.pages["list-business"] = [][]clickupTask{{*business}}

	svc := newTestService(store, api)

	resp, err := svc.runImport(context.Background(), ImportRequest{ListType: "both", PageSize: 100})
	if err != nil {
		t.Fatalf("runImport error: %v", err)
	}

	if resp.Summary.Processed != 2 || resp.Summary.Imported != 2 || resp.Summary.Errors != 0 {
		t.Fatalf("unexpected summary %+v", resp.Summary)
	}
	if !resp.Success {
		t.Fatal("expected a successful run")
	}

	if store.serviceCases["task-p1"].CaseCategory != models.CaseFamilyPrivate {
		t.Fatal("expected task-p1 imported as private")
	}
	if store.serviceCases["task-b1"].CaseCategory != models.CaseFamilyBusiness {
		t.Fatal("expected task-b1 imported as business")
	}

	if len(store.syncRuns) != 1 {
		t.Fatalf("expected one sync run, got %d", len(store.syncRuns))
	}
	run := store.syncRuns[0]
	if run.Status != models.SyncRunStatusSuccess {
		t.Fatalf("expected success status, got %s", run.Status)
	}
	if run.StartedAt == nil || run.FinishedAt == nil {
		t.Fatal("expected run timestamps")
	}
}

func TestRunImport_SkipsExistingUnlessForced(t *testing.T) {
	store := newFakeStore()
	store.serviceCases["task-p1"] = &models.ServiceCase{ClickupTaskId: "task-p1", StatusName: "Bokad", Title: "Gammal titel"}
	api := newFakeAPI()
	api.pages["list-private"] = [][]clickupTask{{*privateTask("task-p1")}}
	svc := newTestService(store, api)

	resp, err := svc.runImport(context.Background(), ImportRequest{ListType: "private", PageSize: 100})
	if err != nil {
		t.Fatalf("runImport error: %v", err)
	}
	if resp.Summary.Skipped != 1 || resp.Summary.Imported != 0 {
		t.Fatalf("expected skip, got %+v", resp.Summary)
	}
	if store.serviceCases["task-p1"].Title == "Råttor i källaren" {
		t.Fatal("skipped task must not be rewritten")
	}

	resp, err = svc.runImport(context.Background(), ImportRequest{ListType: "private", PageSize: 100, ForceReimport: true})
	if err != nil {
		t.Fatalf("runImport error: %v", err)
	}
	if resp.Summary.Imported != 1 || resp.Summary.Skipped != 0 {
		t.Fatalf("expected forced reimport, got %+v", resp.Summary)
	}
	if store.serviceCases["task-p1"].Title != "Råttor i källaren" {
		t.Fatalf("forced reimport must rewrite the row, got %q", store.serviceCases["task-p1"].Title)
	}
}

func TestRunImport_Paginates(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI()
	api.pages["list-private"] = [][]clickupTask{
		{*privateTask("task-1"), *privateTask("task-2")},
		{*privateTask("task-3")},
	}
	svc := newTestService(store, api)

	resp, err := svc.runImport(context.Background(), ImportRequest{ListType: "private", PageSize: 2})
	if err != nil {
		t.Fatalf("runImport error: %v", err)
	}
	if resp.Summary.Processed != 3 || resp.Summary.Imported != 3 {
		t.Fatalf("expected all pages walked, got %+v", resp.Summary)
	}
}

func TestRunImport_PerTaskFailureIsPartial(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI()
	good := privateTask("task-ok")
	bad := privateTask("task-bad")
	bad.CustomFields = nil
	api.pages["list-private"] = [][]clickupTask{{*good, *bad}}
	svc := newTestService(store, api)

	// The second upsert fails, the first has already landed.
	calls := 0
	svc.store = &flakyStore{fakeStore: store, failOnCall: 2, calls: &calls}

	resp, err := svc.runImport(context.Background(), ImportRequest{ListType: "private", PageSize: 100})
	if err != nil {
		t.Fatalf("runImport error: %v", err)
	}

	if resp.Summary.Imported != 1 || resp.Summary.Errors != 1 {
		t.Fatalf("expected one import and one error, got %+v", resp.Summary)
	}
	if store.syncRuns[0].Status != models.SyncRunStatusPartial {
		t.Fatalf("expected partial status, got %s", store.syncRuns[0].Status)
	}
	if len(store.syncErrors) != 1 {
		t.Fatalf("expected one recorded sync error, got %d", len(store.syncErrors))
	}
	if store.syncErrors[0].ExternalId != "task-bad" {
		t.Fatalf("expected sync error for task-bad, got %q", store.syncErrors[0].ExternalId)
	}
}

func TestRunImport_ListFetchFailureIsFailed(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI()
	api.listErr = errUpstream
	svc := newTestService(store, api)

	resp, err := svc.runImport(context.Background(), ImportRequest{ListType: "private", PageSize: 100})
	if err != nil {
		t.Fatalf("runImport error: %v", err)
	}

	if resp.Success {
		t.Fatal("expected an unsuccessful run")
	}
	if store.syncRuns[0].Status != models.SyncRunStatusFailed {
		t.Fatalf("expected failed status, got %s", store.syncRuns[0].Status)
	}
	if len(store.syncErrors) != 1 || store.syncErrors[0].ErrorCode != "list_fetch_failed" {
		t.Fatalf("expected a list_fetch_failed sync error, got %+v", store.syncErrors)
	}
}

// flakyStore fails the nth upsert and otherwise behaves like the fake.
type flakyStore struct {
	*fakeStore
	failOnCall int
	calls      *int
}

func (f *flakyStore) UpsertServiceCase(ctx context.Context, record *models.ServiceCase) error {
	*f.calls++
	if *f.calls == f.failOnCall {
		return errUpstream
	}
	return f.fakeStore.UpsertServiceCase(ctx, record)
}
