package clickupsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/config"
	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/google/uuid"
)

// Shared fakes for the engine tests. The store and the API are in-memory;
// the lock client is absent so the lock path degrades to a no-op.

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	contractCases map[string]*models.ContractCase
	serviceCases  map[string]*models.ServiceCase
	customers     map[string]*models.ContractCustomer
	webhookEvents []models.WebhookEvent
	syncRuns      []*models.SyncRun
	syncErrors    []models.SyncError

	findErr   error
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contractCases: map[string]*models.ContractCase{},
		serviceCases:  map[string]*models.ServiceCase{},
		customers:     map[string]*models.ContractCustomer{},
	}
}

func (f *fakeStore) FindContractCase(_ context.Context, taskID string) (*models.ContractCase, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.contractCases[taskID], nil
}

func (f *fakeStore) FindServiceCase(_ context.Context, taskID string) (*models.ServiceCase, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.serviceCases[taskID], nil
}

func (f *fakeStore) UpsertContractCase(_ context.Context, record *models.ContractCase) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.contractCases[record.ClickupTaskId] = record
	return nil
}

func (f *fakeStore) UpsertServiceCase(_ context.Context, record *models.ServiceCase) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.serviceCases[record.ClickupTaskId] = record
	return nil
}

func (f *fakeStore) MarkContractCaseRemoved(_ context.Context, taskID string, statusName string, statusCode string) (bool, error) {
	record, ok := f.contractCases[taskID]
	if !ok {
		return false, nil
	}
	record.StatusName = statusName
	record.StatusCode = statusCode
	return true, nil
}

func (f *fakeStore) MarkServiceCaseRemoved(_ context.Context, taskID string, statusName string, statusCode string) (bool, error) {
	record, ok := f.serviceCases[taskID]
	if !ok {
		return false, nil
	}
	record.StatusName = statusName
	record.StatusCode = statusCode
	return true, nil
}

func (f *fakeStore) CustomerByListId(_ context.Context, listID string) (*models.ContractCustomer, error) {
	return f.customers[listID], nil
}

func (f *fakeStore) RecordWebhookEvent(_ context.Context, event *models.WebhookEvent) error {
	f.webhookEvents = append(f.webhookEvents, *event)
	return nil
}

func (f *fakeStore) CreateSyncRun(_ context.Context, run *models.SyncRun) error {
	run.ID = uint(len(f.syncRuns) + 1)
	f.syncRuns = append(f.syncRuns, run)
	return nil
}

func (f *fakeStore) UpdateSyncRun(_ context.Context, run *models.SyncRun) error {
	return nil
}

func (f *fakeStore) CreateSyncError(_ context.Context, syncErr *models.SyncError) error {
	f.syncErrors = append(f.syncErrors, *syncErr)
	return nil
}

type fakeAPI struct {
	tasks map[string]*clickupTask
	// pages[listID][page]
	pages   map[string][][]clickupTask
	taskErr error
	listErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		tasks: map[string]*clickupTask{},
		pages: map[string][][]clickupTask{},
	}
}

func (f *fakeAPI) GetTask(_ context.Context, taskID string) (*clickupTask, error) {
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s not found", taskID)
	}
	return task, nil
}

func (f *fakeAPI) GetListTasks(_ context.Context, listID string, page int, _ int, _ bool) ([]clickupTask, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	pages := f.pages[listID]
	if page >= len(pages) {
		return nil, nil
	}
	return pages[page], nil
}

type fakeDirectory struct {
	technicians []models.Technician
	err         error
}

func (f fakeDirectory) ListTechnicians(context.Context) ([]models.Technician, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.technicians, nil
}

var (
	johanID = uuid.MustParse("0b6d3f3e-8a90-4a8c-b86e-111111111111")
	sofiaID = uuid.MustParse("0b6d3f3e-8a90-4a8c-b86e-222222222222")
)

func testDirectory() fakeDirectory {
	return fakeDirectory{technicians: []models.Technician{
		{ID: johanID, Name: "Johan Andersson", Email: "johan.andersson@begone.se"},
		{ID: sofiaID, Name: "Sofia Lindqvist", Email: "sofia.lindqvist@begone.se"},
	}}
}

func testRegistry() *StatusRegistry {
	return NewStatusRegistry(models.DefaultStatusMappings())
}

func newTestService(store *fakeStore, api *fakeAPI) *Service {
	return &Service{
		store:          store,
		api:            api,
		registry:       testRegistry(),
		directory:      testDirectory(),
		policy:         CommissionOnTransition,
		privateListId:  "list-private",
		businessListId: "list-business",
		pageDelay:      0,
		now:            func() time.Time { return fixedNow },
		logger:         config.GetLogger(),
	}
}

var errUpstream = errors.New("upstream unavailable")
