package clickupsync

import (
	"context"
	"errors"

	"github.com/begoneskadedjur/kundportal-sub005/config"
	"github.com/begoneskadedjur/kundportal-sub005/models"
)

// caseStore is the persistence surface of the sync engine. The production
// implementation delegates to the models package; tests swap in a fake.
type caseStore interface {
	FindContractCase(ctx context.Context, taskID string) (*models.ContractCase, error)
	FindServiceCase(ctx context.Context, taskID string) (*models.ServiceCase, error)
	UpsertContractCase(ctx context.Context, record *models.ContractCase) error
	UpsertServiceCase(ctx context.Context, record *models.ServiceCase) error
	MarkContractCaseRemoved(ctx context.Context, taskID string, statusName string, statusCode string) (bool, error)
	MarkServiceCaseRemoved(ctx context.Context, taskID string, statusName string, statusCode string) (bool, error)
	CustomerByListId(ctx context.Context, listID string) (*models.ContractCustomer, error)
	RecordWebhookEvent(ctx context.Context, event *models.WebhookEvent) error
	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	UpdateSyncRun(ctx context.Context, run *models.SyncRun) error
	CreateSyncError(ctx context.Context, syncErr *models.SyncError) error
}

type gormStore struct{}

func newGormStore() caseStore {
	return gormStore{}
}

func (gormStore) FindContractCase(ctx context.Context, taskID string) (*models.ContractCase, error) {
	return models.FindContractCaseByTaskId(ctx, taskID)
}

func (gormStore) FindServiceCase(ctx context.Context, taskID string) (*models.ServiceCase, error) {
	return models.FindServiceCaseByTaskId(ctx, taskID)
}

func (gormStore) UpsertContractCase(ctx context.Context, record *models.ContractCase) error {
	return models.UpsertContractCase(ctx, record)
}

func (gormStore) UpsertServiceCase(ctx context.Context, record *models.ServiceCase) error {
	return models.UpsertServiceCase(ctx, record)
}

func (gormStore) MarkContractCaseRemoved(ctx context.Context, taskID string, statusName string, statusCode string) (bool, error) {
	return models.MarkContractCaseRemoved(ctx, taskID, statusName, statusCode)
}

func (gormStore) MarkServiceCaseRemoved(ctx context.Context, taskID string, statusName string, statusCode string) (bool, error) {
	return models.MarkServiceCaseRemoved(ctx, taskID, statusName, statusCode)
}

func (gormStore) CustomerByListId(ctx context.Context, listID string) (*models.ContractCustomer, error) {
	return models.GetCustomerByClickupListId(ctx, listID)
}

func (gormStore) RecordWebhookEvent(ctx context.Context, event *models.WebhookEvent) error {
	db := config.GetDB()
	if db == nil {
		return errors.New("db is nil")
	}
	return db.WithContext(ctx).Create(event).Error
}

func (gormStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	db := config.GetDB()
	if db == nil {
		return errors.New("db is nil")
	}
	return db.WithContext(ctx).Create(run).Error
}

func (gormStore) UpdateSyncRun(ctx context.Context, run *models.SyncRun) error {
	db := config.GetDB()
	if db == nil {
		return errors.New("db is nil")
	}
	return db.WithContext(ctx).Save(run).Error
}

func (gormStore) CreateSyncError(ctx context.Context, syncErr *models.SyncError) error {
	db := config.GetDB()
	if db == nil {
		return errors.New("db is nil")
	}
	return db.WithContext(ctx).Create(syncErr).Error
}
