package models

import (
	"context"
	"errors"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContractCase is a case on a contracted customer's dedicated ClickUp list.
// ClickupTaskId is the natural key; the upsert below is the only write path
// the sync engine uses.
type ContractCase struct {
	ID            int    `gorm:"primary_key" json:"id"`
	ClickupTaskId string `gorm:"uniqueIndex;size:64;not null" json:"clickup_task_id"`
	ClickupListId string `gorm:"index;size:64" json:"clickup_list_id"`
	CustomerId    int    `gorm:"index" json:"customer_id"`

	CaseNumber  string `gorm:"size:50" json:"case_number"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	StatusName string       `gorm:"size:100;index" json:"status_name"`
	StatusCode string       `gorm:"size:100" json:"status_code"`
	Priority   CasePriority `gorm:"type:enum('urgent','high','normal');default:'normal'" json:"priority"`

	PrimaryAssigneeId      *uuid.UUID `gorm:"type:char(36)" json:"primary_assignee_id"`
	PrimaryAssigneeName    string     `gorm:"size:100" json:"primary_assignee_name"`
	PrimaryAssigneeEmail   string     `gorm:"size:255" json:"primary_assignee_email"`
	SecondaryAssigneeId    *uuid.UUID `gorm:"type:char(36)" json:"secondary_assignee_id"`
	SecondaryAssigneeName  string     `gorm:"size:100" json:"secondary_assignee_name"`
	SecondaryAssigneeEmail string     `gorm:"size:255" json:"secondary_assignee_email"`
	TertiaryAssigneeId     *uuid.UUID `gorm:"type:char(36)" json:"tertiary_assignee_id"`
	TertiaryAssigneeName   string     `gorm:"size:100" json:"tertiary_assignee_name"`
	TertiaryAssigneeEmail  string     `gorm:"size:255" json:"tertiary_assignee_email"`

	StartDate     *time.Time `json:"start_date"`
	DueDate       *time.Time `json:"due_date"`
	CompletedDate *time.Time `json:"completed_date"`

	Price                  *decimal.Decimal `gorm:"type:decimal(20,2)" json:"price"`
	CommissionAmount       *decimal.Decimal `gorm:"type:decimal(20,2)" json:"commission_amount"`
	CommissionCalculatedAt *time.Time       `json:"commission_calculated_at"`

	PestType         string `gorm:"size:100" json:"pest_type"`
	AddressFormatted string `gorm:"size:500" json:"address_formatted"`

	CustomAttributesJSON []byte `gorm:"type:json" json:"custom_attributes"`

	LastSyncedAt time.Time `json:"last_synced_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ServiceCase is a standalone one-time job from one of the two shared ClickUp
// lists. CaseCategory decides which family-specific fields are populated:
// private cases carry PersonalNumber, business cases OrgNumber + CompanyName.
type ServiceCase struct {
	ID            int    `gorm:"primary_key" json:"id"`
	ClickupTaskId string `gorm:"uniqueIndex;size:64;not null" json:"clickup_task_id"`
	ClickupListId string `gorm:"index;size:64" json:"clickup_list_id"`

	CaseCategory CaseFamily `gorm:"type:enum('private','business');not null" json:"case_category"`

	CaseNumber  string `gorm:"size:50" json:"case_number"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	StatusName string       `gorm:"size:100;index" json:"status_name"`
	StatusCode string       `gorm:"size:100" json:"status_code"`
	Priority   CasePriority `gorm:"type:enum('urgent','high','normal');default:'normal'" json:"priority"`

	PrimaryAssigneeId      *uuid.UUID `gorm:"type:char(36)" json:"primary_assignee_id"`
	PrimaryAssigneeName    string     `gorm:"size:100" json:"primary_assignee_name"`
	PrimaryAssigneeEmail   string     `gorm:"size:255" json:"primary_assignee_email"`
	SecondaryAssigneeId    *uuid.UUID `gorm:"type:char(36)" json:"secondary_assignee_id"`
	SecondaryAssigneeName  string     `gorm:"size:100" json:"secondary_assignee_name"`
	SecondaryAssigneeEmail string     `gorm:"size:255" json:"secondary_assignee_email"`
	TertiaryAssigneeId     *uuid.UUID `gorm:"type:char(36)" json:"tertiary_assignee_id"`
	TertiaryAssigneeName   string     `gorm:"size:100" json:"tertiary_assignee_name"`
	TertiaryAssigneeEmail  string     `gorm:"size:255" json:"tertiary_assignee_email"`

	StartDate     *time.Time `json:"start_date"`
	DueDate       *time.Time `json:"due_date"`
	CompletedDate *time.Time `json:"completed_date"`

	Price                  *decimal.Decimal `gorm:"type:decimal(20,2)" json:"price"`
	CommissionAmount       *decimal.Decimal `gorm:"type:decimal(20,2)" json:"commission_amount"`
	CommissionCalculatedAt *time.Time       `json:"commission_calculated_at"`

	// Family-specific identity fields. Only one side is ever populated.
	PersonalNumber string `gorm:"size:20" json:"personal_number"`
	OrgNumber      string `gorm:"size:20" json:"org_number"`
	CompanyName    string `gorm:"size:255" json:"company_name"`

	ContactName  string `gorm:"size:100" json:"contact_name"`
	ContactEmail string `gorm:"size:255" json:"contact_email"`
	ContactPhone string `gorm:"size:30" json:"contact_phone"`

	PestType         string `gorm:"size:100" json:"pest_type"`
	AddressFormatted string `gorm:"size:500" json:"address_formatted"`

	CustomAttributesJSON []byte `gorm:"type:json" json:"custom_attributes"`

	LastSyncedAt time.Time `json:"last_synced_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// caseAssignmentColumns are the columns a re-sync is allowed to replace.
// id, clickup_task_id and created_at stay untouched so the conflict branch of
// the upsert never rewrites identity or audit fields.
var caseAssignmentColumns = []string{
	"clickup_list_id",
	"case_number",
	"title",
	"description",
	"status_name",
	"status_code",
	"priority",
	"primary_assignee_id", "primary_assignee_name", "primary_assignee_email",
	"secondary_assignee_id", "secondary_assignee_name", "secondary_assignee_email",
	"tertiary_assignee_id", "tertiary_assignee_name", "tertiary_assignee_email",
	"start_date",
	"due_date",
	"completed_date",
	"price",
	"commission_amount",
	"commission_calculated_at",
	"pest_type",
	"address_formatted",
	"custom_attributes_json",
	"last_synced_at",
	"updated_at",
}

var contractCaseAssignmentColumns = append([]string{"customer_id"}, caseAssignmentColumns...)

var serviceCaseAssignmentColumns = append([]string{
	"case_category",
	"personal_number",
	"org_number",
	"company_name",
	"contact_name",
	"contact_email",
	"contact_phone",
}, caseAssignmentColumns...)

// UpsertContractCase writes the full mapped record in a single
// INSERT ... ON DUPLICATE KEY UPDATE statement keyed by clickup_task_id.
func UpsertContractCase(ctx context.Context, record *ContractCase) error {
	db := config.GetDB()
	if db == nil {
		return errors.New("db is nil")
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "clickup_task_id"}},
			DoUpdates: clause.AssignmentColumns(contractCaseAssignmentColumns),
		}).
		Create(record).Error
}

// UpsertServiceCase is the service-case twin of UpsertContractCase.
func UpsertServiceCase(ctx context.Context, record *ServiceCase) error {
	db := config.GetDB()
	if db == nil {
		return errors.New("db is nil")
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "clickup_task_id"}},
			DoUpdates: clause.AssignmentColumns(serviceCaseAssignmentColumns),
		}).
		Create(record).Error
}

func FindContractCaseByTaskId(ctx context.Context, taskId string) (*ContractCase, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	var record ContractCase
	err := db.WithContext(ctx).Where("clickup_task_id = ?", taskId).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func FindServiceCaseByTaskId(ctx context.Context, taskId string) (*ServiceCase, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	var record ServiceCase
	err := db.WithContext(ctx).Where("clickup_task_id = ?", taskId).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// MarkContractCaseRemoved performs the soft delete: the row keeps every prior
// field and only its status moves to the terminal removed sentinel. Returns
// false when no row exists for the task id.
func MarkContractCaseRemoved(ctx context.Context, taskId string, statusName string, statusCode string) (bool, error) {
	db := config.GetDB()
	if db == nil {
		return false, errors.New("db is nil")
	}
	res := db.WithContext(ctx).
		Model(&ContractCase{}).
		Where("clickup_task_id = ?", taskId).
		Updates(map[string]interface{}{
			"status_name":    statusName,
			"status_code":    statusCode,
			"last_synced_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func MarkServiceCaseRemoved(ctx context.Context, taskId string, statusName string, statusCode string) (bool, error) {
	db := config.GetDB()
	if db == nil {
		return false, errors.New("db is nil")
	}
	res := db.WithContext(ctx).
		Model(&ServiceCase{}).
		Where("clickup_task_id = ?", taskId).
		Updates(map[string]interface{}{
			"status_name":    statusName,
			"status_code":    statusCode,
			"last_synced_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
