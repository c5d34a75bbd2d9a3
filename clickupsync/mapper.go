package clickupsync

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/begoneskadedjur/kundportal-sub005/utils"
	"github.com/shopspring/decimal"
)

// mapPriority is a total function over ClickUp's priority codes; anything
// unrecognized is normal priority.
func mapPriority(p *clickupPriority) models.CasePriority {
	if p == nil {
		return models.CasePriorityNormal
	}
	switch strings.ToLower(strings.TrimSpace(p.Priority)) {
	case "urgent", "1":
		return models.CasePriorityUrgent
	case "high", "2":
		return models.CasePriorityHigh
	}
	switch strings.TrimSpace(p.ID) {
	case "1":
		return models.CasePriorityUrgent
	case "2":
		return models.CasePriorityHigh
	}
	return models.CasePriorityNormal
}

// caseNumber prefers the operator-assigned custom id and falls back to a
// truncated task id so every case gets a human-facing number.
func caseNumber(task *clickupTask) string {
	if n := strings.TrimSpace(task.CustomID); n != "" {
		return n
	}
	id := task.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// mappedCase carries the family-independent mapping results.
type mappedCase struct {
	caseNumber string
	statusName string
	statusCode string
	terminal   bool
	priority   models.CasePriority
	assignees  []resolvedAssignee
	dates      resolvedDates
	fields     extractedFields
	attributes []byte
	commission *decimal.Decimal
	commAt     *time.Time
	syncedAt   time.Time
}

// mapCommon runs every business rule that does not depend on the case family
// shape: status classification, priority, assignee resolution, date
// derivation and the commission policy.
func (s *Service) mapCommon(
	ctx context.Context,
	task *clickupTask,
	category models.CaseFamily,
	prevStatusName string,
	prevCommission *decimal.Decimal,
	prevCommissionAt *time.Time,
	hasPrev bool,
) (*mappedCase, error) {
	directory, err := s.directory.ListTechnicians(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	statusCode := task.Status.Status
	statusName := s.registry.CanonicalName(statusCode)
	terminal := s.registry.IsTerminal(statusName)
	wasTerminal := hasPrev && s.registry.IsTerminal(prevStatusName)

	fields := extractCustomFields(task.CustomFields)
	dates := resolveDates(taskDates(task), terminal, now)
	commission, commAt := resolveCommission(
		s.policy, fields.Price, category,
		terminal, wasTerminal,
		prevCommission, prevCommissionAt,
		now,
	)

	attributes, err := json.Marshal(fields.Attributes)
	if err != nil {
		return nil, err
	}

	return &mappedCase{
		caseNumber: caseNumber(task),
		statusName: statusName,
		statusCode: statusCode,
		terminal:   terminal,
		priority:   mapPriority(task.Priority),
		assignees:  resolveAssignees(task.Assignees, directory),
		dates:      dates,
		fields:     fields,
		attributes: attributes,
		commission: commission,
		commAt:     commAt,
		syncedAt:   now.UTC(),
	}, nil
}

// mapServiceCase builds the full standalone-case record for one sync. prev is
// the stored row (nil on first sync); it feeds the commission transition
// check only, the rest of the record is a pure function of the fetched task.
func (s *Service) mapServiceCase(ctx context.Context, task *clickupTask, category models.CaseFamily, prev *models.ServiceCase) (*models.ServiceCase, error) {
	var prevStatus string
	var prevCommission *decimal.Decimal
	var prevCommissionAt *time.Time
	if prev != nil {
		prevStatus = prev.StatusName
		prevCommission = prev.CommissionAmount
		prevCommissionAt = prev.CommissionCalculatedAt
	}

	m, err := s.mapCommon(ctx, task, category, prevStatus, prevCommission, prevCommissionAt, prev != nil)
	if err != nil {
		return nil, err
	}

	record := &models.ServiceCase{
		ClickupTaskId: task.ID,
		ClickupListId: task.List.ID,
		CaseCategory:  category,
		CaseNumber:    m.caseNumber,
		Title:         task.Name,
		Description:   task.Description,
		StatusName:    m.statusName,
		StatusCode:    m.statusCode,
		Priority:      m.priority,

		StartDate:     m.dates.Start,
		DueDate:       m.dates.Due,
		CompletedDate: m.dates.Completed,

		Price:                  m.fields.Price,
		CommissionAmount:       m.commission,
		CommissionCalculatedAt: m.commAt,

		ContactName:  m.fields.ContactName,
		ContactEmail: m.fields.ContactEmail,
		ContactPhone: utils.NormalizePhoneNumber(m.fields.ContactPhone, utils.CountryCode),

		PestType:         m.fields.PestType,
		AddressFormatted: m.fields.Address,

		CustomAttributesJSON: m.attributes,
		LastSyncedAt:         m.syncedAt,
	}

	// Family-specific identity fields; the other family's stay empty.
	switch category {
	case models.CaseFamilyPrivate:
		record.PersonalNumber = m.fields.PersonalNumber
	case models.CaseFamilyBusiness:
		record.OrgNumber = m.fields.OrgNumber
		record.CompanyName = m.fields.CompanyName
	}

	applyServiceAssignees(record, m.assignees)
	return record, nil
}

// mapContractCase builds the contracted-customer record for one sync.
func (s *Service) mapContractCase(ctx context.Context, task *clickupTask, customer *models.ContractCustomer, prev *models.ContractCase) (*models.ContractCase, error) {
	var prevStatus string
	var prevCommission *decimal.Decimal
	var prevCommissionAt *time.Time
	if prev != nil {
		prevStatus = prev.StatusName
		prevCommission = prev.CommissionAmount
		prevCommissionAt = prev.CommissionCalculatedAt
	}

	m, err := s.mapCommon(ctx, task, models.CaseFamilyContract, prevStatus, prevCommission, prevCommissionAt, prev != nil)
	if err != nil {
		return nil, err
	}

	record := &models.ContractCase{
		ClickupTaskId: task.ID,
		ClickupListId: task.List.ID,
		CustomerId:    customer.ID,
		CaseNumber:    m.caseNumber,
		Title:         task.Name,
		Description:   task.Description,
		StatusName:    m.statusName,
		StatusCode:    m.statusCode,
		Priority:      m.priority,

		StartDate:     m.dates.Start,
		DueDate:       m.dates.Due,
		CompletedDate: m.dates.Completed,

		Price:                  m.fields.Price,
		CommissionAmount:       m.commission,
		CommissionCalculatedAt: m.commAt,

		PestType:         m.fields.PestType,
		AddressFormatted: m.fields.Address,

		CustomAttributesJSON: m.attributes,
		LastSyncedAt:         m.syncedAt,
	}

	applyContractAssignees(record, m.assignees)
	return record, nil
}

func applyServiceAssignees(record *models.ServiceCase, assignees []resolvedAssignee) {
	for i, a := range assignees {
		switch i {
		case 0:
			record.PrimaryAssigneeId = a.TechnicianId
			record.PrimaryAssigneeName = a.Name
			record.PrimaryAssigneeEmail = a.Email
		case 1:
			record.SecondaryAssigneeId = a.TechnicianId
			record.SecondaryAssigneeName = a.Name
			record.SecondaryAssigneeEmail = a.Email
		case 2:
			record.TertiaryAssigneeId = a.TechnicianId
			record.TertiaryAssigneeName = a.Name
			record.TertiaryAssigneeEmail = a.Email
		}
	}
}

func applyContractAssignees(record *models.ContractCase, assignees []resolvedAssignee) {
	for i, a := range assignees {
		switch i {
		case 0:
			record.PrimaryAssigneeId = a.TechnicianId
			record.PrimaryAssigneeName = a.Name
			record.PrimaryAssigneeEmail = a.Email
		case 1:
			record.SecondaryAssigneeId = a.TechnicianId
			record.SecondaryAssigneeName = a.Name
			record.SecondaryAssigneeEmail = a.Email
		case 2:
			record.TertiaryAssigneeId = a.TechnicianId
			record.TertiaryAssigneeName = a.Name
			record.TertiaryAssigneeEmail = a.Email
		}
	}
}
