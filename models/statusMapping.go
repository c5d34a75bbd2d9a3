package models

import (
	"context"
	"errors"

	"github.com/begoneskadedjur/kundportal-sub005/config"
)

// StatusCodeRemoved is the sentinel a taskDeleted webhook writes. The row is
// retained for billing/audit history; only its status changes.
const StatusCodeRemoved = "removed"
const StatusNameRemoved = "Borttagen"

// StatusMapping is the operator-editable classification table behind the
// status registry: external ClickUp status -> canonical name + terminal flag.
// Reclassifying a status is a row update, never a code change.
type StatusMapping struct {
	ID            int    `gorm:"primary_key" json:"id"`
	ExternalCode  string `gorm:"uniqueIndex;size:100;not null" json:"external_code"`
	CanonicalName string `gorm:"size:100;not null" json:"canonical_name"`
	IsTerminal    bool   `gorm:"not null;default:false" json:"is_terminal"`
}

func ListStatusMappings(ctx context.Context) ([]StatusMapping, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	var mappings []StatusMapping
	if err := db.WithContext(ctx).Order("id").Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// DefaultStatusMappings seeds the classification table on an empty database.
// External codes are the lowercased ClickUp status strings the field
// organisation uses today.
func DefaultStatusMappings() []StatusMapping {
	return []StatusMapping{
		{ExternalCode: "öppen", CanonicalName: "Öppen", IsTerminal: false},
		{ExternalCode: "bokad", CanonicalName: "Bokad", IsTerminal: false},
		{ExternalCode: "ombokning", CanonicalName: "Ombokning", IsTerminal: false},
		{ExternalCode: "pågående", CanonicalName: "Pågående", IsTerminal: false},
		{ExternalCode: "återbesök 1", CanonicalName: "Återbesök 1", IsTerminal: false},
		{ExternalCode: "återbesök 2", CanonicalName: "Återbesök 2", IsTerminal: false},
		{ExternalCode: "återbesök 3", CanonicalName: "Återbesök 3", IsTerminal: false},
		{ExternalCode: "avvaktar", CanonicalName: "Avvaktar", IsTerminal: false},
		{ExternalCode: "offert skickad", CanonicalName: "Offert skickad", IsTerminal: false},
		{ExternalCode: "avslutat", CanonicalName: "Avslutat", IsTerminal: true},
		{ExternalCode: "genomförd", CanonicalName: "Genomförd", IsTerminal: true},
		{ExternalCode: "makulerad", CanonicalName: "Makulerad", IsTerminal: true},
		{ExternalCode: StatusCodeRemoved, CanonicalName: StatusNameRemoved, IsTerminal: true},
	}
}
