package models

import (
	"context"
	"errors"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/config"
	"gorm.io/gorm"
)

// ContractCustomer is a contracted (avtals) customer. Every contracted
// customer has a dedicated ClickUp list; the webhook ingress resolves
// unknown list ids against ClickupListId to decide case family.
type ContractCustomer struct {
	ID            int    `gorm:"primary_key" json:"id"`
	CompanyName   string `gorm:"size:255;not null" json:"company_name" binding:"required"`
	OrgNumber     string `gorm:"size:20;index" json:"org_number"`
	ContactName   string `gorm:"size:100" json:"contact_name"`
	Email         string `gorm:"size:255" json:"email"`
	Phone         string `gorm:"size:30" json:"phone"`
	Address       string `gorm:"size:500" json:"address"`
	ClickupListId string `gorm:"uniqueIndex;size:64" json:"clickup_list_id"`
	IsActive      *bool  `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetCustomerByClickupListId returns nil, nil when no contracted customer
// owns the list; the caller treats that as "not our list", not an error.
func GetCustomerByClickupListId(ctx context.Context, listId string) (*ContractCustomer, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	var customer ContractCustomer
	err := db.WithContext(ctx).Where("clickup_list_id = ?", listId).Take(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}
