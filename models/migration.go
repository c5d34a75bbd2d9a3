package models

import (
	"context"
	"log"

	"github.com/begoneskadedjur/kundportal-sub005/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&ContractCustomer{},
		&ContractCase{}, &ServiceCase{},
		&Technician{},
		&StatusMapping{},
		&SyncRun{}, &SyncError{}, &WebhookEvent{},
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := seedStatusMappings(); err != nil {
		log.Fatal(err)
	}
}

// seedStatusMappings inserts the default status classification on an empty
// table only; operator edits are never overwritten.
func seedStatusMappings() error {
	db := config.GetDB()

	var count int64
	if err := db.WithContext(context.Background()).
		Model(&StatusMapping{}).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	mappings := DefaultStatusMappings()
	return db.Create(&mappings).Error
}
