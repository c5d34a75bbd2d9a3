package models

import (
	"context"
	"errors"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const technicianCacheKey = "TechnicianDirectory"
const technicianCacheTTL = 10 * time.Minute

// Technician is read-only reference data here; technician management is owned
// by another part of the portal backend.
type Technician struct {
	ID       uuid.UUID `gorm:"primary_key" json:"id"`
	Name     string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email    string    `gorm:"size:255;uniqueIndex;not null" json:"email" binding:"required"`
	Role     string    `gorm:"size:50" json:"role"`
	IsActive *bool     `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Technician) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ListActiveTechnicians loads the technician directory, redis-cached so that
// webhook bursts do not hit MySQL per delivery.
func ListActiveTechnicians(ctx context.Context) ([]Technician, error) {
	var technicians []Technician
	if exists, err := config.GetRedisObject(technicianCacheKey, &technicians); err == nil && exists {
		return technicians, nil
	}

	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&technicians).Error; err != nil {
		return nil, err
	}

	_ = config.SetRedisObject(technicianCacheKey, technicians, technicianCacheTTL)
	return technicians, nil
}

func InvalidateTechnicianCache() error {
	return config.RemoveRedisKey(technicianCacheKey)
}
