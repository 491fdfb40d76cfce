package types

import (
	"time"

	"gorm.io/gorm"
)

// Provider is a 401(k) plan provider
type Provider struct {
	ProviderID   uint           `gorm:"primaryKey" json:"provider_id"`
	ProviderName string         `gorm:"index" json:"provider_name"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
