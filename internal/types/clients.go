package types

import (
	"time"

	"gorm.io/gorm"
)

// Client is a retirement plan sponsor whose administration fees are tracked
type Client struct {
	ClientID      uint           `gorm:"primaryKey" json:"client_id"`
	DisplayName   string         `gorm:"index" json:"display_name"`
	FullName      *string        `json:"full_name,omitempty"`
	IMASignedDate *string        `json:"ima_signed_date,omitempty"` // YYYY-MM-DD
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Contact is a person or office associated with a client
type Contact struct {
	ContactID       uint           `gorm:"primaryKey" json:"contact_id"`
	ClientID        uint           `gorm:"index" json:"client_id"`
	ContactType     string         `json:"contact_type"` // Primary, Authorized, Provider
	ContactName     *string        `json:"contact_name,omitempty"`
	Phone           *string        `json:"phone,omitempty"`
	Email           *string        `json:"email,omitempty"`
	Fax             *string        `json:"fax,omitempty"`
	PhysicalAddress *string        `json:"physical_address,omitempty"`
	MailingAddress  *string        `json:"mailing_address,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// ClientProvider links a client to a plan provider relationship
type ClientProvider struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ClientID   uint           `gorm:"index:idx_client_provider" json:"client_id"`
	ProviderID uint           `gorm:"index:idx_client_provider" json:"provider_id"`
	StartDate  *string        `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string        `json:"end_date,omitempty"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
