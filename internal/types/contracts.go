package types

import (
	"time"

	"gorm.io/gorm"
)

// Contract governs billing for one client/provider relationship. FeeType is
// "percentage" (fee = assets x PercentRate) or "flat"/"fixed" (fee =
// FlatRate); PaymentSchedule is "monthly" or "quarterly". EffectiveDate
// anchors the first period the client is expected to have paid for.
type Contract struct {
	ContractID      uint           `gorm:"primaryKey" json:"contract_id"`
	ContractNumber  *string        `json:"contract_number,omitempty"`
	ClientID        uint           `gorm:"index" json:"client_id"`
	ProviderID      *uint          `json:"provider_id,omitempty"`
	FeeType         *string        `json:"fee_type,omitempty"`
	PercentRate     *float64       `json:"percent_rate,omitempty"`
	FlatRate        *float64       `json:"flat_rate,omitempty"`
	PaymentSchedule *string        `json:"payment_schedule,omitempty"`
	NumPeople       *int           `json:"num_people,omitempty"`
	EffectiveDate   *string        `json:"effective_date,omitempty"` // YYYY-MM-DD
	IsActive        bool           `json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
