package types

import (
	"time"

	"gorm.io/gorm"
)

// Payment is a received administration fee. Its applied coverage is either a
// month range or a quarter range, matching the owning contract's payment
// schedule; a missing end period means the payment covers the start period
// only. A payment whose range spans more than one period is a split payment.
type Payment struct {
	PaymentID    uint     `gorm:"primaryKey" json:"payment_id"`
	ReferenceID  string   `gorm:"uniqueIndex" json:"reference_id"`
	ContractID   uint     `gorm:"index" json:"contract_id"`
	ClientID     uint     `gorm:"index" json:"client_id"`
	ReceivedDate string   `json:"received_date"` // YYYY-MM-DD
	TotalAssets  *float64 `json:"total_assets,omitempty"`
	ActualFee    float64  `json:"actual_fee"`
	Method       *string  `json:"method,omitempty"`
	Notes        *string  `json:"notes,omitempty"`

	AppliedStartMonth     *int `json:"applied_start_month,omitempty"`
	AppliedStartMonthYear *int `json:"applied_start_month_year,omitempty"`
	AppliedEndMonth       *int `json:"applied_end_month,omitempty"`
	AppliedEndMonthYear   *int `json:"applied_end_month_year,omitempty"`

	AppliedStartQuarter     *int `json:"applied_start_quarter,omitempty"`
	AppliedStartQuarterYear *int `json:"applied_start_quarter_year,omitempty"`
	AppliedEndQuarter       *int `json:"applied_end_quarter,omitempty"`
	AppliedEndQuarterYear   *int `json:"applied_end_quarter_year,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
