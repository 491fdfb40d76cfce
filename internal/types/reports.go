package types

// Derived reporting shapes. None of these are persisted: they are computed
// on demand from contracts, payments and the billing calendar.

// ExpectedPeriod is one period a client's active contract implies a fee was
// owed for, from the contract's effective start through the current billing
// period.
type ExpectedPeriod struct {
	ClientID        uint   `json:"client_id"`
	PaymentSchedule string `json:"payment_schedule"`
	PeriodKey       int    `json:"period_key"`
	PeriodLabel     string `json:"period_label"`
}

// MissingPeriod is an expected period with no payment coverage
type MissingPeriod struct {
	ClientID        uint   `json:"client_id"`
	PaymentSchedule string `json:"payment_schedule"`
	PeriodKey       int    `json:"period_key"`
	PeriodLabel     string `json:"period_label"`
	Status          string `json:"status"` // always "Missing"
}

// PaymentStatus reports whether a client has paid for the current billing
// period
type PaymentStatus struct {
	ClientID        uint   `json:"client_id"`
	PaymentSchedule string `json:"payment_schedule"`
	PeriodKey       int    `json:"period_key"`
	PeriodLabel     string `json:"period_label"`
	Status          string `json:"status"` // Paid or Unpaid
}

// PeriodDistribution is one covered period of a payment with its share of
// the payment amount
type PeriodDistribution struct {
	PaymentID           uint    `json:"payment_id"`
	ClientID            uint    `json:"client_id"`
	ClientName          string  `json:"client_name"`
	ReceivedDate        string  `json:"received_date"`
	TotalPaymentAmount  float64 `json:"total_payment_amount"`
	IsSplitPayment      bool    `json:"is_split_payment"`
	TotalPeriodsCovered int     `json:"total_periods_covered"`
	PeriodKey           int     `json:"period_key"`
	PeriodLabel         string  `json:"period_label"`
	PaymentSchedule     string  `json:"payment_schedule"`
	DistributedAmount   float64 `json:"distributed_amount"`
}

// ExpandedPeriod is the minimal payment-covers-period fact used by the
// reconciliation queries
type ExpandedPeriod struct {
	PaymentID       uint   `json:"payment_id"`
	ClientID        uint   `json:"client_id"`
	PeriodKey       int    `json:"period_key"`
	PaymentSchedule string `json:"payment_schedule"`
}

// PaymentCoverage summarises one payment's covered periods
type PaymentCoverage struct {
	PaymentID                  uint     `json:"payment_id"`
	ClientID                   uint     `json:"client_id"`
	ReceivedDate               string   `json:"received_date"`
	ActualFee                  float64  `json:"actual_fee"`
	IsSplitPayment             bool     `json:"is_split_payment"`
	CoveredPeriods             []string `json:"covered_periods"`
	PeriodsCovered             int      `json:"periods_covered"`
	DistributedAmountPerPeriod float64  `json:"distributed_amount_per_period"`
}

// CurrentPeriodSummary reports the billing anchor derived from today's date
type CurrentPeriodSummary struct {
	Today                 string `json:"today"`
	CurrentMonthlyKey     int    `json:"current_monthly_key"`
	CurrentMonthlyLabel   string `json:"current_monthly_label"`
	CurrentQuarterlyKey   int    `json:"current_quarterly_key"`
	CurrentQuarterlyLabel string `json:"current_quarterly_label"`
	PreviousMonthlyKey    int    `json:"previous_monthly_key"`
	PreviousQuarterlyKey  int    `json:"previous_quarterly_key"`
}
