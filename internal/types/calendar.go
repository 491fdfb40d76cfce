package types

// CalendarPeriod is one row of the billing calendar, one per calendar month.
// The table is seeded once, append-only; the four flags are the only mutable
// columns and are recomputed by the flag refresh at startup. Exactly one row
// carries each flag at any time, and the quarterly flags only ever sit on the
// first month of their quarter.
type CalendarPeriod struct {
	ID                    uint   `gorm:"primaryKey" json:"-"`
	PeriodDate            string `gorm:"uniqueIndex" json:"period_date"` // first of month, YYYY-MM-DD
	Year                  int    `gorm:"index" json:"year"`
	Month                 int    `json:"month"`
	Quarter               int    `json:"quarter"`
	PeriodKeyMonthly      int    `gorm:"index" json:"period_key_monthly"`   // year*100+month
	PeriodKeyQuarterly    int    `gorm:"index" json:"period_key_quarterly"` // year*10+quarter
	DisplayLabelMonthly   string `json:"display_label_monthly"`
	DisplayLabelQuarterly string `json:"display_label_quarterly"`
	IsCurrentMonthly      bool   `json:"is_current_monthly"`
	IsCurrentQuarterly    bool   `json:"is_current_quarterly"`
	IsPreviousMonth       bool   `json:"is_previous_month"`
	IsPreviousQuarter     bool   `json:"is_previous_quarter"`
}
