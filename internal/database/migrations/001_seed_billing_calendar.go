package migrations

import (
	"fmt"
	"time"

	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/types"
	"gorm.io/gorm"
)

// Seeded calendar range. Wide enough to cover all client history on one side
// and years of forward billing on the other; the flag refresh fails loudly
// if the process ever outlives it.
const (
	calendarStartYear = 2015
	calendarEndYear   = 2035
)

// SeedBillingCalendar fills the billing calendar with one row per month for
// the seeded range. Idempotent: existing rows are left untouched, only
// missing months are inserted, so re-running migrations never resets flags.
func SeedBillingCalendar(db *gorm.DB) error {
	var existing []types.CalendarPeriod
	if err := db.Select("period_date").Find(&existing).Error; err != nil {
		return err
	}

	seen := make(map[string]bool, len(existing))
	for _, row := range existing {
		seen[row.PeriodDate] = true
	}

	var rows []types.CalendarPeriod
	for year := calendarStartYear; year <= calendarEndYear; year++ {
		for month := 1; month <= 12; month++ {
			periodDate := fmt.Sprintf("%04d-%02d-01", year, month)
			if seen[periodDate] {
				continue
			}

			monthly := billing.MonthlyPeriod(year, month)
			quarterly := billing.PeriodContaining(
				time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
				billing.ScheduleQuarterly,
			)

			rows = append(rows, types.CalendarPeriod{
				PeriodDate:            periodDate,
				Year:                  year,
				Month:                 month,
				Quarter:               quarterly.Index,
				PeriodKeyMonthly:      monthly.Key(),
				PeriodKeyQuarterly:    quarterly.Key(),
				DisplayLabelMonthly:   monthly.Label(),
				DisplayLabelQuarterly: quarterly.Label(),
			})
		}
	}

	if len(rows) == 0 {
		return nil
	}

	return db.CreateInBatches(rows, 200).Error
}
