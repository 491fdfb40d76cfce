package calendar

import (
	"errors"
	"fmt"

	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/types"
	"gorm.io/gorm"
)

// ErrFlagCoverage signals that the flag refresh could not stamp exactly one
// row per flag: the calendar does not extend far enough to contain the
// computed billing periods, or carries duplicate period keys.
var ErrFlagCoverage = errors.New("billing calendar does not cover the computed periods")

// Flag names accepted by GetFlagged
const (
	FlagCurrentMonthly   = "is_current_monthly"
	FlagCurrentQuarterly = "is_current_quarterly"
	FlagPreviousMonth    = "is_previous_month"
	FlagPreviousQuarter  = "is_previous_quarter"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// GetByMonthlyKey returns the calendar row for a monthly period key, or nil
// when the calendar has no such row
func (d *Database) GetByMonthlyKey(key int) (*types.CalendarPeriod, error) {
	var period types.CalendarPeriod
	if err := d.db.Where("period_key_monthly = ?", key).First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// GetByQuarterlyKey returns the first-month row of a quarter, the row the
// quarterly flags attach to
func (d *Database) GetByQuarterlyKey(key int) (*types.CalendarPeriod, error) {
	quarter := billing.PeriodFromKey(key, billing.ScheduleQuarterly)

	var period types.CalendarPeriod
	err := d.db.
		Where("period_key_quarterly = ? AND month = ?", key, quarter.FirstMonth()).
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// GetFlagged returns the single row carrying the given flag, or nil when no
// row is flagged (a legitimately absent previous period early in the
// calendar's range)
func (d *Database) GetFlagged(flag string) (*types.CalendarPeriod, error) {
	switch flag {
	case FlagCurrentMonthly, FlagCurrentQuarterly, FlagPreviousMonth, FlagPreviousQuarter:
	default:
		return nil, fmt.Errorf("unknown calendar flag %q", flag)
	}

	var period types.CalendarPeriod
	if err := d.db.Where(flag+" = ?", true).First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// ListFilter is the finite set of filters the calendar listing supports
type ListFilter struct {
	Year               *int
	Month              *int
	Quarter            *int
	IsCurrentMonthly   *bool
	IsCurrentQuarterly *bool
	Limit              int
	Offset             int
}

// List returns calendar rows matching the filter, ordered by period date
func (d *Database) List(filter ListFilter) ([]types.CalendarPeriod, int64, error) {
	query := d.db.Model(&types.CalendarPeriod{})

	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}
	if filter.Quarter != nil {
		query = query.Where("quarter = ?", *filter.Quarter)
	}
	if filter.IsCurrentMonthly != nil {
		query = query.Where("is_current_monthly = ?", *filter.IsCurrentMonthly)
	}
	if filter.IsCurrentQuarterly != nil {
		query = query.Where("is_current_quarterly = ?", *filter.IsCurrentQuarterly)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var periods []types.CalendarPeriod
	err := query.
		Order("period_date").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&periods).Error
	if err != nil {
		return nil, 0, err
	}
	return periods, total, nil
}

// flagCounts is the verification shape for the flag refresh
type flagCounts struct {
	CurrentMonthly   int
	CurrentQuarterly int
	PreviousMonth    int
	PreviousQuarter  int
}

// RefreshFlags clears all four period flags and re-stamps the four rows the
// anchor identifies, all inside one transaction so readers never observe a
// half-updated calendar. The transaction rolls back unless exactly one row
// ends up carrying each flag.
func (d *Database) RefreshFlags(anchor billing.Anchor) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		reset := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Model(&types.CalendarPeriod{}).
			Updates(map[string]interface{}{
				"is_current_monthly":   false,
				"is_current_quarterly": false,
				"is_previous_month":    false,
				"is_previous_quarter":  false,
			})
		if reset.Error != nil {
			return reset.Error
		}

		err := tx.Model(&types.CalendarPeriod{}).
			Where("period_key_monthly = ?", anchor.CurrentMonth.Key()).
			Update("is_current_monthly", true).Error
		if err != nil {
			return err
		}

		err = tx.Model(&types.CalendarPeriod{}).
			Where("period_key_quarterly = ? AND month = ?",
				anchor.CurrentQuarter.Key(), anchor.CurrentQuarter.FirstMonth()).
			Update("is_current_quarterly", true).Error
		if err != nil {
			return err
		}

		err = tx.Model(&types.CalendarPeriod{}).
			Where("period_key_monthly = ?", anchor.PreviousMonth.Key()).
			Update("is_previous_month", true).Error
		if err != nil {
			return err
		}

		err = tx.Model(&types.CalendarPeriod{}).
			Where("period_key_quarterly = ? AND month = ?",
				anchor.PreviousQuarter.Key(), anchor.PreviousQuarter.FirstMonth()).
			Update("is_previous_quarter", true).Error
		if err != nil {
			return err
		}

		var counts flagCounts
		err = tx.Model(&types.CalendarPeriod{}).
			Select(
				"SUM(is_current_monthly) AS current_monthly, " +
					"SUM(is_current_quarterly) AS current_quarterly, " +
					"SUM(is_previous_month) AS previous_month, " +
					"SUM(is_previous_quarter) AS previous_quarter").
			Scan(&counts).Error
		if err != nil {
			return err
		}

		if counts.CurrentMonthly != 1 || counts.CurrentQuarterly != 1 ||
			counts.PreviousMonth != 1 || counts.PreviousQuarter != 1 {
			return fmt.Errorf("%w: monthly=%d quarterly=%d prev_month=%d prev_quarter=%d",
				ErrFlagCoverage,
				counts.CurrentMonthly, counts.CurrentQuarterly,
				counts.PreviousMonth, counts.PreviousQuarter)
		}

		return nil
	})
}
