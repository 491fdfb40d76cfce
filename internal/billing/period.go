package billing

import (
	"errors"
	"fmt"
	"time"
)

// Schedule is the billing cadence of a contract
type Schedule string

const (
	ScheduleMonthly   Schedule = "monthly"
	ScheduleQuarterly Schedule = "quarterly"
)

// Valid reports whether the schedule is one of the known cadences
func (s Schedule) Valid() bool {
	return s == ScheduleMonthly || s == ScheduleQuarterly
}

var (
	ErrScheduleMismatch = errors.New("period schedules do not match")
	ErrInvalidRange     = errors.New("coverage range end precedes start")
	ErrUnknownSchedule  = errors.New("unknown payment schedule")
)

// Period identifies a single billing period: one calendar month or one
// calendar quarter. Index is the month (1-12) for monthly periods and the
// quarter (1-4) for quarterly periods.
type Period struct {
	Year     int
	Index    int
	Schedule Schedule
}

// MonthlyPeriod returns the monthly period for the given year and month
func MonthlyPeriod(year, month int) Period {
	return Period{Year: year, Index: month, Schedule: ScheduleMonthly}
}

// QuarterlyPeriod returns the quarterly period for the given year and quarter
func QuarterlyPeriod(year, quarter int) Period {
	return Period{Year: year, Index: quarter, Schedule: ScheduleQuarterly}
}

// PeriodContaining returns the period that contains the given date at the
// requested cadence
func PeriodContaining(t time.Time, schedule Schedule) Period {
	if schedule == ScheduleQuarterly {
		return QuarterlyPeriod(t.Year(), (int(t.Month())-1)/3+1)
	}
	return MonthlyPeriod(t.Year(), int(t.Month()))
}

// PeriodFromKey parses an integer period key back into a Period.
// Monthly keys are year*100+month, quarterly keys are year*10+quarter.
func PeriodFromKey(key int, schedule Schedule) Period {
	if schedule == ScheduleQuarterly {
		return QuarterlyPeriod(key/10, key%10)
	}
	return MonthlyPeriod(key/100, key%100)
}

// Key returns the integer period key: year*100+month for monthly periods,
// year*10+quarter for quarterly periods
func (p Period) Key() int {
	if p.Schedule == ScheduleQuarterly {
		return p.Year*10 + p.Index
	}
	return p.Year*100 + p.Index
}

// Label returns the human readable period label, e.g. "May 2024" or "Q2 2024"
func (p Period) Label() string {
	if p.Schedule == ScheduleQuarterly {
		return fmt.Sprintf("Q%d %d", p.Index, p.Year)
	}
	return fmt.Sprintf("%s %d", time.Month(p.Index).String(), p.Year)
}

// Next returns the following period, rolling into the next year at
// December and Q4
func (p Period) Next() Period {
	last := 12
	if p.Schedule == ScheduleQuarterly {
		last = 4
	}
	if p.Index == last {
		return Period{Year: p.Year + 1, Index: 1, Schedule: p.Schedule}
	}
	return Period{Year: p.Year, Index: p.Index + 1, Schedule: p.Schedule}
}

// Prev returns the preceding period, rolling into the prior year at
// January and Q1
func (p Period) Prev() Period {
	last := 12
	if p.Schedule == ScheduleQuarterly {
		last = 4
	}
	if p.Index == 1 {
		return Period{Year: p.Year - 1, Index: last, Schedule: p.Schedule}
	}
	return Period{Year: p.Year, Index: p.Index - 1, Schedule: p.Schedule}
}

// Before reports whether p falls strictly before other
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Index < other.Index
}

// FirstMonth returns the first calendar month of the period. For monthly
// periods this is the month itself; for quarterly periods it is 1, 4, 7 or 10.
func (p Period) FirstMonth() int {
	if p.Schedule == ScheduleQuarterly {
		return (p.Index-1)*3 + 1
	}
	return p.Index
}

// Range enumerates every period from start through end inclusive at the
// start period's cadence
func Range(start, end Period) ([]Period, error) {
	if start.Schedule != end.Schedule {
		return nil, ErrScheduleMismatch
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	var periods []Period
	for p := start; !end.Before(p); p = p.Next() {
		periods = append(periods, p)
	}
	return periods, nil
}
