package billing

import "github.com/shopspring/decimal"

// CoverageRange is the span of billing periods a single payment applies to.
// A payment whose range covers more than one period is a split payment.
type CoverageRange struct {
	Start Period
	End   Period
}

// NewCoverageRange builds a coverage range from a start period and an
// optional end period. A missing end means the payment covers only the
// start period.
func NewCoverageRange(start Period, end *Period) (CoverageRange, error) {
	if end == nil {
		return CoverageRange{Start: start, End: start}, nil
	}
	if start.Schedule != end.Schedule {
		return CoverageRange{}, ErrScheduleMismatch
	}
	if end.Before(start) {
		return CoverageRange{}, ErrInvalidRange
	}
	return CoverageRange{Start: start, End: *end}, nil
}

// Periods enumerates every period the range covers, start through end
// inclusive
func (c CoverageRange) Periods() []Period {
	periods, err := Range(c.Start, c.End)
	if err != nil {
		// NewCoverageRange validated the range; an error here means the
		// value was constructed by hand with mismatched schedules
		return nil
	}
	return periods
}

// TotalPeriods returns the number of periods the range covers
func (c CoverageRange) TotalPeriods() int {
	return len(c.Periods())
}

// IsSplit reports whether the range covers more than one period
func (c CoverageRange) IsSplit() bool {
	return c.Start != c.End
}

// Distribute divides a payment amount evenly across the covered periods,
// rounded to cents. Rounding remainders are not reassigned: 100.00 over
// three periods yields 33.33 per period, leaving a one cent gap. This
// mirrors how the books have always been kept.
func Distribute(actualFee float64, totalPeriods int) float64 {
	if totalPeriods <= 0 {
		return 0
	}
	amount := decimal.NewFromFloat(actualFee).
		Div(decimal.NewFromInt(int64(totalPeriods))).
		Round(2)
	result, _ := amount.Float64()
	return result
}
