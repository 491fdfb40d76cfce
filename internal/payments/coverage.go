package payments

import (
	"errors"

	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/types"
)

var (
	ErrNoCoverage        = errors.New("payment has no applied period")
	ErrAmbiguousCoverage = errors.New("payment populates both month and quarter ranges")
)

// Coverage derives the billing coverage range from a payment's applied
// period columns. Exactly one of the month-range or quarter-range groups may
// be populated; a missing end period means the payment covers the start
// period only.
func Coverage(p *types.Payment) (billing.CoverageRange, error) {
	monthly := p.AppliedStartMonth != nil && p.AppliedStartMonthYear != nil
	quarterly := p.AppliedStartQuarter != nil && p.AppliedStartQuarterYear != nil

	switch {
	case monthly && quarterly:
		return billing.CoverageRange{}, ErrAmbiguousCoverage
	case monthly:
		start := billing.MonthlyPeriod(*p.AppliedStartMonthYear, *p.AppliedStartMonth)
		var end *billing.Period
		if p.AppliedEndMonth != nil && p.AppliedEndMonthYear != nil {
			e := billing.MonthlyPeriod(*p.AppliedEndMonthYear, *p.AppliedEndMonth)
			end = &e
		}
		return billing.NewCoverageRange(start, end)
	case quarterly:
		start := billing.QuarterlyPeriod(*p.AppliedStartQuarterYear, *p.AppliedStartQuarter)
		var end *billing.Period
		if p.AppliedEndQuarter != nil && p.AppliedEndQuarterYear != nil {
			e := billing.QuarterlyPeriod(*p.AppliedEndQuarterYear, *p.AppliedEndQuarter)
			end = &e
		}
		return billing.NewCoverageRange(start, end)
	default:
		return billing.CoverageRange{}, ErrNoCoverage
	}
}

// IsSplit reports whether the payment's applied range spans more than one
// period. Payments with no resolvable coverage are not split.
func IsSplit(p *types.Payment) bool {
	coverage, err := Coverage(p)
	if err != nil {
		return false
	}
	return coverage.IsSplit()
}
