package billing

import "github.com/shopspring/decimal"

// Fee types recognised on a contract
const (
	FeeTypePercentage = "percentage"
	FeeTypeFlat       = "flat"
	FeeTypeFixed      = "fixed"
)

// Variance classifications
const (
	VarianceWithinTarget = "Within Target"
	VarianceOverpaid     = "Overpaid"
	VarianceUnderpaid    = "Underpaid"
)

// varianceTolerance is the absolute dollar band treated as on-target
var varianceTolerance = decimal.NewFromInt(3)

// ContractTerms are the fee terms of a contract needed to compute what a
// client should have paid
type ContractTerms struct {
	FeeType     string
	PercentRate *float64
	FlatRate    *float64
}

// FeeEstimate is the result of an expected-fee computation. A nil
// ExpectedFee means the fee could not be determined from the available
// data; IsEstimated marks fees derived from historical rather than
// reported assets.
type FeeEstimate struct {
	ExpectedFee *float64 `json:"expected_fee"`
	IsEstimated bool     `json:"is_estimated"`
}

// ExpectedFee computes the fee a contract implies for a period.
//
// Percentage contracts need assets under management: when aum is missing the
// most recent known value (fallbackAUM, from payment history) substitutes and
// the result is flagged estimated. With neither available the fee is unknown
// but still flagged estimated, so callers surface "we don't know" instead of
// zero. Flat contracts just return the flat rate. An unrecognised fee type is
// a cannot-compute result, not an error.
func ExpectedFee(terms ContractTerms, aum, fallbackAUM *float64) FeeEstimate {
	switch terms.FeeType {
	case FeeTypePercentage:
		if terms.PercentRate == nil {
			return FeeEstimate{}
		}
		if aum == nil {
			if fallbackAUM == nil {
				return FeeEstimate{IsEstimated: true}
			}
			fee := *fallbackAUM * *terms.PercentRate
			return FeeEstimate{ExpectedFee: &fee, IsEstimated: true}
		}
		fee := *aum * *terms.PercentRate
		return FeeEstimate{ExpectedFee: &fee}

	case FeeTypeFlat, FeeTypeFixed:
		if terms.FlatRate == nil {
			return FeeEstimate{}
		}
		fee := *terms.FlatRate
		return FeeEstimate{ExpectedFee: &fee}

	default:
		return FeeEstimate{}
	}
}

// Variance compares a payment against its contract's expected fee
type Variance struct {
	Amount         *float64 `json:"variance_amount"`
	Percent        *float64 `json:"variance_percent"`
	Classification *string  `json:"variance_classification"`
}

// ComputeVariance calculates how far a payment deviates from the contracted
// fee. Split payments are never scored: their fee spans several periods so a
// single-period comparison is meaningless, and every field comes back nil.
// The same applies when the expected fee cannot be computed from the
// payment's own reported assets.
func ComputeVariance(actualFee float64, isSplit bool, terms ContractTerms, totalAssets *float64) Variance {
	if isSplit {
		return Variance{}
	}

	estimate := ExpectedFee(terms, totalAssets, nil)
	if estimate.ExpectedFee == nil {
		return Variance{}
	}

	expected := decimal.NewFromFloat(*estimate.ExpectedFee)
	amount := decimal.NewFromFloat(actualFee).Sub(expected)

	var percent decimal.Decimal
	if !expected.IsZero() {
		percent = amount.Div(expected).Mul(decimal.NewFromInt(100))
	}

	classification := VarianceWithinTarget
	switch {
	case amount.Abs().LessThanOrEqual(varianceTolerance):
		classification = VarianceWithinTarget
	case amount.IsPositive():
		classification = VarianceOverpaid
	default:
		classification = VarianceUnderpaid
	}

	amountF, _ := amount.Float64()
	percentF, _ := percent.Float64()
	return Variance{
		Amount:         &amountF,
		Percent:        &percentF,
		Classification: &classification,
	}
}
