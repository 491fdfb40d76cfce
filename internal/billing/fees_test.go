package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestExpectedFeePercentage(t *testing.T) {
	terms := ContractTerms{FeeType: FeeTypePercentage, PercentRate: floatPtr(0.0015)}

	estimate := ExpectedFee(terms, floatPtr(1_000_000), nil)

	require.NotNil(t, estimate.ExpectedFee)
	assert.InDelta(t, 1500.0, *estimate.ExpectedFee, 0.001)
	assert.False(t, estimate.IsEstimated)
}

func TestExpectedFeePercentageFallbackAssets(t *testing.T) {
	terms := ContractTerms{FeeType: FeeTypePercentage, PercentRate: floatPtr(0.002)}

	estimate := ExpectedFee(terms, nil, floatPtr(500_000))

	require.NotNil(t, estimate.ExpectedFee)
	assert.InDelta(t, 1000.0, *estimate.ExpectedFee, 0.001)
	assert.True(t, estimate.IsEstimated)
}

func TestExpectedFeePercentageNoAssetsAnywhere(t *testing.T) {
	terms := ContractTerms{FeeType: FeeTypePercentage, PercentRate: floatPtr(0.002)}

	estimate := ExpectedFee(terms, nil, nil)

	assert.Nil(t, estimate.ExpectedFee)
	assert.True(t, estimate.IsEstimated)
}

func TestExpectedFeePercentageMissingRate(t *testing.T) {
	terms := ContractTerms{FeeType: FeeTypePercentage}

	estimate := ExpectedFee(terms, floatPtr(1_000_000), nil)

	assert.Nil(t, estimate.ExpectedFee)
	assert.False(t, estimate.IsEstimated)
}

func TestExpectedFeeFlat(t *testing.T) {
	for _, feeType := range []string{FeeTypeFlat, FeeTypeFixed} {
		terms := ContractTerms{FeeType: feeType, FlatRate: floatPtr(2500)}

		estimate := ExpectedFee(terms, nil, nil)

		require.NotNil(t, estimate.ExpectedFee)
		assert.Equal(t, 2500.0, *estimate.ExpectedFee)
		assert.False(t, estimate.IsEstimated)
	}
}

func TestExpectedFeeUnknownType(t *testing.T) {
	estimate := ExpectedFee(ContractTerms{FeeType: "hourly"}, floatPtr(100), nil)

	assert.Nil(t, estimate.ExpectedFee)
	assert.False(t, estimate.IsEstimated)
}

func TestComputeVarianceWithinTarget(t *testing.T) {
	terms := ContractTerms{FeeType: FeeTypeFlat, FlatRate: floatPtr(500)}

	variance := ComputeVariance(503, false, terms, nil)

	require.NotNil(t, variance.Classification)
	assert.Equal(t, VarianceWithinTarget, *variance.Classification)
	assert.InDelta(t, 3.0, *variance.Amount, 0.001)
}

func TestComputeVarianceOverpaid(t *testing.T) {
	terms := ContractTerms{FeeType: FeeTypeFlat, FlatRate: floatPtr(500)}

	variance := ComputeVariance(504, false, terms, nil)

	require.NotNil(t, variance.Classification)
	assert.Equal(t, VarianceOverpaid, *variance.Classification)
	assert.InDelta(t, 4.0, *variance.Amount, 0.001)
	assert.InDelta(t, 0.8, *variance.Percent, 0.001)
}

func TestComputeVarianceUnderpaid(t *testing.T) {
	terms := ContractTerms{FeeType: FeeTypeFlat, FlatRate: floatPtr(500)}

	variance := ComputeVariance(496, false, terms, nil)

	require.NotNil(t, variance.Classification)
	assert.Equal(t, VarianceUnderpaid, *variance.Classification)
	assert.InDelta(t, -4.0, *variance.Amount, 0.001)
}

func TestComputeVariancePercentage(t *testing.T) {
	terms := ContractTerms{FeeType: FeeTypePercentage, PercentRate: floatPtr(0.001)}

	variance := ComputeVariance(1010, false, terms, floatPtr(1_000_000))

	require.NotNil(t, variance.Classification)
	assert.Equal(t, VarianceOverpaid, *variance.Classification)
	assert.InDelta(t, 10.0, *variance.Amount, 0.001)
	assert.InDelta(t, 1.0, *variance.Percent, 0.001)
}

func TestComputeVarianceSplitNotScored(t *testing.T) {
	terms := ContractTerms{FeeType: FeeTypeFlat, FlatRate: floatPtr(500)}

	variance := ComputeVariance(1000, true, terms, nil)

	assert.Nil(t, variance.Amount)
	assert.Nil(t, variance.Percent)
	assert.Nil(t, variance.Classification)
}

func TestComputeVarianceNoExpectedFee(t *testing.T) {
	// percentage contract with no reported assets cannot be scored; the
	// historical fallback is deliberately not used here
	terms := ContractTerms{FeeType: FeeTypePercentage, PercentRate: floatPtr(0.001)}

	variance := ComputeVariance(1000, false, terms, nil)

	assert.Nil(t, variance.Classification)
}

func TestComputeVarianceZeroExpected(t *testing.T) {
	terms := ContractTerms{FeeType: FeeTypeFlat, FlatRate: floatPtr(0)}

	variance := ComputeVariance(10, false, terms, nil)

	require.NotNil(t, variance.Classification)
	assert.Equal(t, VarianceOverpaid, *variance.Classification)
	assert.Equal(t, 0.0, *variance.Percent)
}
