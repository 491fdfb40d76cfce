package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeAnchorMidYear(t *testing.T) {
	anchor := ComputeAnchor(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 202405, anchor.CurrentMonth.Key())
	assert.Equal(t, 202404, anchor.PreviousMonth.Key())
	assert.Equal(t, 20241, anchor.CurrentQuarter.Key())
	assert.Equal(t, 20234, anchor.PreviousQuarter.Key())
}

func TestComputeAnchorJanuary(t *testing.T) {
	anchor := ComputeAnchor(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 202312, anchor.CurrentMonth.Key())
	assert.Equal(t, 202311, anchor.PreviousMonth.Key())
	assert.Equal(t, 20234, anchor.CurrentQuarter.Key())
	assert.Equal(t, 20233, anchor.PreviousQuarter.Key())
}

func TestComputeAnchorQuarterBoundary(t *testing.T) {
	// the first day of Q4 still bills for Q3
	anchor := ComputeAnchor(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 202409, anchor.CurrentMonth.Key())
	assert.Equal(t, 20243, anchor.CurrentQuarter.Key())
	assert.Equal(t, 20242, anchor.PreviousQuarter.Key())
}

func TestAnchorCurrent(t *testing.T) {
	anchor := ComputeAnchor(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, anchor.CurrentMonth, anchor.Current(ScheduleMonthly))
	assert.Equal(t, anchor.CurrentQuarter, anchor.Current(ScheduleQuarterly))
}
