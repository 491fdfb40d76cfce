package contracts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summitfg/planfee-api/internal/types"
	"gorm.io/gorm"
)

// seedActiveContract creates a client with one active contract starting at
// the given effective date
func seedActiveContract(t *testing.T, service *Service, db *gorm.DB, schedule, effective string) (*types.Client, *types.Contract) {
	t.Helper()

	client := seedClient(t, db, "Harborview Dental 401k")
	contract := &types.Contract{
		ClientID:        client.ClientID,
		FeeType:         strPtr("flat"),
		FlatRate:        fPtr(500),
		PaymentSchedule: &schedule,
		EffectiveDate:   &effective,
		IsActive:        true,
	}
	require.NoError(t, service.CreateContract(contract))
	return client, contract
}

func seedMonthlyPayment(t *testing.T, db *gorm.DB, contract *types.Contract, year, month int) {
	t.Helper()
	require.NoError(t, db.Create(&types.Payment{
		ContractID:            contract.ContractID,
		ClientID:              contract.ClientID,
		ReferenceID:           fmt.Sprintf("ref-%d-%02d", year, month),
		ReceivedDate:          "2024-06-01",
		ActualFee:             500,
		AppliedStartMonth:     intPtr(month),
		AppliedStartMonthYear: intPtr(year),
	}).Error)
}

func TestExpectedPeriodsMonthly(t *testing.T) {
	// flags stamped for mid-June 2024: current billing month is May 2024
	service, db := setupService(t)
	client, _ := seedActiveContract(t, service, db, "monthly", "2024-01-01")

	rows, err := service.ExpectedPeriods(uintPtr(client.ClientID), nil)

	require.NoError(t, err)
	require.Len(t, rows, 5) // Jan through May 2024
	assert.Equal(t, 202405, rows[0].PeriodKey)
	assert.Equal(t, "May 2024", rows[0].PeriodLabel)
	assert.Equal(t, 202401, rows[4].PeriodKey)
	for _, row := range rows {
		assert.Equal(t, "monthly", row.PaymentSchedule)
		assert.Equal(t, client.ClientID, row.ClientID)
	}
}

func TestExpectedPeriodsQuarterly(t *testing.T) {
	// current billing quarter at the stamped date is Q1 2024
	service, db := setupService(t)
	client, _ := seedActiveContract(t, service, db, "quarterly", "2023-04-01")

	rows, err := service.ExpectedPeriods(uintPtr(client.ClientID), nil)

	require.NoError(t, err)
	require.Len(t, rows, 4) // Q2 2023 through Q1 2024
	assert.Equal(t, 20241, rows[0].PeriodKey)
	assert.Equal(t, "Q1 2024", rows[0].PeriodLabel)
	assert.Equal(t, 20232, rows[3].PeriodKey)
}

func TestExpectedPeriodsNoActiveContract(t *testing.T) {
	service, db := setupService(t)
	client := seedClient(t, db, "No Contract Yet LLC")

	rows, err := service.ExpectedPeriods(uintPtr(client.ClientID), nil)

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExpectedPeriodsContractStartsAfterCurrent(t *testing.T) {
	service, db := setupService(t)
	client, _ := seedActiveContract(t, service, db, "monthly", "2024-06-01")

	// effective June 2024, but the current billing month is May 2024
	rows, err := service.ExpectedPeriods(uintPtr(client.ClientID), nil)

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMissingPeriodsFindsGaps(t *testing.T) {
	service, db := setupService(t)
	client, contract := seedActiveContract(t, service, db, "monthly", "2024-01-01")

	// pay January, March, and May; February and April are gaps
	seedMonthlyPayment(t, db, contract, 2024, 1)
	seedMonthlyPayment(t, db, contract, 2024, 3)
	seedMonthlyPayment(t, db, contract, 2024, 5)

	rows, err := service.MissingPeriods(uintPtr(client.ClientID), nil)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 202404, rows[0].PeriodKey)
	assert.Equal(t, "April 2024", rows[0].PeriodLabel)
	assert.Equal(t, 202402, rows[1].PeriodKey)
	for _, row := range rows {
		assert.Equal(t, "Missing", row.Status)
	}
}

func TestMissingPeriodsEverythingUnpaid(t *testing.T) {
	service, db := setupService(t)
	client, _ := seedActiveContract(t, service, db, "monthly", "2023-01-01")

	rows, err := service.MissingPeriods(uintPtr(client.ClientID), nil)

	require.NoError(t, err)
	// Jan 2023 through May 2024
	require.Len(t, rows, 17)
	assert.Equal(t, 202405, rows[0].PeriodKey)
	assert.Equal(t, 202301, rows[16].PeriodKey)
}

func TestMissingPeriodsSplitPaymentCovers(t *testing.T) {
	service, db := setupService(t)
	client, contract := seedActiveContract(t, service, db, "monthly", "2024-01-01")

	// one check covering January through April
	require.NoError(t, db.Create(&types.Payment{
		ContractID:            contract.ContractID,
		ClientID:              contract.ClientID,
		ReferenceID:           "split-ref",
		ReceivedDate:          "2024-05-01",
		ActualFee:             2000,
		AppliedStartMonth:     intPtr(1),
		AppliedStartMonthYear: intPtr(2024),
		AppliedEndMonth:       intPtr(4),
		AppliedEndMonthYear:   intPtr(2024),
	}).Error)

	rows, err := service.MissingPeriods(uintPtr(client.ClientID), nil)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 202405, rows[0].PeriodKey)
}

func TestMissingPeriodsFullyPaid(t *testing.T) {
	service, db := setupService(t)
	client, contract := seedActiveContract(t, service, db, "monthly", "2024-03-01")

	seedMonthlyPayment(t, db, contract, 2024, 3)
	seedMonthlyPayment(t, db, contract, 2024, 4)
	seedMonthlyPayment(t, db, contract, 2024, 5)

	rows, err := service.MissingPeriods(uintPtr(client.ClientID), nil)

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMissingPeriodsScheduleFilter(t *testing.T) {
	service, db := setupService(t)
	client, _ := seedActiveContract(t, service, db, "monthly", "2024-03-01")

	rows, err := service.MissingPeriods(uintPtr(client.ClientID), strPtr("quarterly"))

	require.NoError(t, err)
	assert.Empty(t, rows)
}
