package payments

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/calendar"
	"github.com/summitfg/planfee-api/internal/database"
	"github.com/summitfg/planfee-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func strPtr(s string) *string { return &s }
func fPtr(f float64) *float64 { return &f }
func uintPtr(u uint) *uint    { return &u }
func boolPtr(b bool) *bool    { return &b }

// setupService opens a seeded in-memory store with billing flags stamped for
// a fixed mid-June 2024 date: current month May 2024, current quarter Q1 2024
func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	anchor := billing.ComputeAnchor(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, calendar.NewDatabase(db).RefreshFlags(anchor))

	return NewService(db), db
}

// seedContract creates a client and an active contract for it
func seedContract(t *testing.T, db *gorm.DB, schedule, feeType string, percentRate, flatRate *float64) (*types.Client, *types.Contract) {
	t.Helper()

	client := &types.Client{DisplayName: "Acme Manufacturing 401k"}
	require.NoError(t, db.Create(client).Error)

	contract := &types.Contract{
		ClientID:        client.ClientID,
		FeeType:         &feeType,
		PercentRate:     percentRate,
		FlatRate:        flatRate,
		PaymentSchedule: &schedule,
		EffectiveDate:   strPtr("2024-01-01"),
		IsActive:        true,
	}
	require.NoError(t, db.Create(contract).Error)
	return client, contract
}

func monthlyPayment(contract *types.Contract, year, month int, fee float64) *types.Payment {
	return &types.Payment{
		ContractID:            contract.ContractID,
		ClientID:              contract.ClientID,
		ReceivedDate:          fmt.Sprintf("%04d-%02d-15", year, month),
		ActualFee:             fee,
		AppliedStartMonth:     intPtr(month),
		AppliedStartMonthYear: intPtr(year),
	}
}

func TestCreatePayment(t *testing.T) {
	service, db := setupService(t)
	_, contract := seedContract(t, db, "monthly", "flat", nil, fPtr(500))

	payment := monthlyPayment(contract, 2024, 5, 500)
	require.NoError(t, service.CreatePayment(payment))

	assert.NotZero(t, payment.PaymentID)
	assert.NotEmpty(t, payment.ReferenceID)

	stored, err := service.db.GetPayment(payment.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 500.0, stored.ActualFee)
}

func TestCreatePaymentRequiresReceivedDate(t *testing.T) {
	service, db := setupService(t)
	_, contract := seedContract(t, db, "monthly", "flat", nil, fPtr(500))

	payment := monthlyPayment(contract, 2024, 5, 500)
	payment.ReceivedDate = ""

	assert.ErrorIs(t, service.CreatePayment(payment), ErrMissingReceived)
}

func TestCreatePaymentUnknownContract(t *testing.T) {
	service, _ := setupService(t)

	payment := &types.Payment{
		ContractID:            9999,
		ReceivedDate:          "2024-05-15",
		ActualFee:             500,
		AppliedStartMonth:     intPtr(5),
		AppliedStartMonthYear: intPtr(2024),
	}

	assert.ErrorIs(t, service.CreatePayment(payment), ErrContractNotFound)
}

func TestCreatePaymentScheduleMismatch(t *testing.T) {
	service, db := setupService(t)
	_, contract := seedContract(t, db, "quarterly", "flat", nil, fPtr(1500))

	// monthly coverage against a quarterly contract
	payment := monthlyPayment(contract, 2024, 5, 1500)

	assert.ErrorIs(t, service.CreatePayment(payment), ErrScheduleMismatch)
}

func TestCreatePaymentNoCoverage(t *testing.T) {
	service, db := setupService(t)
	_, contract := seedContract(t, db, "monthly", "flat", nil, fPtr(500))

	payment := &types.Payment{
		ContractID:   contract.ContractID,
		ClientID:     contract.ClientID,
		ReceivedDate: "2024-05-15",
		ActualFee:    500,
	}

	assert.ErrorIs(t, service.CreatePayment(payment), ErrNoCoverage)
}

func TestUpdatePaymentRevalidatesCoverage(t *testing.T) {
	service, db := setupService(t)
	_, contract := seedContract(t, db, "monthly", "flat", nil, fPtr(500))

	payment := monthlyPayment(contract, 2024, 5, 500)
	require.NoError(t, service.CreatePayment(payment))

	// extending the range backwards is invalid
	_, err := service.UpdatePayment(payment.PaymentID, UpdateRequest{
		AppliedEndMonth:     intPtr(3),
		AppliedEndMonthYear: intPtr(2024),
	})
	assert.ErrorIs(t, err, billing.ErrInvalidRange)
}

func TestUpdatePaymentAppliesFields(t *testing.T) {
	service, db := setupService(t)
	_, contract := seedContract(t, db, "monthly", "flat", nil, fPtr(500))

	payment := monthlyPayment(contract, 2024, 5, 500)
	require.NoError(t, service.CreatePayment(payment))

	updated, err := service.UpdatePayment(payment.PaymentID, UpdateRequest{
		ActualFee: fPtr(520),
		Method:    strPtr("wire"),
	})

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 520.0, updated.ActualFee)
	require.NotNil(t, updated.Method)
	assert.Equal(t, "wire", *updated.Method)
	assert.Equal(t, payment.ReferenceID, updated.ReferenceID)
}

func TestUpdatePaymentNotFound(t *testing.T) {
	service, _ := setupService(t)

	updated, err := service.UpdatePayment(12345, UpdateRequest{ActualFee: fPtr(1)})

	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestDeletePaymentSoftDeletes(t *testing.T) {
	service, db := setupService(t)
	_, contract := seedContract(t, db, "monthly", "flat", nil, fPtr(500))

	payment := monthlyPayment(contract, 2024, 5, 500)
	require.NoError(t, service.CreatePayment(payment))
	require.NoError(t, service.db.DeletePayment(payment.PaymentID))

	gone, err := service.db.GetPayment(payment.PaymentID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// the row survives under soft delete
	var count int64
	require.NoError(t, db.Unscoped().Model(&types.Payment{}).
		Where("payment_id = ?", payment.PaymentID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, service.db.DeletePayment(payment.PaymentID), gorm.ErrRecordNotFound)
}

func TestListPaymentsSplitFilter(t *testing.T) {
	service, db := setupService(t)
	_, contract := seedContract(t, db, "monthly", "flat", nil, fPtr(500))

	single := monthlyPayment(contract, 2024, 3, 500)
	require.NoError(t, service.CreatePayment(single))

	split := monthlyPayment(contract, 2024, 4, 1000)
	split.AppliedEndMonth = intPtr(5)
	split.AppliedEndMonthYear = intPtr(2024)
	require.NoError(t, service.CreatePayment(split))

	splits, total, err := service.ListPayments(ListFilter{Limit: 100}, boolPtr(true))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, splits, 1)
	assert.Equal(t, split.PaymentID, splits[0].PaymentID)

	singles, total, err := service.ListPayments(ListFilter{Limit: 100}, boolPtr(false))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, singles, 1)
	assert.Equal(t, single.PaymentID, singles[0].PaymentID)
}

func TestListPaymentsFilters(t *testing.T) {
	service, db := setupService(t)
	_, contract := seedContract(t, db, "monthly", "flat", nil, fPtr(500))

	early := monthlyPayment(contract, 2024, 1, 500)
	require.NoError(t, service.CreatePayment(early))
	late := monthlyPayment(contract, 2024, 5, 500)
	require.NoError(t, service.CreatePayment(late))

	rows, total, err := service.ListPayments(ListFilter{
		ClientID: uintPtr(contract.ClientID),
		MinDate:  strPtr("2024-03-01"),
		Limit:    100,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, late.PaymentID, rows[0].PaymentID)
}

func TestMostRecentAssets(t *testing.T) {
	service, db := setupService(t)
	_, contract := seedContract(t, db, "monthly", "percentage", fPtr(0.001), nil)

	older := monthlyPayment(contract, 2024, 3, 900)
	older.TotalAssets = fPtr(900_000)
	require.NoError(t, service.CreatePayment(older))

	newer := monthlyPayment(contract, 2024, 4, 1000)
	newer.TotalAssets = fPtr(1_000_000)
	require.NoError(t, service.CreatePayment(newer))

	noAssets := monthlyPayment(contract, 2024, 5, 1000)
	require.NoError(t, service.CreatePayment(noAssets))

	assets, err := service.db.MostRecentAssets(contract.ClientID)
	require.NoError(t, err)
	require.NotNil(t, assets)
	assert.Equal(t, 1_000_000.0, *assets)
}
