package calendar

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/database"
	"github.com/summitfg/planfee-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memoryDSN gives each test its own shared-cache in-memory database so every
// pooled connection sees the same tables
func memoryDSN(t *testing.T) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
}

// setupDB opens an in-memory store with the full seeded billing calendar
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// setupShortDB opens a store whose calendar covers only a single year, for
// exercising the coverage failure path
func setupShortDB(t *testing.T, year int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.CalendarPeriod{}))

	for month := 1; month <= 12; month++ {
		period := billing.MonthlyPeriod(year, month)
		quarter := billing.QuarterlyPeriod(year, (month-1)/3+1)
		require.NoError(t, db.Create(&types.CalendarPeriod{
			PeriodDate:            fmt.Sprintf("%04d-%02d-01", year, month),
			Year:                  year,
			Month:                 month,
			Quarter:               quarter.Index,
			PeriodKeyMonthly:      period.Key(),
			PeriodKeyQuarterly:    quarter.Key(),
			DisplayLabelMonthly:   period.Label(),
			DisplayLabelQuarterly: quarter.Label(),
		}).Error)
	}
	return db
}

func TestRefreshFlagsStampsAnchor(t *testing.T) {
	db := NewDatabase(setupDB(t))
	anchor := billing.ComputeAnchor(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, db.RefreshFlags(anchor))

	currentMonth, err := db.GetFlagged(FlagCurrentMonthly)
	require.NoError(t, err)
	require.NotNil(t, currentMonth)
	assert.Equal(t, 202405, currentMonth.PeriodKeyMonthly)
	assert.Equal(t, "May 2024", currentMonth.DisplayLabelMonthly)

	previousMonth, err := db.GetFlagged(FlagPreviousMonth)
	require.NoError(t, err)
	require.NotNil(t, previousMonth)
	assert.Equal(t, 202404, previousMonth.PeriodKeyMonthly)

	currentQuarter, err := db.GetFlagged(FlagCurrentQuarterly)
	require.NoError(t, err)
	require.NotNil(t, currentQuarter)
	assert.Equal(t, 20241, currentQuarter.PeriodKeyQuarterly)

	previousQuarter, err := db.GetFlagged(FlagPreviousQuarter)
	require.NoError(t, err)
	require.NotNil(t, previousQuarter)
	assert.Equal(t, 20234, previousQuarter.PeriodKeyQuarterly)
}

func TestRefreshFlagsQuarterlyOnFirstMonth(t *testing.T) {
	db := NewDatabase(setupDB(t))
	anchor := billing.ComputeAnchor(time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC))

	require.NoError(t, db.RefreshFlags(anchor))

	currentQuarter, err := db.GetFlagged(FlagCurrentQuarterly)
	require.NoError(t, err)
	require.NotNil(t, currentQuarter)
	assert.Equal(t, 20242, currentQuarter.PeriodKeyQuarterly)
	assert.Equal(t, 4, currentQuarter.Month)

	previousQuarter, err := db.GetFlagged(FlagPreviousQuarter)
	require.NoError(t, err)
	require.NotNil(t, previousQuarter)
	assert.Equal(t, 1, previousQuarter.Month)
}

func TestRefreshFlagsExactlyOneRowPerFlag(t *testing.T) {
	gormDB := setupDB(t)
	db := NewDatabase(gormDB)
	anchor := billing.ComputeAnchor(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, db.RefreshFlags(anchor))

	for _, flag := range []string{
		FlagCurrentMonthly, FlagCurrentQuarterly, FlagPreviousMonth, FlagPreviousQuarter,
	} {
		var count int64
		require.NoError(t, gormDB.Model(&types.CalendarPeriod{}).
			Where(flag+" = ?", true).Count(&count).Error)
		assert.Equal(t, int64(1), count, "flag %s", flag)
	}
}

func TestRefreshFlagsIdempotent(t *testing.T) {
	gormDB := setupDB(t)
	db := NewDatabase(gormDB)
	anchor := billing.ComputeAnchor(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, db.RefreshFlags(anchor))
	require.NoError(t, db.RefreshFlags(anchor))

	var count int64
	require.NoError(t, gormDB.Model(&types.CalendarPeriod{}).
		Where("is_current_monthly = ?", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRefreshFlagsMovesWithTheDate(t *testing.T) {
	db := NewDatabase(setupDB(t))

	june := billing.ComputeAnchor(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, db.RefreshFlags(june))

	july := billing.ComputeAnchor(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, db.RefreshFlags(july))

	currentMonth, err := db.GetFlagged(FlagCurrentMonthly)
	require.NoError(t, err)
	require.NotNil(t, currentMonth)
	assert.Equal(t, 202406, currentMonth.PeriodKeyMonthly)

	currentQuarter, err := db.GetFlagged(FlagCurrentQuarterly)
	require.NoError(t, err)
	require.NotNil(t, currentQuarter)
	assert.Equal(t, 20242, currentQuarter.PeriodKeyQuarterly)
}

func TestRefreshFlagsCoverageFault(t *testing.T) {
	gormDB := setupShortDB(t, 2024)
	db := NewDatabase(gormDB)

	// January 2024 bills for December 2023, which the short calendar lacks
	anchor := billing.ComputeAnchor(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	err := db.RefreshFlags(anchor)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFlagCoverage)

	// rollback leaves no partial flags behind
	var count int64
	require.NoError(t, gormDB.Model(&types.CalendarPeriod{}).
		Where("is_current_monthly = ? OR is_current_quarterly = ? OR is_previous_month = ? OR is_previous_quarter = ?",
			true, true, true, true).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGetByQuarterlyKeyReturnsFirstMonth(t *testing.T) {
	db := NewDatabase(setupDB(t))

	row, err := db.GetByQuarterlyKey(20243)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 7, row.Month)
	assert.Equal(t, "Q3 2024", row.DisplayLabelQuarterly)
}

func TestGetByMonthlyKey(t *testing.T) {
	db := NewDatabase(setupDB(t))

	row, err := db.GetByMonthlyKey(202405)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "May 2024", row.DisplayLabelMonthly)

	missing, err := db.GetByMonthlyKey(199901)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetFlaggedRejectsUnknownFlag(t *testing.T) {
	db := NewDatabase(setupDB(t))

	_, err := db.GetFlagged("is_payment_due")
	assert.Error(t, err)
}

func TestServiceSummary(t *testing.T) {
	service := NewService(setupDB(t))

	summary := service.Summary(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-06-15", summary.Today)
	assert.Equal(t, 202405, summary.CurrentMonthlyKey)
	assert.Equal(t, "May 2024", summary.CurrentMonthlyLabel)
	assert.Equal(t, 20241, summary.CurrentQuarterlyKey)
	assert.Equal(t, "Q1 2024", summary.CurrentQuarterlyLabel)
	assert.Equal(t, 202404, summary.PreviousMonthlyKey)
	assert.Equal(t, 20234, summary.PreviousQuarterlyKey)
}
