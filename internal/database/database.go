package database

import (
	"fmt"

	"github.com/summitfg/planfee-api/internal/database/migrations"
	"github.com/summitfg/planfee-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase initializes and returns a new GORM DB connection
func NewDatabase(path string) (*gorm.DB, error) {
	if path == "" {
		path = "planfee.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs the schema migrations and seeds the billing calendar.
// Split out from NewDatabase so tests can run it against their own handle.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&types.Client{},
		&types.Contact{},
		&types.ClientProvider{},
		&types.Provider{},
		&types.Contract{},
		&types.Payment{},
		&types.Document{},
		&types.DocumentClient{},
		&types.DocumentPayment{},
		&types.CalendarPeriod{},
	)
	if err != nil {
		return err
	}

	if err := migrations.SeedBillingCalendar(db); err != nil {
		return fmt.Errorf("failed to seed billing calendar: %w", err)
	}

	return nil
}
