package contracts

import (
	"errors"

	"github.com/summitfg/planfee-api/internal/types"
	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateContract(contract *types.Contract) error {
	return d.db.Create(contract).Error
}

func (d *Database) GetContract(contractID uint) (*types.Contract, error) {
	var contract types.Contract
	if err := d.db.Where("contract_id = ?", contractID).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

func (d *Database) UpdateContract(contract *types.Contract) error {
	return d.db.Save(contract).Error
}

// DeleteContract soft deletes a contract
func (d *Database) DeleteContract(contractID uint) error {
	result := d.db.Where("contract_id = ?", contractID).Delete(&types.Contract{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFilter is the finite set of filters the contract listing supports
type ListFilter struct {
	ClientID        *uint
	ProviderID      *uint
	PaymentSchedule *string
	IsActive        *bool
	Limit           int
	Offset          int
}

// List returns contracts matching the filter
func (d *Database) List(filter ListFilter) ([]types.Contract, int64, error) {
	query := d.db.Model(&types.Contract{})

	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProviderID != nil {
		query = query.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.PaymentSchedule != nil {
		query = query.Where("payment_schedule = ?", *filter.PaymentSchedule)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contracts []types.Contract
	err := query.
		Order("client_id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&contracts).Error
	if err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

// GetActiveContract returns a client's single active contract, or nil when
// the client has none. Reconciliation assumes at most one active contract
// per client; should duplicates ever exist the earliest wins.
func (d *Database) GetActiveContract(clientID uint) (*types.Contract, error) {
	var contract types.Contract
	err := d.db.
		Where("client_id = ? AND is_active = ?", clientID, true).
		Order("contract_id").
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

// GetActiveContracts returns every active contract, optionally scoped to a
// client or schedule
func (d *Database) GetActiveContracts(clientID *uint, schedule *string) ([]types.Contract, error) {
	query := d.db.Where("is_active = ?", true)
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}
	if schedule != nil {
		query = query.Where("payment_schedule = ?", *schedule)
	}

	var contracts []types.Contract
	if err := query.Order("client_id").Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}
