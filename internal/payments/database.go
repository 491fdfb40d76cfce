package payments

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

func (d *Database) CreatePayment(payment *types.Payment) error {
	return d.db.Create(payment).Error
}

func (d *Database) GetPayment(paymentID uint) (*types.Payment, error) {
	var payment types.Payment
	if err := d.db.Where("payment_id = ?", paymentID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (d *Database) UpdatePayment(payment *types.Payment) error {
	return d.db.Save(payment).Error
}

// DeletePayment soft deletes a payment; the row survives for history
func (d *Database) DeletePayment(paymentID uint) error {
	result := d.db.Where("payment_id = ?", paymentID).Delete(&types.Payment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFilter is the finite set of filters the payment listing supports
type ListFilter struct {
	ClientID   *uint
	ContractID *uint
	Method     *string
	MinDate    *string
	MaxDate    *string
	Limit      int
	Offset     int
}

// List returns payments matching the filter, newest received first
func (d *Database) List(filter ListFilter) ([]types.Payment, int64, error) {
	query := d.db.Model(&types.Payment{})

	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.MinDate != nil {
		query = query.Where("received_date >= ?", *filter.MinDate)
	}
	if filter.MaxDate != nil {
		query = query.Where("received_date <= ?", *filter.MaxDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []types.Payment
	err := query.
		Order("received_date DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// GetPaymentsByClient returns all of a client's payments, newest first
func (d *Database) GetPaymentsByClient(clientID uint) ([]types.Payment, error) {
	var payments []types.Payment
	err := d.db.
		Where("client_id = ?", clientID).
		Order("received_date DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// MostRecentAssets returns the latest known assets under management for a
// client from payment history, or nil when no payment ever reported assets
func (d *Database) MostRecentAssets(clientID uint) (*float64, error) {
	var payment types.Payment
	err := d.db.
		Where("client_id = ? AND total_assets IS NOT NULL", clientID).
		Order("received_date DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return payment.TotalAssets, nil
}

// GetContract fetches the contract a payment is booked against
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

// GetActiveContracts returns every active contract, optionally for one client
func (d *Database) GetActiveContracts(clientID *uint) ([]types.Contract, error) {
	query := d.db.Where("is_active = ?", true)
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}

	var contracts []types.Contract
	if err := query.Order("client_id").Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// GetClientName resolves a client's display name; empty when unknown
func (d *Database) GetClientName(clientID uint) (string, error) {
	var client types.Client
	if err := d.db.Where("client_id = ?", clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return client.DisplayName, nil
}
