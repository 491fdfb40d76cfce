package providers

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

func (d *Database) CreateProvider(provider *types.Provider) error {
	return d.db.Create(provider).Error
}

func (d *Database) GetProvider(providerID uint) (*types.Provider, error) {
	var provider types.Provider
	if err := d.db.Where("provider_id = ?", providerID).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &provider, nil
}

func (d *Database) UpdateProvider(provider *types.Provider) error {
	return d.db.Save(provider).Error
}

// DeleteProvider soft deletes a provider
func (d *Database) DeleteProvider(providerID uint) error {
	result := d.db.Where("provider_id = ?", providerID).Delete(&types.Provider{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFilter is the finite set of filters the provider listing supports
type ListFilter struct {
	Name   *string
	Limit  int
	Offset int
}

// List returns providers matching the filter, ordered by name
func (d *Database) List(filter ListFilter) ([]types.Provider, int64, error) {
	query := d.db.Model(&types.Provider{})

	if filter.Name != nil {
		query = query.Where("provider_name LIKE ?", "%"+*filter.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var providers []types.Provider
	err := query.Order("provider_name ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&providers).Error
	if err != nil {
		return nil, 0, err
	}
	return providers, total, nil
}
