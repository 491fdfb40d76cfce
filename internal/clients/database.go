package clients

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

func (d *Database) CreateClient(client *types.Client) error {
	return d.db.Create(client).Error
}

func (d *Database) GetClient(clientID uint) (*types.Client, error) {
	var client types.Client
	if err := d.db.Where("client_id = ?", clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (d *Database) UpdateClient(client *types.Client) error {
	return d.db.Save(client).Error
}

// DeleteClient soft deletes a client
func (d *Database) DeleteClient(clientID uint) error {
	result := d.db.Where("client_id = ?", clientID).Delete(&types.Client{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFilter is the finite set of filters the client listing supports
type ListFilter struct {
	DisplayName *string
	Limit       int
	Offset      int
}

// List returns clients matching the filter, ordered by display name
func (d *Database) List(filter ListFilter) ([]types.Client, int64, error) {
	query := d.db.Model(&types.Client{})

	if filter.DisplayName != nil {
		query = query.Where("display_name LIKE ?", "%"+*filter.DisplayName+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []types.Client
	err := query.Order("display_name ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (d *Database) CreateContact(contact *types.Contact) error {
	return d.db.Create(contact).Error
}

func (d *Database) GetContact(contactID uint) (*types.Contact, error) {
	var contact types.Contact
	if err := d.db.Where("contact_id = ?", contactID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (d *Database) UpdateContact(contact *types.Contact) error {
	return d.db.Save(contact).Error
}

func (d *Database) DeleteContact(contactID uint) error {
	result := d.db.Where("contact_id = ?", contactID).Delete(&types.Contact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetContactsByClient returns every contact on file for a client
func (d *Database) GetContactsByClient(clientID uint, contactType *string) ([]types.Contact, error) {
	query := d.db.Where("client_id = ?", clientID)
	if contactType != nil {
		query = query.Where("contact_type = ?", *contactType)
	}

	var contacts []types.Contact
	if err := query.Order("contact_id ASC").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (d *Database) CreateClientProvider(link *types.ClientProvider) error {
	return d.db.Create(link).Error
}

func (d *Database) GetClientProvider(id uint) (*types.ClientProvider, error) {
	var link types.ClientProvider
	if err := d.db.Where("id = ?", id).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (d *Database) UpdateClientProvider(link *types.ClientProvider) error {
	return d.db.Save(link).Error
}

func (d *Database) DeleteClientProvider(id uint) error {
	result := d.db.Where("id = ?", id).Delete(&types.ClientProvider{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetProvidersByClient returns the provider relationships for a client
func (d *Database) GetProvidersByClient(clientID uint, isActive *bool) ([]types.ClientProvider, error) {
	query := d.db.Where("client_id = ?", clientID)
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	var links []types.ClientProvider
	if err := query.Order("id ASC").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}
