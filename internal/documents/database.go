package documents

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

func (d *Database) CreateDocument(doc *types.Document) error {
	return d.db.Create(doc).Error
}

func (d *Database) GetDocument(documentID uint) (*types.Document, error) {
	var doc types.Document
	if err := d.db.Where("document_id = ?", documentID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (d *Database) GetDocumentByReference(referenceID string) (*types.Document, error) {
	var doc types.Document
	if err := d.db.Where("reference_id = ?", referenceID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (d *Database) UpdateDocument(doc *types.Document) error {
	return d.db.Save(doc).Error
}

// DeleteDocument soft deletes a document and removes its link rows
func (d *Database) DeleteDocument(documentID uint) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("document_id = ?", documentID).Delete(&types.Document{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("document_id = ?", documentID).Delete(&types.DocumentClient{}).Error; err != nil {
			return err
		}
		return tx.Where("document_id = ?", documentID).Delete(&types.DocumentPayment{}).Error
	})
}

// ListFilter is the finite set of filters the document listing supports
type ListFilter struct {
	ProviderID   *uint
	DocumentType *string
	MinDate      *string
	MaxDate      *string
	Limit        int
	Offset       int
}

// List returns documents matching the filter, newest received first
func (d *Database) List(filter ListFilter) ([]types.Document, int64, error) {
	query := d.db.Model(&types.Document{})

	if filter.ProviderID != nil {
		query = query.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.DocumentType != nil {
		query = query.Where("document_type = ?", *filter.DocumentType)
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

	var docs []types.Document
	err := query.Order("received_date DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (d *Database) CreateClientLink(link *types.DocumentClient) error {
	return d.db.Create(link).Error
}

func (d *Database) DeleteClientLink(documentID, clientID uint) error {
	result := d.db.Where("document_id = ? AND client_id = ?", documentID, clientID).
		Delete(&types.DocumentClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetDocumentsByClient returns documents linked to a client
func (d *Database) GetDocumentsByClient(clientID uint) ([]types.Document, error) {
	var docs []types.Document
	err := d.db.
		Joins("JOIN document_clients ON document_clients.document_id = documents.document_id").
		Where("document_clients.client_id = ?", clientID).
		Order("documents.received_date DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (d *Database) CreatePaymentLink(link *types.DocumentPayment) error {
	return d.db.Create(link).Error
}

func (d *Database) DeletePaymentLink(documentID, paymentID uint) error {
	result := d.db.Where("document_id = ? AND payment_id = ?", documentID, paymentID).
		Delete(&types.DocumentPayment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetDocumentsByPayment returns documents evidencing a payment
func (d *Database) GetDocumentsByPayment(paymentID uint) ([]types.Document, error) {
	var docs []types.Document
	err := d.db.
		Joins("JOIN document_payments ON document_payments.document_id = documents.document_id").
		Where("document_payments.payment_id = ?", paymentID).
		Order("documents.received_date DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
