package types

import (
	"time"

	"gorm.io/gorm"
)

// Document is a supporting record (fee statement, invoice, correspondence)
// received from a provider. Storage of the file itself is external; only the
// location and descriptive metadata are tracked here.
type Document struct {
	DocumentID   uint           `gorm:"primaryKey" json:"document_id"`
	ReferenceID  string         `gorm:"uniqueIndex" json:"reference_id"`
	ProviderID   uint           `gorm:"index" json:"provider_id"`
	DocumentType string         `json:"document_type"`
	ReceivedDate string         `json:"received_date"` // YYYY-MM-DD
	FileName     string         `json:"file_name"`
	FilePath     string         `json:"file_path"`
	Metadata     *string        `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// DocumentClient links a document to a client it concerns
type DocumentClient struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"index:idx_document_client" json:"document_id"`
	ClientID   uint      `gorm:"index:idx_document_client" json:"client_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// DocumentPayment links a document to the payment it evidences
type DocumentPayment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PaymentID  uint      `gorm:"index:idx_document_payment" json:"payment_id"`
	DocumentID uint      `gorm:"index:idx_document_payment" json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
}
