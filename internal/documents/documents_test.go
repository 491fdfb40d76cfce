package documents

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summitfg/planfee-api/internal/database"
	"github.com/summitfg/planfee-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db)
}

func seedDocument(t *testing.T, service *Service) *types.Document {
	t.Helper()
	doc := &types.Document{
		ProviderID:   1,
		DocumentType: "fee_statement",
		ReceivedDate: "2024-05-03",
		FileName:     "acme-q1-fees.pdf",
		FilePath:     "statements/2024/acme-q1-fees.pdf",
	}
	require.NoError(t, service.CreateDocument(doc))
	return doc
}

func TestCreateDocumentAssignsReference(t *testing.T) {
	service := setupService(t)

	doc := seedDocument(t, service)

	assert.NotZero(t, doc.DocumentID)
	assert.NotEmpty(t, doc.ReferenceID)

	byRef, err := service.db.GetDocumentByReference(doc.ReferenceID)
	require.NoError(t, err)
	require.NotNil(t, byRef)
	assert.Equal(t, doc.DocumentID, byRef.DocumentID)
}

func TestCreateDocumentValidation(t *testing.T) {
	service := setupService(t)

	err := service.CreateDocument(&types.Document{FileName: "x.pdf"})
	assert.ErrorIs(t, err, ErrMissingReceived)

	err = service.CreateDocument(&types.Document{ReceivedDate: "2024-05-03"})
	assert.ErrorIs(t, err, ErrMissingFileName)
}

func TestDocumentClientLinks(t *testing.T) {
	service := setupService(t)
	doc := seedDocument(t, service)

	_, err := service.LinkClient(doc.DocumentID, 7)
	require.NoError(t, err)

	docs, err := service.db.GetDocumentsByClient(7)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.DocumentID, docs[0].DocumentID)

	require.NoError(t, service.db.DeleteClientLink(doc.DocumentID, 7))

	docs, err = service.db.GetDocumentsByClient(7)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLinkRequiresExistingDocument(t *testing.T) {
	service := setupService(t)

	_, err := service.LinkClient(999, 1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = service.LinkPayment(999, 1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentPaymentLinks(t *testing.T) {
	service := setupService(t)
	doc := seedDocument(t, service)

	_, err := service.LinkPayment(doc.DocumentID, 12)
	require.NoError(t, err)

	docs, err := service.db.GetDocumentsByPayment(12)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.ErrorIs(t, service.db.DeletePaymentLink(doc.DocumentID, 99), gorm.ErrRecordNotFound)
	require.NoError(t, service.db.DeletePaymentLink(doc.DocumentID, 12))
}

func TestDeleteDocumentRemovesLinks(t *testing.T) {
	service := setupService(t)
	doc := seedDocument(t, service)

	_, err := service.LinkClient(doc.DocumentID, 7)
	require.NoError(t, err)
	_, err = service.LinkPayment(doc.DocumentID, 12)
	require.NoError(t, err)

	require.NoError(t, service.db.DeleteDocument(doc.DocumentID))

	gone, err := service.db.GetDocument(doc.DocumentID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	docs, err := service.db.GetDocumentsByClient(7)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestListDocumentsFilters(t *testing.T) {
	service := setupService(t)

	require.NoError(t, service.CreateDocument(&types.Document{
		ProviderID:   1,
		DocumentType: "fee_statement",
		ReceivedDate: "2024-03-01",
		FileName:     "a.pdf",
	}))
	require.NoError(t, service.CreateDocument(&types.Document{
		ProviderID:   2,
		DocumentType: "invoice",
		ReceivedDate: "2024-05-01",
		FileName:     "b.pdf",
	}))

	docType := "invoice"
	rows, total, err := service.db.List(ListFilter{DocumentType: &docType, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "b.pdf", rows[0].FileName)

	minDate := "2024-04-01"
	rows, total, err = service.db.List(ListFilter{MinDate: &minDate, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "b.pdf", rows[0].FileName)
}
