package documents

import (
	"errors"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/summitfg/planfee-api/internal/types"
	"github.com/summitfg/planfee-api/pkg/params"
	"github.com/summitfg/planfee-api/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrMissingReceived  = errors.New("received_date is required")
	ErrMissingFileName  = errors.New("file_name is required")
	ErrDocumentNotFound = errors.New("document not found")
)

var logger zerolog.Logger

func init() {
	logger = log.With().Str("component", "documents").Logger()
	if os.Getenv("ENVIRONMENT") != "production" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// Service manages document records and their links to clients and payments.
// The files themselves live outside the system; only metadata is stored.
type Service struct {
	db *Database
}

func NewService(gormDB *gorm.DB) *Service {
	return &Service{db: NewDatabase(gormDB)}
}

// GetDB exposes the database layer for other services
func (s *Service) GetDB() *Database {
	return s.db
}

// CreateDocument validates and stores a document record, assigning it an
// external reference identifier
func (s *Service) CreateDocument(doc *types.Document) error {
	if doc.ReceivedDate == "" {
		return ErrMissingReceived
	}
	if doc.FileName == "" {
		return ErrMissingFileName
	}
	doc.ReferenceID = uuid.New().String()

	if err := s.db.CreateDocument(doc); err != nil {
		return err
	}
	logger.Info().
		Uint("document_id", doc.DocumentID).
		Str("reference_id", doc.ReferenceID).
		Str("document_type", doc.DocumentType).
		Msg("Document recorded")
	return nil
}

// LinkClient attaches a document to a client
func (s *Service) LinkClient(documentID, clientID uint) (*types.DocumentClient, error) {
	doc, err := s.db.GetDocument(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	link := &types.DocumentClient{DocumentID: documentID, ClientID: clientID}
	if err := s.db.CreateClientLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

// LinkPayment attaches a document to a payment
func (s *Service) LinkPayment(documentID, paymentID uint) (*types.DocumentPayment, error) {
	doc, err := s.db.GetDocument(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	link := &types.DocumentPayment{DocumentID: documentID, PaymentID: paymentID}
	if err := s.db.CreatePaymentLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

// GinHandlers contains HTTP handlers for document endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for document endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateDocumentHandler handles POST requests to record documents
func (h *GinHandlers) CreateDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc types.Document
		if err := c.ShouldBindJSON(&doc); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		err := h.service.CreateDocument(&doc)
		switch {
		case err == nil:
			response.Success(c, doc)
		case errors.Is(err, ErrMissingReceived),
			errors.Is(err, ErrMissingFileName):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// GetDocumentHandler handles GET requests for a single document
func (h *GinHandlers) GetDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID, err := params.ID(c, "document_id")
		if err != nil {
			response.BadRequest(c, "Invalid document ID")
			return
		}

		doc, err := h.service.db.GetDocument(documentID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if doc == nil {
			response.NotFound(c, "Document not found")
			return
		}
		response.Success(c, doc)
	}
}

// ListDocumentsHandler handles GET requests for the document listing
func (h *GinHandlers) ListDocumentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID, err := params.Uint(c, "provider_id")
		if err != nil {
			response.BadRequest(c, "Invalid provider_id filter")
			return
		}
		limit, offset := params.Pagination(c)

		docs, total, err := h.service.db.List(ListFilter{
			ProviderID:   providerID,
			DocumentType: params.String(c, "document_type"),
			MinDate:      params.String(c, "min_date"),
			MaxDate:      params.String(c, "max_date"),
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, docs, total)
	}
}

// UpdateDocumentHandler handles PUT requests to amend document metadata.
// The reference identifier is immutable.
func (h *GinHandlers) UpdateDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID, err := params.ID(c, "document_id")
		if err != nil {
			response.BadRequest(c, "Invalid document ID")
			return
		}

		doc, err := h.service.db.GetDocument(documentID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if doc == nil {
			response.NotFound(c, "Document not found")
			return
		}

		referenceID := doc.ReferenceID
		if err := c.ShouldBindJSON(doc); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		doc.DocumentID = documentID
		doc.ReferenceID = referenceID

		if err := h.service.db.UpdateDocument(doc); err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, doc)
	}
}

// DeleteDocumentHandler handles DELETE requests; the record and its links
// are removed together
func (h *GinHandlers) DeleteDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID, err := params.ID(c, "document_id")
		if err != nil {
			response.BadRequest(c, "Invalid document ID")
			return
		}

		if err := h.service.db.DeleteDocument(documentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Document not found")
				return
			}
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, gin.H{"document_id": documentID, "deleted": true})
	}
}

// LinkClientHandler handles POST requests to attach a document to a client
func (h *GinHandlers) LinkClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID, err := params.ID(c, "document_id")
		if err != nil {
			response.BadRequest(c, "Invalid document ID")
			return
		}
		clientID, err := params.ID(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}

		link, err := h.service.LinkClient(documentID, clientID)
		switch {
		case err == nil:
			response.Success(c, link)
		case errors.Is(err, ErrDocumentNotFound):
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// UnlinkClientHandler handles DELETE requests to detach a document from a
// client
func (h *GinHandlers) UnlinkClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID, err := params.ID(c, "document_id")
		if err != nil {
			response.BadRequest(c, "Invalid document ID")
			return
		}
		clientID, err := params.ID(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}

		if err := h.service.db.DeleteClientLink(documentID, clientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Link not found")
				return
			}
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, gin.H{"document_id": documentID, "client_id": clientID, "deleted": true})
	}
}

// ClientDocumentsHandler handles GET requests for a client's documents
func (h *GinHandlers) ClientDocumentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.ID(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}

		docs, err := h.service.db.GetDocumentsByClient(clientID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, docs, int64(len(docs)))
	}
}

// LinkPaymentHandler handles POST requests to attach a document to a payment
func (h *GinHandlers) LinkPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID, err := params.ID(c, "document_id")
		if err != nil {
			response.BadRequest(c, "Invalid document ID")
			return
		}
		paymentID, err := params.ID(c, "payment_id")
		if err != nil {
			response.BadRequest(c, "Invalid payment ID")
			return
		}

		link, err := h.service.LinkPayment(documentID, paymentID)
		switch {
		case err == nil:
			response.Success(c, link)
		case errors.Is(err, ErrDocumentNotFound):
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// UnlinkPaymentHandler handles DELETE requests to detach a document from a
// payment
func (h *GinHandlers) UnlinkPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID, err := params.ID(c, "document_id")
		if err != nil {
			response.BadRequest(c, "Invalid document ID")
			return
		}
		paymentID, err := params.ID(c, "payment_id")
		if err != nil {
			response.BadRequest(c, "Invalid payment ID")
			return
		}

		if err := h.service.db.DeletePaymentLink(documentID, paymentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Link not found")
				return
			}
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, gin.H{"document_id": documentID, "payment_id": paymentID, "deleted": true})
	}
}

// PaymentDocumentsHandler handles GET requests for a payment's documents
func (h *GinHandlers) PaymentDocumentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentID, err := params.ID(c, "payment_id")
		if err != nil {
			response.BadRequest(c, "Invalid payment ID")
			return
		}

		docs, err := h.service.db.GetDocumentsByPayment(paymentID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, docs, int64(len(docs)))
	}
}
