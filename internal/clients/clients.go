package clients

import (
	"errors"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/summitfg/planfee-api/internal/types"
	"github.com/summitfg/planfee-api/pkg/params"
	"github.com/summitfg/planfee-api/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrMissingDisplayName = errors.New("display_name is required")
	ErrClientNotFound     = errors.New("client not found")
)

var logger zerolog.Logger

func init() {
	logger = log.With().Str("component", "clients").Logger()
	if os.Getenv("ENVIRONMENT") != "production" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// Service manages clients, their contacts, and their provider relationships
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

// CreateClient validates and stores a new client
func (s *Service) CreateClient(client *types.Client) error {
	if client.DisplayName == "" {
		return ErrMissingDisplayName
	}
	if err := s.db.CreateClient(client); err != nil {
		return err
	}
	logger.Info().
		Uint("client_id", client.ClientID).
		Str("display_name", client.DisplayName).
		Msg("Client created")
	return nil
}

// UpdateRequest carries the mutable client fields; nil means leave unchanged
type UpdateRequest struct {
	DisplayName   *string `json:"display_name,omitempty"`
	FullName      *string `json:"full_name,omitempty"`
	IMASignedDate *string `json:"ima_signed_date,omitempty"`
}

// UpdateClient applies a partial update. A nil client with nil error means
// the client does not exist.
func (s *Service) UpdateClient(clientID uint, req UpdateRequest) (*types.Client, error) {
	client, err := s.db.GetClient(clientID)
	if err != nil || client == nil {
		return nil, err
	}

	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			return nil, ErrMissingDisplayName
		}
		client.DisplayName = *req.DisplayName
	}
	if req.FullName != nil {
		client.FullName = req.FullName
	}
	if req.IMASignedDate != nil {
		client.IMASignedDate = req.IMASignedDate
	}

	if err := s.db.UpdateClient(client); err != nil {
		return nil, err
	}
	return client, nil
}

// CreateContact stores a contact after confirming the client exists
func (s *Service) CreateContact(contact *types.Contact) error {
	client, err := s.db.GetClient(contact.ClientID)
	if err != nil {
		return err
	}
	if client == nil {
		return ErrClientNotFound
	}
	return s.db.CreateContact(contact)
}

// CreateClientProvider stores a provider relationship after confirming the
// client exists
func (s *Service) CreateClientProvider(link *types.ClientProvider) error {
	client, err := s.db.GetClient(link.ClientID)
	if err != nil {
		return err
	}
	if client == nil {
		return ErrClientNotFound
	}
	return s.db.CreateClientProvider(link)
}

// GinHandlers contains HTTP handlers for client endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for client endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateClientHandler handles POST requests to create clients
func (h *GinHandlers) CreateClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var client types.Client
		if err := c.ShouldBindJSON(&client); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		err := h.service.CreateClient(&client)
		switch {
		case err == nil:
			response.Success(c, client)
		case errors.Is(err, ErrMissingDisplayName):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// GetClientHandler handles GET requests for a single client
func (h *GinHandlers) GetClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.ID(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}

		client, err := h.service.db.GetClient(clientID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if client == nil {
			response.NotFound(c, "Client not found")
			return
		}
		response.Success(c, client)
	}
}

// ListClientsHandler handles GET requests for the client listing
func (h *GinHandlers) ListClientsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := params.Pagination(c)

		clients, total, err := h.service.db.List(ListFilter{
			DisplayName: params.String(c, "display_name"),
			Limit:       limit,
			Offset:      offset,
		})
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, clients, total)
	}
}

// UpdateClientHandler handles PUT requests to amend a client
func (h *GinHandlers) UpdateClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.ID(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}

		var req UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		client, err := h.service.UpdateClient(clientID, req)
		switch {
		case err == nil && client == nil:
			response.NotFound(c, "Client not found")
		case err == nil:
			response.Success(c, client)
		case errors.Is(err, ErrMissingDisplayName):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// DeleteClientHandler handles DELETE requests; clients are soft deleted
func (h *GinHandlers) DeleteClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.ID(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}

		if err := h.service.db.DeleteClient(clientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Client not found")
				return
			}
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, gin.H{"client_id": clientID, "deleted": true})
	}
}

// CreateContactHandler handles POST requests to add a contact to a client
func (h *GinHandlers) CreateContactHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.ID(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}

		var contact types.Contact
		if err := c.ShouldBindJSON(&contact); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		contact.ClientID = clientID

		err = h.service.CreateContact(&contact)
		switch {
		case err == nil:
			response.Success(c, contact)
		case errors.Is(err, ErrClientNotFound):
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// ListContactsHandler handles GET requests for a client's contacts
func (h *GinHandlers) ListContactsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.ID(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}

		contacts, err := h.service.db.GetContactsByClient(clientID, params.String(c, "contact_type"))
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, contacts, int64(len(contacts)))
	}
}

// UpdateContactHandler handles PUT requests to amend a contact
func (h *GinHandlers) UpdateContactHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contactID, err := params.ID(c, "contact_id")
		if err != nil {
			response.BadRequest(c, "Invalid contact ID")
			return
		}

		contact, err := h.service.db.GetContact(contactID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if contact == nil {
			response.NotFound(c, "Contact not found")
			return
		}

		// bind on top of the stored row so omitted fields keep their values
		if err := c.ShouldBindJSON(contact); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		contact.ContactID = contactID

		if err := h.service.db.UpdateContact(contact); err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, contact)
	}
}

// DeleteContactHandler handles DELETE requests for a contact
func (h *GinHandlers) DeleteContactHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contactID, err := params.ID(c, "contact_id")
		if err != nil {
			response.BadRequest(c, "Invalid contact ID")
			return
		}

		if err := h.service.db.DeleteContact(contactID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Contact not found")
				return
			}
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, gin.H{"contact_id": contactID, "deleted": true})
	}
}

// CreateClientProviderHandler handles POST requests to link a provider to a
// client
func (h *GinHandlers) CreateClientProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.ID(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}

		var link types.ClientProvider
		if err := c.ShouldBindJSON(&link); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		link.ClientID = clientID

		err = h.service.CreateClientProvider(&link)
		switch {
		case err == nil:
			response.Success(c, link)
		case errors.Is(err, ErrClientNotFound):
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// ListClientProvidersHandler handles GET requests for a client's provider
// relationships
func (h *GinHandlers) ListClientProvidersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.ID(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}
		isActive, err := params.Bool(c, "is_active")
		if err != nil {
			response.BadRequest(c, "Invalid is_active filter")
			return
		}

		links, err := h.service.db.GetProvidersByClient(clientID, isActive)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, links, int64(len(links)))
	}
}

// UpdateClientProviderHandler handles PUT requests to amend a provider
// relationship
func (h *GinHandlers) UpdateClientProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			response.BadRequest(c, "Invalid relationship ID")
			return
		}

		link, err := h.service.db.GetClientProvider(id)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if link == nil {
			response.NotFound(c, "Provider relationship not found")
			return
		}

		if err := c.ShouldBindJSON(link); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		link.ID = id

		if err := h.service.db.UpdateClientProvider(link); err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, link)
	}
}

// DeleteClientProviderHandler handles DELETE requests for a provider
// relationship
func (h *GinHandlers) DeleteClientProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			response.BadRequest(c, "Invalid relationship ID")
			return
		}

		if err := h.service.db.DeleteClientProvider(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Provider relationship not found")
				return
			}
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, gin.H{"id": id, "deleted": true})
	}
}
