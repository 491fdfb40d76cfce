package providers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/summitfg/planfee-api/internal/types"
	"github.com/summitfg/planfee-api/pkg/params"
	"github.com/summitfg/planfee-api/pkg/response"
	"gorm.io/gorm"
)

var ErrMissingProviderName = errors.New("provider_name is required")

// Service manages plan providers
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

// CreateProvider validates and stores a new provider
func (s *Service) CreateProvider(provider *types.Provider) error {
	if provider.ProviderName == "" {
		return ErrMissingProviderName
	}
	return s.db.CreateProvider(provider)
}

// GinHandlers contains HTTP handlers for provider endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for provider endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateProviderHandler handles POST requests to create providers
func (h *GinHandlers) CreateProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var provider types.Provider
		if err := c.ShouldBindJSON(&provider); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		err := h.service.CreateProvider(&provider)
		switch {
		case err == nil:
			response.Success(c, provider)
		case errors.Is(err, ErrMissingProviderName):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// GetProviderHandler handles GET requests for a single provider
func (h *GinHandlers) GetProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID, err := params.ID(c, "provider_id")
		if err != nil {
			response.BadRequest(c, "Invalid provider ID")
			return
		}

		provider, err := h.service.db.GetProvider(providerID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if provider == nil {
			response.NotFound(c, "Provider not found")
			return
		}
		response.Success(c, provider)
	}
}

// ListProvidersHandler handles GET requests for the provider listing
func (h *GinHandlers) ListProvidersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := params.Pagination(c)

		providers, total, err := h.service.db.List(ListFilter{
			Name:   params.String(c, "provider_name"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, providers, total)
	}
}

// UpdateProviderHandler handles PUT requests to amend a provider
func (h *GinHandlers) UpdateProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID, err := params.ID(c, "provider_id")
		if err != nil {
			response.BadRequest(c, "Invalid provider ID")
			return
		}

		provider, err := h.service.db.GetProvider(providerID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if provider == nil {
			response.NotFound(c, "Provider not found")
			return
		}

		if err := c.ShouldBindJSON(provider); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		provider.ProviderID = providerID

		if provider.ProviderName == "" {
			response.BadRequest(c, ErrMissingProviderName.Error())
			return
		}
		if err := h.service.db.UpdateProvider(provider); err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, provider)
	}
}

// DeleteProviderHandler handles DELETE requests; providers are soft deleted
func (h *GinHandlers) DeleteProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID, err := params.ID(c, "provider_id")
		if err != nil {
			response.BadRequest(c, "Invalid provider ID")
			return
		}

		if err := h.service.db.DeleteProvider(providerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Provider not found")
				return
			}
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, gin.H{"provider_id": providerID, "deleted": true})
	}
}
