package contracts

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/calendar"
	"github.com/summitfg/planfee-api/internal/payments"
	"github.com/summitfg/planfee-api/internal/types"
	"github.com/summitfg/planfee-api/pkg/params"
	"github.com/summitfg/planfee-api/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrMissingPercentRate = errors.New("percentage contracts require a percent rate")
	ErrMissingFlatRate    = errors.New("flat contracts require a flat rate")
	ErrUnknownSchedule    = errors.New("payment schedule must be monthly or quarterly")
)

// Service handles contract record keeping and the expected/missing period
// reconciliation derived from contracts
type Service struct {
	db       *Database
	payments *payments.Service
	calendar *calendar.Database
}

// NewService creates a new contracts service with the given database connection
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db:       NewDatabase(gormDB),
		payments: payments.NewService(gormDB),
		calendar: calendar.NewDatabase(gormDB),
	}
}

// GetDB returns the underlying contracts database
func (s *Service) GetDB() *Database {
	return s.db
}

// CreateContract validates and stores a new contract. A contract number is
// assigned when the provider did not supply one.
func (s *Service) CreateContract(contract *types.Contract) error {
	if err := validateTerms(contract); err != nil {
		return err
	}

	if contract.ContractNumber == nil {
		number := uuid.New().String()
		contract.ContractNumber = &number
	}
	return s.db.CreateContract(contract)
}

// validateTerms enforces the fee type / rate pairing and schedule values
func validateTerms(contract *types.Contract) error {
	if contract.FeeType != nil {
		switch *contract.FeeType {
		case billing.FeeTypePercentage:
			if contract.PercentRate == nil {
				return ErrMissingPercentRate
			}
		case billing.FeeTypeFlat, billing.FeeTypeFixed:
			if contract.FlatRate == nil {
				return ErrMissingFlatRate
			}
		}
	}
	if contract.PaymentSchedule != nil && !billing.Schedule(*contract.PaymentSchedule).Valid() {
		return ErrUnknownSchedule
	}
	return nil
}

// UpdateRequest carries the partially updatable contract fields
type UpdateRequest struct {
	ContractNumber  *string  `json:"contract_number"`
	ProviderID      *uint    `json:"provider_id"`
	FeeType         *string  `json:"fee_type"`
	PercentRate     *float64 `json:"percent_rate"`
	FlatRate        *float64 `json:"flat_rate"`
	PaymentSchedule *string  `json:"payment_schedule"`
	NumPeople       *int     `json:"num_people"`
	EffectiveDate   *string  `json:"effective_date"`
	IsActive        *bool    `json:"is_active"`
}

// UpdateContract applies the provided fields to an existing contract
func (s *Service) UpdateContract(contractID uint, req UpdateRequest) (*types.Contract, error) {
	contract, err := s.db.GetContract(contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, nil
	}

	if req.ContractNumber != nil {
		contract.ContractNumber = req.ContractNumber
	}
	if req.ProviderID != nil {
		contract.ProviderID = req.ProviderID
	}
	if req.FeeType != nil {
		contract.FeeType = req.FeeType
	}
	if req.PercentRate != nil {
		contract.PercentRate = req.PercentRate
	}
	if req.FlatRate != nil {
		contract.FlatRate = req.FlatRate
	}
	if req.PaymentSchedule != nil {
		contract.PaymentSchedule = req.PaymentSchedule
	}
	if req.NumPeople != nil {
		contract.NumPeople = req.NumPeople
	}
	if req.EffectiveDate != nil {
		contract.EffectiveDate = req.EffectiveDate
	}
	if req.IsActive != nil {
		contract.IsActive = *req.IsActive
	}

	if err := validateTerms(contract); err != nil {
		return nil, err
	}
	if err := s.db.UpdateContract(contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// ExpectedFee computes the fee a client's active contract implies, falling
// back to the most recent assets from payment history when none are given
func (s *Service) ExpectedFee(clientID uint, aum *float64) (billing.FeeEstimate, error) {
	contract, err := s.db.GetActiveContract(clientID)
	if err != nil {
		return billing.FeeEstimate{}, err
	}
	if contract == nil {
		// No active contract is a legitimate state, not a fault
		return billing.FeeEstimate{}, nil
	}

	terms := billing.ContractTerms{
		PercentRate: contract.PercentRate,
		FlatRate:    contract.FlatRate,
	}
	if contract.FeeType != nil {
		terms.FeeType = *contract.FeeType
	}

	var fallback *float64
	if terms.FeeType == billing.FeeTypePercentage && aum == nil {
		fallback, err = s.payments.GetDB().MostRecentAssets(clientID)
		if err != nil {
			return billing.FeeEstimate{}, err
		}
	}

	return billing.ExpectedFee(terms, aum, fallback), nil
}

// GinHandlers contains HTTP handlers for contract endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for contract endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateContractHandler handles POST requests to create contracts
func (h *GinHandlers) CreateContractHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var contract types.Contract
		if err := c.ShouldBindJSON(&contract); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		err := h.service.CreateContract(&contract)
		switch {
		case err == nil:
			response.Success(c, contract)
		case errors.Is(err, ErrMissingPercentRate),
			errors.Is(err, ErrMissingFlatRate),
			errors.Is(err, ErrUnknownSchedule):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// GetContractHandler handles GET requests for a single contract
func (h *GinHandlers) GetContractHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contractID, err := params.ID(c, "contract_id")
		if err != nil {
			response.BadRequest(c, "Invalid contract ID")
			return
		}

		contract, err := h.service.db.GetContract(contractID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if contract == nil {
			response.NotFound(c, "Contract not found")
			return
		}
		response.Success(c, contract)
	}
}

// ListContractsHandler handles GET requests for the contract listing
func (h *GinHandlers) ListContractsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.Uint(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client_id filter")
			return
		}
		providerID, err := params.Uint(c, "provider_id")
		if err != nil {
			response.BadRequest(c, "Invalid provider_id filter")
			return
		}
		isActive, err := params.Bool(c, "is_active")
		if err != nil {
			response.BadRequest(c, "Invalid is_active filter")
			return
		}
		limit, offset := params.Pagination(c)

		contracts, total, err := h.service.db.List(ListFilter{
			ClientID:        clientID,
			ProviderID:      providerID,
			PaymentSchedule: params.String(c, "payment_schedule"),
			IsActive:        isActive,
			Limit:           limit,
			Offset:          offset,
		})
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, contracts, total)
	}
}

// UpdateContractHandler handles PUT requests to amend a contract
func (h *GinHandlers) UpdateContractHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contractID, err := params.ID(c, "contract_id")
		if err != nil {
			response.BadRequest(c, "Invalid contract ID")
			return
		}

		var req UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		contract, err := h.service.UpdateContract(contractID, req)
		switch {
		case err == nil && contract == nil:
			response.NotFound(c, "Contract not found")
		case err == nil:
			response.Success(c, contract)
		case errors.Is(err, ErrMissingPercentRate),
			errors.Is(err, ErrMissingFlatRate),
			errors.Is(err, ErrUnknownSchedule):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// DeleteContractHandler handles DELETE requests; contracts are soft deleted
func (h *GinHandlers) DeleteContractHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contractID, err := params.ID(c, "contract_id")
		if err != nil {
			response.BadRequest(c, "Invalid contract ID")
			return
		}

		if err := h.service.db.DeleteContract(contractID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Contract not found")
				return
			}
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, gin.H{"contract_id": contractID, "deleted": true})
	}
}

// ActiveContractsHandler handles GET requests for the active contract listing
func (h *GinHandlers) ActiveContractsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.Uint(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client_id filter")
			return
		}

		contracts, err := h.service.db.GetActiveContracts(clientID, params.String(c, "payment_schedule"))
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, contracts, int64(len(contracts)))
	}
}

// ExpectedFeeHandler handles GET requests for a client's expected fee
func (h *GinHandlers) ExpectedFeeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.Uint(c, "client_id")
		if err != nil || clientID == nil {
			response.BadRequest(c, "client_id is required")
			return
		}

		aum, err := params.Float(c, "aum")
		if err != nil {
			response.BadRequest(c, "Invalid aum")
			return
		}

		estimate, err := h.service.ExpectedFee(*clientID, aum)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, estimate)
	}
}
