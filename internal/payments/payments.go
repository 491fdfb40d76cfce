package payments

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/calendar"
	"github.com/summitfg/planfee-api/internal/types"
	"github.com/summitfg/planfee-api/pkg/params"
	"github.com/summitfg/planfee-api/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrScheduleMismatch = errors.New("applied period does not match the contract's payment schedule")
	ErrMissingReceived  = errors.New("received date is required")
)

// Service handles payment record keeping and the period reports derived
// from payments
type Service struct {
	db       *Database
	calendar *calendar.Database
}

// NewService creates a new payments service with the given database connection
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db:       NewDatabase(gormDB),
		calendar: calendar.NewDatabase(gormDB),
	}
}

// GetDB returns the underlying payments database
func (s *Service) GetDB() *Database {
	return s.db
}

// CreatePayment validates and stores a new payment. The applied period range
// must be resolvable and must match the owning contract's payment schedule.
func (s *Service) CreatePayment(payment *types.Payment) error {
	if payment.ReceivedDate == "" {
		return ErrMissingReceived
	}

	contract, err := s.db.GetContract(payment.ContractID)
	if err != nil {
		return err
	}
	if contract == nil {
		return ErrContractNotFound
	}

	if err := s.validateCoverage(payment, contract); err != nil {
		return err
	}

	payment.ReferenceID = uuid.New().String()
	return s.db.CreatePayment(payment)
}

// UpdateRequest carries the partially updatable payment fields
type UpdateRequest struct {
	ContractID   *uint    `json:"contract_id"`
	ReceivedDate *string  `json:"received_date"`
	TotalAssets  *float64 `json:"total_assets"`
	ActualFee    *float64 `json:"actual_fee"`
	Method       *string  `json:"method"`
	Notes        *string  `json:"notes"`

	AppliedStartMonth     *int `json:"applied_start_month"`
	AppliedStartMonthYear *int `json:"applied_start_month_year"`
	AppliedEndMonth       *int `json:"applied_end_month"`
	AppliedEndMonthYear   *int `json:"applied_end_month_year"`

	AppliedStartQuarter     *int `json:"applied_start_quarter"`
	AppliedStartQuarterYear *int `json:"applied_start_quarter_year"`
	AppliedEndQuarter       *int `json:"applied_end_quarter"`
	AppliedEndQuarterYear   *int `json:"applied_end_quarter_year"`
}

// UpdatePayment applies the provided fields to an existing payment and
// revalidates its coverage
func (s *Service) UpdatePayment(paymentID uint, req UpdateRequest) (*types.Payment, error) {
	payment, err := s.db.GetPayment(paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, nil
	}

	if req.ContractID != nil {
		payment.ContractID = *req.ContractID
	}
	if req.ReceivedDate != nil {
		payment.ReceivedDate = *req.ReceivedDate
	}
	if req.TotalAssets != nil {
		payment.TotalAssets = req.TotalAssets
	}
	if req.ActualFee != nil {
		payment.ActualFee = *req.ActualFee
	}
	if req.Method != nil {
		payment.Method = req.Method
	}
	if req.Notes != nil {
		payment.Notes = req.Notes
	}
	if req.AppliedStartMonth != nil {
		payment.AppliedStartMonth = req.AppliedStartMonth
	}
	if req.AppliedStartMonthYear != nil {
		payment.AppliedStartMonthYear = req.AppliedStartMonthYear
	}
	if req.AppliedEndMonth != nil {
		payment.AppliedEndMonth = req.AppliedEndMonth
	}
	if req.AppliedEndMonthYear != nil {
		payment.AppliedEndMonthYear = req.AppliedEndMonthYear
	}
	if req.AppliedStartQuarter != nil {
		payment.AppliedStartQuarter = req.AppliedStartQuarter
	}
	if req.AppliedStartQuarterYear != nil {
		payment.AppliedStartQuarterYear = req.AppliedStartQuarterYear
	}
	if req.AppliedEndQuarter != nil {
		payment.AppliedEndQuarter = req.AppliedEndQuarter
	}
	if req.AppliedEndQuarterYear != nil {
		payment.AppliedEndQuarterYear = req.AppliedEndQuarterYear
	}

	contract, err := s.db.GetContract(payment.ContractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}
	if err := s.validateCoverage(payment, contract); err != nil {
		return nil, err
	}

	if err := s.db.UpdatePayment(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// validateCoverage checks the applied range resolves and matches the
// contract cadence
func (s *Service) validateCoverage(payment *types.Payment, contract *types.Contract) error {
	coverage, err := Coverage(payment)
	if err != nil {
		return err
	}

	if contract.PaymentSchedule != nil {
		schedule := billing.Schedule(*contract.PaymentSchedule)
		if schedule.Valid() && coverage.Start.Schedule != schedule {
			return ErrScheduleMismatch
		}
	}
	return nil
}

// ListPayments returns payments matching the filter. The split filter is
// derived from the applied range, so it is applied after the rows come back
// from the store.
func (s *Service) ListPayments(filter ListFilter, isSplit *bool) ([]types.Payment, int64, error) {
	if isSplit == nil {
		return s.db.List(filter)
	}

	limit, offset := filter.Limit, filter.Offset
	filter.Limit = -1
	filter.Offset = 0

	all, _, err := s.db.List(filter)
	if err != nil {
		return nil, 0, err
	}

	var matched []types.Payment
	for _, p := range all {
		p := p
		if IsSplit(&p) == *isSplit {
			matched = append(matched, p)
		}
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return []types.Payment{}, total, nil
	}
	end := offset + limit
	if limit < 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// GinHandlers contains HTTP handlers for payment endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for payment endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreatePaymentHandler handles POST requests to record new payments
func (h *GinHandlers) CreatePaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var payment types.Payment
		if err := c.ShouldBindJSON(&payment); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		err := h.service.CreatePayment(&payment)
		switch {
		case err == nil:
			response.Success(c, payment)
		case errors.Is(err, ErrContractNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrMissingReceived),
			errors.Is(err, ErrNoCoverage),
			errors.Is(err, ErrAmbiguousCoverage),
			errors.Is(err, ErrScheduleMismatch),
			errors.Is(err, billing.ErrInvalidRange):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// GetPaymentHandler handles GET requests for a single payment
func (h *GinHandlers) GetPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentID, err := params.ID(c, "payment_id")
		if err != nil {
			response.BadRequest(c, "Invalid payment ID")
			return
		}

		payment, err := h.service.db.GetPayment(paymentID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if payment == nil {
			response.NotFound(c, "Payment not found")
			return
		}
		response.Success(c, payment)
	}
}

// ListPaymentsHandler handles GET requests for the payment listing
func (h *GinHandlers) ListPaymentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.Uint(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client_id filter")
			return
		}
		contractID, err := params.Uint(c, "contract_id")
		if err != nil {
			response.BadRequest(c, "Invalid contract_id filter")
			return
		}
		isSplit, err := params.Bool(c, "is_split")
		if err != nil {
			response.BadRequest(c, "Invalid is_split filter")
			return
		}
		limit, offset := params.Pagination(c)

		payments, total, err := h.service.ListPayments(ListFilter{
			ClientID:   clientID,
			ContractID: contractID,
			Method:     params.String(c, "method"),
			MinDate:    params.String(c, "min_date"),
			MaxDate:    params.String(c, "max_date"),
			Limit:      limit,
			Offset:     offset,
		}, isSplit)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}

		response.List(c, payments, total)
	}
}

// UpdatePaymentHandler handles PUT requests to amend a payment
func (h *GinHandlers) UpdatePaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentID, err := params.ID(c, "payment_id")
		if err != nil {
			response.BadRequest(c, "Invalid payment ID")
			return
		}

		var req UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		payment, err := h.service.UpdatePayment(paymentID, req)
		switch {
		case err == nil && payment == nil:
			response.NotFound(c, "Payment not found")
		case err == nil:
			response.Success(c, payment)
		case errors.Is(err, ErrContractNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrNoCoverage),
			errors.Is(err, ErrAmbiguousCoverage),
			errors.Is(err, ErrScheduleMismatch),
			errors.Is(err, billing.ErrInvalidRange):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
	}
}

// DeletePaymentHandler handles DELETE requests; payments are soft deleted
func (h *GinHandlers) DeletePaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentID, err := params.ID(c, "payment_id")
		if err != nil {
			response.BadRequest(c, "Invalid payment ID")
			return
		}

		if err := h.service.db.DeletePayment(paymentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Payment not found")
				return
			}
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, gin.H{"payment_id": paymentID, "deleted": true})
	}
}
