package payments

import (
	"github.com/gin-gonic/gin"
	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/calendar"
	"github.com/summitfg/planfee-api/internal/types"
	"github.com/summitfg/planfee-api/pkg/params"
	"github.com/summitfg/planfee-api/pkg/response"
)

// Distributions expands one payment into one row per covered period, with
// the payment amount divided evenly across the periods
func (s *Service) Distributions(payment *types.Payment) ([]types.PeriodDistribution, error) {
	coverage, err := Coverage(payment)
	if err != nil {
		return nil, err
	}

	periods := coverage.Periods()
	total := len(periods)

	clientName, err := s.db.GetClientName(payment.ClientID)
	if err != nil {
		return nil, err
	}

	distributions := make([]types.PeriodDistribution, 0, total)
	for _, period := range periods {
		distributions = append(distributions, types.PeriodDistribution{
			PaymentID:           payment.PaymentID,
			ClientID:            payment.ClientID,
			ClientName:          clientName,
			ReceivedDate:        payment.ReceivedDate,
			TotalPaymentAmount:  payment.ActualFee,
			IsSplitPayment:      coverage.IsSplit(),
			TotalPeriodsCovered: total,
			PeriodKey:           period.Key(),
			PeriodLabel:         period.Label(),
			PaymentSchedule:     string(period.Schedule),
			DistributedAmount:   billing.Distribute(payment.ActualFee, total),
		})
	}
	return distributions, nil
}

// SplitDistributions lists distribution rows for every split payment
// matching the filters
func (s *Service) SplitDistributions(clientID, paymentID *uint) ([]types.PeriodDistribution, error) {
	all, _, err := s.db.List(ListFilter{ClientID: clientID, Limit: -1})
	if err != nil {
		return nil, err
	}

	var rows []types.PeriodDistribution
	for i := range all {
		p := &all[i]
		if paymentID != nil && p.PaymentID != *paymentID {
			continue
		}
		if !IsSplit(p) {
			continue
		}
		distributions, err := s.Distributions(p)
		if err != nil {
			continue
		}
		rows = append(rows, distributions...)
	}
	return rows, nil
}

// ExpandedPeriods returns one payment-covers-period row per covered period
// across all payments matching the filters
func (s *Service) ExpandedPeriods(clientID, paymentID *uint, periodKey *int, schedule *string) ([]types.ExpandedPeriod, error) {
	all, _, err := s.db.List(ListFilter{ClientID: clientID, Limit: -1})
	if err != nil {
		return nil, err
	}

	var rows []types.ExpandedPeriod
	for i := range all {
		p := &all[i]
		if paymentID != nil && p.PaymentID != *paymentID {
			continue
		}
		coverage, err := Coverage(p)
		if err != nil {
			continue
		}
		for _, period := range coverage.Periods() {
			if periodKey != nil && period.Key() != *periodKey {
				continue
			}
			if schedule != nil && string(period.Schedule) != *schedule {
				continue
			}
			rows = append(rows, types.ExpandedPeriod{
				PaymentID:       p.PaymentID,
				ClientID:        p.ClientID,
				PeriodKey:       period.Key(),
				PaymentSchedule: string(period.Schedule),
			})
		}
	}
	return rows, nil
}

// CoverageReport summarises the covered periods of each payment matching
// the filters
func (s *Service) CoverageReport(clientID, paymentID *uint, isSplit *bool) ([]types.PaymentCoverage, error) {
	all, _, err := s.db.List(ListFilter{ClientID: clientID, Limit: -1})
	if err != nil {
		return nil, err
	}

	var rows []types.PaymentCoverage
	for i := range all {
		p := &all[i]
		if paymentID != nil && p.PaymentID != *paymentID {
			continue
		}
		coverage, err := Coverage(p)
		if err != nil {
			continue
		}
		if isSplit != nil && coverage.IsSplit() != *isSplit {
			continue
		}

		periods := coverage.Periods()
		labels := make([]string, 0, len(periods))
		for _, period := range periods {
			labels = append(labels, period.Label())
		}

		rows = append(rows, types.PaymentCoverage{
			PaymentID:                  p.PaymentID,
			ClientID:                   p.ClientID,
			ReceivedDate:               p.ReceivedDate,
			ActualFee:                  p.ActualFee,
			IsSplitPayment:             coverage.IsSplit(),
			CoveredPeriods:             labels,
			PeriodsCovered:             len(periods),
			DistributedAmountPerPeriod: billing.Distribute(p.ActualFee, len(periods)),
		})
	}
	return rows, nil
}

// Variance scores a payment against its contract's expected fee. Split
// payments and payments whose expected fee cannot be computed come back
// all-nil.
func (s *Service) Variance(payment *types.Payment) (billing.Variance, error) {
	contract, err := s.db.GetContract(payment.ContractID)
	if err != nil {
		return billing.Variance{}, err
	}
	if contract == nil {
		return billing.Variance{}, nil
	}

	terms := billing.ContractTerms{
		PercentRate: contract.PercentRate,
		FlatRate:    contract.FlatRate,
	}
	if contract.FeeType != nil {
		terms.FeeType = *contract.FeeType
	}

	return billing.ComputeVariance(payment.ActualFee, IsSplit(payment), terms, payment.TotalAssets), nil
}

// CurrentPeriodStatus reports Paid/Unpaid for each active contract's client
// against the flagged current billing period at the contract's cadence
func (s *Service) CurrentPeriodStatus(clientID *uint, statusFilter *string) ([]types.PaymentStatus, error) {
	contracts, err := s.db.GetActiveContracts(clientID)
	if err != nil {
		return nil, err
	}

	var statuses []types.PaymentStatus
	for _, contract := range contracts {
		if contract.PaymentSchedule == nil {
			continue
		}
		schedule := billing.Schedule(*contract.PaymentSchedule)
		if !schedule.Valid() {
			continue
		}

		flag := calendar.FlagCurrentMonthly
		if schedule == billing.ScheduleQuarterly {
			flag = calendar.FlagCurrentQuarterly
		}
		current, err := s.calendar.GetFlagged(flag)
		if err != nil {
			return nil, err
		}
		if current == nil {
			// Flags not stamped; nothing to reconcile against
			continue
		}

		periodKey := current.PeriodKeyMonthly
		periodLabel := current.DisplayLabelMonthly
		if schedule == billing.ScheduleQuarterly {
			periodKey = current.PeriodKeyQuarterly
			periodLabel = current.DisplayLabelQuarterly
		}

		covered, err := s.coveredKeys(contract.ClientID, schedule)
		if err != nil {
			return nil, err
		}

		status := "Unpaid"
		if covered[periodKey] {
			status = "Paid"
		}
		if statusFilter != nil && status != *statusFilter {
			continue
		}

		statuses = append(statuses, types.PaymentStatus{
			ClientID:        contract.ClientID,
			PaymentSchedule: string(schedule),
			PeriodKey:       periodKey,
			PeriodLabel:     periodLabel,
			Status:          status,
		})
	}
	return statuses, nil
}

// coveredKeys collects every period key a client's payments cover at the
// given cadence
func (s *Service) coveredKeys(clientID uint, schedule billing.Schedule) (map[int]bool, error) {
	clientPayments, err := s.db.GetPaymentsByClient(clientID)
	if err != nil {
		return nil, err
	}

	covered := make(map[int]bool)
	for i := range clientPayments {
		coverage, err := Coverage(&clientPayments[i])
		if err != nil {
			continue
		}
		if coverage.Start.Schedule != schedule {
			continue
		}
		for _, period := range coverage.Periods() {
			covered[period.Key()] = true
		}
	}
	return covered, nil
}

// CoveredKeys is the exported form used by the contract reconciliation
// queries
func (s *Service) CoveredKeys(clientID uint, schedule billing.Schedule) (map[int]bool, error) {
	return s.coveredKeys(clientID, schedule)
}

// PaymentDistributionsHandler handles GET requests for one payment's
// distribution rows
func (h *GinHandlers) PaymentDistributionsHandler() gin.HandlerFunc {
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

		distributions, err := h.service.Distributions(payment)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		response.List(c, distributions, int64(len(distributions)))
	}
}

// SplitDistributionsHandler handles GET requests for the split payment
// distribution listing
func (h *GinHandlers) SplitDistributionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.Uint(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client_id filter")
			return
		}
		paymentID, err := params.Uint(c, "payment_id")
		if err != nil {
			response.BadRequest(c, "Invalid payment_id filter")
			return
		}

		rows, err := h.service.SplitDistributions(clientID, paymentID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, rows, int64(len(rows)))
	}
}

// ExpandedPeriodsHandler handles GET requests for payment-covers-period rows
func (h *GinHandlers) ExpandedPeriodsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.Uint(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client_id filter")
			return
		}
		paymentID, err := params.Uint(c, "payment_id")
		if err != nil {
			response.BadRequest(c, "Invalid payment_id filter")
			return
		}
		periodKey, err := params.Int(c, "period_key")
		if err != nil {
			response.BadRequest(c, "Invalid period_key filter")
			return
		}

		rows, err := h.service.ExpandedPeriods(clientID, paymentID, periodKey, params.String(c, "payment_schedule"))
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, rows, int64(len(rows)))
	}
}

// CoverageHandler handles GET requests for the per-payment coverage summary
func (h *GinHandlers) CoverageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.Uint(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client_id filter")
			return
		}
		paymentID, err := params.Uint(c, "payment_id")
		if err != nil {
			response.BadRequest(c, "Invalid payment_id filter")
			return
		}
		isSplit, err := params.Bool(c, "is_split")
		if err != nil {
			response.BadRequest(c, "Invalid is_split filter")
			return
		}

		rows, err := h.service.CoverageReport(clientID, paymentID, isSplit)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, rows, int64(len(rows)))
	}
}

// VarianceHandler handles GET requests for a payment's variance scoring
func (h *GinHandlers) VarianceHandler() gin.HandlerFunc {
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

		variance, err := h.service.Variance(payment)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, variance)
	}
}

// PaymentStatusHandler handles GET requests for the current-period
// Paid/Unpaid listing
func (h *GinHandlers) PaymentStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.Uint(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client_id filter")
			return
		}

		statuses, err := h.service.CurrentPeriodStatus(clientID, params.String(c, "status"))
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, statuses, int64(len(statuses)))
	}
}
