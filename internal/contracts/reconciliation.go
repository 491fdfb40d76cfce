package contracts

import (
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/calendar"
	"github.com/summitfg/planfee-api/internal/types"
	"github.com/summitfg/planfee-api/pkg/params"
	"github.com/summitfg/planfee-api/pkg/response"
)

// ExpectedPeriods produces, for each active contract, every period from the
// contract's effective start through the flagged current billing period at
// the contract's cadence. Clients with no active contract simply contribute
// nothing.
func (s *Service) ExpectedPeriods(clientID *uint, scheduleFilter *string) ([]types.ExpectedPeriod, error) {
	contracts, err := s.db.GetActiveContracts(clientID, scheduleFilter)
	if err != nil {
		return nil, err
	}

	var rows []types.ExpectedPeriod
	for _, contract := range contracts {
		periods, schedule, err := s.expectedForContract(&contract)
		if err != nil {
			return nil, err
		}
		for _, period := range periods {
			rows = append(rows, types.ExpectedPeriod{
				ClientID:        contract.ClientID,
				PaymentSchedule: string(schedule),
				PeriodKey:       period.Key(),
				PeriodLabel:     period.Label(),
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ClientID != rows[j].ClientID {
			return rows[i].ClientID < rows[j].ClientID
		}
		return rows[i].PeriodKey > rows[j].PeriodKey
	})
	return rows, nil
}

// MissingPeriods is ExpectedPeriods minus the periods covered by any of the
// client's payments
func (s *Service) MissingPeriods(clientID *uint, scheduleFilter *string) ([]types.MissingPeriod, error) {
	contracts, err := s.db.GetActiveContracts(clientID, scheduleFilter)
	if err != nil {
		return nil, err
	}

	var rows []types.MissingPeriod
	for _, contract := range contracts {
		periods, schedule, err := s.expectedForContract(&contract)
		if err != nil {
			return nil, err
		}
		if len(periods) == 0 {
			continue
		}

		covered, err := s.payments.CoveredKeys(contract.ClientID, schedule)
		if err != nil {
			return nil, err
		}

		for _, period := range periods {
			if covered[period.Key()] {
				continue
			}
			rows = append(rows, types.MissingPeriod{
				ClientID:        contract.ClientID,
				PaymentSchedule: string(schedule),
				PeriodKey:       period.Key(),
				PeriodLabel:     period.Label(),
				Status:          "Missing",
			})
		}
	}

	// newest gap first within each client
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ClientID != rows[j].ClientID {
			return rows[i].ClientID < rows[j].ClientID
		}
		return rows[i].PeriodKey > rows[j].PeriodKey
	})
	return rows, nil
}

// expectedForContract walks the contract's cadence from its effective start
// to the flagged current period. An empty result means the contract has no
// usable schedule, starts after the current period, or the calendar flags
// have not been stamped.
func (s *Service) expectedForContract(contract *types.Contract) ([]billing.Period, billing.Schedule, error) {
	if contract.PaymentSchedule == nil {
		return nil, "", nil
	}
	schedule := billing.Schedule(*contract.PaymentSchedule)
	if !schedule.Valid() {
		return nil, "", nil
	}

	flag := calendar.FlagCurrentMonthly
	if schedule == billing.ScheduleQuarterly {
		flag = calendar.FlagCurrentQuarterly
	}
	current, err := s.calendar.GetFlagged(flag)
	if err != nil {
		return nil, schedule, err
	}
	if current == nil {
		return nil, schedule, nil
	}

	currentKey := current.PeriodKeyMonthly
	if schedule == billing.ScheduleQuarterly {
		currentKey = current.PeriodKeyQuarterly
	}
	end := billing.PeriodFromKey(currentKey, schedule)

	start := billing.PeriodContaining(contractStart(contract), schedule)
	if end.Before(start) {
		return nil, schedule, nil
	}

	periods, err := billing.Range(start, end)
	if err != nil {
		return nil, schedule, err
	}
	return periods, schedule, nil
}

// contractStart resolves the date billing begins for a contract: the
// recorded effective date when present and parseable, otherwise the date
// the contract row was created
func contractStart(contract *types.Contract) time.Time {
	if contract.EffectiveDate != nil {
		if t, err := time.Parse("2006-01-02", *contract.EffectiveDate); err == nil {
			return t
		}
	}
	return contract.CreatedAt
}

// ExpectedPeriodsHandler handles GET requests for the expected period listing
func (h *GinHandlers) ExpectedPeriodsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.Uint(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client_id filter")
			return
		}

		rows, err := h.service.ExpectedPeriods(clientID, params.String(c, "payment_schedule"))
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, rows, int64(len(rows)))
	}
}

// MissingPeriodsHandler handles GET requests for the missing period listing
func (h *GinHandlers) MissingPeriodsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := params.Uint(c, "client_id")
		if err != nil {
			response.BadRequest(c, "Invalid client_id filter")
			return
		}

		rows, err := h.service.MissingPeriods(clientID, params.String(c, "payment_schedule"))
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.List(c, rows, int64(len(rows)))
	}
}
