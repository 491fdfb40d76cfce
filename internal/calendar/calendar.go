package calendar

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/types"
	"github.com/summitfg/planfee-api/pkg/params"
	"github.com/summitfg/planfee-api/pkg/response"
	"gorm.io/gorm"
)

// Service maintains the billing calendar: period lookups and the
// current/previous flag refresh
type Service struct {
	db *Database
}

// NewService creates a new calendar service with the given database connection
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// GetDB returns the underlying calendar database
func (s *Service) GetDB() *Database {
	return s.db
}

// RefreshFlags recomputes the billing anchor from the given date and
// re-stamps the current/previous flags on the calendar. Idempotent for a
// fixed date; runs at startup and on demand from the operational endpoint.
// The flags are a cached view of the anchor computation, kept in the store
// so the reporting queries can join against them.
func (s *Service) RefreshFlags(now time.Time) error {
	anchor := billing.ComputeAnchor(now)

	logger := log.With().Str("component", "calendar").Logger()
	logger.Info().
		Int("current_monthly_key", anchor.CurrentMonth.Key()).
		Int("current_quarterly_key", anchor.CurrentQuarter.Key()).
		Int("previous_monthly_key", anchor.PreviousMonth.Key()).
		Int("previous_quarterly_key", anchor.PreviousQuarter.Key()).
		Msg("refreshing billing period flags")

	if err := s.db.RefreshFlags(anchor); err != nil {
		logger.Error().Err(err).Msg("billing period flag refresh failed")
		return err
	}

	return nil
}

// CurrentPeriod returns the flagged current billing period at the given
// cadence, or nil when the calendar carries no flag (flags not yet
// refreshed, or the calendar's range is exceeded)
func (s *Service) CurrentPeriod(schedule billing.Schedule) (*types.CalendarPeriod, error) {
	if schedule == billing.ScheduleQuarterly {
		return s.db.GetFlagged(FlagCurrentQuarterly)
	}
	return s.db.GetFlagged(FlagCurrentMonthly)
}

// Summary reports the billing anchor for the given date
func (s *Service) Summary(now time.Time) types.CurrentPeriodSummary {
	anchor := billing.ComputeAnchor(now)
	return types.CurrentPeriodSummary{
		Today:                 now.Format("2006-01-02"),
		CurrentMonthlyKey:     anchor.CurrentMonth.Key(),
		CurrentMonthlyLabel:   anchor.CurrentMonth.Label(),
		CurrentQuarterlyKey:   anchor.CurrentQuarter.Key(),
		CurrentQuarterlyLabel: anchor.CurrentQuarter.Label(),
		PreviousMonthlyKey:    anchor.PreviousMonth.Key(),
		PreviousQuarterlyKey:  anchor.PreviousQuarter.Key(),
	}
}

// GinHandlers contains HTTP handlers for calendar endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for calendar endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// ListHandler handles GET requests for calendar rows with filters
func (h *GinHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, err := params.Int(c, "year")
		if err != nil {
			response.BadRequest(c, "Invalid year filter")
			return
		}
		month, err := params.Int(c, "month")
		if err != nil {
			response.BadRequest(c, "Invalid month filter")
			return
		}
		quarter, err := params.Int(c, "quarter")
		if err != nil {
			response.BadRequest(c, "Invalid quarter filter")
			return
		}
		currentMonthly, err := params.Bool(c, "is_current_monthly")
		if err != nil {
			response.BadRequest(c, "Invalid is_current_monthly filter")
			return
		}
		currentQuarterly, err := params.Bool(c, "is_current_quarterly")
		if err != nil {
			response.BadRequest(c, "Invalid is_current_quarterly filter")
			return
		}
		limit, offset := params.Pagination(c)

		periods, total, err := h.service.db.List(ListFilter{
			Year:               year,
			Month:              month,
			Quarter:            quarter,
			IsCurrentMonthly:   currentMonthly,
			IsCurrentQuarterly: currentQuarterly,
			Limit:              limit,
			Offset:             offset,
		})
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}

		response.List(c, periods, total)
	}
}

// flaggedHandler serves the four single-row flag lookups
func (h *GinHandlers) flaggedHandler(flag, description string) gin.HandlerFunc {
	return func(c *gin.Context) {
		period, err := h.service.db.GetFlagged(flag)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if period == nil {
			response.NotFound(c, description+" period not found")
			return
		}
		response.Success(c, period)
	}
}

// CurrentMonthHandler handles GET requests for the current billing month
func (h *GinHandlers) CurrentMonthHandler() gin.HandlerFunc {
	return h.flaggedHandler(FlagCurrentMonthly, "Current month")
}

// CurrentQuarterHandler handles GET requests for the current billing quarter
func (h *GinHandlers) CurrentQuarterHandler() gin.HandlerFunc {
	return h.flaggedHandler(FlagCurrentQuarterly, "Current quarter")
}

// PreviousMonthHandler handles GET requests for the previous billing month
func (h *GinHandlers) PreviousMonthHandler() gin.HandlerFunc {
	return h.flaggedHandler(FlagPreviousMonth, "Previous month")
}

// PreviousQuarterHandler handles GET requests for the previous billing quarter
func (h *GinHandlers) PreviousQuarterHandler() gin.HandlerFunc {
	return h.flaggedHandler(FlagPreviousQuarter, "Previous quarter")
}

// CurrentPeriodHandler handles GET requests for the billing anchor summary
func (h *GinHandlers) CurrentPeriodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, h.service.Summary(time.Now()))
	}
}

// RefreshHandler handles POST requests to re-run the flag refresh. Intended
// for operational use when the process has been running across a period
// boundary.
func (h *GinHandlers) RefreshHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.service.RefreshFlags(time.Now()); err != nil {
			if errors.Is(err, ErrFlagCoverage) {
				response.InternalError(c, err.Error())
				return
			}
			response.InternalError(c, "Failed to refresh billing period flags")
			return
		}
		response.Success(c, h.service.Summary(time.Now()))
	}
}
