package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/summitfg/planfee-api/internal/auth"
	"github.com/summitfg/planfee-api/internal/billing"
	"github.com/summitfg/planfee-api/internal/calendar"
	"github.com/summitfg/planfee-api/internal/clients"
	"github.com/summitfg/planfee-api/internal/contracts"
	"github.com/summitfg/planfee-api/internal/database"
	"github.com/summitfg/planfee-api/internal/documents"
	"github.com/summitfg/planfee-api/internal/payments"
	"github.com/summitfg/planfee-api/internal/providers"
	"github.com/summitfg/planfee-api/internal/types"
)

const (
	minClients     = 8
	maxClients     = 25
	numWorkers     = 4
	historyPeriods = 12
	serverAddress  = "http://localhost:8080"
)

var (
	providerNames = []string{"Summit Trust", "Harbor Retirement", "Lakeview Plan Services", "Meridian 401k"}
	schedules     = []string{"monthly", "quarterly"}
	feeMethods    = []string{"check", "wire", "ach"}
)

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	// Configure pretty logging
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// routeStats tracks performance statistics for an API endpoint
type routeStats struct {
	name       string
	durations  []time.Duration
	totalCalls int
	failures   int
}

// addDuration records a new duration measurement for the route
func (rs *routeStats) addDuration(d time.Duration) {
	rs.durations = append(rs.durations, d)
	rs.totalCalls++
}

// calculate computes performance statistics from recorded durations
// Returns min, max, mean, median, 95th percentile, and 99th percentile durations
func (rs *routeStats) calculate() (min, max, mean, median, p95, p99 time.Duration) {
	if len(rs.durations) == 0 {
		return 0, 0, 0, 0, 0, 0
	}

	// Sort durations for percentile calculations
	sort.Slice(rs.durations, func(i, j int) bool {
		return rs.durations[i] < rs.durations[j]
	})

	min = rs.durations[0]
	max = rs.durations[len(rs.durations)-1]

	// Calculate mean
	var sum time.Duration
	for _, d := range rs.durations {
		sum += d
	}
	mean = sum / time.Duration(len(rs.durations))

	// Calculate median
	median = rs.durations[len(rs.durations)/2]

	// Calculate percentiles
	p95idx := int(math.Ceil(float64(len(rs.durations))*0.95)) - 1
	p99idx := int(math.Ceil(float64(len(rs.durations))*0.99)) - 1
	p95 = rs.durations[p95idx]
	p99 = rs.durations[p99idx]

	return
}

// simulationClient handles HTTP communication with the fee tracking API
type simulationClient struct {
	baseURL   string
	authToken string
	client    *http.Client
	stats     map[string]*routeStats
}

// newSimulationClient creates and initializes a new simulation client
// It authenticates with the API and prepares performance tracking
func newSimulationClient() (*simulationClient, error) {
	// Create HTTP client with timeout
	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	sc := &simulationClient{
		baseURL: serverAddress,
		client:  client,
		stats: map[string]*routeStats{
			"auth":     {name: "Authentication"},
			"provider": {name: "Create Provider"},
			"client":   {name: "Create Client"},
			"contract": {name: "Create Contract"},
			"payment":  {name: "Create Payment"},
			"variance": {name: "Payment Variance"},
			"missing":  {name: "Missing Periods"},
			"status":   {name: "Payment Status"},
		},
	}

	// Get auth token
	token, err := sc.authenticate()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	sc.authToken = token

	return sc, nil
}

// authenticate performs API authentication and returns a JWT token
func (sc *simulationClient) authenticate() (string, error) {
	start := time.Now()
	defer func() {
		sc.stats["auth"].addDuration(time.Since(start))
	}()

	credentials := map[string]string{
		"api_key":    auth.TestAPIKey,
		"api_secret": auth.TestAPISecret,
	}

	body, err := json.Marshal(credentials)
	if err != nil {
		return "", err
	}

	resp, err := sc.client.Post(
		fmt.Sprintf("%s/api/v1/auth/token", sc.baseURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("authentication failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"jwt_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.Token, nil
}

// do sends an authenticated request and decodes the envelope's data field
// into out, recording the duration under the given stats key
func (sc *simulationClient) do(statKey, method, path string, payload, out interface{}) error {
	start := time.Now()
	defer func() {
		sc.stats[statKey].addDuration(time.Since(start))
	}()

	var reqBody io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(body)
	}

	req, err := http.NewRequest(method, sc.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := sc.client.Do(req)
	if err != nil {
		sc.stats[statKey].failures++
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug().Str("path", path).Str("response", string(respBody)).Msg("API response")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		sc.stats[statKey].failures++
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}
	return json.Unmarshal(envelope.Data, out)
}

func (sc *simulationClient) createProvider(name string) (*types.Provider, error) {
	var provider types.Provider
	err := sc.do("provider", "POST", "/api/v1/providers", types.Provider{ProviderName: name}, &provider)
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

func (sc *simulationClient) createClient(displayName string) (*types.Client, error) {
	var client types.Client
	err := sc.do("client", "POST", "/api/v1/clients", types.Client{DisplayName: displayName}, &client)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (sc *simulationClient) createContract(contract *types.Contract) (*types.Contract, error) {
	var created types.Contract
	if err := sc.do("contract", "POST", "/api/v1/contracts", contract, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (sc *simulationClient) createPayment(payment *types.Payment) (*types.Payment, error) {
	var created types.Payment
	if err := sc.do("payment", "POST", "/api/v1/payments", payment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (sc *simulationClient) getVariance(paymentID uint) (*billing.Variance, error) {
	var variance billing.Variance
	path := fmt.Sprintf("/api/v1/payments/%d/variance", paymentID)
	if err := sc.do("variance", "GET", path, nil, &variance); err != nil {
		return nil, err
	}
	return &variance, nil
}

func (sc *simulationClient) getMissingPeriods(clientID uint) ([]types.MissingPeriod, error) {
	var listing struct {
		Items []types.MissingPeriod `json:"items"`
		Total int64                 `json:"total"`
	}
	path := fmt.Sprintf("/api/v1/contracts/missing-periods?client_id=%d", clientID)
	if err := sc.do("missing", "GET", path, nil, &listing); err != nil {
		return nil, err
	}
	return listing.Items, nil
}

func (sc *simulationClient) getPaymentStatus() ([]types.PaymentStatus, error) {
	var listing struct {
		Items []types.PaymentStatus `json:"items"`
		Total int64                 `json:"total"`
	}
	if err := sc.do("status", "GET", "/api/v1/payments/status", nil, &listing); err != nil {
		return nil, err
	}
	return listing.Items, nil
}

// printPerformanceStats outputs formatted performance statistics for all API endpoints
func (sc *simulationClient) printPerformanceStats() {
	fmt.Println("\nAPI Performance Statistics")
	fmt.Println(strings.Repeat("-", 100))
	fmt.Printf("%-20s %10s %10s %10s %10s %10s %10s %10s %10s\n",
		"Endpoint", "Calls", "Errors", "Min", "Max", "Mean", "Median", "P95", "P99")
	fmt.Println(strings.Repeat("-", 100))

	for _, stats := range sc.stats {
		min, max, mean, median, p95, p99 := stats.calculate()
		fmt.Printf("%-20s %10d %10d %10s %10s %10s %10s %10s %10s\n",
			stats.name,
			stats.totalCalls,
			stats.failures,
			min.Round(time.Millisecond),
			max.Round(time.Millisecond),
			mean.Round(time.Millisecond),
			median.Round(time.Millisecond),
			p95.Round(time.Millisecond),
			p99.Round(time.Millisecond))
	}
	fmt.Println(strings.Repeat("-", 100))
}

// seededBook is one simulated client with its contract and payment history
type seededBook struct {
	client   *types.Client
	contract *types.Contract
	payments []*types.Payment
}

// main runs the fee tracking simulation
// It starts a local API server, seeds a book of clients with contracts and
// payment histories (leaving some periods deliberately unpaid), then runs
// the reconciliation reports against the seeded data
func main() {
	// Start the server in a goroutine
	go func() {
		if err := startServer(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for server to start
	time.Sleep(2 * time.Second)

	// Initialize simulation client
	simClient, err := newSimulationClient()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize simulation client")
	}

	// Seed providers
	var providerIDs []uint
	for _, name := range providerNames {
		provider, err := simClient.createProvider(name)
		if err != nil {
			log.Fatal().Err(err).Str("provider", name).Msg("Failed to create provider")
		}
		providerIDs = append(providerIDs, provider.ProviderID)
	}

	targetClients := rand.Intn(maxClients-minClients) + minClients
	log.Info().Int("target_clients", targetClients).Msg("Starting simulation")

	// Seed clients with contracts and payment histories concurrently
	booksChan := make(chan *seededBook, targetClients)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			seedClients(workerID, targetClients/numWorkers, providerIDs, simClient, booksChan)
		}(i)
	}
	wg.Wait()
	close(booksChan)

	var books []*seededBook
	for book := range booksChan {
		books = append(books, book)
	}
	log.Info().Int("clients_seeded", len(books)).Msg("All clients seeded")

	// Collect statistics during processing
	stats := struct {
		TotalClients   int
		TotalPayments  int
		TotalFees      float64
		WithinTarget   int
		Overpaid       int
		Underpaid      int
		SplitPayments  int
		MissingPeriods int
		PaidCurrent    int
		UnpaidCurrent  int
		FailedReports  int
		StartTime      time.Time
		Schedules      map[string]int
	}{
		StartTime: time.Now(),
		Schedules: make(map[string]int),
	}
	stats.TotalClients = len(books)

	// Score every payment and tally missing periods per client
	for _, book := range books {
		stats.Schedules[*book.contract.PaymentSchedule]++

		for _, payment := range book.payments {
			stats.TotalPayments++
			stats.TotalFees += payment.ActualFee

			variance, err := simClient.getVariance(payment.PaymentID)
			if err != nil {
				log.Error().Err(err).Uint("payment_id", payment.PaymentID).Msg("Failed to score payment")
				stats.FailedReports++
				continue
			}
			switch {
			case variance.Classification == nil:
				stats.SplitPayments++
			case *variance.Classification == billing.VarianceWithinTarget:
				stats.WithinTarget++
			case *variance.Classification == billing.VarianceOverpaid:
				stats.Overpaid++
			case *variance.Classification == billing.VarianceUnderpaid:
				stats.Underpaid++
			}
		}

		missing, err := simClient.getMissingPeriods(book.client.ClientID)
		if err != nil {
			log.Error().Err(err).Uint("client_id", book.client.ClientID).Msg("Failed to list missing periods")
			stats.FailedReports++
			continue
		}
		stats.MissingPeriods += len(missing)
		log.Info().
			Uint("client_id", book.client.ClientID).
			Str("client", book.client.DisplayName).
			Int("payments", len(book.payments)).
			Int("missing_periods", len(missing)).
			Msg("Client reconciled")
	}

	// Current period payment status across the book
	statuses, err := simClient.getPaymentStatus()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch payment status")
		stats.FailedReports++
	}
	for _, status := range statuses {
		if status.Status == "Paid" {
			stats.PaidCurrent++
		} else {
			stats.UnpaidCurrent++
		}
	}

	// Print summary
	duration := time.Since(stats.StartTime)
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("FEE RECONCILIATION SIMULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf(`
Book Statistics
---------------
Clients:          %d
Payments:         %d
Total Fees:       $%.2f
Within Target:    %d
Overpaid:         %d
Underpaid:        %d
Split Payments:   %d
Missing Periods:  %d
Paid (current):   %d
Unpaid (current): %d
Failed Reports:   %d
Duration:         %v

Schedule Distribution
---------------------
`, stats.TotalClients, stats.TotalPayments, stats.TotalFees,
		stats.WithinTarget, stats.Overpaid, stats.Underpaid,
		stats.SplitPayments, stats.MissingPeriods,
		stats.PaidCurrent, stats.UnpaidCurrent,
		stats.FailedReports, duration.Round(time.Millisecond))

	for schedule, count := range stats.Schedules {
		barLength := int(float64(count) / float64(stats.TotalClients) * 20)
		bar := strings.Repeat("#", barLength)
		fmt.Printf("%-10s: %s (%d)\n", schedule, bar, count)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))

	log.Info().
		Int("clients", stats.TotalClients).
		Int("payments", stats.TotalPayments).
		Int("missing_periods", stats.MissingPeriods).
		Float64("total_fees", stats.TotalFees).
		Dur("duration", duration).
		Msg("Simulation completed")

	simClient.printPerformanceStats()
}

// seedClients creates clients with one active contract each and a payment
// history walking back from the current billing period. Roughly a quarter of
// the periods are skipped to give the reconciliation reports gaps to find,
// and occasional payments cover two periods to exercise split handling.
func seedClients(workerID, numClients int, providerIDs []uint, simClient *simulationClient, booksChan chan<- *seededBook) {
	for i := 0; i < numClients; i++ {
		displayName := fmt.Sprintf("Plan Sponsor %d-%d", workerID, i+1)
		client, err := simClient.createClient(displayName)
		if err != nil {
			log.Error().Err(err).Str("client", displayName).Msg("Failed to create client")
			continue
		}

		schedule := schedules[rand.Intn(len(schedules))]
		feeType := "percentage"
		var percentRate, flatRate *float64
		if rand.Intn(3) == 0 {
			feeType = "flat"
			rate := float64(rand.Intn(4000) + 1000)
			flatRate = &rate
		} else {
			rate := 0.0005 + rand.Float64()*0.002
			percentRate = &rate
		}

		current := billing.ComputeAnchor(time.Now()).Current(billing.Schedule(schedule))
		start := current
		for p := 0; p < historyPeriods-1; p++ {
			start = start.Prev()
		}
		effective := fmt.Sprintf("%04d-%02d-01", start.Year, start.FirstMonth())
		providerID := providerIDs[rand.Intn(len(providerIDs))]

		contract, err := simClient.createContract(&types.Contract{
			ClientID:        client.ClientID,
			ProviderID:      &providerID,
			FeeType:         &feeType,
			PercentRate:     percentRate,
			FlatRate:        flatRate,
			PaymentSchedule: &schedule,
			EffectiveDate:   &effective,
			IsActive:        true,
		})
		if err != nil {
			log.Error().Err(err).Str("client", displayName).Msg("Failed to create contract")
			continue
		}

		book := &seededBook{client: client, contract: contract}
		assets := float64(rand.Intn(9_000_000) + 1_000_000)

		period := start
		for p := 0; p < historyPeriods; p++ {
			covered := period
			period = period.Next()

			// leave some periods unpaid
			if rand.Intn(4) == 0 {
				continue
			}

			expected := 0.0
			if percentRate != nil {
				expected = assets * *percentRate
			} else {
				expected = *flatRate
			}
			// jitter the fee so variance scoring has all three outcomes
			actual := expected + float64(rand.Intn(13)-6)

			payment := &types.Payment{
				ContractID:   contract.ContractID,
				ClientID:     client.ClientID,
				ReceivedDate: fmt.Sprintf("%04d-%02d-15", covered.Year, covered.FirstMonth()),
				TotalAssets:  &assets,
				ActualFee:    actual,
				Method:       &feeMethods[rand.Intn(len(feeMethods))],
			}
			applyCoverage(payment, covered, billing.Schedule(schedule))

			// occasionally cover two periods with one check
			if rand.Intn(8) == 0 && p < historyPeriods-1 {
				next := period
				period = period.Next()
				p++
				payment.ActualFee = actual * 2
				extendCoverage(payment, next, billing.Schedule(schedule))
			}

			created, err := simClient.createPayment(payment)
			if err != nil {
				log.Error().Err(err).Str("client", displayName).Msg("Failed to create payment")
				continue
			}
			book.payments = append(book.payments, created)
		}

		booksChan <- book
		log.Info().
			Str("worker_id", fmt.Sprintf("%d", workerID)).
			Uint("client_id", client.ClientID).
			Str("schedule", schedule).
			Int("payments", len(book.payments)).
			Msg("Client seeded")
	}
}

// applyCoverage stamps a payment's applied range start for the period
func applyCoverage(payment *types.Payment, period billing.Period, schedule billing.Schedule) {
	year := period.Year
	index := period.Index
	if schedule == billing.ScheduleQuarterly {
		payment.AppliedStartQuarter = &index
		payment.AppliedStartQuarterYear = &year
		return
	}
	payment.AppliedStartMonth = &index
	payment.AppliedStartMonthYear = &year
}

// extendCoverage stamps a payment's applied range end, making it a split
func extendCoverage(payment *types.Payment, period billing.Period, schedule billing.Schedule) {
	year := period.Year
	index := period.Index
	if schedule == billing.ScheduleQuarterly {
		payment.AppliedEndQuarter = &index
		payment.AppliedEndQuarterYear = &year
		return
	}
	payment.AppliedEndMonth = &index
	payment.AppliedEndMonthYear = &year
}

// startServer initializes and starts the fee tracking API server
// Sets up all required services, handlers and routes
func startServer() error {
	// Initialize database
	db, err := database.NewDatabase(os.Getenv("DATABASE_PATH"))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	authService := auth.NewService("planfee-secret-key")
	calendarService := calendar.NewService(db)
	clientService := clients.NewService(db)
	providerService := providers.NewService(db)
	paymentService := payments.NewService(db)
	contractService := contracts.NewService(db)
	documentService := documents.NewService(db)

	// Register test credentials
	authService.RegisterAPICredentials(auth.TestAPIKey, auth.TestAPISecret)

	// Stamp the billing period flags for today
	if err := calendarService.RefreshFlags(time.Now()); err != nil {
		return fmt.Errorf("failed to refresh billing period flags: %w", err)
	}

	// Initialize router
	router := gin.Default()
	setupSimulationRoutes(router, &simHandlers{
		auth:      auth.NewGinHandlers(authService),
		calendar:  calendar.NewGinHandlers(calendarService),
		clients:   clients.NewGinHandlers(clientService),
		providers: providers.NewGinHandlers(providerService),
		payments:  payments.NewGinHandlers(paymentService),
		contracts: contracts.NewGinHandlers(contractService),
		documents: documents.NewGinHandlers(documentService),
	})

	// Start the server
	return router.Run(":8080")
}

// simHandlers bundles the per-domain handler groups for route registration
type simHandlers struct {
	auth      *auth.GinHandlers
	calendar  *calendar.GinHandlers
	clients   *clients.GinHandlers
	providers *providers.GinHandlers
	payments  *payments.GinHandlers
	contracts *contracts.GinHandlers
	documents *documents.GinHandlers
}

// setupSimulationRoutes configures the endpoints the simulation exercises.
// Auth middleware is skipped; the simulation runs against a local throwaway
// database.
func setupSimulationRoutes(router *gin.Engine, h *simHandlers) {
	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/token", h.auth.GenerateTokenHandler())
		}

		clientGroup := v1.Group("/clients")
		{
			clientGroup.POST("", h.clients.CreateClientHandler())
			clientGroup.GET("", h.clients.ListClientsHandler())
			clientGroup.GET("/:client_id", h.clients.GetClientHandler())
		}

		providerGroup := v1.Group("/providers")
		{
			providerGroup.POST("", h.providers.CreateProviderHandler())
			providerGroup.GET("", h.providers.ListProvidersHandler())
		}

		contractGroup := v1.Group("/contracts")
		{
			contractGroup.POST("", h.contracts.CreateContractHandler())
			contractGroup.GET("/expected-periods", h.contracts.ExpectedPeriodsHandler())
			contractGroup.GET("/missing-periods", h.contracts.MissingPeriodsHandler())
		}

		paymentGroup := v1.Group("/payments")
		{
			paymentGroup.POST("", h.payments.CreatePaymentHandler())
			paymentGroup.GET("/status", h.payments.PaymentStatusHandler())
			paymentGroup.GET("/:payment_id/variance", h.payments.VarianceHandler())
			paymentGroup.GET("/:payment_id/distributions", h.payments.PaymentDistributionsHandler())
		}

		calendarGroup := v1.Group("/calendar")
		{
			calendarGroup.GET("/current-period", h.calendar.CurrentPeriodHandler())
		}
	}
}
