package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/summitfg/planfee-api/internal/auth"
	"github.com/summitfg/planfee-api/internal/calendar"
	"github.com/summitfg/planfee-api/internal/clients"
	"github.com/summitfg/planfee-api/internal/contracts"
	"github.com/summitfg/planfee-api/internal/database"
	"github.com/summitfg/planfee-api/internal/documents"
	"github.com/summitfg/planfee-api/internal/payments"
	"github.com/summitfg/planfee-api/internal/providers"
	"github.com/summitfg/planfee-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	// Configure pretty logging for development
	if os.Getenv("ENVIRONMENT") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global log level
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the fee tracking API server with graceful
// shutdown support. It opens the database, stamps the billing calendar
// flags for the current date, and wires all services and routes.
func main() {
	// Initialize database
	db, err := database.NewDatabase(os.Getenv("DATABASE_PATH"))
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	// Initialize router
	router := gin.Default()

	// Initialize services and handlers
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "planfee-secret-key"
	}
	middleware.SetSigningKey(jwtSecret)
	authService := auth.NewService(jwtSecret)
	authHandlers := auth.NewGinHandlers(authService)
	// Register test credentials
	authService.RegisterAPICredentials(auth.TestAPIKey, auth.TestAPISecret)

	calendarService := calendar.NewService(db)
	calendarHandlers := calendar.NewGinHandlers(calendarService)

	clientService := clients.NewService(db)
	clientHandlers := clients.NewGinHandlers(clientService)

	providerService := providers.NewService(db)
	providerHandlers := providers.NewGinHandlers(providerService)

	paymentService := payments.NewService(db)
	paymentHandlers := payments.NewGinHandlers(paymentService)

	contractService := contracts.NewService(db)
	contractHandlers := contracts.NewGinHandlers(contractService)

	documentService := documents.NewService(db)
	documentHandlers := documents.NewGinHandlers(documentService)

	// Stamp the current and previous period flags before serving traffic.
	// A coverage fault means the seeded calendar does not span today's date;
	// the server still comes up so the admin refresh endpoint can report it.
	if err := calendarService.RefreshFlags(time.Now()); err != nil {
		if errors.Is(err, calendar.ErrFlagCoverage) {
			zlog.Error().Err(err).Msg("Billing calendar does not cover the current date")
		} else {
			zlog.Fatal().Err(err).Msg("Failed to refresh billing period flags")
		}
	}

	// Setup middleware
	router.Use(middleware.RateLimit())

	// Setup API routes
	setupRoutes(router, &handlerSet{
		auth:      authHandlers,
		calendar:  calendarHandlers,
		clients:   clientHandlers,
		providers: providerHandlers,
		payments:  paymentHandlers,
		contracts: contractHandlers,
		documents: documentHandlers,
	})

	// Get port from env otherwise it's 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// handlerSet bundles the per-domain handler groups for route registration
type handlerSet struct {
	auth      *auth.GinHandlers
	calendar  *calendar.GinHandlers
	clients   *clients.GinHandlers
	providers *providers.GinHandlers
	payments  *payments.GinHandlers
	contracts *contracts.GinHandlers
	documents *documents.GinHandlers
}

// setupRoutes configures all API endpoints and their handlers
// It groups routes by functionality and applies appropriate middleware:
// - Auth routes: Public endpoints for authentication
// - Domain routes: Protected by JWT authentication
// - Internal routes: Protected by internal network authentication
func setupRoutes(router *gin.Engine, h *handlerSet) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/token", h.auth.GenerateTokenHandler())
		}

		// Client routes, including contacts and provider relationships
		clientGroup := v1.Group("/clients")
		clientGroup.Use(middleware.JWTAuth())
		{
			clientGroup.POST("", h.clients.CreateClientHandler())
			clientGroup.GET("", h.clients.ListClientsHandler())
			clientGroup.GET("/:client_id", h.clients.GetClientHandler())
			clientGroup.PUT("/:client_id", h.clients.UpdateClientHandler())
			clientGroup.DELETE("/:client_id", h.clients.DeleteClientHandler())

			clientGroup.POST("/:client_id/contacts", h.clients.CreateContactHandler())
			clientGroup.GET("/:client_id/contacts", h.clients.ListContactsHandler())

			clientGroup.POST("/:client_id/providers", h.clients.CreateClientProviderHandler())
			clientGroup.GET("/:client_id/providers", h.clients.ListClientProvidersHandler())

			clientGroup.GET("/:client_id/documents", h.documents.ClientDocumentsHandler())
		}

		contactGroup := v1.Group("/contacts")
		contactGroup.Use(middleware.JWTAuth())
		{
			contactGroup.PUT("/:contact_id", h.clients.UpdateContactHandler())
			contactGroup.DELETE("/:contact_id", h.clients.DeleteContactHandler())
		}

		relationshipGroup := v1.Group("/client-providers")
		relationshipGroup.Use(middleware.JWTAuth())
		{
			relationshipGroup.PUT("/:id", h.clients.UpdateClientProviderHandler())
			relationshipGroup.DELETE("/:id", h.clients.DeleteClientProviderHandler())
		}

		// Provider routes
		providerGroup := v1.Group("/providers")
		providerGroup.Use(middleware.JWTAuth())
		{
			providerGroup.POST("", h.providers.CreateProviderHandler())
			providerGroup.GET("", h.providers.ListProvidersHandler())
			providerGroup.GET("/:provider_id", h.providers.GetProviderHandler())
			providerGroup.PUT("/:provider_id", h.providers.UpdateProviderHandler())
			providerGroup.DELETE("/:provider_id", h.providers.DeleteProviderHandler())
		}

		// Contract routes, including fee estimation and reconciliation
		contractGroup := v1.Group("/contracts")
		contractGroup.Use(middleware.JWTAuth())
		{
			contractGroup.POST("", h.contracts.CreateContractHandler())
			contractGroup.GET("", h.contracts.ListContractsHandler())
			contractGroup.GET("/active", h.contracts.ActiveContractsHandler())
			contractGroup.GET("/expected-fee", h.contracts.ExpectedFeeHandler())
			contractGroup.GET("/expected-periods", h.contracts.ExpectedPeriodsHandler())
			contractGroup.GET("/missing-periods", h.contracts.MissingPeriodsHandler())
			contractGroup.GET("/:contract_id", h.contracts.GetContractHandler())
			contractGroup.PUT("/:contract_id", h.contracts.UpdateContractHandler())
			contractGroup.DELETE("/:contract_id", h.contracts.DeleteContractHandler())
		}

		// Payment routes, including distributions, variance, and status
		paymentGroup := v1.Group("/payments")
		paymentGroup.Use(middleware.JWTAuth())
		{
			paymentGroup.POST("", h.payments.CreatePaymentHandler())
			paymentGroup.GET("", h.payments.ListPaymentsHandler())
			paymentGroup.GET("/split-distributions", h.payments.SplitDistributionsHandler())
			paymentGroup.GET("/expanded-periods", h.payments.ExpandedPeriodsHandler())
			paymentGroup.GET("/coverage", h.payments.CoverageHandler())
			paymentGroup.GET("/status", h.payments.PaymentStatusHandler())
			paymentGroup.GET("/:payment_id", h.payments.GetPaymentHandler())
			paymentGroup.PUT("/:payment_id", h.payments.UpdatePaymentHandler())
			paymentGroup.DELETE("/:payment_id", h.payments.DeletePaymentHandler())
			paymentGroup.GET("/:payment_id/distributions", h.payments.PaymentDistributionsHandler())
			paymentGroup.GET("/:payment_id/variance", h.payments.VarianceHandler())
			paymentGroup.GET("/:payment_id/documents", h.documents.PaymentDocumentsHandler())
		}

		// Document routes
		documentGroup := v1.Group("/documents")
		documentGroup.Use(middleware.JWTAuth())
		{
			documentGroup.POST("", h.documents.CreateDocumentHandler())
			documentGroup.GET("", h.documents.ListDocumentsHandler())
			documentGroup.GET("/:document_id", h.documents.GetDocumentHandler())
			documentGroup.PUT("/:document_id", h.documents.UpdateDocumentHandler())
			documentGroup.DELETE("/:document_id", h.documents.DeleteDocumentHandler())
			documentGroup.POST("/:document_id/clients/:client_id", h.documents.LinkClientHandler())
			documentGroup.DELETE("/:document_id/clients/:client_id", h.documents.UnlinkClientHandler())
			documentGroup.POST("/:document_id/payments/:payment_id", h.documents.LinkPaymentHandler())
			documentGroup.DELETE("/:document_id/payments/:payment_id", h.documents.UnlinkPaymentHandler())
		}

		// Calendar routes
		calendarGroup := v1.Group("/calendar")
		calendarGroup.Use(middleware.JWTAuth())
		{
			calendarGroup.GET("/periods", h.calendar.ListHandler())
			calendarGroup.GET("/current-month", h.calendar.CurrentMonthHandler())
			calendarGroup.GET("/current-quarter", h.calendar.CurrentQuarterHandler())
			calendarGroup.GET("/previous-month", h.calendar.PreviousMonthHandler())
			calendarGroup.GET("/previous-quarter", h.calendar.PreviousQuarterHandler())
			calendarGroup.GET("/current-period", h.calendar.CurrentPeriodHandler())
		}

		// Internal routes (should be protected by internal network)
		internal := v1.Group("/internal")
		internal.Use(middleware.InternalAuth())
		{
			internal.POST("/calendar/refresh", h.calendar.RefreshHandler())
		}
	}
}
