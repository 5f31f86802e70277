package cmd

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"ticket-gate/config"
	"ticket-gate/internal/handlers"
	"ticket-gate/internal/lookup"
	"ticket-gate/internal/realtime"
	"ticket-gate/internal/store"
	"ticket-gate/internal/token"
	"ticket-gate/internal/verifier"
	"ticket-gate/security"
	"ticket-gate/utils"

	_ "ticket-gate/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	if cfg.TicketSecret == "" {
		log.Fatal("TICKET_SECRET must be set")
	}

	signer, err := token.NewSigner([]byte(cfg.TicketSecret), []byte(cfg.TicketSecretPrevious))
	if err != nil {
		return err
	}

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	// Initialize services
	ticketStore := store.NewAdapter(app)
	verifierService := verifier.NewService(signer, ticketStore, cfg.TokenMaxAge, cfg.StoreTimeout)
	lookupService := lookup.NewService(ticketStore)
	limiter := security.NewLookupLimiter(redisClient, cfg.LookupRateLimit)
	publisher := realtime.NewGatePublisher(pn)

	// Initialize handlers
	scanHandler := handlers.NewScanHandler(app, verifierService, lookupService, limiter, publisher)
	ticketHandler := handlers.NewTicketHandler(app, verifierService)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Scan endpoints
		e.Router.POST("/api/scan/verify", scanHandler.Verify)
		e.Router.POST("/api/scan/redeem", scanHandler.Redeem)
		e.Router.GET("/api/scan/lookup", scanHandler.Lookup)

		// Ticket endpoints
		e.Router.POST("/api/tickets/issue-token", ticketHandler.IssueToken)

		// Monitoring
		if cfg.EnableMetrics {
			e.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}
