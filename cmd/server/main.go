package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"altn-timeclock/internal/adapters/http/middleware"
	"altn-timeclock/internal/adapters/http/routes"
	"altn-timeclock/internal/adapters/persistence/filestore"
	"altn-timeclock/internal/adapters/persistence/models"
	"altn-timeclock/internal/adapters/persistence/repositories"
	"altn-timeclock/internal/adapters/upstream"
	"altn-timeclock/internal/config"
	"altn-timeclock/internal/core/services"
	"altn-timeclock/internal/pkg/passcode"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Open the local event store
	events, tokens, err := openStore(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open event store: %v", err)
	}

	// Upstream client for the HQ server
	client := upstream.NewClient(cfg.Upstream.BaseURL, time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second)

	// Wire services
	verifier := passcode.NewVerifier()
	rosterService := services.NewRosterService(client)
	if name, code, ok := cfg.FallbackAdmin(); ok {
		rosterService.SetFallbackAdmin(name, code)
	}

	syncService := services.NewSyncService(events, client, cfg.Sync.RetentionWeeks)
	reconcileService := services.NewReconcileService(events, syncService, rosterService)
	clockService := services.NewClockService(events, rosterService, reconcileService, syncService, verifier)
	autoClockOut := services.NewAutoClockOutService(events, syncService, cfg.Clock.ClosingWeekday, cfg.Clock.ClosingWeekend)
	payrollService := services.NewPayrollService(reconcileService, rosterService)
	authService := services.NewAuthService(rosterService, tokens, verifier, cfg)

	// Background loops: event sync + auto clock-out + roster refresh
	autoService := services.NewSyncAutoService(syncService, rosterService, autoClockOut, cfg.Sync.IntervalSeconds)
	autoService.Start()
	defer autoService.Stop()

	// Nightly housekeeping
	cronService := services.NewCronService(events, tokens, syncService)
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ALTN Timeclock API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, &routes.Deps{
		Events:    events,
		Auth:      authService,
		Clock:     clockService,
		Reconcile: reconcileService,
		Roster:    rosterService,
		Payroll:   payrollService,
		Sync:      syncService,
		AutoOut:   autoClockOut,
	}, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s, STORE: %s]", cfg.Port, cfg.AppMode, cfg.Store.Driver)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// openStore opens the configured event store backend. MySQL is the
// default; the file store keeps a kiosk running without a database.
func openStore(cfg *config.Config) (repositories.EventRepository, repositories.RefreshTokenRepository, error) {
	if cfg.UseMySQL() {
		db, err := config.ConnectDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}

		if err := models.AutoMigrate(db); err != nil {
			return nil, nil, err
		}
		log.Println("✅ Database migration completed")

		return repositories.NewEventRepository(db), repositories.NewRefreshTokenRepository(db), nil
	}

	store, err := filestore.Open(cfg.Store.FilePath)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("✅ File store opened: %s", cfg.Store.FilePath)

	// Refresh tokens are session state, memory is fine without a DB
	return store, repositories.NewMemoryRefreshTokenRepository(), nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	if err := config.CloseDatabase(); err != nil {
		log.Printf("❌ Error closing database: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
