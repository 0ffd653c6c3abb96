package routes

import (
	"time"

	"altn-timeclock/internal/adapters/http/handlers"
	"altn-timeclock/internal/adapters/http/middleware"
	"altn-timeclock/internal/adapters/persistence/repositories"
	"altn-timeclock/internal/config"
	"altn-timeclock/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// Deps carries the wired repositories and services. They are built in
// main because the store driver selection and the background loops
// need them before the HTTP layer exists.
type Deps struct {
	Events    repositories.EventRepository
	Auth      *services.AuthService
	Clock     *services.ClockService
	Reconcile *services.ReconcileService
	Roster    *services.RosterService
	Payroll   *services.PayrollService
	Sync      *services.SyncService
	AutoOut   *services.AutoClockOutService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, deps *Deps, cfg *config.Config) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.Auth, cfg)
	clockHandler := handlers.NewClockHandler(deps.Clock, deps.Reconcile, deps.Roster)
	adminHandler := handlers.NewAdminHandler(
		deps.Events,
		deps.Reconcile,
		deps.Payroll,
		deps.Sync,
		deps.AutoOut,
		deps.Roster,
	)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Kiosk routes (public; the passcode in each request is the auth)
	clockRoutes := apiV1.Group("/clock")
	setupClockRoutes(clockRoutes, clockHandler)

	// Admin routes (access levels 1-2 only)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupClockRoutes configures the kiosk routes
func setupClockRoutes(router fiber.Router, handler *handlers.ClockHandler) {
	router.Post("/", middleware.AuthRateLimiter(), handler.Clock)
	router.Post("/history", middleware.AuthRateLimiter(), handler.History)

	router.Get("/clocked-in", middleware.NoCacheHeaders(), handler.ClockedIn)

	// Roster lists change on the refresh interval, cache briefly
	router.Get("/employees", middleware.CacheControl(1*time.Minute), handler.Employees)
	router.Get("/locations", middleware.CacheControl(1*time.Minute), handler.Locations)
}

// setupAdminRoutes configures the admin routes
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	router.Use(middleware.NoCacheHeaders())

	router.Get("/events", handler.ListEvents)
	router.Put("/events/:id", handler.UpdateEvent)
	router.Get("/weeks", handler.WeeklyGroups)
	router.Get("/hours", handler.Hours)
	router.Get("/payroll", handler.PayrollReport)

	router.Post("/change-request", handler.SubmitChangeRequest)
	router.Post("/sweep", handler.TriggerSweep)
	router.Post("/sync", handler.TriggerSync)
	router.Post("/roster/refresh", handler.RefreshRoster)

	// Wiping the store is owner territory
	router.Delete("/events", middleware.OwnerOnly(), handler.ClearEvents)
}
