// Package routes defines the API routing configuration.
// It wires repositories into services and services into handlers, then
// registers every route group with its middleware.
package routes

import (
	"astromart/internal/config"
	"astromart/internal/handlers"
	"astromart/internal/middleware"
	"astromart/internal/models"
	"astromart/internal/repositories"
	"astromart/internal/services/auth"
	"astromart/internal/services/availability"
	"astromart/internal/services/ledger"
	"astromart/internal/services/order"
	"astromart/internal/services/recharge"
	"astromart/internal/services/session"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, platformWalletID uint) {
	// Repositories
	walletRepo := repositories.NewWalletRepository(db)
	providerRepo := repositories.NewProviderRepository(db)
	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	// Services
	//
	// The nil check must happen on the concrete pointer: assigning a nil
	// *cache.CacheService straight into the interface would make it
	// non-nil and skip the service's no-cache fallback.
	var walletCache ledger.WalletCache
	if repositories.CacheService != nil {
		walletCache = repositories.CacheService
	}
	ledgerService := ledger.NewService(walletRepo, walletCache)
	sessionRegistry := session.NewRegistry(providerRepo)
	availabilityService := availability.NewService(providerRepo)
	rechargeService := recharge.NewService(ledgerService)
	orderService := order.NewService(ledgerService, userRepo, productRepo, orderRepo, providerRepo, order.Config{
		PlatformWalletID:  platformWalletID,
		CommissionPercent: config.CommissionPercent(),
	})
	authService := auth.NewService(userRepo, providerRepo, walletRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(ledgerService, rechargeService)
	orderHandler := handlers.NewOrderHandler(orderService)
	sessionHandler := handlers.NewSessionHandler(sessionRegistry)
	astrologerHandler := handlers.NewAstrologerHandler(availabilityService)

	app.Get("/health", handlers.Health)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/register/astrologer", authHandler.RegisterAstrologer)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	// Everything below requires a valid bearer token.
	protected := api.Use(middleware.Auth())

	protected.Post("/logout", authHandler.Logout)
	protected.Post("/change-password", authHandler.ChangePassword)

	wallet := protected.Group("/wallet")
	wallet.Get("/", middleware.RequirePermission(models.PermissionWalletRead), walletHandler.GetWallet)
	wallet.Get("/entries", middleware.RequirePermission(models.PermissionWalletRead), walletHandler.GetEntries)
	wallet.Post("/recharge", middleware.RequirePermission(models.PermissionWalletWrite), walletHandler.Recharge)

	orders := protected.Group("/orders")
	orders.Post("/", orderHandler.PlaceOrder)
	orders.Get("/", orderHandler.ListMyOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Post("/:id/cancel", orderHandler.CancelOrder)

	sessions := protected.Group("/sessions")
	sessions.Post("/", sessionHandler.Begin)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Post("/:id/activate", sessionHandler.Activate)
	sessions.Post("/:id/end", sessionHandler.End)
	sessions.Post("/:id/reject", middleware.RequireRole(models.RoleAstrologer), sessionHandler.Reject)

	astrologer := protected.Group("/astrologer")
	astrologer.Put("/status", middleware.RequireRole(models.RoleAstrologer), astrologerHandler.SetStatus)
	astrologer.Put("/capability", middleware.RequireRole(models.RoleAstrologer), astrologerHandler.SetCapability)
	protected.Get("/astrologers/:id/availability", astrologerHandler.GetAvailability)

	// Billing ticks and payouts come from trusted internal callers.
	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Post("/sessions/meter", orderHandler.MeterSession)
	admin.Post("/payouts", orderHandler.Payout)
}
