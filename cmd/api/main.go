package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"cuserentals_backend/internal/controller"
	"cuserentals_backend/internal/middleware"
	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/config"
	"cuserentals_backend/pkg/cron"
	"cuserentals_backend/pkg/database"
	"cuserentals_backend/pkg/email"
	"cuserentals_backend/pkg/seed"
	"cuserentals_backend/pkg/utils/jwt"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/signup", controller.Signup)
	auth.Post("/login", controller.Login)
	auth.Post("/request-reset", controller.RequestPasswordReset)
	auth.Post("/reset-password", controller.ResetPassword)

	// Public listing routes
	api.Get("/listings", controller.ListListings)
	api.Get("/listings/rentals", controller.ListRentals)
	api.Get("/listings/sublets", controller.ListSublets)
	api.Get("/listings/rooms", controller.ListRooms)
	api.Get("/listings/short-term", controller.ListShortTerm)
	api.Get("/listings/:id", controller.GetListing)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)
	protected.Post("/change-password", controller.ChangePassword)

	// Landlord listing management
	myListings := protected.Group("/my-listings")
	myListings.Get("/", controller.ListMyListings)
	myListings.Post("/", controller.CreateListing)
	myListings.Put("/:id", middleware.CheckListingOwnership(), controller.UpdateListing)
	myListings.Delete("/:id", middleware.CheckListingOwnership(), controller.DeleteListing)

	// Admin moderation queue
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.RequireCapability(model.CapModerateListings))
	admin.Get("/listings/pending", controller.ListPendingListings)
	admin.Post("/listings/:id/approve", controller.ApproveListing)
	admin.Post("/listings/:id/reject", controller.RejectListing)
	admin.Post("/listings/:id/request-changes", controller.RequestListingChanges)

	// Payment routes
	payments := api.Group("/payments")
	payments.Post("/webhook", controller.HandleStripeWebhook)

	paymentsProtected := payments.Use(middleware.AuthMiddleware())
	paymentsProtected.Post("/create-checkout-session", controller.CreateCheckoutSession)
	paymentsProtected.Get("/subscription", controller.GetSubscriptionDetails)
	paymentsProtected.Post("/cancel-subscription", controller.CancelSubscription) // Dönem sonu iptal
	paymentsProtected.Post("/sync-subscriptions", controller.SyncSubscriptions)
	paymentsProtected.Post("/portal", controller.CreatePortalSession)
}

func main() {
	cfg := config.Load()

	jwt.Init(cfg.JWT.Secret)

	if err := email.InitEmailService(cfg.Email.APIKey, cfg.Email.From); err != nil {
		log.Printf("Email service disabled: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.Listing{},
		&model.Photo{},
		&model.ListingUtility{},
		&model.ListingType{},
		&model.WebhookEvent{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	seed.SeedListingTypes(database.GetDB())

	controller.InitControllers(cfg)

	cron.InitListingExpiryCron()
	cron.InitSubscriptionReconcileCron(controller.Approver())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
