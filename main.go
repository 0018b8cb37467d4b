package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/MouctarBahLk/soorocampus-sub001/app/config"
	"github.com/MouctarBahLk/soorocampus-sub001/app/database"
	appLogger "github.com/MouctarBahLk/soorocampus-sub001/app/logger"
	"github.com/MouctarBahLk/soorocampus-sub001/app/routes/auth"
	"github.com/MouctarBahLk/soorocampus-sub001/app/routes/dossier"
	"github.com/MouctarBahLk/soorocampus-sub001/app/routes/payments"
	"github.com/MouctarBahLk/soorocampus-sub001/app/services"
	"github.com/MouctarBahLk/soorocampus-sub001/app/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// customErrorHandler maps uncaught errors to the API error envelope.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	errCode := "external_service_failure"
	switch code {
	case fiber.StatusNotFound:
		errCode = "not_found"
	case fiber.StatusUnauthorized:
		errCode = "unauthenticated"
	case fiber.StatusForbidden:
		errCode = "forbidden"
	case fiber.StatusBadRequest:
		errCode = "validation_error"
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    errCode,
	})
}

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	appLogger.Init(config.Get().Logging.Level, config.Get().Logging.Format)

	// Initialize database
	config.InitDB()
	defer config.GetDB().Close()

	// Run database migrations
	if err := database.RunMigrations(config.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize object storage
	objStore, err := storage.NewS3Storage(config.Get())
	if err != nil {
		log.Fatal("Failed to initialize object storage: ", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Sooro Campus",
		ErrorHandler: customErrorHandler,
		BodyLimit:    12 << 20,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	auth.SetupAuthRoutes(app)

	// Setup dossier routes
	dossier.SetupDossierRoutes(app, objStore)

	// Setup payments routes
	payments.SetupPaymentsRoutes(app)

	// Start background scheduler
	services.StartScheduler(config.GetDB(), payments.GetReconciler())

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api") {
			return fiber.NewError(fiber.StatusNotFound, "Route not found")
		}
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})

	// Start server
	addr := fmt.Sprintf(":%d", config.Get().Server.Port)
	log.Println("Server starting on " + addr)
	log.Fatal(app.Listen(addr))
}
