package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"formfield.app/handlers/api"
	"formfield.app/middlewares"
)

// NewApp returns a fiber app with the API error handler.
func NewApp(bodyLimit int) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "formfield",
		BodyLimit:    bodyLimit,
		ErrorHandler: api.ErrorHandler,
	})
}

// SetupRoutes sets up the middlewares and every route.
func SetupRoutes(app *fiber.App, logRequests bool) {
	// --- Middlewares ---
	app.Use(recoverMiddleware.New())
	app.Use(requestid.New())
	if logRequests {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${method} ${path} (${latency})\n",
		}))
	}
	app.Use(middlewares.Identity())

	// --- Route groups ---
	registerAPIRoutes(app)

	// --- 404 Handler ---
	app.Use(notFoundHandler)
}

func notFoundHandler(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotFound, "Resource not found.")
}
