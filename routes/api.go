package routes

import (
	"github.com/gofiber/fiber/v2"

	"formfield.app/handlers/api"
	"formfield.app/middlewares"
)

// registerAPIRoutes defines the /api routes.
func registerAPIRoutes(app *fiber.App) {
	countryHandler := api.NewCountryHandler()
	formHandler := api.NewFormHandler()
	submissionHandler := api.NewSubmissionHandler()

	apiGroup := app.Group("/api")
	auth := middlewares.RequireUser()

	// --- Reference data ---
	apiGroup.Get("/countries", countryHandler.ListCountries) // GET /api/countries

	// --- Forms ---
	apiGroup.Get("/forms", auth, formHandler.ListForms)                   // GET /api/forms
	apiGroup.Post("/forms", auth, formHandler.CreateForm)                 // POST /api/forms
	apiGroup.Get("/forms/:id", formHandler.ShowForm)                      // GET /api/forms/{id}
	apiGroup.Put("/forms/:id", auth, formHandler.UpdateForm)              // PUT /api/forms/{id}
	apiGroup.Delete("/forms/:id", auth, formHandler.DeleteForm)           // DELETE /api/forms/{id}
	apiGroup.Post("/forms/:id/submissions", submissionHandler.SubmitForm) // POST /api/forms/{id}/submissions (anonymous allowed)

	// --- Submissions ---
	apiGroup.Get("/submissions", auth, submissionHandler.ListSubmissions)        // GET /api/submissions
	apiGroup.Get("/submissions/:id", auth, submissionHandler.ShowSubmission)     // GET /api/submissions/{id}
	apiGroup.Patch("/submissions/:id", auth, submissionHandler.UpdateSubmission) // PATCH /api/submissions/{id}
}
