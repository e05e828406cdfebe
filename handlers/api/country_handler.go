package api

import (
	"github.com/gofiber/fiber/v2"

	"formfield.app/services"
)

// CountryHandler serves country reference data.
type CountryHandler struct {
	service services.ICountryService
}

// NewCountryHandler returns a CountryHandler.
func NewCountryHandler() *CountryHandler {
	return &CountryHandler{service: services.NewCountryService()}
}

// ListCountries lists every country.
func (h *CountryHandler) ListCountries(c *fiber.Ctx) error {
	countries, err := h.service.GetAllCountries(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]CountryResponse, len(countries))
	for i, country := range countries {
		out[i] = toCountry(country)
	}
	return c.JSON(fiber.Map{"data": out})
}
