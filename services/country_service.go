package services

import (
	"context"
	"errors"

	"formfield.app/models"
	"formfield.app/repositories"
)

// CountryServiceError country service errors.
type CountryServiceError string

func (e CountryServiceError) Error() string { return string(e) }

const ErrCountryNotFound CountryServiceError = "country not found"

// ICountryService country lookups.
type ICountryService interface {
	GetAllCountries(ctx context.Context) ([]models.Country, error)
	GetCountryByCode(ctx context.Context, code string) (*models.Country, error)
}

// CountryService implements ICountryService.
type CountryService struct {
	repo repositories.ICountryRepository
}

// NewCountryService returns a CountryService on the process-wide connection.
func NewCountryService() ICountryService {
	return &CountryService{repo: repositories.NewCountryRepository()}
}

// GetAllCountries lists every country by name.
func (s *CountryService) GetAllCountries(ctx context.Context) ([]models.Country, error) {
	return s.repo.FindAll(ctx)
}

// GetCountryByCode looks up one country.
func (s *CountryService) GetCountryByCode(ctx context.Context, code string) (*models.Country, error) {
	country, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCountryNotFound
		}
		return nil, err
	}
	return country, nil
}

var _ ICountryService = (*CountryService)(nil)
