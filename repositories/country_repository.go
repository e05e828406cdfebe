package repositories

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"formfield.app/configs/configsdatabase"
	"formfield.app/configs/configslog"
	"formfield.app/models"
)

// ICountryRepository country database operations.
type ICountryRepository interface {
	FindAll(ctx context.Context) ([]models.Country, error)
	FindByCode(ctx context.Context, code string) (*models.Country, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, country *models.Country) error
}

// CountryRepository implements ICountryRepository.
type CountryRepository struct {
	db   *gorm.DB
	base IBaseRepository[models.Country]
}

// NewCountryRepository returns a repository on the process-wide connection.
func NewCountryRepository() ICountryRepository {
	return NewCountryRepositoryTx(configsdatabase.GetDB())
}

// NewCountryRepositoryTx returns a repository bound to tx.
func NewCountryRepositoryTx(tx *gorm.DB) ICountryRepository {
	return &CountryRepository{db: tx, base: NewBaseRepository[models.Country](tx)}
}

func (r *CountryRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// FindAll returns every country ordered by name.
func (r *CountryRepository) FindAll(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	if err := r.getDB(ctx).Order("name asc").Find(&countries).Error; err != nil {
		configslog.Log.Error("CountryRepository.FindAll: DB error", zap.Error(err))
		return nil, err
	}
	return countries, nil
}

// FindByCode looks a country up by its ISO code.
func (r *CountryRepository) FindByCode(ctx context.Context, code string) (*models.Country, error) {
	var country models.Country
	err := r.getDB(ctx).Where("code = ?", code).First(&country).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("CountryRepository.FindByCode: DB error", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return &country, nil
}

// ExistsByCode reports whether a country with code exists.
func (r *CountryRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Country{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// Create inserts a country.
func (r *CountryRepository) Create(ctx context.Context, country *models.Country) error {
	return r.base.Create(ctx, country)
}

var _ ICountryRepository = (*CountryRepository)(nil)
