package seeders

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"formfield.app/configs/configslog"
	"formfield.app/models"
)

// Countries is the reference data SeedCountries inserts.
var Countries = []models.Country{
	{Code: "AE", Name: "United Arab Emirates", PhoneCode: "+971", CurrencyCode: "AED"},
	{Code: "US", Name: "United States", PhoneCode: "+1", CurrencyCode: "USD"},
	{Code: "FR", Name: "France", PhoneCode: "+33", CurrencyCode: "EUR"},
	{Code: "DZ", Name: "Algeria", PhoneCode: "+213", CurrencyCode: "DZD"},
	{Code: "GB", Name: "United Kingdom", PhoneCode: "+44", CurrencyCode: "GBP"},
	{Code: "RU", Name: "Russia", PhoneCode: "+7", CurrencyCode: "RUB"},
}

func SeedCountries(db *gorm.DB) error {
	var createdCount int64 = 0
	var errorOccurred bool = false

	configslog.SLog.Info("Seeding countries...")

	for _, countryToSeed := range Countries {
		var existing models.Country
		result := db.Where("code = ?", countryToSeed.Code).First(&existing)

		if result.Error == nil {
			configslog.SLog.Debugf("Country '%s' already exists, skipping.", countryToSeed.Code)
			continue
		} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			configslog.Log.Error("Database error while checking country",
				zap.String("code", countryToSeed.Code),
				zap.Error(result.Error),
			)
			errorOccurred = true
			continue
		}

		if err := db.Create(&countryToSeed).Error; err != nil {
			configslog.Log.Error("Country could not be created",
				zap.String("code", countryToSeed.Code),
				zap.Error(err),
			)
			errorOccurred = true
			continue
		}

		configslog.SLog.Infof("Country '%s' created (ID: %d).", countryToSeed.Code, countryToSeed.ID)
		createdCount++
	}

	if errorOccurred {
		return errors.New("at least one country could not be seeded")
	}
	if createdCount > 0 {
		configslog.SLog.Infof("%d countries seeded.", createdCount)
	} else {
		configslog.SLog.Info("All countries already present, nothing added.")
	}
	return nil
}
