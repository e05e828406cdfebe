package migrations

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"formfield.app/configs/configslog"
	"formfield.app/models"
)

func MigrateCountriesTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating countries table...")
	err := db.AutoMigrate(&models.Country{})
	if err != nil {
		configslog.Log.Error("Failed to migrate countries table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Countries table migrated successfully")
	return nil
}
