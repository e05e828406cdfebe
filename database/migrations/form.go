package migrations

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"formfield.app/configs/configslog"
	"formfield.app/models"
)

func MigrateFormsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating forms & fields tables...")
	err := db.AutoMigrate(&models.Form{}, &models.Field{})
	if err != nil {
		configslog.Log.Error("Failed to migrate forms & fields tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Forms & fields tables migrated successfully")
	return nil
}
