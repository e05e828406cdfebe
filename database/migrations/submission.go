package migrations

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"formfield.app/configs/configslog"
	"formfield.app/models"
)

func MigrateSubmissionsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating submissions & field_submission tables...")
	err := db.AutoMigrate(&models.Submission{}, &models.SubmissionValue{})
	if err != nil {
		configslog.Log.Error("Failed to migrate submissions & field_submission tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Submissions & field_submission tables migrated successfully")
	return nil
}
