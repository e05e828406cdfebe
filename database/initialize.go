package database

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"formfield.app/configs/configslog"
	"formfield.app/database/migrations"
	"formfield.app/database/seeders"
)

// Initialize runs migrations and/or seeders in one transaction.
func Initialize(db *gorm.DB, migrate bool, seed bool) (err error) {
	if !migrate && !seed {
		configslog.SLog.Info("Neither migrate nor seed flag given, nothing to do.")
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		configslog.Log.Error("Database transaction could not be started", zap.Error(tx.Error))
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			configslog.Log.Error("Database initialization panicked", zap.Any("panic_info", r))
			err = fmt.Errorf("database initialization panicked: %v", r)
			return
		}
		if err != nil {
			configslog.SLog.Warn("Rolling back because initialization failed.")
			if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, gorm.ErrInvalidTransaction) {
				configslog.Log.Error("Rollback failed as well", zap.Error(rbErr))
			}
		}
	}()

	configslog.SLog.Info("Database initialization starting...")

	if migrate {
		if err := RunMigrationsInOrder(tx); err != nil {
			configslog.Log.Error("Migrations failed", zap.Error(err))
			return err
		}
	} else {
		configslog.SLog.Info("Migrate flag not given, skipping migrations.")
	}

	if seed {
		if err := CheckAndRunSeeders(tx); err != nil {
			configslog.Log.Error("Seeding failed", zap.Error(err))
			return err
		}
	} else {
		configslog.SLog.Info("Seed flag not given, skipping seeders.")
	}

	if err := tx.Commit().Error; err != nil {
		configslog.Log.Error("Commit failed", zap.Error(err))
		return err
	}

	configslog.SLog.Info("Database initialization completed")
	return nil
}

// RunMigrationsInOrder creates the tables, referenced tables first.
func RunMigrationsInOrder(db *gorm.DB) error {
	configslog.SLog.Info("Running migrations in order...")

	steps := []struct {
		name string
		run  func(*gorm.DB) error
	}{
		{"Country", migrations.MigrateCountriesTable},
		{"Form", migrations.MigrateFormsTables},
		{"Submission", migrations.MigrateSubmissionsTables},
	}
	for _, step := range steps {
		configslog.SLog.Infof(" -> %s migrations running...", step.name)
		if err := step.run(db); err != nil {
			return fmt.Errorf("%s migration: %w", step.name, err)
		}
		configslog.SLog.Infof(" -> %s migrations done.", step.name)
	}

	configslog.SLog.Info("All migrations completed.")
	return nil
}

// CheckAndRunSeeders inserts missing reference data.
func CheckAndRunSeeders(db *gorm.DB) error {
	configslog.SLog.Info(" -> Country seeder running...")
	if err := seeders.SeedCountries(db); err != nil {
		return fmt.Errorf("country seeder: %w", err)
	}
	configslog.SLog.Info(" -> Country seeder done.")
	return nil
}
