package configsdatabase

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"formfield.app/configs"
	"formfield.app/configs/configslog"
)

var db *gorm.DB

// Open connects to the database described by cfg.
func Open(cfg *configs.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBType {
	case configs.DBTypePostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	case configs.DBTypeSQLite:
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported db_type %q", cfg.DBType)
	}

	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBType == configs.DBTypeSQLite {
		// One writer; FOR UPDATE is a no-op there.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return conn, nil
}

// InitDB opens the process-wide connection.
func InitDB(cfg *configs.Config) error {
	conn, err := Open(cfg)
	if err != nil {
		configslog.Log.Error("Database connection failed",
			zap.String("db_type", cfg.DBType),
			zap.Error(err),
		)
		return err
	}
	db = conn
	configslog.SLog.Infof("Database connection established (%s)", cfg.DBType)
	return nil
}

// GetDB returns the process-wide connection. It panics if InitDB has not
// run.
func GetDB() *gorm.DB {
	if db == nil {
		panic("configsdatabase: database not initialized")
	}
	return db
}

// SetDB replaces the process-wide connection.
func SetDB(conn *gorm.DB) {
	db = conn
}

// CloseDB closes the process-wide connection.
func CloseDB() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		configslog.Log.Error("Database connection could not be closed", zap.Error(err))
		return err
	}
	db = nil
	configslog.SLog.Info("Database connection closed")
	return nil
}
