package main

import (
	"flag"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"formfield.app/configs"
	"formfield.app/configs/configsdatabase"
	"formfield.app/configs/configslog"
	"formfield.app/database"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	migrateFlag := flag.Bool("migrate", false, "run database migrations")
	seedFlag := flag.Bool("seed", false, "run database seeders")
	flag.Parse()

	cfg, err := configs.Load()
	if err != nil {
		configslog.InitLogger("", "")
		configslog.Log.Error("Configuration could not be loaded", zap.Error(err))
		_ = configslog.SyncLogger()
		return 1
	}
	configslog.InitLogger(cfg.AppEnv, cfg.LogLevel)

	if err := configsdatabase.InitDB(cfg); err != nil {
		return 1
	}
	defer func() {
		if err := multierr.Combine(configsdatabase.CloseDB(), configslog.SyncLogger()); err != nil && code == 0 {
			code = 1
		}
	}()

	configslog.SLog.Info("Running database initialization...")
	if err := database.Initialize(configsdatabase.GetDB(), *migrateFlag, *seedFlag); err != nil {
		configslog.Log.Error("Database initialization failed", zap.Error(err))
		return 1
	}
	return 0
}
