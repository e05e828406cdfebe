package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"formfield.app/configs"
	"formfield.app/configs/configsdatabase"
	"formfield.app/configs/configslog"
	"formfield.app/routes"
)

func main() {
	if err := run(); err != nil {
		configslog.Log.Error("Server stopped with error", zap.Error(err))
		_ = configslog.SyncLogger()
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := configs.Load()
	if err != nil {
		configslog.InitLogger("", "")
		return err
	}
	configslog.InitLogger(cfg.AppEnv, cfg.LogLevel)

	if err := configsdatabase.InitDB(cfg); err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, configsdatabase.CloseDB(), configslog.SyncLogger())
	}()

	app := routes.NewApp(cfg.BodyLimit)
	routes.SetupRoutes(app, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		configslog.SLog.Infof("Listening on :%d", cfg.Port)
		listenErr <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
		configslog.SLog.Info("Shutting down...")
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
