package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sonicrain/matchd/internal/adminapi"
	"github.com/sonicrain/matchd/internal/bus"
	"github.com/sonicrain/matchd/internal/config"
	"github.com/sonicrain/matchd/internal/engine"
	"github.com/sonicrain/matchd/internal/launcher"
	"github.com/sonicrain/matchd/internal/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := bus.NewRedisBus(ctx, cfg.Bus.RedisAddr, "", 0, logger)
	if err != nil {
		logger.Fatal("connect bus", zap.Error(err))
	}

	sink, err := persistence.Open(ctx, cfg.Database.DSN, logger)
	if err != nil {
		logger.Fatal("connect persistence", zap.Error(err))
	}

	var lnch engine.Launcher
	if cfg.Game.BinaryPath == "" {
		lnch = launcher.NewNoopLauncher(logger)
	} else {
		lnch = launcher.NewProcessLauncher(cfg.Game.BinaryPath, logger)
	}

	e := engine.New(b, sink, logger,
		engine.WithDefaultHero(cfg.Game.DefaultHero),
		engine.WithHeroPool(cfg.Game.HeroPool),
		engine.WithLauncher(lnch),
	)
	go e.Run(ctx)

	admin := adminapi.New(cfg, e, logger)
	go func() {
		if err := admin.Run(ctx); err != nil {
			logger.Error("admin api stopped", zap.Error(err))
		}
	}()

	logger.Info("matchd started", zap.String("admin_addr", cfg.Admin.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := sink.Close(closeCtx); err != nil {
		logger.Error("persistence close", zap.Error(err))
	}

	logger.Info("matchd exited")
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
