package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/metal-stack/netstatus/internal/leases"
	"github.com/metal-stack/netstatus/internal/ndp"
	"github.com/metal-stack/netstatus/internal/server"
	"github.com/metal-stack/netstatus/internal/status"
	"github.com/metal-stack/netstatus/pkg/config"
	"github.com/metal-stack/v"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

func main() {
	var cfg config.Config
	if err := envconfig.Process("NETSTATUS", &cfg); err != nil {
		bootLog, _ := zap.NewProduction()
		bootLog.Sugar().Fatalw("bad configuration", "error", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		bootLog, _ := zap.NewProduction()
		bootLog.Sugar().Fatalw("could not create logger", "error", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Sugar()

	log.Infow("running app version", "version", v.V.String())
	if err := cfg.Validate(); err != nil {
		log.Fatalw("bad configuration", "error", err)
	}
	log.Infow("loaded configuration", "config", cfg)

	cidrs, err := cfg.Prefixes()
	if err != nil {
		log.Fatalw("could not parse allowed cidrs", "error", err)
	}

	collector := status.New(status.Config{
		Log:    log.Named("status"),
		Leases: leases.FileSource{Path: cfg.LeaseFile},
		Neighbors: ndp.CommandSource{
			Name:    cfg.NDPCommand,
			Args:    cfg.NDPArgs,
			Timeout: cfg.NDPTimeout,
		},
		IgnoreMacs:   cfg.Macs(),
		AllowedCidrs: cidrs,
	})

	srv := server.New(server.Config{
		Addr:      cfg.ListenAddress,
		Log:       logger.Named("http"),
		Collector: collector,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Start()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		if err != nil {
			log.Fatalw("http server failed", "error", err)
		}
	case sig := <-signals:
		log.Infow("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorw("graceful shutdown failed", "error", err)
		}
	}
}
