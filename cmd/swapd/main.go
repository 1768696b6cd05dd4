package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	appconfig "github.com/swaplock/swapd/internal/app-config"
	"github.com/swaplock/swapd/internal/config"
)

//nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	appConfig := &appconfig.Config{
		DbType:               cfg.DbType,
		DbDir:                cfg.BaseDirectory,
		SchedulerType:        cfg.SchedulerType,
		HomeChainId:          cfg.HomeChainId,
		SafetyDepositAsset:   cfg.SafetyDepositAsset,
		SafetyDepositAmount:  cfg.SafetyDepositAmount,
		Resolvers:            cfg.Resolvers,
		SourceDurations:      cfg.SourceDurations,
		DestinationDurations: cfg.DestinationDurations,
	}
	if err := appConfig.Validate(); err != nil {
		log.WithError(err).Fatal("invalid app config")
	}

	svc := appConfig.AppService()

	log.RegisterExitHandler(svc.Stop)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		log.Fatal(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
}
