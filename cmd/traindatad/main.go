package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/CO2mega/12306router/internal/common/config"
	"github.com/CO2mega/12306router/internal/common/db"
	"github.com/CO2mega/12306router/internal/common/logger"
	"github.com/CO2mega/12306router/internal/common/notify"
	"github.com/CO2mega/12306router/internal/traindata/alias"
	"github.com/CO2mega/12306router/internal/traindata/engine"
	"github.com/CO2mega/12306router/internal/traindata/persist"
	"github.com/CO2mega/12306router/internal/traindata/rebuild"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.NewWithLevel(
		logger.ParseLogLevel(cfg.Logging.Level),
		logger.ConsoleWriter(),
		logger.FileWriter(cfg.Logging.FilePath),
	)

	log.Info("Train data service starting",
		"log_level", cfg.Logging.Level,
		"source", cfg.Source.Name,
		"source_format", cfg.Source.Format,
		"persistence", cfg.Database.Enabled,
	)

	if err := cfg.Source.Validate(); err != nil {
		log.Fatal("Invalid source configuration", "error", err)
	}

	// Build the alias table: configured file or the built-in one.
	var aliases *alias.Table
	if cfg.Alias.ConfigPath != "" {
		aliases, err = alias.LoadFile(cfg.Alias.ConfigPath)
	} else {
		aliases, err = alias.Default()
	}
	if err != nil {
		log.Fatal("Failed to build alias table", "error", err)
	}
	log.Info("Alias table ready", "cities", len(aliases.Cities()))

	eng := engine.New(aliases, log)

	// Optional Postgres persistence of published snapshots.
	var writer *persist.Writer
	if cfg.Database.Enabled {
		database, err := db.New(cfg.Database.ConnectionString(), log)
		if err != nil {
			log.Fatal("Failed to connect to database", "error", err)
		}
		defer database.Close()

		writer = persist.NewWriter(database)
		if err := writer.EnsureSchema(context.Background()); err != nil {
			log.Fatal("Failed to ensure schema", "error", err)
		}
	}

	notifier := notify.NewClient(cfg.Alerts.WebhookURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	schedulerCfg := rebuild.Config{
		SourceURL:     cfg.Source.URL,
		SourcePath:    cfg.Source.Path,
		SourceFormat:  cfg.Source.Format,
		SourceName:    cfg.Source.Name,
		CheckInterval: cfg.Source.CheckInterval,
		DownloadDir:   cfg.Source.DownloadDir,
		RetentionAge:  cfg.Source.RetentionAge,
	}
	scheduler := rebuild.NewScheduler(schedulerCfg, eng, writer, notifier, log)
	wg.Add(1)
	go func(s *rebuild.RouteScheduler) {
		defer wg.Done()
		if err := s.Start(ctx); err != nil {
			log.Error("Route scheduler error", "error", err)
		}
	}(scheduler)

	<-sigChan
	log.Info("Shutdown signal received")

	cancel()
	wg.Wait()

	log.Info("Train data service stopped")
}
