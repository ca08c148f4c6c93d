package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"curator/internal/config"
	"curator/internal/extract"
	"curator/internal/fetch"
	"curator/internal/ingest"
	"curator/internal/language"
	"curator/internal/publisher"
	"curator/internal/scheduler"
	"curator/internal/scoring"
	"curator/internal/source/feed"
	"curator/internal/source/search"
	"curator/internal/source/seedpage"
	"curator/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one cycle and exit")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// The broker is optional: without a URL the pipeline still ingests and
	// scores, it just publishes nothing.
	var pub scoring.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	} else {
		logger.Info("no rabbitmq url configured, publishing disabled")
	}

	contentStore := postgres.NewContentStore(db)
	scoreStore := postgres.NewScoreStore(db)
	insightStore := postgres.NewInsightStore(db)
	runLogStore := postgres.NewRunLogStore(db)
	txManager := postgres.NewTransactionManager(db)

	fetcher := fetch.NewClient(cfg.Ingest.FetchTimeout, cfg.Ingest.UserAgent)
	sources := buildSources(cfg, fetcher, logger)
	if len(sources) == 0 {
		logger.Error("no sources configured")
		os.Exit(1)
	}

	ingestor := ingest.NewOrchestrator(
		sources,
		fetcher,
		extract.New(),
		language.Detector{},
		contentStore,
		runLogStore,
		logger,
		cfg.Ingest,
	)

	tables, err := scoring.LoadTables(cfg.Scoring.TablesPath)
	if err != nil {
		logger.Error("failed to load scoring tables", "error", err)
		os.Exit(1)
	}

	scorer := scoring.NewService(
		tables,
		contentStore,
		scoreStore,
		insightStore,
		txManager,
		pub,
		logger,
		cfg.Scoring,
	)

	pipe := &pipeline{ingestor: ingestor, scorer: scorer}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting curator",
		"sources", len(sources),
		"interval", cfg.Ingest.Interval,
	)

	if *once {
		if err := pipe.Cycle(ctx); err != nil {
			logger.Error("cycle failed", "error", err)
			os.Exit(1)
		}
		return
	}

	cycleTimeout := cfg.Ingest.RunDeadline * 2
	sched := scheduler.NewScheduler(pipe, cfg.Ingest.Interval, cycleTimeout, logger)
	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

// pipeline chains one ingestion run with one scoring run.
type pipeline struct {
	ingestor *ingest.Orchestrator
	scorer   *scoring.Service
}

func (p *pipeline) Cycle(ctx context.Context) error {
	if _, err := p.ingestor.Run(ctx); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if _, err := p.scorer.Run(ctx); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	return nil
}

func buildSources(cfg *config.Config, fetcher *fetch.Client, logger *slog.Logger) []ingest.Source {
	var sources []ingest.Source

	for i, feedURL := range cfg.Sources.Feeds {
		sources = append(sources, feed.New(fmt.Sprintf("%d", i), feedURL))
	}
	for i, pageURL := range cfg.Sources.SeedPages {
		sources = append(sources, seedpage.New(fmt.Sprintf("%d", i), pageURL, fetcher))
	}
	if cfg.Sources.Search.Endpoint != "" && len(cfg.Sources.Search.Queries) > 0 {
		sources = append(sources, search.New(cfg.Sources.Search, cfg.Ingest.FetchTimeout, logger))
	}

	return sources
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
