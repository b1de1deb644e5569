package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dashboardai/insights-api/infrastructure/database/postgres"
	"github.com/dashboardai/insights-api/infrastructure/integrator/meta/metaclient"
	"github.com/dashboardai/insights-api/infrastructure/repository"
	"github.com/dashboardai/insights-api/internal/api"
	"github.com/dashboardai/insights-api/internal/config"
	"github.com/dashboardai/insights-api/internal/scheduler"
	"github.com/dashboardai/insights-api/internal/usecases/authenticating"
	"github.com/dashboardai/insights-api/internal/usecases/datasets"
	"github.com/dashboardai/insights-api/internal/usecases/ingesting"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("invalid log level: %s, falling back to 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	accountRepo := repository.NewAccountRepository(pgConn)
	userRepo := repository.NewUserRepository(pgConn)
	insightRepo := repository.NewInsightRepository(pgConn)

	authenticator := authenticating.NewService(cfg)

	metaClient := metaclient.NewClient(cfg)

	ingestService := ingesting.NewService(cfg, metaClient, userRepo, accountRepo, insightRepo)
	datasetLoader := datasets.NewService(insightRepo, cfg.Dataset.CacheTTL)

	ingestionSyncService := scheduler.NewIngestionSyncService(
		userRepo,
		ingestService,
		datasetLoader,
		cfg,
	)

	if err := ingestionSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("failed to start ingestion sync scheduler")
	} else {
		logrus.Info("ingestion sync scheduler started")
	}

	server, err := api.New(
		cfg,
		ingestService,
		datasetLoader,
		authenticator,
		accountRepo,
		ingestionSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to PostgreSQL")
	}

	if err := conn.Ping(ctx); err != nil {
		logrus.WithError(err).Fatal("failed to ping PostgreSQL")
	}

	logrus.Info("PostgreSQL connection established")
	return conn
}
