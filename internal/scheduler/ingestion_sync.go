package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/dashboardai/insights-api/infrastructure/repository"
	"github.com/dashboardai/insights-api/internal/config"
	"github.com/dashboardai/insights-api/internal/domain"
	"github.com/dashboardai/insights-api/internal/usecases/datasets"
	"github.com/dashboardai/insights-api/internal/usecases/ingesting"
)

// IngestionSyncConfig holds the scheduler settings for the periodic
// ingestion run.
type IngestionSyncConfig struct {
	CronSchedule        string
	LookbackDays        int
	RequestDelaySeconds int
	SyncEnabled         bool
}

// IngestionSyncService periodically re-ingests metrics for every linked
// (user, account) pair.
type IngestionSyncService struct {
	scheduler           *gocron.Scheduler
	config              IngestionSyncConfig
	userRepo            repository.UserRepository
	ingestService       ingesting.Ingester
	datasetLoader       datasets.Loader
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

func NewIngestionSyncService(
	userRepo repository.UserRepository,
	ingestService ingesting.Ingester,
	datasetLoader datasets.Loader,
	appConfig *config.Config,
) *IngestionSyncService {
	syncConfig := IngestionSyncConfig{
		CronSchedule:        appConfig.IngestionSync.CronSchedule,
		LookbackDays:        appConfig.IngestionSync.LookbackDays,
		RequestDelaySeconds: appConfig.IngestionSync.RequestDelaySeconds,
		SyncEnabled:         appConfig.IngestionSync.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":         syncConfig.CronSchedule,
		"lookback_days":         syncConfig.LookbackDays,
		"request_delay_seconds": syncConfig.RequestDelaySeconds,
		"sync_enabled":          syncConfig.SyncEnabled,
	}).Info("ingestion sync scheduler configured")

	return &IngestionSyncService{
		scheduler:     gocron.NewScheduler(time.Local),
		config:        syncConfig,
		userRepo:      userRepo,
		ingestService: ingestService,
		datasetLoader: datasetLoader,
		syncRunning:   false,
	}
}

// Start schedules the periodic sync and stops the scheduler when the context
// is cancelled.
func (s *IngestionSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("ingestion sync disabled by configuration")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("starting ingestion sync scheduler")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAllPairs(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule ingestion sync: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("stopping ingestion sync scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *IngestionSyncService) syncAllPairs(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("ingestion sync already running, skipping")
		return
	}
	startTime := time.Now()
	s.syncRunning = true
	s.lastSyncStartedAt = startTime
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	links, err := s.userRepo.ListLinkedPairs(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list linked pairs for ingestion sync")
		return
	}

	if len(links) == 0 {
		logrus.Info("no linked pairs found for ingestion sync")
		return
	}

	logrus.WithField("pairs", len(links)).Info("starting ingestion sync run")

	since := time.Now().AddDate(0, 0, -s.config.LookbackDays)
	until := time.Now()

	for _, link := range links {
		if ctx.Err() != nil {
			logrus.Info("ingestion sync interrupted by shutdown")
			return
		}

		s.syncPair(ctx, link, since, until)

		time.Sleep(time.Duration(s.config.RequestDelaySeconds) * time.Second)
	}

	s.syncMutex.Lock()
	s.lastSyncCompletedAt = time.Now()
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"duration": time.Since(startTime).String(),
		"pairs":    len(links),
	}).Info("ingestion sync run finished")
}

func (s *IngestionSyncService) syncPair(ctx context.Context, link *domain.UserAccountLink, since, until time.Time) {
	result, err := s.ingestService.Ingest(ctx, ingesting.IngestionRequest{
		ExternalUserID:    link.ExternalUserID,
		AccountIdentifier: link.AccountIdentifier,
		Platform:          link.Platform,
		Since:             &since,
		Until:             &until,
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":    link.UserID,
			"account_id": link.AccountID,
		}).Error("ingestion sync failed for pair")
		return
	}

	logrus.WithFields(logrus.Fields{
		"run_id":     result.RunID,
		"user_id":    link.UserID,
		"account_id": link.AccountID,
		"inserted":   result.Inserted,
		"skipped":    result.Skipped,
		"failures":   len(result.Failures),
	}).Info("ingestion sync finished for pair")

	if result.Inserted > 0 {
		if _, err := s.datasetLoader.Refresh(ctx, link.AccountID, link.UserID); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id":    link.UserID,
				"account_id": link.AccountID,
			}).Warn("failed to refresh dataset after sync")
		}
	}
}

// TriggerManualSync starts a sync run outside the schedule. The run outlives
// the caller: an HTTP request context is detached so that the 202 response
// does not cancel the background work.
func (s *IngestionSyncService) TriggerManualSync(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("ingestion sync already running, ignoring manual trigger")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("starting manual ingestion sync")
	go s.syncAllPairs(context.WithoutCancel(ctx))
}

// GetStatus reports the scheduler state. The timestamps are written by the
// sync goroutine, so reads go through the same mutex.
func (s *IngestionSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	startedAt := s.lastSyncStartedAt
	completedAt := s.lastSyncCompletedAt
	s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_request_delay_s":   s.config.RequestDelaySeconds,
		"last_sync_started_at":   startedAt,
		"last_sync_completed_at": completedAt,
	}
}
