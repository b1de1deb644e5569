package ingesting

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	metadomain "github.com/dashboardai/insights-api/infrastructure/integrator/meta/domain"
	"github.com/dashboardai/insights-api/infrastructure/integrator/meta/metaclient"
	"github.com/dashboardai/insights-api/infrastructure/repository"
	"github.com/dashboardai/insights-api/internal/config"
	"github.com/dashboardai/insights-api/internal/domain"
	"github.com/dashboardai/insights-api/pkg/apiErrors"
	"github.com/dashboardai/insights-api/pkg/utils"
)

// IngestionRequest describes one ingestion run. Levels, Fields and the date
// window are optional; absent values fall back to run defaults.
type IngestionRequest struct {
	ExternalUserID    string         `json:"external_user_id"`
	AccountIdentifier string         `json:"account_identifier"`
	Platform          string         `json:"platform,omitempty"`
	Levels            []domain.Level `json:"levels,omitempty"`
	Fields            []string       `json:"fields,omitempty"`
	Since             *time.Time     `json:"since,omitempty"`
	Until             *time.Time     `json:"until,omitempty"`
}

type Ingester interface {
	// Ingest runs resolution, retrieval, normalization and persistence for
	// one (user, account) pair. Only unresolvable user or account aborts the
	// run; upstream failures degrade into per-range failure entries.
	Ingest(ctx context.Context, req IngestionRequest) (*domain.IngestionResult, error)
}

type Service struct {
	cfg               *config.Config
	metaClient        metaclient.Client
	userRepository    repository.UserRepository
	accountRepository repository.AccountRepository
	insightRepository repository.InsightRepository
}

func NewService(
	cfg *config.Config,
	metaClient metaclient.Client,
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	insightRepo repository.InsightRepository,
) Ingester {
	return &Service{
		cfg:               cfg,
		metaClient:        metaClient,
		userRepository:    userRepo,
		accountRepository: accountRepo,
		insightRepository: insightRepo,
	}
}

func (s *Service) Ingest(ctx context.Context, req IngestionRequest) (*domain.IngestionResult, error) {
	levels, err := resolveLevels(req.Levels)
	if err != nil {
		return nil, NewIngestError(err, apiErrors.ErrInvalidRequest, "invalid levels")
	}

	window, err := resolveWindow(req.Since, req.Until)
	if err != nil {
		return nil, NewIngestError(err, apiErrors.ErrInvalidRequest, "invalid date range")
	}

	platform := req.Platform
	if platform == "" {
		platform = domain.PlatformFacebookAds
	}

	user, err := s.resolveUser(ctx, req.ExternalUserID)
	if err != nil {
		return nil, err
	}

	account, err := s.resolveAccount(ctx, req.AccountIdentifier, platform)
	if err != nil {
		return nil, err
	}

	runID, err := utils.GenerateRunID()
	if err != nil {
		return nil, NewIngestError(err, apiErrors.ErrInternalServer, "failed to generate run id")
	}
	extractedAt := time.Now().UTC()

	result := &domain.IngestionResult{
		RunID:   runID,
		Records: make([]*domain.InsightRecord, 0),
	}

	logrus.WithFields(logrus.Fields{
		"run_id":     runID,
		"user_id":    user.ID,
		"account_id": account.ID,
		"levels":     levels,
		"window":     window.String(),
	}).Info("starting ingestion run")

	ranges := []domain.DateRange{window}

	for _, level := range levels {
		for _, window := range ranges {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}

			s.ingestLevelRange(ctx, result, user, account, level, window, req.Fields, extractedAt)
		}
	}

	logrus.WithFields(logrus.Fields{
		"run_id":   runID,
		"records":  len(result.Records),
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"failures": len(result.Failures),
	}).Info("ingestion run finished")

	return result, nil
}

// ingestLevelRange processes one (level, date range) pair. An upstream error
// ends only this pair's stream: items fetched before the failure are still
// normalized and persisted, and the failure is recorded on the result.
func (s *Service) ingestLevelRange(
	ctx context.Context,
	result *domain.IngestionResult,
	user *domain.User,
	account *domain.Account,
	level domain.Level,
	window domain.DateRange,
	requestedFields []string,
	extractedAt time.Time,
) {
	fields := metadomain.ResolveFields(level, requestedFields)

	items, err := s.metaClient.ListInsights(ctx, metadomain.InsightsQuery{
		AccountIdentifier: account.Identifier,
		Token:             account.Token,
		Level:             level,
		Fields:            fields,
		Range:             window,
		PageSize:          s.cfg.Meta.PageSize,
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"run_id":     result.RunID,
			"account_id": account.ID,
			"level":      level,
			"window":     window.String(),
		}).Warn("upstream retrieval failed, continuing with remaining levels")

		result.Failures = append(result.Failures, domain.RangeFailure{
			Level: level,
			Range: window,
			Cause: err.Error(),
		})

		if errors.Is(err, metaclient.ErrTokenExpired) {
			s.deactivateAccount(ctx, account)
		}
	}

	for _, item := range items {
		record := normalizeRecord(item, level, fields, account.ID, user.ID, window, extractedAt)
		result.Records = append(result.Records, record)
		s.persistRecord(ctx, result, record)
	}
}

// persistRecord routes one record through the dedup gate and the store.
// Persistence is best effort: a storage error is logged without touching
// the counters, it never aborts the run.
func (s *Service) persistRecord(ctx context.Context, result *domain.IngestionResult, record *domain.InsightRecord) {
	exists, err := s.insightRepository.Exists(ctx, record.DedupKey())
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"run_id":     result.RunID,
			"account_id": record.AccountID,
			"ad_id":      record.AdID,
		}).Warn("dedup check failed, record not persisted")
		return
	}

	if exists {
		result.Skipped++
		return
	}

	inserted, err := s.insightRepository.Insert(ctx, record)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"run_id":     result.RunID,
			"account_id": record.AccountID,
			"ad_id":      record.AdID,
		}).Warn("insert failed, record not persisted")
		return
	}

	// A concurrent writer can still win between the check and the insert;
	// the store's conflict clause resolves it and reports no row affected.
	if inserted {
		result.Inserted++
	} else {
		result.Skipped++
	}
}

func (s *Service) deactivateAccount(ctx context.Context, account *domain.Account) {
	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"identifier": account.Identifier,
	}).Warn("access token expired, deactivating account")

	if err := s.accountRepository.Deactivate(ctx, account.ID); err != nil {
		logrus.WithError(err).WithField("account_id", account.ID).
			Error("failed to deactivate account")
	}
}

func resolveLevels(levels []domain.Level) ([]domain.Level, error) {
	if len(levels) == 0 {
		return domain.AllLevels, nil
	}

	for _, level := range levels {
		if !level.Valid() {
			return nil, ErrInvalidLevel
		}
	}
	return levels, nil
}

// resolveWindow applies the default window [Jan 1 of the current year, today]
// when the caller supplies no explicit range.
func resolveWindow(since, until *time.Time) (domain.DateRange, error) {
	now := time.Now()

	window := domain.DateRange{
		Since: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		Until: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}

	if since != nil {
		window.Since = *since
	}
	if until != nil {
		window.Until = *until
	}

	if window.Since.After(window.Until) {
		return domain.DateRange{}, ErrInvalidDateRange
	}

	return window, nil
}
