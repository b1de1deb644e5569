package ingesting

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	metadomain "github.com/dashboardai/insights-api/infrastructure/integrator/meta/domain"
	"github.com/dashboardai/insights-api/infrastructure/integrator/meta/metaclient"
	metamocks "github.com/dashboardai/insights-api/infrastructure/integrator/meta/mocks"
	"github.com/dashboardai/insights-api/infrastructure/repository/mocks"
	"github.com/dashboardai/insights-api/internal/config"
	"github.com/dashboardai/insights-api/internal/domain"
)

type serviceMocks struct {
	metaClient  *metamocks.MockClient
	userRepo    *mocks.MockUserRepository
	accountRepo *mocks.MockAccountRepository
	insightRepo *mocks.MockInsightRepository
}

func newTestService(t *testing.T) (Ingester, *serviceMocks) {
	ctrl := gomock.NewController(t)

	m := &serviceMocks{
		metaClient:  metamocks.NewMockClient(ctrl),
		userRepo:    mocks.NewMockUserRepository(ctrl),
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		insightRepo: mocks.NewMockInsightRepository(ctrl),
	}

	service := NewService(&config.Config{}, m.metaClient, m.userRepo, m.accountRepo, m.insightRepo)
	return service, m
}

func testUser() *domain.User {
	return &domain.User{ID: 3, Username: "analyst", ExternalID: "usr-ext-1"}
}

func testAccount() *domain.Account {
	return &domain.Account{
		ID:         7,
		Platform:   domain.PlatformFacebookAds,
		Token:      "token-1",
		Identifier: "act_123",
		Active:     true,
	}
}

func baseRequest() IngestionRequest {
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	return IngestionRequest{
		ExternalUserID:    "usr-ext-1",
		AccountIdentifier: "123",
		Levels:            []domain.Level{domain.LevelAd},
		Since:             &since,
		Until:             &until,
	}
}

func TestIngestPersistsNewRecords(t *testing.T) {
	service, m := newTestService(t)

	m.userRepo.EXPECT().GetByExternalID(gomock.Any(), "usr-ext-1").Return(testUser(), nil)
	m.accountRepo.EXPECT().FindActiveByIdentifier(gomock.Any(), "123", domain.PlatformFacebookAds).
		Return(testAccount(), nil)

	items := []metadomain.RawInsight{
		{"ad_id": "a1", "impressions": "10", "date_start": "2025-01-01", "date_stop": "2025-01-01"},
		{"ad_id": "a2", "impressions": "20", "date_start": "2025-01-02", "date_stop": "2025-01-02"},
		{"ad_id": "a3", "impressions": "30", "date_start": "2025-01-03", "date_stop": "2025-01-03"},
	}
	m.metaClient.EXPECT().ListInsights(gomock.Any(), gomock.Any()).Return(items, nil)

	m.insightRepo.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil).Times(3)
	m.insightRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(true, nil).Times(3)

	result, err := service.Ingest(context.Background(), baseRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Records, 3)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Failures)
}

func TestIngestSecondRunSkipsEverything(t *testing.T) {
	service, m := newTestService(t)

	m.userRepo.EXPECT().GetByExternalID(gomock.Any(), "usr-ext-1").Return(testUser(), nil)
	m.accountRepo.EXPECT().FindActiveByIdentifier(gomock.Any(), "123", domain.PlatformFacebookAds).
		Return(testAccount(), nil)

	items := []metadomain.RawInsight{
		{"ad_id": "a1", "date_start": "2025-01-01", "date_stop": "2025-01-01"},
		{"ad_id": "a2", "date_start": "2025-01-02", "date_stop": "2025-01-02"},
	}
	m.metaClient.EXPECT().ListInsights(gomock.Any(), gomock.Any()).Return(items, nil)

	m.insightRepo.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

	result, err := service.Ingest(context.Background(), baseRequest())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 2, result.Skipped)
}

func TestIngestFaultIsolationAcrossLevels(t *testing.T) {
	service, m := newTestService(t)

	m.userRepo.EXPECT().GetByExternalID(gomock.Any(), "usr-ext-1").Return(testUser(), nil)
	m.accountRepo.EXPECT().FindActiveByIdentifier(gomock.Any(), "123", domain.PlatformFacebookAds).
		Return(testAccount(), nil)

	m.metaClient.EXPECT().ListInsights(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, query metadomain.InsightsQuery) ([]metadomain.RawInsight, error) {
			if query.Level == domain.LevelCampaign {
				return nil, errors.New("upstream exploded")
			}
			return []metadomain.RawInsight{
				{"ad_id": "a1", "date_start": "2025-01-01", "date_stop": "2025-01-01"},
			}, nil
		}).Times(2)

	m.insightRepo.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil)
	m.insightRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(true, nil)

	req := baseRequest()
	req.Levels = []domain.Level{domain.LevelAd, domain.LevelCampaign}

	result, err := service.Ingest(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, domain.LevelCampaign, result.Failures[0].Level)
	assert.Contains(t, result.Failures[0].Cause, "upstream exploded")
}

func TestIngestPersistFailureTouchesNoCounter(t *testing.T) {
	service, m := newTestService(t)

	m.userRepo.EXPECT().GetByExternalID(gomock.Any(), "usr-ext-1").Return(testUser(), nil)
	m.accountRepo.EXPECT().FindActiveByIdentifier(gomock.Any(), "123", domain.PlatformFacebookAds).
		Return(testAccount(), nil)

	items := []metadomain.RawInsight{
		{"ad_id": "a1", "date_start": "2025-01-01", "date_stop": "2025-01-01"},
		{"ad_id": "a2", "date_start": "2025-01-02", "date_stop": "2025-01-02"},
	}
	m.metaClient.EXPECT().ListInsights(gomock.Any(), gomock.Any()).Return(items, nil)

	m.insightRepo.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	first := m.insightRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).
		Return(false, errors.New("connection reset"))
	m.insightRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(true, nil).After(first)

	result, err := service.Ingest(context.Background(), baseRequest())

	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 0, result.Skipped)
}

func TestIngestExpiredTokenDeactivatesAccount(t *testing.T) {
	service, m := newTestService(t)

	m.userRepo.EXPECT().GetByExternalID(gomock.Any(), "usr-ext-1").Return(testUser(), nil)
	m.accountRepo.EXPECT().FindActiveByIdentifier(gomock.Any(), "123", domain.PlatformFacebookAds).
		Return(testAccount(), nil)

	m.metaClient.EXPECT().ListInsights(gomock.Any(), gomock.Any()).
		Return(nil, errors.Wrap(metaclient.ErrTokenExpired, "Error validating access token"))

	m.accountRepo.EXPECT().Deactivate(gomock.Any(), 7).Return(nil)

	result, err := service.Ingest(context.Background(), baseRequest())

	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 0, result.Inserted)
}

func TestIngestUnknownUserAborts(t *testing.T) {
	service, m := newTestService(t)

	m.userRepo.EXPECT().GetByExternalID(gomock.Any(), "usr-ext-1").Return(nil, nil)

	result, err := service.Ingest(context.Background(), baseRequest())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestIngestUnknownAccountAborts(t *testing.T) {
	service, m := newTestService(t)

	m.userRepo.EXPECT().GetByExternalID(gomock.Any(), "usr-ext-1").Return(testUser(), nil)
	m.accountRepo.EXPECT().FindActiveByIdentifier(gomock.Any(), "123", domain.PlatformFacebookAds).
		Return(nil, nil)

	result, err := service.Ingest(context.Background(), baseRequest())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestIngestRejectsInvalidLevel(t *testing.T) {
	service, _ := newTestService(t)

	req := baseRequest()
	req.Levels = []domain.Level{"country"}

	_, err := service.Ingest(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestIngestRejectsInvertedWindow(t *testing.T) {
	service, _ := newTestService(t)

	since := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	req := baseRequest()
	req.Since = &since
	req.Until = &until

	_, err := service.Ingest(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestResolveWindowDefaults(t *testing.T) {
	window, err := resolveWindow(nil, nil)

	require.NoError(t, err)
	now := time.Now()
	assert.Equal(t, time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), window.Since)
	assert.Equal(t, now.Format(time.DateOnly), window.Until.Format(time.DateOnly))
}
