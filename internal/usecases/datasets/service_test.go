package datasets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dashboardai/insights-api/infrastructure/repository/mocks"
	"github.com/dashboardai/insights-api/internal/domain"
)

func testRecords() []*domain.InsightRecord {
	impressions := int64(1200)
	spend := 56.78
	cpc := 1.23456
	quality := "ABOVE_AVERAGE"

	return []*domain.InsightRecord{
		{
			AccountID:    7,
			UserID:       3,
			Level:        domain.LevelAd,
			CampaignName: "Summer Sale",
			AdID:         "a1",
			Impressions:  &impressions,
			Spend:        &spend,
			CPC:          &cpc,
			DateStart:    "2025-01-01",
			DateStop:     "2025-01-01",
			Status:       "ACTIVE",
			Extra: domain.ExtraFields{
				{Key: "quality_ranking", Value: &quality},
			},
		},
		{
			AccountID: 7,
			UserID:    3,
			Level:     domain.LevelCampaign,
			DateStart: "2025-01-02",
			DateStop:  "2025-01-02",
			Status:    "PAUSED",
		},
	}
}

func TestGetReadsThroughCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	insightRepo := mocks.NewMockInsightRepository(ctrl)

	// The store is hit once; the second Get is served from the cache.
	insightRepo.EXPECT().ListByAccountAndUser(gomock.Any(), 7, 3).Return(testRecords(), nil).Times(1)

	service := NewService(insightRepo, time.Minute)

	first, err := service.Get(context.Background(), 7, 3)
	require.NoError(t, err)

	second, err := service.Get(context.Background(), 7, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRefreshReplacesCacheEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	insightRepo := mocks.NewMockInsightRepository(ctrl)

	insightRepo.EXPECT().ListByAccountAndUser(gomock.Any(), 7, 3).Return(testRecords(), nil).Times(2)

	service := NewService(insightRepo, time.Minute)

	_, err := service.Get(context.Background(), 7, 3)
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), 7, 3)
	require.NoError(t, err)
}

func TestInvalidateDropsCacheEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	insightRepo := mocks.NewMockInsightRepository(ctrl)

	insightRepo.EXPECT().ListByAccountAndUser(gomock.Any(), 7, 3).Return(testRecords(), nil).Times(2)

	service := NewService(insightRepo, time.Minute)

	_, err := service.Get(context.Background(), 7, 3)
	require.NoError(t, err)

	service.Invalidate(7, 3)

	_, err = service.Get(context.Background(), 7, 3)
	require.NoError(t, err)
}

func TestBuildDatasetProjection(t *testing.T) {
	dataset := buildDataset(7, 3, testRecords())

	assert.Equal(t, 7, dataset.AccountID)
	assert.Equal(t, 3, dataset.UserID)

	// Sidecar keys extend the fixed column set.
	require.Len(t, dataset.Columns, len(datasetColumns)+1)
	assert.Equal(t, "quality_ranking", dataset.Columns[len(dataset.Columns)-1])

	require.Len(t, dataset.Rows, 2)

	columnIndex := make(map[string]int, len(dataset.Columns))
	for i, column := range dataset.Columns {
		columnIndex[column] = i
	}

	first := dataset.Rows[0]
	assert.Equal(t, "ad", first[columnIndex["level"]])
	assert.Equal(t, "Summer Sale", first[columnIndex["campaign_name"]])
	assert.Equal(t, "1200", first[columnIndex["impressions"]])
	assert.Equal(t, "56.78", first[columnIndex["spend"]])

	// Float metrics are rounded to two decimals before rendering.
	assert.Equal(t, "1.23", first[columnIndex["cpc"]])
	assert.Equal(t, "ABOVE_AVERAGE", first[columnIndex["quality_ranking"]])

	// Absent values render as the placeholder.
	assert.Equal(t, "-", first[columnIndex["reach"]])

	second := dataset.Rows[1]
	assert.Equal(t, "campaign", second[columnIndex["level"]])
	assert.Equal(t, "PAUSED", second[columnIndex["status"]])
	assert.Equal(t, "-", second[columnIndex["quality_ranking"]])
}

func TestBuildDatasetEmpty(t *testing.T) {
	dataset := buildDataset(1, 1, nil)

	assert.Equal(t, datasetColumns, dataset.Columns)
	assert.Empty(t, dataset.Rows)
}
