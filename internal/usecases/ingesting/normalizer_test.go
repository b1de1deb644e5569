package ingesting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metadomain "github.com/dashboardai/insights-api/infrastructure/integrator/meta/domain"
	"github.com/dashboardai/insights-api/internal/domain"
)

func testWindow() domain.DateRange {
	return domain.DateRange{
		Since: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Until: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected *float64
	}{
		{name: "valid decimal string", raw: "12.5", expected: floatPtr(12.5)},
		{name: "valid integer string", raw: "42", expected: floatPtr(42)},
		{name: "json number", raw: float64(3.25), expected: floatPtr(3.25)},
		{name: "empty string", raw: "", expected: nil},
		{name: "dash sentinel", raw: "-", expected: nil},
		{name: "null string sentinel", raw: "null", expected: nil},
		{name: "null value", raw: nil, expected: nil},
		{name: "unparseable", raw: "abc", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := metadomain.RawInsight{"spend": tt.raw}

			got := coerceFloat(item, "spend")
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}

func TestCoerceIntTruncatesTowardZero(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected *int64
	}{
		{name: "integer string", raw: "120", expected: intPtr(120)},
		{name: "positive float truncates down", raw: "12.9", expected: intPtr(12)},
		{name: "negative float truncates up", raw: "-12.9", expected: intPtr(-12)},
		{name: "sentinel", raw: "-", expected: nil},
		{name: "unparseable", raw: "many", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := metadomain.RawInsight{"impressions": tt.raw}

			got := coerceInt(item, "impressions")
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}

func TestNormalizeRecord(t *testing.T) {
	item := metadomain.RawInsight{
		"campaign_name": "Summer Sale",
		"adset_name":    "Lookalike",
		"ad_name":       "Video A",
		"ad_id":         "98765",
		"impressions":   "1200",
		"clicks":        "34",
		"spend":         "56.78",
		"cpc":           "",
		"date_start":    "2025-01-10",
		"date_stop":     "2025-01-10",
	}

	record := normalizeRecord(item, domain.LevelAd, []string{"impressions", "clicks"}, 7, 3, testWindow(), time.Now())

	assert.Equal(t, 7, record.AccountID)
	assert.Equal(t, 3, record.UserID)
	assert.Equal(t, domain.LevelAd, record.Level)
	assert.Equal(t, "Summer Sale", record.CampaignName)
	assert.Equal(t, "98765", record.AdID)

	require.NotNil(t, record.Impressions)
	assert.Equal(t, int64(1200), *record.Impressions)
	require.NotNil(t, record.Spend)
	assert.Equal(t, 56.78, *record.Spend)
	assert.Nil(t, record.CPC)
	assert.Nil(t, record.Reach)

	assert.Equal(t, "2025-01-10", record.DateStart)
	assert.Equal(t, "2025-01-10", record.DateStop)
}

func TestNormalizeRecordDefaultsStatusToActive(t *testing.T) {
	record := normalizeRecord(metadomain.RawInsight{}, domain.LevelCampaign, nil, 1, 1, testWindow(), time.Now())

	assert.Equal(t, "ACTIVE", record.Status)
}

func TestNormalizeRecordKeepsUpstreamStatus(t *testing.T) {
	item := metadomain.RawInsight{"effective_status": "PAUSED"}

	record := normalizeRecord(item, domain.LevelCampaign, nil, 1, 1, testWindow(), time.Now())

	assert.Equal(t, "PAUSED", record.Status)
}

func TestNormalizeRecordDatesFallBackToWindow(t *testing.T) {
	record := normalizeRecord(metadomain.RawInsight{}, domain.LevelAd, nil, 1, 1, testWindow(), time.Now())

	assert.Equal(t, "2025-01-01", record.DateStart)
	assert.Equal(t, "2025-01-31", record.DateStop)
}

func TestNormalizeRecordSidecar(t *testing.T) {
	item := metadomain.RawInsight{
		"quality_ranking": "ABOVE_AVERAGE",
	}
	requested := []string{"impressions", "quality_ranking", "video_p50_watched"}

	record := normalizeRecord(item, domain.LevelAd, requested, 1, 1, testWindow(), time.Now())

	// Typed fields never land in the sidecar.
	_, found := record.Extra.Get("impressions")
	assert.False(t, found)
	assert.Nil(t, record.Impressions)

	quality, found := record.Extra.Get("quality_ranking")
	require.True(t, found)
	require.NotNil(t, quality)
	assert.Equal(t, "ABOVE_AVERAGE", *quality)

	// Requested but absent untyped fields get the placeholder.
	watched, found := record.Extra.Get("video_p50_watched")
	require.True(t, found)
	require.NotNil(t, watched)
	assert.Equal(t, "-", *watched)
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int64) *int64       { return &v }
