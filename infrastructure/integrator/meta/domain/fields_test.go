package metadomain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dashboardai/insights-api/internal/domain"
)

func TestResolveFields(t *testing.T) {
	tests := []struct {
		name      string
		level     domain.Level
		requested []string
		expected  []string
	}{
		{
			name:      "nil request falls back to defaults",
			level:     domain.LevelAd,
			requested: nil,
			expected:  DefaultFields(domain.LevelAd),
		},
		{
			name:      "unknown fields are discarded",
			level:     domain.LevelAd,
			requested: []string{"impressions", "bogus_field", "spend"},
			expected:  []string{"impressions", "spend"},
		},
		{
			name:      "caller order is preserved",
			level:     domain.LevelAd,
			requested: []string{"spend", "clicks", "impressions"},
			expected:  []string{"spend", "clicks", "impressions"},
		},
		{
			name:      "duplicates collapse to first occurrence",
			level:     domain.LevelAdset,
			requested: []string{"clicks", "spend", "clicks"},
			expected:  []string{"clicks", "spend"},
		},
		{
			name:      "empty intersection falls back to defaults",
			level:     domain.LevelAdset,
			requested: []string{"nothing", "here"},
			expected:  DefaultFields(domain.LevelAdset),
		},
		{
			name:      "ad-only fields are not valid at adset level",
			level:     domain.LevelAdset,
			requested: []string{"ad_id", "clicks"},
			expected:  []string{"clicks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveFields(tt.level, tt.requested))
		})
	}
}

func TestResolveFieldsCampaignStatusConflict(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		expected  []string
	}{
		{
			name:      "status mixed with metrics drops status",
			requested: []string{"status", "impressions", "spend"},
			expected:  []string{"impressions", "spend"},
		},
		{
			name:      "all status variants dropped when mixed",
			requested: []string{"status", "effective_status", "configured_status", "clicks"},
			expected:  []string{"clicks"},
		},
		{
			name:      "status-only request is kept",
			requested: []string{"status", "effective_status"},
			expected:  []string{"status", "effective_status"},
		},
		{
			name:      "metrics-only request is untouched",
			requested: []string{"impressions", "spend"},
			expected:  []string{"impressions", "spend"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := ResolveFields(domain.LevelCampaign, tt.requested)
			assert.Equal(t, tt.expected, resolved)
		})
	}
}

func TestDefaultFieldsReturnsCopy(t *testing.T) {
	first := DefaultFields(domain.LevelAd)
	first[0] = "mutated"

	second := DefaultFields(domain.LevelAd)
	assert.NotEqual(t, "mutated", second[0])
}
