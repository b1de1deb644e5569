package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtraFieldsMarshalPreservesOrder(t *testing.T) {
	value := "ABOVE_AVERAGE"

	extra := ExtraFields{}
	extra.Set("quality_ranking", &value)
	extra.Set("video_p50_watched", nil)
	extra.Set("engagement_rate", nil)

	encoded, err := json.Marshal(extra)
	require.NoError(t, err)

	assert.Equal(t,
		`{"quality_ranking":"ABOVE_AVERAGE","video_p50_watched":null,"engagement_rate":null}`,
		string(encoded),
	)
}

func TestExtraFieldsRoundTrip(t *testing.T) {
	value := "x"

	original := ExtraFields{}
	original.Set("b_field", &value)
	original.Set("a_field", nil)

	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	decoded := ExtraFields{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, original, decoded)
}

func TestExtraFieldsSetReplacesExistingKey(t *testing.T) {
	first := "one"
	second := "two"

	extra := ExtraFields{}
	extra.Set("field", &first)
	extra.Set("field", &second)

	assert.Len(t, extra, 1)
	got, found := extra.Get("field")
	require.True(t, found)
	assert.Equal(t, "two", *got)
}

func TestDedupKey(t *testing.T) {
	record := &InsightRecord{
		AccountID: 7,
		UserID:    3,
		AdID:      "a1",
		DateStart: "2025-01-01",
		DateStop:  "2025-01-01",
		Level:     LevelAd,
	}

	key := record.DedupKey()

	assert.Equal(t, DedupKey{
		AccountID: 7,
		UserID:    3,
		AdID:      "a1",
		DateStart: "2025-01-01",
		DateStop:  "2025-01-01",
	}, key)
}

func TestLevelValid(t *testing.T) {
	assert.True(t, LevelAd.Valid())
	assert.True(t, LevelAdset.Valid())
	assert.True(t, LevelCampaign.Valid())
	assert.False(t, Level("country").Valid())
	assert.False(t, Level("").Valid())
}
