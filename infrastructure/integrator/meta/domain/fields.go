package metadomain

import (
	"github.com/dashboardai/insights-api/internal/domain"
)

// LevelFields maps each aggregation level to the fixed set of field names
// the upstream API accepts for it. Requested fields outside the whitelist
// are silently discarded.
var LevelFields = map[domain.Level][]string{
	domain.LevelAd: {
		"campaign_name", "adset_name", "ad_name", "ad_id",
		"impressions", "reach", "clicks", "cpc", "spend",
		"frequency", "ctr", "cpm",
		"date_start", "date_stop", "objective", "actions",
	},
	domain.LevelAdset: {
		"campaign_name", "adset_name",
		"impressions", "reach", "clicks", "cpc", "spend",
		"frequency", "ctr", "cpm",
		"date_start", "date_stop", "objective", "actions",
	},
	domain.LevelCampaign: {
		"campaign_name",
		"impressions", "reach", "clicks", "cpc", "spend",
		"frequency", "ctr", "cpm",
		"date_start", "date_stop", "objective", "actions",
		"status", "effective_status", "configured_status",
	},
}

// levelDefaults is the fallback subset used when the requested/whitelist
// intersection comes up empty, so a run never fails on field validation.
var levelDefaults = map[domain.Level][]string{
	domain.LevelAd: {
		"campaign_name", "adset_name", "ad_name", "ad_id",
		"impressions", "reach", "clicks", "cpc", "spend",
	},
	domain.LevelAdset: {
		"campaign_name", "adset_name",
		"impressions", "reach", "clicks", "cpc", "spend",
	},
	domain.LevelCampaign: {
		"campaign_name",
		"impressions", "clicks", "spend", "cpm", "ctr",
		"date_start", "date_stop",
	},
}

// campaignStatusFields are mutually exclusive with metric fields at the
// campaign level: the upstream API rejects requests mixing them.
var campaignStatusFields = map[string]struct{}{
	"status":            {},
	"effective_status":  {},
	"configured_status": {},
}

// DefaultFields returns a copy of the level's fallback field subset.
func DefaultFields(level domain.Level) []string {
	defaults := levelDefaults[level]
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

// ResolveFields intersects the requested fields with the level's whitelist,
// keeping the caller's order. An empty intersection falls back to the
// level's defaults. At the campaign level, status-type fields requested
// together with metric fields are dropped in favor of the metrics.
func ResolveFields(level domain.Level, requested []string) []string {
	whitelist := make(map[string]struct{}, len(LevelFields[level]))
	for _, field := range LevelFields[level] {
		whitelist[field] = struct{}{}
	}

	resolved := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, field := range requested {
		if _, ok := whitelist[field]; !ok {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		resolved = append(resolved, field)
	}

	if len(resolved) == 0 {
		return DefaultFields(level)
	}

	if level == domain.LevelCampaign {
		resolved = dropConflictingStatusFields(resolved)
	}

	return resolved
}

func dropConflictingStatusFields(fields []string) []string {
	statusCount := 0
	for _, field := range fields {
		if _, ok := campaignStatusFields[field]; ok {
			statusCount++
		}
	}

	// Only status fields, or no status fields: nothing conflicts.
	if statusCount == 0 || statusCount == len(fields) {
		return fields
	}

	kept := make([]string, 0, len(fields)-statusCount)
	for _, field := range fields {
		if _, ok := campaignStatusFields[field]; ok {
			continue
		}
		kept = append(kept, field)
	}
	return kept
}
