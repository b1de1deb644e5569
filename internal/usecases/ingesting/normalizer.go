package ingesting

import (
	"strconv"
	"time"

	metadomain "github.com/dashboardai/insights-api/infrastructure/integrator/meta/domain"
	"github.com/dashboardai/insights-api/internal/domain"
)

const (
	// missingFieldPlaceholder marks a requested field the upstream item did
	// not carry. It only ever appears in the sidecar bag, never in a typed
	// numeric column.
	missingFieldPlaceholder = "-"

	defaultStatus = "ACTIVE"
)

// typedFields are the raw field names promoted to typed record columns.
// Everything else requested lands in the sidecar.
var typedFields = map[string]struct{}{
	"campaign_name": {},
	"adset_name":    {},
	"ad_name":       {},
	"ad_id":         {},
	"impressions":   {},
	"reach":         {},
	"clicks":        {},
	"cpc":           {},
	"spend":         {},
	"frequency":     {},
	"ctr":           {},
	"cpm":           {},
	"date_start":    {},
	"date_stop":     {},
	"objective":     {},
	"actions":       {},

	"status":            {},
	"effective_status":  {},
	"configured_status": {},
}

// normalizeRecord maps one raw upstream item into a canonical record, stamped
// with the level it was fetched under. Coercion never fails: unparseable
// numerics become nil and absent requested fields fall back to the sidecar
// placeholder.
func normalizeRecord(
	item metadomain.RawInsight,
	level domain.Level,
	requestedFields []string,
	accountID, userID int,
	window domain.DateRange,
	extractedAt time.Time,
) *domain.InsightRecord {
	record := &domain.InsightRecord{
		AccountID:   accountID,
		UserID:      userID,
		ExtractedAt: extractedAt,
		Level:       level,

		CampaignName: stringField(item, "campaign_name"),
		AdsetName:    stringField(item, "adset_name"),
		AdName:       stringField(item, "ad_name"),
		AdID:         stringField(item, "ad_id"),

		Impressions: coerceInt(item, "impressions"),
		Reach:       coerceInt(item, "reach"),
		Clicks:      coerceInt(item, "clicks"),
		CPC:         coerceFloat(item, "cpc"),
		Spend:       coerceFloat(item, "spend"),
		Frequency:   coerceFloat(item, "frequency"),
		CTR:         coerceFloat(item, "ctr"),
		CPM:         coerceFloat(item, "cpm"),

		Objective: stringField(item, "objective"),
		Status:    statusField(item),
	}

	record.DateStart = stringField(item, "date_start")
	if record.DateStart == "" {
		record.DateStart = window.Since.Format(time.DateOnly)
	}
	record.DateStop = stringField(item, "date_stop")
	if record.DateStop == "" {
		record.DateStop = window.Until.Format(time.DateOnly)
	}

	if actions, ok := item.RawValue("actions"); ok {
		record.Actions = actions
	}

	for _, field := range requestedFields {
		if _, typed := typedFields[field]; typed {
			continue
		}

		if value, ok := item.StringValue(field); ok {
			v := value
			record.Extra.Set(field, &v)
			continue
		}

		placeholder := missingFieldPlaceholder
		record.Extra.Set(field, &placeholder)
	}

	return record
}

func stringField(item metadomain.RawInsight, field string) string {
	value, _ := item.StringValue(field)
	return value
}

// statusField reads the campaign status in precedence order, defaulting to
// ACTIVE when upstream omits all variants.
func statusField(item metadomain.RawInsight) string {
	for _, field := range []string{"status", "effective_status", "configured_status"} {
		if value, ok := item.StringValue(field); ok && value != "" {
			return value
		}
	}
	return defaultStatus
}

// coerceFloat turns a loosely-typed raw value into a float. The sentinel
// values null, "", "-" and "null" become nil, as does any parse failure.
func coerceFloat(item metadomain.RawInsight, field string) *float64 {
	value, ok := item.StringValue(field)
	if !ok || isNullSentinel(value) {
		return nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// coerceInt applies the float coercion rule then truncates toward zero.
func coerceInt(item metadomain.RawInsight, field string) *int64 {
	parsed := coerceFloat(item, field)
	if parsed == nil {
		return nil
	}

	truncated := int64(*parsed)
	return &truncated
}

func isNullSentinel(value string) bool {
	switch value {
	case "", "-", "null":
		return true
	}
	return false
}
