package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Level is the aggregation granularity of a requested metric.
type Level string

const (
	LevelAd       Level = "ad"
	LevelAdset    Level = "adset"
	LevelCampaign Level = "campaign"
)

// AllLevels lists the levels an ingestion run covers when the caller does
// not restrict them, in fetch order.
var AllLevels = []Level{LevelAd, LevelAdset, LevelCampaign}

func (l Level) Valid() bool {
	switch l {
	case LevelAd, LevelAdset, LevelCampaign:
		return true
	}
	return false
}

// DateRange is one inclusive [Since, Until] window of an ingestion run.
type DateRange struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Since.Format(time.DateOnly), r.Until.Format(time.DateOnly))
}

// InsightRecord is one normalized row of ad performance metrics. Records are
// append-only: created once by the persister and never updated or deleted.
// Numeric columns are either a finite value or nil, never a sentinel string.
type InsightRecord struct {
	ID           int             `json:"id,omitempty"`
	AccountID    int             `json:"account_id"`
	UserID       int             `json:"user_id"`
	ExtractedAt  time.Time       `json:"extracted_at"`
	CampaignName string          `json:"campaign_name"`
	AdsetName    string          `json:"adset_name"`
	AdName       string          `json:"ad_name"`
	AdID         string          `json:"ad_id"`
	Level        Level           `json:"level"`
	Impressions  *int64          `json:"impressions"`
	Reach        *int64          `json:"reach"`
	Clicks       *int64          `json:"clicks"`
	CPC          *float64        `json:"cpc"`
	Spend        *float64        `json:"spend"`
	Frequency    *float64        `json:"frequency"`
	CTR          *float64        `json:"ctr"`
	CPM          *float64        `json:"cpm"`
	DateStart    string          `json:"date_start"`
	DateStop     string          `json:"date_stop"`
	Status       string          `json:"status"`
	Objective    string          `json:"objective"`
	Actions      json.RawMessage `json:"actions,omitempty"`
	Extra        ExtraFields     `json:"extra,omitempty"`
}

// DedupKey identifies a logically unique record: at most one persisted row
// should exist per key. Enforced by the dedup gate at insert time and backed
// by a unique index in the store.
type DedupKey struct {
	AccountID int
	UserID    int
	AdID      string
	DateStart string
	DateStop  string
}

func (r *InsightRecord) DedupKey() DedupKey {
	return DedupKey{
		AccountID: r.AccountID,
		UserID:    r.UserID,
		AdID:      r.AdID,
		DateStart: r.DateStart,
		DateStop:  r.DateStop,
	}
}

// ExtraField is one sidecar entry for a requested field that has no typed
// column. A nil value encodes as JSON null.
type ExtraField struct {
	Key   string
	Value *string
}

// ExtraFields is an insertion-ordered string to optional-string mapping.
// It keeps the caller's requested-field order, which a Go map would lose.
type ExtraFields []ExtraField

// Set replaces the value for key, or appends it when absent.
func (e *ExtraFields) Set(key string, value *string) {
	for i := range *e {
		if (*e)[i].Key == key {
			(*e)[i].Value = value
			return
		}
	}
	*e = append(*e, ExtraField{Key: key, Value: value})
}

// Get returns the value for key and whether the key is present.
func (e ExtraFields) Get(key string) (*string, bool) {
	for i := range e {
		if e[i].Key == key {
			return e[i].Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the sidecar as a JSON object in insertion order.
func (e ExtraFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if field.Value == nil {
			buf.WriteString("null")
		} else {
			value, err := json.Marshal(*field.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving its key order.
func (e *ExtraFields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("extra fields: expected JSON object, got %v", tok)
	}

	fields := ExtraFields{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("extra fields: non-string key %v", keyTok)
		}

		var value *string
		if err := dec.Decode(&value); err != nil {
			return err
		}
		fields = append(fields, ExtraField{Key: key, Value: value})
	}

	*e = fields
	return nil
}

// RangeFailure records one non-fatal (level, date range) upstream failure.
// The rest of the run proceeds.
type RangeFailure struct {
	Level Level     `json:"level"`
	Range DateRange `json:"range"`
	Cause string    `json:"cause"`
}

// IngestionResult aggregates one ingestion run. Zero inserts with zero
// collected records is a valid outcome (a clean re-run with nothing new),
// not an error.
type IngestionResult struct {
	RunID    string           `json:"run_id"`
	Records  []*InsightRecord `json:"records"`
	Inserted int              `json:"inserted"`
	Skipped  int              `json:"skipped"`
	Failures []RangeFailure   `json:"failures,omitempty"`
}
