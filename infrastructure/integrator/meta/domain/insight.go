package metadomain

import (
	"encoding/json"
	"fmt"

	"github.com/dashboardai/insights-api/internal/domain"
)

// RawInsight is one loosely-typed item from the upstream insights endpoint.
// Values may be strings, numbers, nulls or nested structures (actions).
type RawInsight map[string]any

// StringValue renders a scalar field as a string. Nested values and absent
// fields report false.
func (r RawInsight) StringValue(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}

	switch value := v.(type) {
	case string:
		return value, true
	case float64:
		// encoding/json decodes all numbers as float64
		return fmt.Sprintf("%v", value), true
	case bool:
		return fmt.Sprintf("%t", value), true
	}
	return "", false
}

// RawValue marshals a structured field (e.g. actions) back to JSON.
func (r RawInsight) RawValue(field string) (json.RawMessage, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return data, true
}

// InsightsQuery describes one (level, date range) retrieval.
type InsightsQuery struct {
	AccountIdentifier string
	Token             string
	Level             domain.Level
	Fields            []string
	Range             domain.DateRange
	PageSize          int
}

// InsightsPage is one page of the upstream response.
type InsightsPage struct {
	Data   []RawInsight `json:"data"`
	Paging *Paging      `json:"paging"`
}

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next"`
}

// ErrorResponse is the upstream error envelope.
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// IsTokenExpired reports whether the envelope signals an expired token.
// Code 190 is "token expired"; subcodes 460/463/467 are token problems on
// OAuthException responses.
func (e *ErrorResponse) IsTokenExpired() bool {
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" && (e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}
