package utils

import "time"

// ParseDate parses a YYYY-MM-DD string. An empty string yields a nil time,
// letting callers fall back to their default range.
func ParseDate(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return nil, err
	}

	return &date, nil
}
