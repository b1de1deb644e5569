package ingesting

import (
	"errors"
	"fmt"
)

// Fatal resolution errors. Either one aborts the whole run before any
// upstream call is made.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountNotFound = errors.New("no active account matches identifier")

	ErrInvalidLevel     = errors.New("invalid aggregation level")
	ErrInvalidDateRange = errors.New("start date after end date")
)

// IngestError carries an API error code and run context alongside the base
// error.
type IngestError struct {
	Err     error
	Code    string
	RunID   string
	Details string
}

func (e *IngestError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// IsNotFoundError reports whether the error is one of the fatal resolution
// failures.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrAccountNotFound)
}

func NewIngestError(baseErr error, code string, details string) *IngestError {
	return &IngestError{
		Err:     baseErr,
		Code:    code,
		Details: details,
	}
}
