package apiErrors

import (
	"encoding/json"
	"net/http"
)

// API error codes grouped by concern
const (
	// Authentication (1000-1999)
	ErrInvalidCredentials = "AUTH_001" // invalid API key
	ErrInvalidToken       = "AUTH_002" // invalid JWT
	ErrExpiredToken       = "AUTH_003" // expired JWT

	// Validation (2000-2999)
	ErrInvalidRequest      = "VAL_001" // malformed request
	ErrMissingRequiredData = "VAL_002" // required data absent
	ErrInvalidFormat       = "VAL_003" // bad data format

	// Ingestion (3000-3999)
	ErrUserNotFound    = "ING_001" // external user unknown
	ErrAccountNotFound = "ING_002" // no active account matches

	// Server (5000-5999)
	ErrInternalServer    = "SRV_001" // internal error
	ErrDatabaseOperation = "SRV_002" // database failure
	ErrExternalService   = "SRV_003" // upstream API failure
)

var httpStatusMap = map[string]int{
	ErrInvalidCredentials:  http.StatusUnauthorized,
	ErrInvalidToken:        http.StatusUnauthorized,
	ErrExpiredToken:        http.StatusUnauthorized,
	ErrInvalidRequest:      http.StatusBadRequest,
	ErrMissingRequiredData: http.StatusBadRequest,
	ErrInvalidFormat:       http.StatusBadRequest,
	ErrUserNotFound:        http.StatusNotFound,
	ErrAccountNotFound:     http.StatusNotFound,
	ErrInternalServer:      http.StatusInternalServerError,
	ErrDatabaseOperation:   http.StatusInternalServerError,
	ErrExternalService:     http.StatusBadGateway,
}

// APIError is the standardized error payload returned to clients
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// WriteError writes the standardized error to the HTTP response
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	status, exists := httpStatusMap[code]
	if !exists {
		status = http.StatusInternalServerError
	}

	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiErr)
}

// FromError builds an API error from a Go error
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "unknown error",
		}
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}
