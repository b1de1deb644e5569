package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dashboardai/insights-api/internal/domain"
	"github.com/dashboardai/insights-api/internal/usecases/ingesting"
	"github.com/dashboardai/insights-api/pkg/apiErrors"
	"github.com/dashboardai/insights-api/pkg/log"
	"github.com/dashboardai/insights-api/pkg/utils"
)

type ingestionRequest struct {
	ExternalUserID    string         `json:"external_user_id"`
	AccountIdentifier string         `json:"account_identifier"`
	Platform          string         `json:"platform,omitempty"`
	Levels            []domain.Level `json:"levels,omitempty"`
	Fields            []string       `json:"fields,omitempty"`
	Since             string         `json:"since,omitempty"`
	Until             string         `json:"until,omitempty"`
}

// RunIngestion triggers one synchronous ingestion run and returns the
// aggregated result.
func RunIngestion(service ingesting.Ingester) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req ingestionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Warn("ingestion: malformed request payload")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}

		if req.ExternalUserID == "" || req.AccountIdentifier == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData,
				"external_user_id and account_identifier are required", nil)
			return
		}

		since, err := utils.ParseDate(req.Since)
		if err != nil {
			logger.WithField("since", req.Since).Warn("ingestion: invalid since parameter")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "invalid since date", nil)
			return
		}

		until, err := utils.ParseDate(req.Until)
		if err != nil {
			logger.WithField("until", req.Until).Warn("ingestion: invalid until parameter")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "invalid until date", nil)
			return
		}

		logger.WithFields(log.Fields{
			"external_user_id":   req.ExternalUserID,
			"account_identifier": req.AccountIdentifier,
		}).Info("ingestion: starting run")

		result, err := service.Ingest(r.Context(), ingesting.IngestionRequest{
			ExternalUserID:    req.ExternalUserID,
			AccountIdentifier: req.AccountIdentifier,
			Platform:          req.Platform,
			Levels:            req.Levels,
			Fields:            req.Fields,
			Since:             since,
			Until:             until,
		})
		if err != nil {
			writeIngestError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithError(err).Error("ingestion: failed to encode response")
		}
	})
}

func writeIngestError(w http.ResponseWriter, logger log.Logger, err error) {
	var ingestErr *ingesting.IngestError
	if errors.As(err, &ingestErr) {
		logger.WithFields(log.Fields{
			"code":  ingestErr.Code,
			"error": err.Error(),
		}).Warn("ingestion: run rejected")
		apiErrors.WriteError(w, ingestErr.Code, err.Error(), nil)
		return
	}

	logger.WithError(err).Error("ingestion: run failed")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "ingestion failed", nil)
}
