package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dashboardai/insights-api/infrastructure/repository"
	"github.com/dashboardai/insights-api/pkg/apiErrors"
	"github.com/dashboardai/insights-api/pkg/log"
)

func ListAccounts(accountRepo repository.AccountRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		platform := r.URL.Query().Get("platform")

		accounts, err := accountRepo.ListActive(r.Context(), platform)
		if err != nil {
			logger.WithError(err).Error("accounts: failed to list accounts")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to list accounts", nil)
			return
		}

		logger.WithField("accounts", len(accounts)).Info("accounts: listed active accounts")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(accounts); err != nil {
			logger.WithError(err).Error("accounts: failed to encode response")
		}
	})
}
