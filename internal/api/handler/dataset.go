package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/dashboardai/insights-api/infrastructure/repository"
	"github.com/dashboardai/insights-api/internal/domain"
	"github.com/dashboardai/insights-api/internal/usecases/datasets"
	"github.com/dashboardai/insights-api/pkg/apiErrors"
	"github.com/dashboardai/insights-api/pkg/log"
)

// GetDataset serves the tabular dataset projection for one (account, user)
// pair, read through the process-wide cache. The account segment accepts the
// internal id or a platform identifier ("123" / "act_123"), which is
// translated through the account repository.
func GetDataset(service datasets.Loader, accountRepo repository.AccountRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		params := httprouter.ParamsFromContext(r.Context())

		accountID, err := resolveAccountParam(r, accountRepo, params.ByName("account_id"))
		if err != nil {
			logger.WithError(err).Error("datasets: failed to resolve account")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to resolve account", nil)
			return
		}
		if accountID == 0 {
			apiErrors.WriteError(w, apiErrors.ErrAccountNotFound, "unknown account", nil)
			return
		}

		userID, err := strconv.Atoi(params.ByName("user_id"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "invalid user id", nil)
			return
		}

		refresh := r.URL.Query().Get("refresh") == "true"

		logger.WithFields(log.Fields{
			"account_id": accountID,
			"user_id":    userID,
			"refresh":    refresh,
		}).Info("datasets: serving dataset")

		var dataset any
		if refresh {
			dataset, err = service.Refresh(r.Context(), accountID, userID)
		} else {
			dataset, err = service.Get(r.Context(), accountID, userID)
		}
		if err != nil {
			logger.WithError(err).WithFields(log.Fields{
				"account_id": accountID,
				"user_id":    userID,
			}).Error("datasets: failed to load dataset")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to load dataset", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(dataset); err != nil {
			logger.WithError(err).Error("datasets: failed to encode response")
		}
	})
}

// resolveAccountParam returns the internal account id for the path segment:
// numeric segments pass through, anything else is looked up as a platform
// identifier. A zero id means no account matched.
func resolveAccountParam(r *http.Request, accountRepo repository.AccountRepository, param string) (int, error) {
	if accountID, err := strconv.Atoi(param); err == nil {
		return accountID, nil
	}

	platform := r.URL.Query().Get("platform")
	if platform == "" {
		platform = domain.PlatformFacebookAds
	}

	return accountRepo.ResolveAccountID(r.Context(), param, platform)
}
