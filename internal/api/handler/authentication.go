package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dashboardai/insights-api/internal/usecases/authenticating"
	"github.com/dashboardai/insights-api/pkg/apiErrors"
	"github.com/dashboardai/insights-api/pkg/log"
)

type loginRequest struct {
	APIKey string `json:"api_key"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func Login(service authenticating.Authenticator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Warn("auth: malformed login payload")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}

		token, err := service.Login(req.APIKey)
		if err != nil {
			var authErr *authenticating.AuthError
			if errors.As(err, &authErr) {
				logger.WithField("code", authErr.Code).Warn("auth: login rejected")
				apiErrors.WriteError(w, authErr.Code, "login failed", nil)
				return
			}

			logger.WithError(err).Error("auth: login failed")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "login failed", nil)
			return
		}

		logger.Info("auth: login succeeded")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(loginResponse{Token: token}); err != nil {
			logger.WithError(err).Error("auth: failed to encode response")
		}
	})
}
