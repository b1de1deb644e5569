package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dashboardai/insights-api/internal/scheduler"
	"github.com/dashboardai/insights-api/pkg/log"
)

// RunIngestionSync triggers the periodic sync outside its schedule. The
// trigger is asynchronous: a run already in progress absorbs the request.
func RunIngestionSync(service *scheduler.IngestionSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		logger.Info("cron: manual ingestion sync requested")

		service.TriggerManualSync(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "triggered"}); err != nil {
			logger.WithError(err).Error("cron: failed to encode response")
		}
	})
}

func GetIngestionSyncStatus(service *scheduler.IngestionSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(service.GetStatus()); err != nil {
			logger.WithError(err).Error("cron: failed to encode response")
		}
	})
}
