package handler

import (
	"net/http"

	"github.com/dashboardai/insights-api/infrastructure/repository"
	"github.com/dashboardai/insights-api/internal/api/handler/router"
	"github.com/dashboardai/insights-api/internal/scheduler"
	"github.com/dashboardai/insights-api/internal/usecases/authenticating"
	"github.com/dashboardai/insights-api/internal/usecases/datasets"
	"github.com/dashboardai/insights-api/internal/usecases/ingesting"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
	}
}

func Ingestion(service ingesting.Ingester) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/ingestions",
			Method:  http.MethodPost,
			Handler: RunIngestion(service),
		},
	}
}

func Datasets(service datasets.Loader, accountRepo repository.AccountRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/accounts/:account_id/users/:user_id/dataset",
			Method:  http.MethodGet,
			Handler: GetDataset(service, accountRepo),
		},
	}
}

func Accounts(accountRepo repository.AccountRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/accounts",
			Method:  http.MethodGet,
			Handler: ListAccounts(accountRepo),
		},
	}
}

func CronJobs(syncService *scheduler.IngestionSyncService) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/ingestion-sync/run",
			Method:  http.MethodPost,
			Handler: RunIngestionSync(syncService),
		},
		{
			Path:    "/v1/cron/ingestion-sync/status",
			Method:  http.MethodGet,
			Handler: GetIngestionSyncStatus(syncService),
		},
	}
}
