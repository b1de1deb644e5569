package metaclient

import (
	"context"
	"net/http"
	"time"

	metadomain "github.com/dashboardai/insights-api/infrastructure/integrator/meta/domain"
	"github.com/dashboardai/insights-api/internal/config"
)

type Client interface {
	// ListInsights retrieves every page of insight items for one
	// (level, date range) pair. On an upstream failure the items fetched so
	// far are returned together with the error; a re-invocation starts over
	// from page one.
	ListInsights(ctx context.Context, query metadomain.InsightsQuery) ([]metadomain.RawInsight, error)
}

type MetaClient struct {
	Cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	timeout := cfg.Meta.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &MetaClient{
		Cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}
