package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	metadomain "github.com/dashboardai/insights-api/infrastructure/integrator/meta/domain"
	"github.com/dashboardai/insights-api/internal/domain"
)

const (
	// maxPages guards against a runaway cursor loop.
	maxPages = 500

	defaultPageSize = 500
)

// ErrTokenExpired marks an upstream rejection caused by an expired access
// token. Callers use it to deactivate the connected account.
var ErrTokenExpired = errors.New("upstream access token expired")

// insightsResponse covers both shapes the upstream answers with: a data
// page or an error envelope.
type insightsResponse struct {
	Data   []metadomain.RawInsight  `json:"data"`
	Paging *metadomain.Paging       `json:"paging"`
	Error  *metadomain.ErrorDetails `json:"error"`
}

func (c *MetaClient) ListInsights(ctx context.Context, query metadomain.InsightsQuery) ([]metadomain.RawInsight, error) {
	pageURL, err := c.buildInsightsURL(query)
	if err != nil {
		return nil, err
	}

	items := make([]metadomain.RawInsight, 0)

	for page := 1; ; page++ {
		if page > maxPages {
			logrus.WithFields(logrus.Fields{
				"account": query.AccountIdentifier,
				"level":   query.Level,
				"pages":   maxPages,
			}).Warn("meta: page cap reached, ending stream")
			return items, nil
		}

		select {
		case <-ctx.Done():
			return items, ctx.Err()
		default:
		}

		response, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			return items, err
		}

		if response.Error != nil {
			envelope := metadomain.ErrorResponse{Error: *response.Error}
			if envelope.IsTokenExpired() {
				return items, errors.Wrap(ErrTokenExpired, response.Error.Message)
			}
			return items, errors.Errorf("meta API error (code %d): %s", response.Error.Code, response.Error.Message)
		}

		if response.Data == nil {
			return items, nil
		}
		items = append(items, response.Data...)

		if response.Paging == nil || response.Paging.Next == "" {
			return items, nil
		}

		// The next-page URL is followed verbatim; it already carries every
		// query parameter.
		pageURL = response.Paging.Next
	}
}

func (c *MetaClient) buildInsightsURL(query metadomain.InsightsQuery) (string, error) {
	base := fmt.Sprintf("%s/%s/insights", c.Cfg.Meta.URL, domain.PrefixAccountIdentifier(query.AccountIdentifier))

	timeRange := fmt.Sprintf(
		"{\"since\":\"%s\",\"until\":\"%s\"}",
		query.Range.Since.Format(time.DateOnly),
		query.Range.Until.Format(time.DateOnly),
	)

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	fields := ""
	for i, field := range query.Fields {
		if i > 0 {
			fields += ","
		}
		fields += field
	}

	params := url.Values{}
	params.Add("access_token", query.Token)
	params.Add("level", string(query.Level))
	params.Add("fields", fields)
	params.Add("time_range", timeRange)
	params.Add("time_increment", "1")
	params.Add("limit", strconv.Itoa(pageSize))

	return base + "?" + params.Encode(), nil
}

func (c *MetaClient) fetchPage(ctx context.Context, pageURL string) (*insightsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "meta: creating request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "meta: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "meta: reading response body")
	}

	var response insightsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Errorf("meta: upstream HTTP %d", resp.StatusCode)
		}
		return nil, errors.Wrap(err, "meta: decoding response")
	}

	if resp.StatusCode != http.StatusOK && response.Error == nil {
		return nil, errors.Errorf("meta: upstream HTTP %d", resp.StatusCode)
	}

	return &response, nil
}
