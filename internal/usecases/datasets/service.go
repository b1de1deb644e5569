package datasets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/coocood/freecache"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/dashboardai/insights-api/infrastructure/repository"
	"github.com/dashboardai/insights-api/internal/domain"
	"github.com/dashboardai/insights-api/pkg/utils"
)

// Process-wide dataset cache. Lifecycle: Refresh writes and replaces the
// whole entry after an ingestion run, Get reads through with a TTL, and
// Invalidate drops the entry. Entries are scoped per (account, user) pair.

const (
	cacheSizeBytes = 32 * 1024 * 1024

	defaultTTL = 15 * time.Minute

	absentValue = "-"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// datasetColumns is the projection order for rendered rows.
var datasetColumns = []string{
	"level", "campaign_name", "adset_name", "ad_name", "ad_id",
	"impressions", "reach", "clicks", "cpc", "spend", "frequency", "ctr", "cpm",
	"date_start", "date_stop", "status", "objective",
}

type Loader interface {
	// Get returns the cached dataset for the pair, loading from the store on
	// a cache miss.
	Get(ctx context.Context, accountID, userID int) (*domain.Dataset, error)
	// Refresh rebuilds the dataset from the store and replaces the cache
	// entry.
	Refresh(ctx context.Context, accountID, userID int) (*domain.Dataset, error)
	Invalidate(accountID, userID int)
}

type Service struct {
	insightRepository repository.InsightRepository
	cache             *freecache.Cache
	ttl               time.Duration
}

func NewService(insightRepo repository.InsightRepository, ttl time.Duration) Loader {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Service{
		insightRepository: insightRepo,
		cache:             freecache.NewCache(cacheSizeBytes),
		ttl:               ttl,
	}
}

func (s *Service) Get(ctx context.Context, accountID, userID int) (*domain.Dataset, error) {
	key := cacheKey(accountID, userID)

	if cached, err := s.cache.Get(key); err == nil {
		dataset := &domain.Dataset{}
		if err := json.Unmarshal(cached, dataset); err == nil {
			return dataset, nil
		}

		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"user_id":    userID,
		}).Warn("corrupt dataset cache entry, rebuilding")
	}

	return s.Refresh(ctx, accountID, userID)
}

func (s *Service) Refresh(ctx context.Context, accountID, userID int) (*domain.Dataset, error) {
	records, err := s.insightRepository.ListByAccountAndUser(ctx, accountID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	dataset := buildDataset(accountID, userID, records)

	encoded, err := json.Marshal(dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dataset: %w", err)
	}

	if err := s.cache.Set(cacheKey(accountID, userID), encoded, int(s.ttl.Seconds())); err != nil {
		// Oversized entries are served without caching.
		logrus.WithError(err).WithFields(logrus.Fields{
			"account_id": accountID,
			"user_id":    userID,
			"bytes":      len(encoded),
		}).Warn("failed to cache dataset")
	}

	return dataset, nil
}

func (s *Service) Invalidate(accountID, userID int) {
	s.cache.Del(cacheKey(accountID, userID))
}

func cacheKey(accountID, userID int) []byte {
	return []byte(fmt.Sprintf("dataset:%d:%d", accountID, userID))
}

// buildDataset renders records into a tabular projection. Absent values
// render as the "-" placeholder; sidecar fields extend the column set in
// first-seen order.
func buildDataset(accountID, userID int, records []*domain.InsightRecord) *domain.Dataset {
	columns := make([]string, len(datasetColumns))
	copy(columns, datasetColumns)

	columnIndex := make(map[string]int, len(columns))
	for i, column := range columns {
		columnIndex[column] = i
	}

	for _, record := range records {
		for _, extra := range record.Extra {
			if _, ok := columnIndex[extra.Key]; !ok {
				columnIndex[extra.Key] = len(columns)
				columns = append(columns, extra.Key)
			}
		}
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(columns))
		for i := range row {
			row[i] = absentValue
		}

		row[columnIndex["level"]] = string(record.Level)
		setCell(row, columnIndex, "campaign_name", record.CampaignName)
		setCell(row, columnIndex, "adset_name", record.AdsetName)
		setCell(row, columnIndex, "ad_name", record.AdName)
		setCell(row, columnIndex, "ad_id", record.AdID)
		setIntCell(row, columnIndex, "impressions", record.Impressions)
		setIntCell(row, columnIndex, "reach", record.Reach)
		setIntCell(row, columnIndex, "clicks", record.Clicks)
		setFloatCell(row, columnIndex, "cpc", record.CPC)
		setFloatCell(row, columnIndex, "spend", record.Spend)
		setFloatCell(row, columnIndex, "frequency", record.Frequency)
		setFloatCell(row, columnIndex, "ctr", record.CTR)
		setFloatCell(row, columnIndex, "cpm", record.CPM)
		setCell(row, columnIndex, "date_start", record.DateStart)
		setCell(row, columnIndex, "date_stop", record.DateStop)
		setCell(row, columnIndex, "status", record.Status)
		setCell(row, columnIndex, "objective", record.Objective)

		for _, extra := range record.Extra {
			if extra.Value != nil {
				row[columnIndex[extra.Key]] = *extra.Value
			}
		}

		rows = append(rows, row)
	}

	return &domain.Dataset{
		AccountID: accountID,
		UserID:    userID,
		Columns:   columns,
		Rows:      rows,
	}
}

func setCell(row []string, index map[string]int, column, value string) {
	if value != "" {
		row[index[column]] = value
	}
}

func setIntCell(row []string, index map[string]int, column string, value *int64) {
	if value != nil {
		row[index[column]] = strconv.FormatInt(*value, 10)
	}
}

// Float metrics render rounded to two decimal places, the precision the
// charting layer displays.
func setFloatCell(row []string, index map[string]int, column string, value *float64) {
	if value != nil {
		row[index[column]] = strconv.FormatFloat(utils.RoundWithTwoDecimalPlace(*value), 'f', -1, 64)
	}
}
