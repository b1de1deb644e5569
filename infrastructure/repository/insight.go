package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/dashboardai/insights-api/infrastructure/database/postgres"
	"github.com/dashboardai/insights-api/internal/domain"
)

// Table insight_records carries one row per normalized metric record, with a
// unique index on (account_id, user_id, ad_id, date_start, date_stop). The
// index backs the ON CONFLICT clause below, so concurrent runs cannot slip a
// duplicate past the pre-insert existence check.
const (
	insightsTable = "insight_records i"

	dedupConflictClause = "ON CONFLICT (account_id, user_id, ad_id, date_start, date_stop) DO NOTHING"
)

var insightColumns = []string{
	"account_id", "user_id", "extracted_at",
	"campaign_name", "adset_name", "ad_name", "ad_id", "level",
	"impressions", "reach", "clicks", "cpc", "spend", "frequency", "ctr", "cpm",
	"date_start", "date_stop", "status", "objective", "actions", "extra",
}

type InsightRepository interface {
	// Exists reports whether a record with the same dedup key is already
	// persisted.
	Exists(ctx context.Context, key domain.DedupKey) (bool, error)
	// Insert persists one record. Returns false when a concurrent writer got
	// there first and the row was skipped.
	Insert(ctx context.Context, record *domain.InsightRecord) (bool, error)
	ListByAccountAndUser(ctx context.Context, accountID, userID int) ([]*domain.InsightRecord, error)
}

type insightRepository struct {
	conn *postgres.Connection
}

func NewInsightRepository(conn *postgres.Connection) InsightRepository {
	return &insightRepository{
		conn: conn,
	}
}

func (r *insightRepository) Exists(ctx context.Context, key domain.DedupKey) (bool, error) {
	existsSQL, existsArgs, err := squirrel.
		Select("1").
		From(insightsTable).
		Where(squirrel.Eq{
			"i.account_id": key.AccountID,
			"i.user_id":    key.UserID,
			"i.ad_id":      key.AdID,
			"i.date_start": key.DateStart,
			"i.date_stop":  key.DateStop,
		}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var one int
	if err := r.conn.QueryRow(ctx, existsSQL, existsArgs...).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *insightRepository) Insert(ctx context.Context, record *domain.InsightRecord) (bool, error) {
	extra, err := marshalExtra(record.Extra)
	if err != nil {
		return false, fmt.Errorf("failed to encode extra fields: %w", err)
	}

	var actions []byte
	if len(record.Actions) > 0 {
		actions = record.Actions
	}

	insertSQL, insertArgs, err := squirrel.
		Insert("insight_records").
		Columns(insightColumns...).
		Values(
			record.AccountID, record.UserID, record.ExtractedAt,
			record.CampaignName, record.AdsetName, record.AdName, record.AdID, record.Level,
			record.Impressions, record.Reach, record.Clicks, record.CPC,
			record.Spend, record.Frequency, record.CTR, record.CPM,
			record.DateStart, record.DateStop, record.Status, record.Objective,
			actions, extra,
		).
		Suffix(dedupConflictClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.conn.Exec(ctx, insertSQL, insertArgs...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return false, fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return false, fmt.Errorf("failed to execute query: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *insightRepository) ListByAccountAndUser(ctx context.Context, accountID, userID int) ([]*domain.InsightRecord, error) {
	listSQL, listArgs, err := squirrel.
		Select(
			"i.id, i.account_id, i.user_id, i.extracted_at",
			"i.campaign_name, i.adset_name, i.ad_name, i.ad_id, i.level",
			"i.impressions, i.reach, i.clicks, i.cpc, i.spend, i.frequency, i.ctr, i.cpm",
			"i.date_start, i.date_stop, i.status, i.objective, i.actions, i.extra",
		).
		From(insightsTable).
		Where(squirrel.Eq{"i.account_id": accountID, "i.user_id": userID}).
		OrderBy("i.date_start ASC, i.level ASC, i.id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, listSQL, listArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.InsightRecord, 0)
	for rows.Next() {
		record := &domain.InsightRecord{}
		var actions, extra []byte

		if err := rows.Scan(
			&record.ID,
			&record.AccountID,
			&record.UserID,
			&record.ExtractedAt,
			&record.CampaignName,
			&record.AdsetName,
			&record.AdName,
			&record.AdID,
			&record.Level,
			&record.Impressions,
			&record.Reach,
			&record.Clicks,
			&record.CPC,
			&record.Spend,
			&record.Frequency,
			&record.CTR,
			&record.CPM,
			&record.DateStart,
			&record.DateStop,
			&record.Status,
			&record.Objective,
			&actions,
			&extra,
		); err != nil {
			return nil, err
		}

		if len(actions) > 0 {
			record.Actions = json.RawMessage(actions)
		}
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &record.Extra); err != nil {
				return nil, fmt.Errorf("failed to decode extra fields: %w", err)
			}
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func marshalExtra(extra domain.ExtraFields) ([]byte, error) {
	if len(extra) == 0 {
		return nil, nil
	}
	return json.Marshal(extra)
}
