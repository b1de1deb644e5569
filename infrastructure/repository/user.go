package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/dashboardai/insights-api/infrastructure/database/postgres"
	"github.com/dashboardai/insights-api/internal/domain"
)

const (
	usersTable        = "users u"
	userAccountsTable = "user_accounts ua"
)

type UserRepository interface {
	// GetByExternalID resolves the external user identifier to the internal
	// user. Returns nil when no user matches.
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	GetByID(ctx context.Context, userID int) (*domain.User, error)
	// ListLinkedPairs lists every (user, account) link involving an active
	// account, for the periodic sync.
	ListLinkedPairs(ctx context.Context) ([]*domain.UserAccountLink, error)
}

type userRepository struct {
	conn *postgres.Connection
}

func NewUserRepository(conn *postgres.Connection) UserRepository {
	return &userRepository{
		conn: conn,
	}
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	usersSQL, usersArgs, err := squirrel.
		Select("u.id, u.username, u.external_id, u.created_at").
		From(usersTable).
		Where(squirrel.Eq{"u.external_id": externalID}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.scanUser(r.conn.QueryRow(ctx, usersSQL, usersArgs...))
}

func (r *userRepository) GetByID(ctx context.Context, userID int) (*domain.User, error) {
	usersSQL, usersArgs, err := squirrel.
		Select("u.id, u.username, u.external_id, u.created_at").
		From(usersTable).
		Where(squirrel.Eq{"u.id": userID}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.scanUser(r.conn.QueryRow(ctx, usersSQL, usersArgs...))
}

func (r *userRepository) ListLinkedPairs(ctx context.Context) ([]*domain.UserAccountLink, error) {
	pairsSQL, pairsArgs, err := squirrel.
		Select("u.id, u.external_id, a.id, a.identifier, a.platform").
		From(userAccountsTable).
		Join("users u ON u.id = ua.user_id").
		Join("accounts a ON a.id = ua.account_id").
		Where(squirrel.Eq{"a.active": true}).
		OrderBy("u.id ASC, a.id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, pairsSQL, pairsArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	links := make([]*domain.UserAccountLink, 0)
	for rows.Next() {
		link := &domain.UserAccountLink{}
		if err := rows.Scan(
			&link.UserID,
			&link.ExternalUserID,
			&link.AccountID,
			&link.AccountIdentifier,
			&link.Platform,
		); err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return links, nil
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.ExternalID,
		&user.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}
