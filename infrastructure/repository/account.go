package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/dashboardai/insights-api/infrastructure/database/postgres"
	"github.com/dashboardai/insights-api/internal/domain"
)

const (
	accountsTable = "accounts a"
)

type AccountRepository interface {
	// FindActiveByIdentifier matches an active account by its platform
	// identifier in either prefixed or unprefixed form. Returns nil when no
	// active account matches.
	FindActiveByIdentifier(ctx context.Context, identifier, platform string) (*domain.Account, error)
	// ResolveAccountID translates a platform identifier to the internal
	// account id, regardless of active flag. Returns 0 when unknown.
	ResolveAccountID(ctx context.Context, identifier, platform string) (int, error)
	ListActive(ctx context.Context, platform string) ([]*domain.Account, error)
	Deactivate(ctx context.Context, accountID int) error
}

type accountRepository struct {
	conn *postgres.Connection
}

func NewAccountRepository(conn *postgres.Connection) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

func (r *accountRepository) FindActiveByIdentifier(ctx context.Context, identifier, platform string) (*domain.Account, error) {
	forms := domain.IdentifierForms(identifier)

	accountsSQL, accountsArgs, err := squirrel.
		Select("a.id, a.platform, a.kind, a.token, a.identifier, a.name, a.connected_at, a.active").
		From(accountsTable).
		Where(squirrel.Eq{"TRIM(a.identifier)": forms}).
		Where(squirrel.Eq{"a.platform": platform, "a.active": true}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	row := r.conn.QueryRow(ctx, accountsSQL, accountsArgs...)

	account, err := r.scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) ResolveAccountID(ctx context.Context, identifier, platform string) (int, error) {
	forms := domain.IdentifierForms(identifier)

	accountsSQL, accountsArgs, err := squirrel.
		Select("a.id").
		From(accountsTable).
		Where(squirrel.Eq{"TRIM(a.identifier)": forms}).
		Where(squirrel.Eq{"a.platform": platform}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var id int
	if err := r.conn.QueryRow(ctx, accountsSQL, accountsArgs...).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}

	return id, nil
}

func (r *accountRepository) ListActive(ctx context.Context, platform string) ([]*domain.Account, error) {
	queryBuilder := squirrel.
		Select("a.id, a.platform, a.kind, a.token, a.identifier, a.name, a.connected_at, a.active").
		From(accountsTable).
		Where(squirrel.Eq{"a.active": true}).
		OrderBy("a.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if platform != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"a.platform": platform})
	}

	accountsSQL, accountsArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, accountsSQL, accountsArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		account := &domain.Account{}
		if err := rows.Scan(
			&account.ID,
			&account.Platform,
			&account.Kind,
			&account.Token,
			&account.Identifier,
			&account.Name,
			&account.ConnectedAt,
			&account.Active,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

// Deactivate flips the active flag off, used when the upstream reports the
// account token as expired.
func (r *accountRepository) Deactivate(ctx context.Context, accountID int) error {
	updateSQL, updateArgs, err := squirrel.
		Update("accounts").
		Set("active", false).
		Where(squirrel.Eq{"id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	_, err = r.conn.Exec(ctx, updateSQL, updateArgs...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

func (r *accountRepository) scanAccount(row *sql.Row) (*domain.Account, error) {
	account := &domain.Account{}

	if err := row.Scan(
		&account.ID,
		&account.Platform,
		&account.Kind,
		&account.Token,
		&account.Identifier,
		&account.Name,
		&account.ConnectedAt,
		&account.Active,
	); err != nil {
		return nil, err
	}

	return account, nil
}
