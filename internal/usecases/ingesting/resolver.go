package ingesting

import (
	"context"
	"fmt"

	"github.com/dashboardai/insights-api/internal/domain"
	"github.com/dashboardai/insights-api/pkg/apiErrors"
)

// resolveUser maps the external user identifier to the internal user. An
// unknown identifier is fatal for the run.
func (s *Service) resolveUser(ctx context.Context, externalUserID string) (*domain.User, error) {
	user, err := s.userRepository.GetByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, NewIngestError(err, apiErrors.ErrDatabaseOperation, "failed to look up user")
	}

	if user == nil {
		return nil, NewIngestError(ErrUserNotFound, apiErrors.ErrUserNotFound,
			fmt.Sprintf("external user id %q", externalUserID))
	}

	return user, nil
}

// resolveAccount maps the platform identifier to an active account, matching
// the prefixed and unprefixed identifier forms interchangeably.
func (s *Service) resolveAccount(ctx context.Context, identifier, platform string) (*domain.Account, error) {
	account, err := s.accountRepository.FindActiveByIdentifier(ctx, identifier, platform)
	if err != nil {
		return nil, NewIngestError(err, apiErrors.ErrDatabaseOperation, "failed to look up account")
	}

	if account == nil {
		return nil, NewIngestError(ErrAccountNotFound, apiErrors.ErrAccountNotFound,
			fmt.Sprintf("identifier %q on platform %q", identifier, platform))
	}

	return account, nil
}
