// Package scope resolves the set of users whose data a request may see.
package scope

import (
	"context"
	"log/slog"

	"github.com/amirasaad/finshare/pkg/domain/scope"
	"github.com/amirasaad/finshare/pkg/repository"
	grouprepo "github.com/amirasaad/finshare/pkg/repository/group"
	"github.com/google/uuid"
)

// Service resolves view scopes against live group memberships.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new scope Service.
func New(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, logger: logger}
}

// Resolve returns the user ids visible to requester under sc.
func (s *Service) Resolve(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
) (ids []uuid.UUID, err error) {
	ids, err = ResolveIn(ctx, s.uow, requester, sc)
	if err != nil {
		s.logger.Error("Resolve failed", "userID", requester, "scope", nameOf(sc), "error", err)
	}
	return
}

// ResolveIn resolves sc with the group repository of uow, so it can run
// inside another unit of work.
func ResolveIn(
	ctx context.Context,
	uow repository.UnitOfWork,
	requester uuid.UUID,
	sc scope.Scope,
) ([]uuid.UUID, error) {
	if _, own := sc.(scope.Own); own || sc == nil {
		return []uuid.UUID{requester}, nil
	}
	dir, err := repository.Get[grouprepo.Repository](uow)
	if err != nil {
		return nil, err
	}
	return scope.Resolve(ctx, dir, requester, sc)
}

// Visible reports whether owner is within requester's All scope.
func Visible(
	ctx context.Context,
	uow repository.UnitOfWork,
	requester, owner uuid.UUID,
) (bool, error) {
	if requester == owner {
		return true, nil
	}
	ids, err := ResolveIn(ctx, uow, requester, scope.All{})
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == owner {
			return true, nil
		}
	}
	return false, nil
}

func nameOf(sc scope.Scope) string {
	if sc == nil {
		return "own"
	}
	return sc.Name()
}
