package repository

import (
	"context"
	"fmt"
)

// UnitOfWork defines the contract for transactional work and repository access.
//
// Do runs fn inside one database transaction; every repository obtained from
// the UnitOfWork passed to fn shares that transaction. Outside Do,
// GetRepository returns repositories bound to the plain session, which suits
// read-only work.
//
//	repoAny, err := uow.GetRepository((*user.Repository)(nil))
//	repo := repoAny.(user.Repository)
type UnitOfWork interface {
	// Do executes the given function within a transaction boundary.
	// If the function returns an error, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns the repository whose interface pointer type is
	// passed in, e.g. (*account.Repository)(nil).
	GetRepository(repoType any) (any, error)
}

// Get is the typed form of GetRepository.
func Get[T any](uow UnitOfWork) (T, error) {
	var zero T
	repoAny, err := uow.GetRepository((*T)(nil))
	if err != nil {
		return zero, err
	}
	repo, ok := repoAny.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected repository type %T", repoAny)
	}
	return repo, nil
}
