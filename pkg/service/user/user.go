// Package user provides business logic for user registration and lookup.
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/user"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/repository"
	userrepo "github.com/amirasaad/finshare/pkg/repository/user"
	categorysvc "github.com/amirasaad/finshare/pkg/service/category"
	"github.com/google/uuid"
)

// Service provides business logic for user operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork and logger.
func New(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:    uow,
		logger: logger,
	}
}

// Register creates a user and seeds the default categories in one
// transaction. Email and username must both be unused.
func (s *Service) Register(
	ctx context.Context,
	username, email, password, names string,
) (read *dto.UserRead, err error) {
	log := s.logger.With("username", username)
	u, err := user.New(username, email, password, names)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		taken, err := repo.ExistsByEmail(ctx, u.Email)
		if err != nil {
			return err
		}
		if taken {
			return user.ErrEmailTaken
		}
		taken, err = repo.ExistsByUsername(ctx, u.Username)
		if err != nil {
			return err
		}
		if taken {
			return user.ErrUsernameTaken
		}
		if err := repo.Create(ctx, &dto.UserCreate{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
			Names:    u.Names,
		}); err != nil {
			return err
		}
		if err := categorysvc.CreateDefaults(ctx, uow, u.ID); err != nil {
			return err
		}
		read, err = repo.Get(ctx, u.ID)
		return err
	})
	if err != nil {
		log.Error("Register failed", "error", err)
		return nil, err
	}
	log.Info("Register successful", "userID", u.ID)
	return read, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(
	ctx context.Context,
	userID uuid.UUID,
) (*dto.UserRead, error) {
	repo, err := repository.Get[userrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return notFound(repo.Get(ctx, userID))
}

// GetUserByEmail retrieves a user by email.
func (s *Service) GetUserByEmail(
	ctx context.Context,
	email string,
) (*dto.UserRead, error) {
	repo, err := repository.Get[userrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return notFound(repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email))))
}

// GetUserByUsername retrieves a user by username.
func (s *Service) GetUserByUsername(
	ctx context.Context,
	username string,
) (*dto.UserRead, error) {
	repo, err := repository.Get[userrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return notFound(repo.GetByUsername(ctx, strings.TrimSpace(username)))
}

func notFound(u *dto.UserRead, err error) (*dto.UserRead, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return nil, user.ErrUserNotFound
	}
	return u, err
}
