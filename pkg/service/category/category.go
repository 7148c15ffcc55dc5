// Package category provides the application service for income and
// expense categories.
package category

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/category"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/repository"
	categoryrepo "github.com/amirasaad/finshare/pkg/repository/category"
	"github.com/google/uuid"
)

// Service manages a user's categories.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new category Service.
func New(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, logger: logger}
}

// CreateCategory creates a category for userID.
func (s *Service) CreateCategory(
	ctx context.Context,
	userID uuid.UUID,
	in dto.CategoryCreate,
) (c *dto.CategoryRead, err error) {
	log := s.logger.With("userID", userID)
	in.Name = strings.TrimSpace(in.Name)
	if err = category.ValidateName(in.Name); err != nil {
		return nil, err
	}
	if in.Type, err = category.ParseType(string(in.Type)); err != nil {
		return nil, err
	}
	in.ID = uuid.New()
	in.UserID = userID

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[categoryrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, in); err != nil {
			return err
		}
		c, err = repo.Get(ctx, in.ID)
		return err
	})
	if err != nil {
		log.Error("CreateCategory failed", "error", err)
		return nil, err
	}
	log.Info("CreateCategory successful", "categoryID", c.ID)
	return c, nil
}

// CreateDefaults seeds the starter categories for userID inside uow.
func CreateDefaults(
	ctx context.Context,
	uow repository.UnitOfWork,
	userID uuid.UUID,
) error {
	repo, err := repository.Get[categoryrepo.Repository](uow)
	if err != nil {
		return err
	}
	creates := make([]dto.CategoryCreate, 0, len(category.Defaults))
	for _, d := range category.Defaults {
		creates = append(creates, dto.CategoryCreate{
			ID:     uuid.New(),
			UserID: userID,
			Name:   d.Name,
			Type:   d.Type,
			Color:  d.Color,
			Icon:   d.Icon,
		})
	}
	return repo.CreateMany(ctx, creates)
}

// GetCategory returns a category owned by requester.
func (s *Service) GetCategory(
	ctx context.Context,
	requester, categoryID uuid.UUID,
) (*dto.CategoryRead, error) {
	return Owned(ctx, s.uow, requester, categoryID)
}

// ListCategories lists requester's categories, optionally of one type.
func (s *Service) ListCategories(
	ctx context.Context,
	requester uuid.UUID,
	typ *category.Type,
) ([]*dto.CategoryRead, error) {
	repo, err := repository.Get[categoryrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, requester, typ)
}

// UpdateCategory renames or restyles a category. Its type never changes.
func (s *Service) UpdateCategory(
	ctx context.Context,
	requester, categoryID uuid.UUID,
	update dto.CategoryUpdate,
) (c *dto.CategoryRead, err error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if err = category.ValidateName(name); err != nil {
			return nil, err
		}
		update.Name = &name
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := Owned(ctx, uow, requester, categoryID); err != nil {
			return err
		}
		repo, err := repository.Get[categoryrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, categoryID, update); err != nil {
			return err
		}
		c, err = repo.Get(ctx, categoryID)
		return err
	})
	if err != nil {
		s.logger.Error("UpdateCategory failed", "categoryID", categoryID, "error", err)
		return nil, err
	}
	return c, nil
}

// DeleteCategory soft-deletes a category owned by requester.
func (s *Service) DeleteCategory(
	ctx context.Context,
	requester, categoryID uuid.UUID,
) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := Owned(ctx, uow, requester, categoryID); err != nil {
			return err
		}
		repo, err := repository.Get[categoryrepo.Repository](uow)
		if err != nil {
			return err
		}
		return repo.Delete(ctx, categoryID)
	})
	if err != nil {
		s.logger.Error("DeleteCategory failed", "categoryID", categoryID, "error", err)
		return err
	}
	s.logger.Info("DeleteCategory successful", "categoryID", categoryID)
	return nil
}

// Owned loads categoryID through uow and checks that requester owns it.
func Owned(
	ctx context.Context,
	uow repository.UnitOfWork,
	requester, categoryID uuid.UUID,
) (*dto.CategoryRead, error) {
	repo, err := repository.Get[categoryrepo.Repository](uow)
	if err != nil {
		return nil, err
	}
	c, err := repo.Get(ctx, categoryID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, category.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.UserID != requester {
		return nil, category.ErrNotOwner
	}
	return c, nil
}
