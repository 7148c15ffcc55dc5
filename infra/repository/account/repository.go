package account

import (
	"context"

	"github.com/amirasaad/finshare/infra/repository/model"
	"github.com/amirasaad/finshare/pkg/domain/account"
	"github.com/amirasaad/finshare/pkg/dto"
	repo "github.com/amirasaad/finshare/pkg/repository/account"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates an account repository over db.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements account.Repository.
func (r *repository) Create(
	ctx context.Context,
	create dto.AccountCreate,
) error {
	acc := &model.Account{
		Base:           model.Base{ID: create.ID},
		UserID:         create.UserID,
		Name:           create.Name,
		Type:           string(create.Type),
		InitialBalance: create.InitialBalance,
		IsActive:       true,
		Color:          create.Color,
		Icon:           create.Icon,
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(acc).Error
	})
}

// Update implements account.Repository.
func (r *repository) Update(
	ctx context.Context,
	id uuid.UUID,
	update dto.AccountUpdate,
) error {
	updates := make(map[string]any)
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Type != nil {
		updates["type"] = string(*update.Type)
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}
	if update.Color != nil {
		updates["color"] = *update.Color
	}
	if update.Icon != nil {
		updates["icon"] = *update.Icon
	}
	if len(updates) == 0 {
		return nil
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).
			Model(&model.Account{}).
			Where("id = ?", id).
			Updates(updates).Error
	})
}

// Get implements account.Repository.
func (r *repository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*dto.AccountRead, error) {
	var acc model.Account
	if err := r.db.WithContext(ctx).First(&acc, "id = ?", id).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&acc), nil
}

// ListByUsers implements account.Repository.
func (r *repository) ListByUsers(
	ctx context.Context,
	userIDs []uuid.UUID,
	activeOnly bool,
) ([]*dto.AccountRead, error) {
	if len(userIDs) == 0 {
		return []*dto.AccountRead{}, nil
	}
	q := r.db.WithContext(ctx).Where("user_id IN ?", userIDs)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var accounts []model.Account
	if err := q.Order("name").Find(&accounts).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.AccountRead, 0, len(accounts))
	for i := range accounts {
		result = append(result, mapModelToDTO(&accounts[i]))
	}
	return result, nil
}

// Delete implements account.Repository. Accounts are removed physically.
func (r *repository) Delete(
	ctx context.Context,
	id uuid.UUID,
) error {
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).
			Unscoped().
			Delete(&model.Account{}, "id = ?", id).Error
	})
}

func mapModelToDTO(acc *model.Account) *dto.AccountRead {
	return &dto.AccountRead{
		ID:             acc.ID,
		UserID:         acc.UserID,
		Name:           acc.Name,
		Type:           account.Type(acc.Type),
		InitialBalance: acc.InitialBalance,
		IsActive:       acc.IsActive,
		Color:          acc.Color,
		Icon:           acc.Icon,
		CreatedAt:      acc.CreatedAt,
		UpdatedAt:      acc.UpdatedAt,
	}
}

var _ repo.Repository = (*repository)(nil)
