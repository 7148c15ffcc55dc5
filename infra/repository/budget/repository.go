package budget

import (
	"context"

	"github.com/amirasaad/finshare/infra/repository/model"
	"github.com/amirasaad/finshare/pkg/dto"
	repo "github.com/amirasaad/finshare/pkg/repository/budget"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a budget repository over db.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, create dto.BudgetCreate) error {
	b := &model.Budget{
		Base:       model.Base{ID: create.ID},
		UserID:     create.UserID,
		CategoryID: create.CategoryID,
		Month:      create.Month,
		Year:       create.Year,
		Limit:      create.Limit,
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(b).Error
	})
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, update dto.BudgetUpdate) error {
	if update.Limit == nil {
		return nil
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).
			Model(&model.Budget{}).
			Where("id = ?", id).
			Updates(map[string]any{"limit_amount": *update.Limit}).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.BudgetRead, error) {
	var b model.Budget
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&b), nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Delete(&model.Budget{}, "id = ?", id).Error
	})
}

func (r *repository) ListByUsers(
	ctx context.Context,
	userIDs []uuid.UUID,
	month, year *int,
) ([]*dto.BudgetRead, error) {
	if len(userIDs) == 0 {
		return []*dto.BudgetRead{}, nil
	}
	q := r.db.WithContext(ctx).Where("user_id IN ?", userIDs)
	if month != nil {
		q = q.Where("month = ?", *month)
	}
	if year != nil {
		q = q.Where("year = ?", *year)
	}
	var rows []model.Budget
	if err := q.Order("year DESC, month DESC, created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.BudgetRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapModelToDTO(&rows[i]))
	}
	return result, nil
}

func (r *repository) Exists(
	ctx context.Context,
	userID, categoryID uuid.UUID,
	month, year int,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Budget{}).
		Where(
			"user_id = ? AND category_id = ? AND month = ? AND year = ?",
			userID, categoryID, month, year,
		).
		Count(&count).Error
	return count > 0, err
}

func mapModelToDTO(b *model.Budget) *dto.BudgetRead {
	return &dto.BudgetRead{
		ID:         b.ID,
		UserID:     b.UserID,
		CategoryID: b.CategoryID,
		Month:      b.Month,
		Year:       b.Year,
		Limit:      b.Limit,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

var _ repo.Repository = (*repository)(nil)
