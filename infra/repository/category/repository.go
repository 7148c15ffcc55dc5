package category

import (
	"context"

	"github.com/amirasaad/finshare/infra/repository/model"
	"github.com/amirasaad/finshare/pkg/domain/category"
	"github.com/amirasaad/finshare/pkg/dto"
	repo "github.com/amirasaad/finshare/pkg/repository/category"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a category repository over db.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, create dto.CategoryCreate) error {
	c := mapCreateToModel(create)
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&c).Error
	})
}

func (r *repository) CreateMany(ctx context.Context, creates []dto.CategoryCreate) error {
	if len(creates) == 0 {
		return nil
	}
	rows := make([]model.Category, 0, len(creates))
	for _, c := range creates {
		rows = append(rows, mapCreateToModel(c))
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&rows).Error
	})
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, update dto.CategoryUpdate) error {
	updates := make(map[string]any)
	if update.Name != nil {
		updates["name"] = *update.Name
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
			Model(&model.Category{}).
			Where("id = ?", id).
			Updates(updates).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.CategoryRead, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&c), nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	typ *category.Type,
) ([]*dto.CategoryRead, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if typ != nil {
		q = q.Where("type = ?", string(*typ))
	}
	var rows []model.Category
	if err := q.Order("type, name").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.CategoryRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapModelToDTO(&rows[i]))
	}
	return result, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Delete(&model.Category{}, "id = ?", id).Error
	})
}

func mapCreateToModel(c dto.CategoryCreate) model.Category {
	return model.Category{
		Base:   model.Base{ID: c.ID},
		UserID: c.UserID,
		Name:   c.Name,
		Type:   string(c.Type),
		Color:  c.Color,
		Icon:   c.Icon,
	}
}

func mapModelToDTO(c *model.Category) *dto.CategoryRead {
	return &dto.CategoryRead{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Type:      category.Type(c.Type),
		Color:     c.Color,
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

var _ repo.Repository = (*repository)(nil)
