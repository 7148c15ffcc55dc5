package ledger

import (
	"context"
	"time"

	"github.com/amirasaad/finshare/infra/repository/model"
	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/dto"
	repo "github.com/amirasaad/finshare/pkg/repository/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates a materialized balance repository over db.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, accountID uuid.UUID) (*dto.BalanceRead, error) {
	var b model.AccountBalance
	if err := r.db.WithContext(ctx).First(&b, "account_id = ?", accountID).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return &dto.BalanceRead{
		AccountID: b.AccountID,
		Balance:   b.Balance,
		Version:   b.Version,
		RebuiltAt: b.RebuiltAt,
		UpdatedAt: b.UpdatedAt,
	}, nil
}

func (r *repository) Init(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	b := &model.AccountBalance{
		AccountID: accountID,
		Balance:   balance,
		Version:   1,
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(b).Error
	})
}

func (r *repository) Adjust(
	ctx context.Context,
	accountID uuid.UUID,
	version int64,
	delta decimal.Decimal,
) error {
	res := r.db.WithContext(ctx).
		Model(&model.AccountBalance{}).
		Where("account_id = ? AND version = ?", accountID, version).
		Updates(map[string]any{
			"balance": gorm.Expr("balance + ?", delta),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return model.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *repository) Reset(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	now := time.Now().UTC()
	b := &model.AccountBalance{
		AccountID: accountID,
		Balance:   balance,
		Version:   1,
		RebuiltAt: &now,
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "account_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"balance":    balance,
					"version":    gorm.Expr("account_balances.version + 1"),
					"rebuilt_at": now,
					"updated_at": now,
				}),
			}).
			Create(b).Error
	})
}

func (r *repository) Delete(ctx context.Context, accountID uuid.UUID) error {
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Delete(&model.AccountBalance{}, "account_id = ?", accountID).Error
	})
}

var _ repo.Repository = (*repository)(nil)
