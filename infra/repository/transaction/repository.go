package transaction

import (
	"context"
	"time"

	"github.com/amirasaad/finshare/infra/repository/model"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/amirasaad/finshare/pkg/dto"
	repo "github.com/amirasaad/finshare/pkg/repository/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const joinAccounts = "JOIN accounts ON accounts.id = transactions.account_id"

type repository struct {
	db *gorm.DB
}

// New creates a transaction repository over db.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// row is a transaction joined with the owner of its source account.
type row struct {
	model.Transaction
	UserID uuid.UUID
}

// Create implements transaction.Repository.
func (r *repository) Create(
	ctx context.Context,
	create dto.TransactionCreate,
) error {
	tx := &model.Transaction{
		ID:                   create.ID,
		AccountID:            create.AccountID,
		CategoryID:           create.CategoryID,
		Amount:               create.Amount,
		Date:                 create.Date.UTC(),
		Description:          create.Description,
		Notes:                create.Notes,
		IsRecurring:          create.IsRecurring,
		Type:                 string(create.Type),
		DestinationAccountID: create.DestinationAccountID,
		GoalID:               create.GoalID,
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(tx).Error
	})
}

// Update implements transaction.Repository.
func (r *repository) Update(
	ctx context.Context,
	id uuid.UUID,
	update dto.TransactionUpdate,
) error {
	updates := make(map[string]any)
	if update.Amount != nil {
		updates["amount"] = *update.Amount
	}
	if update.CategoryID != nil {
		updates["category_id"] = *update.CategoryID
	}
	if update.Date != nil {
		updates["date"] = update.Date.UTC()
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}
	if update.IsRecurring != nil {
		updates["is_recurring"] = *update.IsRecurring
	}
	if update.GoalID != nil {
		if *update.GoalID == uuid.Nil {
			updates["goal_id"] = nil
		} else {
			updates["goal_id"] = *update.GoalID
		}
	}
	if len(updates) == 0 {
		return nil
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).
			Model(&model.Transaction{}).
			Where("id = ?", id).
			Updates(updates).Error
	})
}

// Get implements transaction.Repository.
func (r *repository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*dto.TransactionRead, error) {
	var rows []row
	if err := r.joined(ctx).
		Where("transactions.id = ?", id).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	if len(rows) == 0 {
		return nil, transaction.ErrTransactionNotFound
	}
	return mapRowToDTO(&rows[0]), nil
}

// Delete implements transaction.Repository.
func (r *repository) Delete(
	ctx context.Context,
	id uuid.UUID,
) error {
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Delete(&model.Transaction{}, "id = ?", id).Error
	})
}

// ListForAccount implements transaction.Repository.
func (r *repository) ListForAccount(
	ctx context.Context,
	accountID uuid.UUID,
) ([]*dto.TransactionRead, error) {
	var rows []row
	if err := r.joined(ctx).
		Where(
			"transactions.account_id = ? OR transactions.destination_account_id = ?",
			accountID, accountID,
		).
		Order("transactions.date, transactions.created_at").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return mapRows(rows), nil
}

// CountForAccount implements transaction.Repository.
func (r *repository) CountForAccount(
	ctx context.Context,
	accountID uuid.UUID,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("account_id = ? OR destination_account_id = ?", accountID, accountID).
		Count(&count).Error
	return count, err
}

// List implements transaction.Repository.
func (r *repository) List(
	ctx context.Context,
	userIDs []uuid.UUID,
	filter dto.TransactionFilter,
) ([]*dto.TransactionRead, int64, error) {
	if len(userIDs) == 0 {
		return []*dto.TransactionRead{}, 0, nil
	}
	q := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Joins(joinAccounts).
		Where("accounts.user_id IN ?", userIDs)
	if filter.AccountID != nil {
		q = q.Where(
			"transactions.account_id = ? OR transactions.destination_account_id = ?",
			*filter.AccountID, *filter.AccountID,
		)
	}
	if filter.CategoryID != nil {
		q = q.Where("transactions.category_id = ?", *filter.CategoryID)
	}
	if filter.Type != nil {
		q = q.Where("transactions.type = ?", string(*filter.Type))
	}
	if filter.From != nil {
		q = q.Where("transactions.date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("transactions.date < ?", filter.To.UTC())
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Select("transactions.*, accounts.user_id AS user_id").
		Order("transactions.date DESC, transactions.created_at DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	var rows []row
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return mapRows(rows), total, nil
}

// SumForCategory implements transaction.Repository.
func (r *repository) SumForCategory(
	ctx context.Context,
	userIDs []uuid.UUID,
	categoryID uuid.UUID,
	typ transaction.Type,
	from, to time.Time,
) (decimal.Decimal, error) {
	if len(userIDs) == 0 {
		return decimal.Zero, nil
	}
	var result struct {
		Total decimal.Decimal
	}
	err := r.inRange(ctx, userIDs, from, to).
		Select("COALESCE(SUM(transactions.amount), 0) AS total").
		Where("transactions.category_id = ? AND transactions.type = ?", categoryID, string(typ)).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total.Round(2), nil
}

// TotalsByType implements transaction.Repository.
func (r *repository) TotalsByType(
	ctx context.Context,
	userIDs []uuid.UUID,
	from, to time.Time,
) (dto.TypeTotals, error) {
	totals := dto.TypeTotals{Income: decimal.Zero, Expense: decimal.Zero}
	if len(userIDs) == 0 {
		return totals, nil
	}
	var rows []struct {
		Type  string
		Total decimal.Decimal
	}
	err := r.inRange(ctx, userIDs, from, to).
		Select("transactions.type AS type, COALESCE(SUM(transactions.amount), 0) AS total").
		Where("transactions.type IN ?", []string{
			string(transaction.Income),
			string(transaction.Expense),
		}).
		Group("transactions.type").
		Scan(&rows).Error
	if err != nil {
		return totals, err
	}
	for _, rw := range rows {
		switch transaction.Type(rw.Type) {
		case transaction.Income:
			totals.Income = rw.Total.Round(2)
		case transaction.Expense:
			totals.Expense = rw.Total.Round(2)
		}
	}
	return totals, nil
}

// TotalsByCategory implements transaction.Repository.
func (r *repository) TotalsByCategory(
	ctx context.Context,
	userIDs []uuid.UUID,
	typ transaction.Type,
	from, to time.Time,
) ([]dto.CategoryTotal, error) {
	if len(userIDs) == 0 {
		return []dto.CategoryTotal{}, nil
	}
	var rows []struct {
		CategoryID uuid.UUID
		Name       string
		Color      string
		Total      decimal.Decimal
		Count      int64
	}
	err := r.inRange(ctx, userIDs, from, to).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Select(
			"transactions.category_id AS category_id, categories.name AS name, "+
				"categories.color AS color, SUM(transactions.amount) AS total, "+
				"COUNT(*) AS count",
		).
		Where("transactions.type = ?", string(typ)).
		Group("transactions.category_id, categories.name, categories.color").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoryTotal, 0, len(rows))
	for _, rw := range rows {
		result = append(result, dto.CategoryTotal{
			CategoryID: rw.CategoryID,
			Name:       rw.Name,
			Color:      rw.Color,
			Total:      rw.Total.Round(2),
			Count:      rw.Count,
		})
	}
	return result, nil
}

func (r *repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("transactions.*, accounts.user_id AS user_id").
		Joins(joinAccounts)
}

func (r *repository) inRange(
	ctx context.Context,
	userIDs []uuid.UUID,
	from, to time.Time,
) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Joins(joinAccounts).
		Where("accounts.user_id IN ?", userIDs).
		Where("transactions.date >= ? AND transactions.date < ?", from.UTC(), to.UTC())
}

func mapRows(rows []row) []*dto.TransactionRead {
	result := make([]*dto.TransactionRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapRowToDTO(&rows[i]))
	}
	return result
}

func mapRowToDTO(rw *row) *dto.TransactionRead {
	return &dto.TransactionRead{
		ID:                   rw.ID,
		UserID:               rw.UserID,
		AccountID:            rw.AccountID,
		CategoryID:           rw.CategoryID,
		Amount:               rw.Amount,
		Date:                 rw.Date.UTC(),
		Description:          rw.Description,
		Notes:                rw.Notes,
		IsRecurring:          rw.IsRecurring,
		Type:                 transaction.Type(rw.Type),
		DestinationAccountID: rw.DestinationAccountID,
		GoalID:               rw.GoalID,
		CreatedAt:            rw.CreatedAt,
		UpdatedAt:            rw.UpdatedAt,
	}
}

var _ repo.Repository = (*repository)(nil)
