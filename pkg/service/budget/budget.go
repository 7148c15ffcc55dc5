// Package budget implements the budget engine: monthly spending limits per
// expense category and their status against the ledger.
package budget

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/budget"
	"github.com/amirasaad/finshare/pkg/domain/category"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/repository"
	budgetrepo "github.com/amirasaad/finshare/pkg/repository/budget"
	categoryrepo "github.com/amirasaad/finshare/pkg/repository/category"
	txrepo "github.com/amirasaad/finshare/pkg/repository/transaction"
	categorysvc "github.com/amirasaad/finshare/pkg/service/category"
	scopesvc "github.com/amirasaad/finshare/pkg/service/scope"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service implements the budget engine.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new budget Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// CreateBudget creates a budget for one of the caller's expense categories.
// A second live budget for the same category and month is refused.
func (s *Service) CreateBudget(
	ctx context.Context,
	userID uuid.UUID,
	in dto.BudgetCreate,
) (read *dto.BudgetRead, err error) {
	log := s.logger.With("userID", userID, "categoryID", in.CategoryID)
	period := budget.Period{Month: in.Month, Year: in.Year}
	if err = period.Validate(); err != nil {
		return nil, err
	}
	in.Limit = in.Limit.Round(2)
	if err = budget.ValidateLimit(in.Limit); err != nil {
		return nil, err
	}
	in.ID = uuid.New()
	in.UserID = userID

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		c, err := categorysvc.Owned(ctx, uow, userID, in.CategoryID)
		if err != nil {
			return err
		}
		if c.Type != category.Expense {
			return category.ErrNotExpense
		}
		repo, err := repository.Get[budgetrepo.Repository](uow)
		if err != nil {
			return err
		}
		exists, err := repo.Exists(ctx, userID, in.CategoryID, in.Month, in.Year)
		if err != nil {
			return err
		}
		if exists {
			return budget.ErrDuplicateBudget
		}
		if err := repo.Create(ctx, in); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return budget.ErrDuplicateBudget
			}
			return err
		}
		read, err = repo.Get(ctx, in.ID)
		return err
	})
	if err != nil {
		log.Error("CreateBudget failed", "error", err)
		return nil, err
	}
	log.Info("CreateBudget successful", "budgetID", read.ID)
	return read, nil
}

// GetBudget returns a budget whose owner is within the caller's All scope.
func (s *Service) GetBudget(
	ctx context.Context,
	requester, id uuid.UUID,
) (*dto.BudgetRead, error) {
	read, err := s.load(ctx, s.uow, id)
	if err != nil {
		return nil, err
	}
	ok, err := scopesvc.Visible(ctx, s.uow, requester, read.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, budget.ErrNotOwner
	}
	return read, nil
}

// ListBudgets lists the budgets of the users in sc, optionally for one month.
func (s *Service) ListBudgets(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
	month, year *int,
) ([]*dto.BudgetRead, error) {
	if month != nil && year != nil {
		if err := (budget.Period{Month: *month, Year: *year}).Validate(); err != nil {
			return nil, err
		}
	}
	ids, err := scopesvc.ResolveIn(ctx, s.uow, requester, sc)
	if err != nil {
		return nil, err
	}
	repo, err := repository.Get[budgetrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.ListByUsers(ctx, ids, month, year)
}

// Status computes the spending position of one category for a month. Spent
// sums expense entries of every user in sc. Without a budget the limit is 0.
func (s *Service) Status(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
	categoryID uuid.UUID,
	month, year int,
) (*dto.BudgetStatus, error) {
	period := budget.Period{Month: month, Year: year}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	ids, err := scopesvc.ResolveIn(ctx, s.uow, requester, sc)
	if err != nil {
		return nil, err
	}
	budgets, err := repository.Get[budgetrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	reads, err := budgets.ListByUsers(ctx, ids, &month, &year)
	if err != nil {
		return nil, err
	}
	limit := decimal.Zero
	status := &dto.BudgetStatus{CategoryID: categoryID, Month: month, Year: year}
	for _, b := range reads {
		if b.CategoryID == categoryID {
			limit = b.Limit
			status.BudgetID = b.ID
			status.UserID = b.UserID
			break
		}
	}
	return s.fill(ctx, status, ids, limit, period)
}

// Statuses reports every budget of the users in sc for one month, most
// consumed first.
func (s *Service) Statuses(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
	year, month int,
) ([]*dto.BudgetStatus, error) {
	period := budget.Period{Month: month, Year: year}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	ids, err := scopesvc.ResolveIn(ctx, s.uow, requester, sc)
	if err != nil {
		return nil, err
	}
	repo, err := repository.Get[budgetrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	reads, err := repo.ListByUsers(ctx, ids, &month, &year)
	if err != nil {
		return nil, err
	}
	result := make([]*dto.BudgetStatus, 0, len(reads))
	for _, b := range reads {
		status, err := s.fill(ctx, &dto.BudgetStatus{
			BudgetID:   b.ID,
			UserID:     b.UserID,
			CategoryID: b.CategoryID,
			Month:      month,
			Year:       year,
		}, ids, b.Limit, period)
		if err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].PercentageUsed.GreaterThan(result[j].PercentageUsed)
	})
	return result, nil
}

// UpdateBudget changes the limit of a budget. Owner only.
func (s *Service) UpdateBudget(
	ctx context.Context,
	requester, id uuid.UUID,
	update dto.BudgetUpdate,
) (read *dto.BudgetRead, err error) {
	if update.Limit != nil {
		limit := update.Limit.Round(2)
		if err := budget.ValidateLimit(limit); err != nil {
			return nil, err
		}
		update.Limit = &limit
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := s.owned(ctx, uow, requester, id); err != nil {
			return err
		}
		repo, err := repository.Get[budgetrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, id, update); err != nil {
			return err
		}
		read, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Error("UpdateBudget failed", "budgetID", id, "error", err)
		return nil, err
	}
	return read, nil
}

// DeleteBudget soft-deletes a budget. Owner only.
func (s *Service) DeleteBudget(
	ctx context.Context,
	requester, id uuid.UUID,
) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := s.owned(ctx, uow, requester, id); err != nil {
			return err
		}
		repo, err := repository.Get[budgetrepo.Repository](uow)
		if err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("DeleteBudget failed", "budgetID", id, "error", err)
		return err
	}
	s.logger.Info("DeleteBudget successful", "budgetID", id)
	return nil
}

func (s *Service) fill(
	ctx context.Context,
	status *dto.BudgetStatus,
	userIDs []uuid.UUID,
	limit decimal.Decimal,
	period budget.Period,
) (*dto.BudgetStatus, error) {
	txs, err := repository.Get[txrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	from, to := period.Range()
	spent, err := txs.SumForCategory(ctx, userIDs, status.CategoryID, transaction.Expense, from, to)
	if err != nil {
		return nil, err
	}
	categories, err := repository.Get[categoryrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	c, err := categories.Get(ctx, status.CategoryID)
	switch {
	case err == nil:
		status.CategoryName = c.Name
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	st := budget.Evaluate(limit, spent)
	status.Limit = st.Limit
	status.Spent = st.Spent
	status.Remaining = st.Remaining
	status.PercentageUsed = st.PercentageUsed
	status.IsExceeded = st.IsExceeded
	return status, nil
}

func (s *Service) load(
	ctx context.Context,
	uow repository.UnitOfWork,
	id uuid.UUID,
) (*dto.BudgetRead, error) {
	repo, err := repository.Get[budgetrepo.Repository](uow)
	if err != nil {
		return nil, err
	}
	read, err := repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, budget.ErrBudgetNotFound
	}
	return read, err
}

func (s *Service) owned(
	ctx context.Context,
	uow repository.UnitOfWork,
	requester, id uuid.UUID,
) (*dto.BudgetRead, error) {
	read, err := s.load(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if read.UserID != requester {
		return nil, budget.ErrNotOwner
	}
	return read, nil
}
