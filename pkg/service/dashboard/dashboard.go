// Package dashboard aggregates income and spending for the users of a scope:
// totals over a range, the top expense categories, a trailing monthly
// history and a month-over-month comparison.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/repository"
	txrepo "github.com/amirasaad/finshare/pkg/repository/transaction"
	scopesvc "github.com/amirasaad/finshare/pkg/service/scope"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistoryMonths = 6
	DefaultTopCategories = 5
)

var (
	ErrInvalidRange = fmt.Errorf("%w: end date must not be before start date", domain.ErrInvalidArgument)
	hundred         = decimal.NewFromInt(100)
)

// Options tunes the aggregation.
type Options struct {
	HistoryMonths int
	TopCategories int
	// Now is the clock the trailing history is anchored to.
	Now func() time.Time
}

// Service computes dashboard summaries.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
	opts   Options
}

// New creates a dashboard Service. Zero options take their defaults.
func New(uow repository.UnitOfWork, logger *slog.Logger, opts Options) *Service {
	if opts.HistoryMonths <= 0 {
		opts.HistoryMonths = DefaultHistoryMonths
	}
	if opts.TopCategories <= 0 {
		opts.TopCategories = DefaultTopCategories
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{uow: uow, logger: logger, opts: opts}
}

// CurrentMonth summarizes the calendar month containing now.
func (s *Service) CurrentMonth(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
) (*dto.DashboardSummary, error) {
	now := s.opts.Now().UTC()
	return s.ForMonth(ctx, requester, sc, now.Year(), int(now.Month()))
}

// ForMonth summarizes one calendar month.
func (s *Service) ForMonth(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
	year, month int,
) (*dto.DashboardSummary, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", domain.ErrInvalidArgument)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return s.Summary(ctx, requester, sc, start, start.AddDate(0, 1, 0))
}

// Custom summarizes the inclusive day range [start, end].
func (s *Service) Custom(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
	start, end time.Time,
) (*dto.DashboardSummary, error) {
	start, end = dayOf(start), dayOf(end)
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	return s.Summary(ctx, requester, sc, start, end.AddDate(0, 0, 1))
}

// Summary aggregates the half-open range [start, end).
func (s *Service) Summary(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
	start, end time.Time,
) (*dto.DashboardSummary, error) {
	start, end = start.UTC(), end.UTC()
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	log := s.logger.With("userID", requester, "scope", scopeName(sc))
	ids, err := scopesvc.ResolveIn(ctx, s.uow, requester, sc)
	if err != nil {
		return nil, err
	}
	repo, err := repository.Get[txrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}

	summary := &dto.DashboardSummary{Start: start, End: end}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := repo.TotalsByType(gctx, ids, start, end)
		if err != nil {
			return err
		}
		summary.TotalIncome = totals.Income
		summary.TotalExpenses = totals.Expense
		summary.Balance = totals.Income.Sub(totals.Expense)
		top, err := repo.TotalsByCategory(gctx, ids, transaction.Expense, start, end)
		if err != nil {
			return err
		}
		summary.TopCategories = topCategories(top, totals.Expense, s.opts.TopCategories)
		return nil
	})
	g.Go(func() error {
		history, err := s.history(gctx, repo, ids)
		summary.MonthlyHistory = history
		return err
	})
	g.Go(func() error {
		cmp, err := comparison(gctx, repo, ids, start)
		summary.Comparison = cmp
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("Summary failed", "error", err)
		return nil, err
	}
	return summary, nil
}

// history recomputes each of the trailing months up to and including the
// current one, oldest first.
func (s *Service) history(
	ctx context.Context,
	repo txrepo.Repository,
	ids []uuid.UUID,
) ([]dto.MonthlyTotals, error) {
	now := s.opts.Now().UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]dto.MonthlyTotals, 0, s.opts.HistoryMonths)
	for i := s.opts.HistoryMonths - 1; i >= 0; i-- {
		from := current.AddDate(0, -i, 0)
		totals, err := repo.TotalsByType(ctx, ids, from, from.AddDate(0, 1, 0))
		if err != nil {
			return nil, err
		}
		months = append(months, dto.MonthlyTotals{
			Year:     from.Year(),
			Month:    int(from.Month()),
			Income:   totals.Income,
			Expenses: totals.Expense,
			Balance:  totals.Income.Sub(totals.Expense),
		})
	}
	return months, nil
}

// comparison compares the month containing start with the month before it.
func comparison(
	ctx context.Context,
	repo txrepo.Repository,
	ids []uuid.UUID,
	start time.Time,
) (dto.MonthComparison, error) {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := cur.AddDate(0, -1, 0)
	curTotals, err := repo.TotalsByType(ctx, ids, cur, cur.AddDate(0, 1, 0))
	if err != nil {
		return dto.MonthComparison{}, err
	}
	prevTotals, err := repo.TotalsByType(ctx, ids, prev, cur)
	if err != nil {
		return dto.MonthComparison{}, err
	}
	incomeChange := curTotals.Income.Sub(prevTotals.Income)
	expensesChange := curTotals.Expense.Sub(prevTotals.Expense)
	return dto.MonthComparison{
		CurrentIncome:            curTotals.Income,
		PreviousIncome:           prevTotals.Income,
		IncomeChange:             incomeChange,
		IncomeChangePercentage:   percentOf(incomeChange, prevTotals.Income),
		CurrentExpenses:          curTotals.Expense,
		PreviousExpenses:         prevTotals.Expense,
		ExpensesChange:           expensesChange,
		ExpensesChangePercentage: percentOf(expensesChange, prevTotals.Expense),
	}, nil
}

func topCategories(totals []dto.CategoryTotal, expenses decimal.Decimal, n int) []dto.CategorySpending {
	if len(totals) > n {
		totals = totals[:n]
	}
	result := make([]dto.CategorySpending, 0, len(totals))
	for _, t := range totals {
		result = append(result, dto.CategorySpending{
			CategoryID:       t.CategoryID,
			CategoryName:     t.Name,
			Color:            t.Color,
			Amount:           t.Total,
			Percentage:       percentOf(t.Total, expenses),
			TransactionCount: t.Count,
		})
	}
	return result
}

// percentOf is part/whole*100 rounded to cents, or 0 for a zero whole.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func scopeName(sc scope.Scope) string {
	if sc == nil {
		return "own"
	}
	return sc.Name()
}
