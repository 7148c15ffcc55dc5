// Package transaction posts ledger entries and keeps goals and stored
// balances consistent with every create, edit and delete.
package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/category"
	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/amirasaad/finshare/pkg/domain/goal"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/eventbus"
	"github.com/amirasaad/finshare/pkg/repository"
	txrepo "github.com/amirasaad/finshare/pkg/repository/transaction"
	accountsvc "github.com/amirasaad/finshare/pkg/service/account"
	"github.com/amirasaad/finshare/pkg/service/balance"
	categorysvc "github.com/amirasaad/finshare/pkg/service/category"
	goalsvc "github.com/amirasaad/finshare/pkg/service/goal"
	scopesvc "github.com/amirasaad/finshare/pkg/service/scope"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ErrNotVisible is returned when a transaction lies outside the caller's scope.
var ErrNotVisible = fmt.Errorf("%w: transaction is not visible to you", domain.ErrForbidden)

// Service manages ledger entries.
type Service struct {
	uow      repository.UnitOfWork
	bus      eventbus.Bus
	balances *balance.Service
	logger   *slog.Logger
}

// New creates a new transaction Service.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	balances *balance.Service,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, bus: bus, balances: balances, logger: logger}
}

// CreateTransaction validates and posts a new entry. Goal contributions are
// applied and stored balances adjusted in the same unit of work.
func (s *Service) CreateTransaction(
	ctx context.Context,
	requester uuid.UUID,
	in dto.TransactionCreate,
) (read *dto.TransactionRead, err error) {
	log := s.logger.With("userID", requester, "type", in.Type)
	in.ID = uuid.New()
	in.Amount = in.Amount.Round(2)
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	in.Date = in.Date.UTC()
	if in.DestinationAccountID != nil && *in.DestinationAccountID == uuid.Nil {
		in.DestinationAccountID = nil
	}
	if in.GoalID != nil && *in.GoalID == uuid.Nil {
		in.GoalID = nil
	}
	tx := entryOf(in)
	if err = tx.Validate(); err != nil {
		return nil, err
	}

	var evts []events.Event
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := accountsvc.Owned(ctx, uow, requester, tx.AccountID); err != nil {
			return err
		}
		if tx.DestinationAccountID != nil {
			if _, err := accountsvc.Owned(ctx, uow, requester, *tx.DestinationAccountID); err != nil {
				return err
			}
		}
		if err := checkCategory(ctx, uow, requester, tx.CategoryID, tx.Type); err != nil {
			return err
		}
		if c, ok := goal.ContributionOf(tx); ok {
			goalEvts, err := goalsvc.Settle(ctx, uow, requester, nil, &c)
			if err != nil {
				return err
			}
			evts = append(evts, goalEvts...)
		}

		repo, err := repository.Get[txrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, in); err != nil {
			return err
		}
		if err := s.balances.Post(ctx, uow, nil, &tx); err != nil {
			return err
		}
		read, err = repo.Get(ctx, in.ID)
		return err
	})
	if err != nil {
		log.Error("CreateTransaction failed", "error", err)
		return nil, err
	}
	evts = append(evts, posted(requester, read, false))
	s.emit(ctx, evts)
	log.Info("CreateTransaction successful", "transactionID", read.ID)
	return read, nil
}

// GetTransaction returns an entry whose owner is within the caller's All scope.
func (s *Service) GetTransaction(
	ctx context.Context,
	requester, id uuid.UUID,
) (*dto.TransactionRead, error) {
	repo, err := repository.Get[txrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	read, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := scopesvc.Visible(ctx, s.uow, requester, read.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotVisible
	}
	return read, nil
}

// ListTransactions pages through the entries of the users in sc.
func (s *Service) ListTransactions(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
	filter dto.TransactionFilter,
) (*dto.TransactionPage, error) {
	ids, err := scopesvc.ResolveIn(ctx, s.uow, requester, sc)
	if err != nil {
		return nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	switch {
	case filter.PageSize <= 0:
		filter.PageSize = defaultPageSize
	case filter.PageSize > maxPageSize:
		filter.PageSize = maxPageSize
	}
	repo, err := repository.Get[txrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	items, total, err := repo.List(ctx, ids, filter)
	if err != nil {
		return nil, err
	}
	return &dto.TransactionPage{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// UpdateTransaction edits the mutable fields of an entry. The previous goal
// contribution is reversed before the new one is applied, and stored
// balances move by the difference.
func (s *Service) UpdateTransaction(
	ctx context.Context,
	requester, id uuid.UUID,
	update dto.TransactionUpdate,
) (read *dto.TransactionRead, err error) {
	log := s.logger.With("userID", requester, "transactionID", id)
	if update.Amount != nil {
		amount := update.Amount.Round(2)
		update.Amount = &amount
	}
	if update.Date != nil {
		date := update.Date.UTC()
		update.Date = &date
	}

	var evts []events.Event
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[txrepo.Repository](uow)
		if err != nil {
			return err
		}
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if _, err := accountsvc.Owned(ctx, uow, requester, current.AccountID); err != nil {
			return err
		}

		prev := current.ToDomain()
		next := apply(prev, update)
		if err := next.Validate(); err != nil {
			return err
		}
		if update.GoalID != nil && *update.GoalID == uuid.Nil {
			update.GoalID = nil
		}
		if next.CategoryID != prev.CategoryID {
			if err := checkCategory(ctx, uow, requester, next.CategoryID, next.Type); err != nil {
				return err
			}
		}

		var prevC, nextC *goal.Contribution
		if c, ok := goal.ContributionOf(prev); ok {
			prevC = &c
		}
		if c, ok := goal.ContributionOf(next); ok {
			nextC = &c
		}
		if prevC != nil || nextC != nil {
			goalEvts, err := goalsvc.Settle(ctx, uow, requester, prevC, nextC)
			if err != nil {
				return err
			}
			evts = append(evts, goalEvts...)
		}

		if err := repo.Update(ctx, id, update); err != nil {
			return err
		}
		if err := s.balances.Post(ctx, uow, &prev, &next); err != nil {
			return err
		}
		read, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		log.Error("UpdateTransaction failed", "error", err)
		return nil, err
	}
	evts = append(evts, posted(requester, read, true))
	s.emit(ctx, evts)
	log.Info("UpdateTransaction successful")
	return read, nil
}

// DeleteTransaction removes an entry, reversing its goal contribution and
// its effect on stored balances.
func (s *Service) DeleteTransaction(
	ctx context.Context,
	requester, id uuid.UUID,
) error {
	log := s.logger.With("userID", requester, "transactionID", id)
	var (
		evts      []events.Event
		accountID uuid.UUID
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[txrepo.Repository](uow)
		if err != nil {
			return err
		}
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if _, err := accountsvc.Owned(ctx, uow, requester, current.AccountID); err != nil {
			return err
		}
		accountID = current.AccountID
		prev := current.ToDomain()
		if c, ok := goal.ContributionOf(prev); ok {
			goalEvts, err := goalsvc.Settle(ctx, uow, requester, &c, nil)
			if err != nil {
				return err
			}
			evts = append(evts, goalEvts...)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.balances.Post(ctx, uow, &prev, nil)
	})
	if err != nil {
		log.Error("DeleteTransaction failed", "error", err)
		return err
	}
	evts = append(evts, events.TransactionRemoved{
		Meta:          events.NewMeta(requester),
		TransactionID: id,
		AccountID:     accountID,
	})
	s.emit(ctx, evts)
	log.Info("DeleteTransaction successful")
	return nil
}

func checkCategory(
	ctx context.Context,
	uow repository.UnitOfWork,
	requester, categoryID uuid.UUID,
	typ transaction.Type,
) error {
	c, err := categorysvc.Owned(ctx, uow, requester, categoryID)
	if err != nil {
		return err
	}
	return category.CheckCompatible(c.Type, typ)
}

func entryOf(in dto.TransactionCreate) transaction.Transaction {
	return transaction.Transaction{
		ID:                   in.ID,
		AccountID:            in.AccountID,
		CategoryID:           in.CategoryID,
		Amount:               in.Amount,
		Date:                 in.Date,
		Description:          in.Description,
		Notes:                in.Notes,
		IsRecurring:          in.IsRecurring,
		Type:                 in.Type,
		DestinationAccountID: in.DestinationAccountID,
		GoalID:               in.GoalID,
	}
}

func apply(tx transaction.Transaction, u dto.TransactionUpdate) transaction.Transaction {
	if u.Amount != nil {
		tx.Amount = *u.Amount
	}
	if u.CategoryID != nil {
		tx.CategoryID = *u.CategoryID
	}
	if u.Date != nil {
		tx.Date = *u.Date
	}
	if u.Description != nil {
		tx.Description = *u.Description
	}
	if u.Notes != nil {
		tx.Notes = *u.Notes
	}
	if u.IsRecurring != nil {
		tx.IsRecurring = *u.IsRecurring
	}
	if u.GoalID != nil {
		if *u.GoalID == uuid.Nil {
			tx.GoalID = nil
		} else {
			id := *u.GoalID
			tx.GoalID = &id
		}
	}
	return tx
}

func posted(actor uuid.UUID, read *dto.TransactionRead, edited bool) events.Event {
	return events.TransactionPosted{
		Meta:          events.NewMeta(actor),
		TransactionID: read.ID,
		AccountID:     read.AccountID,
		Kind:          string(read.Type),
		Amount:        read.Amount,
		Edited:        edited,
	}
}

func (s *Service) emit(ctx context.Context, evts []events.Event) {
	if err := eventbus.EmitAll(ctx, s.bus, evts...); err != nil {
		s.logger.Error("event publish failed", "error", err)
	}
}
