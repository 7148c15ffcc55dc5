// Package account provides the application service for accounts. Balances
// are never stored on the account; they come from the balance engine.
package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/account"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/repository"
	accountrepo "github.com/amirasaad/finshare/pkg/repository/account"
	txrepo "github.com/amirasaad/finshare/pkg/repository/transaction"
	"github.com/amirasaad/finshare/pkg/service/balance"
	scopesvc "github.com/amirasaad/finshare/pkg/service/scope"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides account creation, updates, deletion and balance reads.
type Service struct {
	uow      repository.UnitOfWork
	balances *balance.Service
	logger   *slog.Logger
}

// New creates a new account Service.
func New(
	uow repository.UnitOfWork,
	balances *balance.Service,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, balances: balances, logger: logger}
}

// CreateAccount creates an active account for userID.
func (s *Service) CreateAccount(
	ctx context.Context,
	userID uuid.UUID,
	in dto.AccountCreate,
) (acc *dto.AccountWithBalance, err error) {
	log := s.logger.With("userID", userID)
	in.Name = strings.TrimSpace(in.Name)
	if err = account.ValidateName(in.Name); err != nil {
		return nil, err
	}
	if in.Type, err = account.ParseType(string(in.Type)); err != nil {
		return nil, err
	}
	in.ID = uuid.New()
	in.UserID = userID
	in.InitialBalance = in.InitialBalance.Round(2)

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[accountrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, in); err != nil {
			return err
		}
		if err := s.balances.Init(ctx, uow, in.ID, in.InitialBalance); err != nil {
			return err
		}
		read, err := repo.Get(ctx, in.ID)
		if err != nil {
			return err
		}
		acc = &dto.AccountWithBalance{AccountRead: *read, CurrentBalance: in.InitialBalance}
		return nil
	})
	if err != nil {
		log.Error("CreateAccount failed", "error", err)
		return nil, err
	}
	log.Info("CreateAccount successful", "accountID", acc.ID)
	return acc, nil
}

// GetAccount returns an account owned by requester with its current balance.
func (s *Service) GetAccount(
	ctx context.Context,
	requester, accountID uuid.UUID,
) (*dto.AccountWithBalance, error) {
	read, err := Owned(ctx, s.uow, requester, accountID)
	if err != nil {
		return nil, err
	}
	return s.withBalance(ctx, read)
}

// GetBalance returns the current balance of an account owned by requester.
func (s *Service) GetBalance(
	ctx context.Context,
	requester, accountID uuid.UUID,
) (decimal.Decimal, error) {
	if _, err := Owned(ctx, s.uow, requester, accountID); err != nil {
		return decimal.Zero, err
	}
	return s.balances.Current(ctx, accountID)
}

// ListAccounts lists the accounts visible to requester under sc.
func (s *Service) ListAccounts(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
) ([]*dto.AccountWithBalance, error) {
	ids, err := scopesvc.ResolveIn(ctx, s.uow, requester, sc)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, ids, false)
}

// ListActiveAccounts lists requester's active accounts.
func (s *Service) ListActiveAccounts(
	ctx context.Context,
	requester uuid.UUID,
) ([]*dto.AccountWithBalance, error) {
	return s.list(ctx, []uuid.UUID{requester}, true)
}

// UpdateAccount changes the mutable fields of an account.
func (s *Service) UpdateAccount(
	ctx context.Context,
	requester, accountID uuid.UUID,
	update dto.AccountUpdate,
) (acc *dto.AccountWithBalance, err error) {
	log := s.logger.With("userID", requester, "accountID", accountID)
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if err = account.ValidateName(name); err != nil {
			return nil, err
		}
		update.Name = &name
	}
	if update.Type != nil {
		t, err := account.ParseType(string(*update.Type))
		if err != nil {
			return nil, err
		}
		update.Type = &t
	}

	var read *dto.AccountRead
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := Owned(ctx, uow, requester, accountID); err != nil {
			return err
		}
		repo, err := repository.Get[accountrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, accountID, update); err != nil {
			return err
		}
		read, err = repo.Get(ctx, accountID)
		return err
	})
	if err != nil {
		log.Error("UpdateAccount failed", "error", err)
		return nil, err
	}
	log.Info("UpdateAccount successful")
	return s.withBalance(ctx, read)
}

// ToggleActive flips the active flag of an account.
func (s *Service) ToggleActive(
	ctx context.Context,
	requester, accountID uuid.UUID,
) (*dto.AccountWithBalance, error) {
	read, err := Owned(ctx, s.uow, requester, accountID)
	if err != nil {
		return nil, err
	}
	active := !read.IsActive
	return s.UpdateAccount(ctx, requester, accountID, dto.AccountUpdate{IsActive: &active})
}

// DeleteAccount removes an account that no transaction references.
func (s *Service) DeleteAccount(
	ctx context.Context,
	requester, accountID uuid.UUID,
) (err error) {
	log := s.logger.With("userID", requester, "accountID", accountID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := Owned(ctx, uow, requester, accountID); err != nil {
			return err
		}
		txs, err := repository.Get[txrepo.Repository](uow)
		if err != nil {
			return err
		}
		n, err := txs.CountForAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if n > 0 {
			return account.ErrHasTransactions
		}
		if err := s.balances.Drop(ctx, uow, accountID); err != nil {
			return err
		}
		repo, err := repository.Get[accountrepo.Repository](uow)
		if err != nil {
			return err
		}
		return repo.Delete(ctx, accountID)
	})
	if err != nil {
		log.Error("DeleteAccount failed", "error", err)
		return err
	}
	log.Info("DeleteAccount successful")
	return nil
}

func (s *Service) list(
	ctx context.Context,
	userIDs []uuid.UUID,
	activeOnly bool,
) ([]*dto.AccountWithBalance, error) {
	repo, err := repository.Get[accountrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	accs, err := repo.ListByUsers(ctx, userIDs, activeOnly)
	if err != nil {
		return nil, err
	}
	result := make([]*dto.AccountWithBalance, 0, len(accs))
	for _, a := range accs {
		withBal, err := s.withBalance(ctx, a)
		if err != nil {
			return nil, err
		}
		result = append(result, withBal)
	}
	return result, nil
}

func (s *Service) withBalance(
	ctx context.Context,
	read *dto.AccountRead,
) (*dto.AccountWithBalance, error) {
	bal, err := s.balances.Current(ctx, read.ID)
	if err != nil {
		return nil, err
	}
	return &dto.AccountWithBalance{AccountRead: *read, CurrentBalance: bal}, nil
}

// Owned loads accountID through uow and checks that requester owns it.
func Owned(
	ctx context.Context,
	uow repository.UnitOfWork,
	requester, accountID uuid.UUID,
) (*dto.AccountRead, error) {
	repo, err := repository.Get[accountrepo.Repository](uow)
	if err != nil {
		return nil, err
	}
	read, err := repo.Get(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	if read.UserID != requester {
		return nil, account.ErrNotOwner
	}
	return read, nil
}
