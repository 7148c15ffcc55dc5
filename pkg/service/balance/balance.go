// Package balance derives account balances from the transaction log and
// optionally keeps a materialized copy in step with it.
package balance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/account"
	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/eventbus"
	"github.com/amirasaad/finshare/pkg/repository"
	accountrepo "github.com/amirasaad/finshare/pkg/repository/account"
	ledgerrepo "github.com/amirasaad/finshare/pkg/repository/ledger"
	txrepo "github.com/amirasaad/finshare/pkg/repository/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const rebuildConcurrency = 4

// ErrLedgerDisabled is returned by Rebuild when balances are not materialized.
var ErrLedgerDisabled = fmt.Errorf("%w: materialized balances are disabled", domain.ErrInvalidOperation)

// Service computes account balances. When materialized is set, every ledger
// write also adjusts the stored balance in the same unit of work.
type Service struct {
	uow          repository.UnitOfWork
	bus          eventbus.Bus
	logger       *slog.Logger
	materialized bool
}

// New creates a balance Service.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	logger *slog.Logger,
	materialized bool,
) *Service {
	return &Service{uow: uow, bus: bus, logger: logger, materialized: materialized}
}

// Materialized reports whether stored balances are maintained.
func (s *Service) Materialized() bool {
	return s.materialized
}

// AccountBalance replays the log of accountID. A missing account yields 0.
func (s *Service) AccountBalance(
	ctx context.Context,
	accountID uuid.UUID,
) (decimal.Decimal, error) {
	bal, err := Replay(ctx, s.uow, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		s.logger.Error("AccountBalance failed", "accountID", accountID, "error", err)
		return decimal.Zero, err
	}
	return bal, nil
}

// Current returns the stored balance when materialized, rebuilding a
// missing row from the log, and the replayed balance otherwise.
func (s *Service) Current(
	ctx context.Context,
	accountID uuid.UUID,
) (decimal.Decimal, error) {
	if !s.materialized {
		return s.AccountBalance(ctx, accountID)
	}
	ledger, err := repository.Get[ledgerrepo.Repository](s.uow)
	if err != nil {
		return decimal.Zero, err
	}
	row, err := ledger.Get(ctx, accountID)
	if err == nil {
		return row.Balance, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return decimal.Zero, err
	}

	var bal decimal.Decimal
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		bal, err = Replay(ctx, uow, accountID)
		if err != nil {
			return err
		}
		ledger, err := repository.Get[ledgerrepo.Repository](uow)
		if err != nil {
			return err
		}
		return ledger.Reset(ctx, accountID, bal)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		s.logger.Error("Current failed", "accountID", accountID, "error", err)
		return decimal.Zero, err
	}
	return bal, nil
}

// Replay recomputes the balance of accountID from the transactions visible
// through uow.
func Replay(
	ctx context.Context,
	uow repository.UnitOfWork,
	accountID uuid.UUID,
) (decimal.Decimal, error) {
	accounts, err := repository.Get[accountrepo.Repository](uow)
	if err != nil {
		return decimal.Zero, err
	}
	txs, err := repository.Get[txrepo.Repository](uow)
	if err != nil {
		return decimal.Zero, err
	}
	acc, err := accounts.Get(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	rows, err := txs.ListForAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	entries := make([]transaction.Transaction, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.ToDomain())
	}
	return account.Balance(accountID, acc.InitialBalance, entries), nil
}

// Init stores the opening balance of a new account.
func (s *Service) Init(
	ctx context.Context,
	uow repository.UnitOfWork,
	accountID uuid.UUID,
	initial decimal.Decimal,
) error {
	if !s.materialized {
		return nil
	}
	ledger, err := repository.Get[ledgerrepo.Repository](uow)
	if err != nil {
		return err
	}
	return ledger.Init(ctx, accountID, initial)
}

// Drop removes the stored balance of a deleted account.
func (s *Service) Drop(
	ctx context.Context,
	uow repository.UnitOfWork,
	accountID uuid.UUID,
) error {
	if !s.materialized {
		return nil
	}
	ledger, err := repository.Get[ledgerrepo.Repository](uow)
	if err != nil {
		return err
	}
	return ledger.Delete(ctx, accountID)
}

// Post adjusts the stored balances touched by a ledger write. prev is the
// entry before the write (nil on create) and next the entry after it (nil
// on delete). It must run inside the unit of work that wrote the entry.
func (s *Service) Post(
	ctx context.Context,
	uow repository.UnitOfWork,
	prev, next *transaction.Transaction,
) error {
	if !s.materialized {
		return nil
	}
	deltas := make(map[uuid.UUID]decimal.Decimal)
	var order []uuid.UUID
	add := func(tx *transaction.Transaction, sign int64) {
		if tx == nil {
			return
		}
		for _, id := range tx.Affected() {
			if _, seen := deltas[id]; !seen {
				order = append(order, id)
				deltas[id] = decimal.Zero
			}
			deltas[id] = deltas[id].Add(tx.EffectOn(id).Mul(decimal.NewFromInt(sign)))
		}
	}
	add(prev, -1)
	add(next, 1)

	ledger, err := repository.Get[ledgerrepo.Repository](uow)
	if err != nil {
		return err
	}
	for _, id := range order {
		row, err := ledger.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			// The log already holds the write, so a replay is exact.
			bal, err := Replay(ctx, uow, id)
			if err != nil {
				return err
			}
			if err := ledger.Reset(ctx, id, bal); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if deltas[id].IsZero() {
			continue
		}
		if err := ledger.Adjust(ctx, id, row.Version, deltas[id]); err != nil {
			return err
		}
	}
	return nil
}

// Rebuild replays every account of userID and rewrites stored balances that
// drifted from the log.
func (s *Service) Rebuild(
	ctx context.Context,
	userID uuid.UUID,
) (reports []dto.DriftReport, err error) {
	log := s.logger.With("userID", userID)
	log.Info("Rebuild started")
	if !s.materialized {
		return nil, ErrLedgerDisabled
	}

	accounts, err := repository.Get[accountrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	accs, err := accounts.ListByUsers(ctx, []uuid.UUID{userID}, false)
	if err != nil {
		log.Error("Rebuild failed", "error", err)
		return nil, err
	}

	var (
		mu        sync.Mutex
		corrected []events.Event
	)
	reports = make([]dto.DriftReport, len(accs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rebuildConcurrency)
	for i, acc := range accs {
		g.Go(func() error {
			report, err := s.rebuildOne(gctx, acc.ID)
			if err != nil {
				return err
			}
			reports[i] = report
			if report.Corrected {
				mu.Lock()
				corrected = append(corrected, events.BalanceDriftCorrected{
					Meta:      events.NewMeta(userID),
					AccountID: report.AccountID,
					Stored:    report.Stored,
					Replayed:  report.Replayed,
				})
				mu.Unlock()
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		log.Error("Rebuild failed", "error", err)
		return nil, err
	}

	if err := eventbus.EmitAll(ctx, s.bus, corrected...); err != nil {
		log.Error("Rebuild event publish failed", "error", err)
	}
	log.Info("Rebuild successful", "accounts", len(reports), "corrected", len(corrected))
	return reports, nil
}

func (s *Service) rebuildOne(
	ctx context.Context,
	accountID uuid.UUID,
) (report dto.DriftReport, err error) {
	report.AccountID = accountID
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		replayed, err := Replay(ctx, uow, accountID)
		if err != nil {
			return err
		}
		report.Replayed = replayed

		ledger, err := repository.Get[ledgerrepo.Repository](uow)
		if err != nil {
			return err
		}
		row, err := ledger.Get(ctx, accountID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			report.Stored = replayed
		case err != nil:
			return err
		default:
			report.Stored = row.Balance
		}
		report.Drift = replayed.Sub(report.Stored)
		if err == nil && report.Drift.IsZero() {
			return nil
		}
		report.Corrected = !report.Drift.IsZero()
		return ledger.Reset(ctx, accountID, replayed)
	})
	return
}
