// Package goal implements the goal engine: creation, sharing, contributions
// and the reversal-then-reapply settlement used when goal-linked
// transactions change.
package goal

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/amirasaad/finshare/pkg/domain/goal"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/eventbus"
	"github.com/amirasaad/finshare/pkg/repository"
	goalrepo "github.com/amirasaad/finshare/pkg/repository/goal"
	grouprepo "github.com/amirasaad/finshare/pkg/repository/group"
	scopesvc "github.com/amirasaad/finshare/pkg/service/scope"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter selects goals by completion state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Service implements the goal engine.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a new goal Service.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, bus: bus, logger: logger}
}

// CreateGoal persists a goal and its owner participant row together.
// Completion is evaluated immediately.
func (s *Service) CreateGoal(
	ctx context.Context,
	ownerID uuid.UUID,
	in dto.GoalCreate,
) (view *dto.GoalView, err error) {
	log := s.logger.With("userID", ownerID)
	if in.StartDate.IsZero() {
		in.StartDate = time.Now().UTC()
	}
	g := &goal.Goal{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Target:      in.TargetAmount.Round(2),
		Current:     in.CurrentAmount.Round(2),
		StartDate:   in.StartDate,
		TargetDate:  in.TargetDate,
	}
	if err = g.Validate(); err != nil {
		return nil, err
	}
	g.Evaluate()

	in.ID = g.ID
	in.UserID = ownerID
	in.Name = g.Name
	in.TargetAmount = g.Target
	in.CurrentAmount = g.Current
	in.IsCompleted = g.IsCompleted

	var read *dto.GoalRead
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[goalrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, in); err != nil {
			return err
		}
		if err := repo.AddUser(ctx, g.ID, ownerID, true); err != nil {
			return err
		}
		read, err = repo.Get(ctx, g.ID)
		return err
	})
	if err != nil {
		log.Error("CreateGoal failed", "error", err)
		return nil, err
	}
	if g.IsCompleted {
		s.emit(ctx, completionEvent(ownerID, g))
	}
	log.Info("CreateGoal successful", "goalID", g.ID)
	return s.view(ctx, s.uow, read, ownerID)
}

// GetGoal returns a goal visible to its owner and participants.
func (s *Service) GetGoal(
	ctx context.Context,
	requester, goalID uuid.UUID,
) (*dto.GoalView, error) {
	read, err := load(ctx, s.uow, goalID)
	if err != nil {
		return nil, err
	}
	if err := checkAccess(ctx, s.uow, read, requester); err != nil {
		return nil, err
	}
	return s.view(ctx, s.uow, read, requester)
}

// ListGoals lists goals owned by, or shared with, the users of sc.
func (s *Service) ListGoals(
	ctx context.Context,
	requester uuid.UUID,
	sc scope.Scope,
	filter Filter,
) ([]*dto.GoalView, error) {
	ids, err := scopesvc.ResolveIn(ctx, s.uow, requester, sc)
	if err != nil {
		return nil, err
	}
	var completed *bool
	switch filter {
	case FilterActive:
		completed = new(bool)
	case FilterCompleted:
		completed = new(bool)
		*completed = true
	}
	repo, err := repository.Get[goalrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	reads, err := repo.ListVisible(ctx, ids, completed)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reads, requester)
}

// ListSharedWithMe lists goals other users shared with requester.
func (s *Service) ListSharedWithMe(
	ctx context.Context,
	requester uuid.UUID,
) ([]*dto.GoalView, error) {
	repo, err := repository.Get[goalrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	reads, err := repo.ListSharedWith(ctx, requester)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reads, requester)
}

// ListForTransaction lists the goals requester may contribute to.
func (s *Service) ListForTransaction(
	ctx context.Context,
	requester uuid.UUID,
) ([]*dto.GoalView, error) {
	repo, err := repository.Get[goalrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	reads, err := repo.ListParticipating(ctx, requester)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reads, requester)
}

// ListGoalUsers lists the participants of a goal.
func (s *Service) ListGoalUsers(
	ctx context.Context,
	requester, goalID uuid.UUID,
) ([]*dto.GoalUserRead, error) {
	read, err := load(ctx, s.uow, goalID)
	if err != nil {
		return nil, err
	}
	if err := checkAccess(ctx, s.uow, read, requester); err != nil {
		return nil, err
	}
	repo, err := repository.Get[goalrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.ListUsers(ctx, goalID)
}

// UpdateGoal changes a goal's fields. Owner only; completion is re-evaluated.
func (s *Service) UpdateGoal(
	ctx context.Context,
	requester, goalID uuid.UUID,
	update dto.GoalUpdate,
) (view *dto.GoalView, err error) {
	log := s.logger.With("userID", requester, "goalID", goalID)
	var (
		read *dto.GoalRead
		evt  events.Event
	)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		current, err := load(ctx, uow, goalID)
		if err != nil {
			return err
		}
		if current.UserID != requester {
			return goal.ErrNotOwner
		}
		g := current.ToDomain()
		if update.Name != nil {
			g.Name = strings.TrimSpace(*update.Name)
			update.Name = &g.Name
		}
		if update.Description != nil {
			g.Description = *update.Description
		}
		if update.TargetAmount != nil {
			g.Target = update.TargetAmount.Round(2)
			update.TargetAmount = &g.Target
		}
		if update.CurrentAmount != nil {
			g.Current = update.CurrentAmount.Round(2)
			update.CurrentAmount = &g.Current
		}
		if update.StartDate != nil {
			g.StartDate = *update.StartDate
		}
		switch {
		case update.ClearTargetDate:
			g.TargetDate = nil
			update.TargetDate = nil
		case update.TargetDate != nil:
			g.TargetDate = update.TargetDate
		}
		if err := g.Validate(); err != nil {
			return err
		}
		if g.Evaluate() {
			evt = completionEvent(requester, g)
		}
		update.IsCompleted = &g.IsCompleted

		repo, err := repository.Get[goalrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, goalID, current.Version, update); err != nil {
			return err
		}
		read, err = repo.Get(ctx, goalID)
		return err
	})
	if err != nil {
		log.Error("UpdateGoal failed", "error", err)
		return nil, err
	}
	s.emit(ctx, evt)
	log.Info("UpdateGoal successful")
	return s.view(ctx, s.uow, read, requester)
}

// DeleteGoal soft-deletes a goal. Owner only.
func (s *Service) DeleteGoal(
	ctx context.Context,
	requester, goalID uuid.UUID,
) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		read, err := load(ctx, uow, goalID)
		if err != nil {
			return err
		}
		if read.UserID != requester {
			return goal.ErrNotOwner
		}
		repo, err := repository.Get[goalrepo.Repository](uow)
		if err != nil {
			return err
		}
		return repo.Delete(ctx, goalID)
	})
	if err != nil {
		s.logger.Error("DeleteGoal failed", "goalID", goalID, "error", err)
		return err
	}
	s.logger.Info("DeleteGoal successful", "goalID", goalID)
	return nil
}

// PostContribution deposits into or withdraws from a goal directly.
func (s *Service) PostContribution(
	ctx context.Context,
	requester, goalID uuid.UUID,
	amount decimal.Decimal,
	dir goal.Direction,
) (view *dto.GoalView, err error) {
	var evts []events.Event
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		evts, err = Settle(ctx, uow, requester, nil, &goal.Contribution{
			GoalID:    goalID,
			Amount:    amount,
			Direction: dir,
		})
		return err
	})
	if err != nil {
		s.logger.Error("PostContribution failed", "goalID", goalID, "error", err)
		return nil, err
	}
	s.emit(ctx, evts...)
	return s.GetGoal(ctx, requester, goalID)
}

// ShareGoal gives each target access to the goal. Owner only; every target
// must share a live group with the owner. Already shared targets are skipped.
func (s *Service) ShareGoal(
	ctx context.Context,
	ownerID, goalID uuid.UUID,
	targets []uuid.UUID,
) (users []*dto.GoalUserRead, err error) {
	log := s.logger.With("userID", ownerID, "goalID", goalID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		read, err := load(ctx, uow, goalID)
		if err != nil {
			return err
		}
		if read.UserID != ownerID {
			return goal.ErrNotOwner
		}
		groups, err := repository.Get[grouprepo.Repository](uow)
		if err != nil {
			return err
		}
		repo, err := repository.Get[goalrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := ensureUser(ctx, repo, goalID, ownerID, true); err != nil {
			return err
		}
		for _, target := range targets {
			if target == ownerID {
				continue
			}
			ok, err := groups.SharesGroup(ctx, ownerID, target)
			if err != nil {
				return err
			}
			if !ok {
				return goal.ErrNotInGroup
			}
			if err := ensureUser(ctx, repo, goalID, target, false); err != nil {
				return err
			}
		}
		users, err = repo.ListUsers(ctx, goalID)
		return err
	})
	if err != nil {
		log.Error("ShareGoal failed", "error", err)
		return nil, err
	}
	log.Info("ShareGoal successful", "targets", len(targets))
	return users, nil
}

// UnshareGoal revokes target's access. Owner only; the owner cannot be removed.
func (s *Service) UnshareGoal(
	ctx context.Context,
	ownerID, goalID, target uuid.UUID,
) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		read, err := load(ctx, uow, goalID)
		if err != nil {
			return err
		}
		if read.UserID != ownerID {
			return goal.ErrNotOwner
		}
		if target == read.UserID {
			return goal.ErrRemoveOwner
		}
		repo, err := repository.Get[goalrepo.Repository](uow)
		if err != nil {
			return err
		}
		return repo.RemoveUser(ctx, goalID, target)
	})
	if err != nil {
		s.logger.Error("UnshareGoal failed", "goalID", goalID, "error", err)
	}
	return err
}

// Settle moves a goal contribution from prev to next inside uow: prev is
// reversed, then next is applied. Either may be nil. On the same goal only
// the final amount is checked, and an unchanged contribution is a no-op.
// A prev goal that no longer exists is skipped; a missing next goal fails.
// It returns the completion events to publish after commit.
func Settle(
	ctx context.Context,
	uow repository.UnitOfWork,
	requester uuid.UUID,
	prev, next *goal.Contribution,
) ([]events.Event, error) {
	repo, err := repository.Get[goalrepo.Repository](uow)
	if err != nil {
		return nil, err
	}

	if prev != nil && next != nil && prev.Same(*next) {
		return nil, nil
	}

	if prev != nil && next != nil && prev.GoalID == next.GoalID {
		read, err := load(ctx, uow, next.GoalID)
		switch {
		case errors.Is(err, goal.ErrGoalNotFound):
			prev = nil
		case err != nil:
			return nil, err
		default:
			if err := checkAccess(ctx, uow, read, requester); err != nil {
				return nil, err
			}
			g := read.ToDomain()
			before := g.IsCompleted
			if err := g.Replace(*prev, *next); err != nil {
				return nil, err
			}
			if err := save(ctx, repo, g); err != nil {
				return nil, err
			}
			return flipEvents(requester, g, before), nil
		}
	}

	var evts []events.Event
	if prev != nil {
		read, err := load(ctx, uow, prev.GoalID)
		switch {
		case errors.Is(err, goal.ErrGoalNotFound):
		case err != nil:
			return nil, err
		default:
			g := read.ToDomain()
			before := g.IsCompleted
			if err := g.Reverse(prev.Direction, prev.Amount); err != nil {
				return nil, err
			}
			if err := save(ctx, repo, g); err != nil {
				return nil, err
			}
			evts = append(evts, flipEvents(requester, g, before)...)
		}
	}
	if next != nil {
		read, err := load(ctx, uow, next.GoalID)
		if err != nil {
			return nil, err
		}
		if err := checkAccess(ctx, uow, read, requester); err != nil {
			return nil, err
		}
		g := read.ToDomain()
		before := g.IsCompleted
		if err := g.Apply(next.Direction, next.Amount); err != nil {
			return nil, err
		}
		if err := save(ctx, repo, g); err != nil {
			return nil, err
		}
		evts = append(evts, flipEvents(requester, g, before)...)
	}
	return evts, nil
}

func save(ctx context.Context, repo goalrepo.Repository, g *goal.Goal) error {
	return repo.Update(ctx, g.ID, g.Version, dto.GoalUpdate{
		CurrentAmount: &g.Current,
		IsCompleted:   &g.IsCompleted,
	})
}

func load(
	ctx context.Context,
	uow repository.UnitOfWork,
	goalID uuid.UUID,
) (*dto.GoalRead, error) {
	repo, err := repository.Get[goalrepo.Repository](uow)
	if err != nil {
		return nil, err
	}
	read, err := repo.Get(ctx, goalID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, goal.ErrGoalNotFound
	}
	return read, err
}

// checkAccess allows the owner and any participant.
func checkAccess(
	ctx context.Context,
	uow repository.UnitOfWork,
	read *dto.GoalRead,
	requester uuid.UUID,
) error {
	if read.UserID == requester {
		return nil
	}
	repo, err := repository.Get[goalrepo.Repository](uow)
	if err != nil {
		return err
	}
	_, err = repo.GetUser(ctx, read.ID, requester)
	if errors.Is(err, domain.ErrNotFound) {
		return goal.ErrNoAccess
	}
	return err
}

func ensureUser(
	ctx context.Context,
	repo goalrepo.Repository,
	goalID, userID uuid.UUID,
	isOwner bool,
) error {
	_, err := repo.GetUser(ctx, goalID, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return repo.AddUser(ctx, goalID, userID, isOwner)
}

func flipEvents(actor uuid.UUID, g *goal.Goal, before bool) []events.Event {
	if g.IsCompleted == before {
		return nil
	}
	return []events.Event{completionEvent(actor, g)}
}

func completionEvent(actor uuid.UUID, g *goal.Goal) events.Event {
	if g.IsCompleted {
		return events.GoalCompleted{
			Meta:    events.NewMeta(actor),
			GoalID:  g.ID,
			Current: g.Current,
			Target:  g.Target,
		}
	}
	return events.GoalReopened{
		Meta:    events.NewMeta(actor),
		GoalID:  g.ID,
		Current: g.Current,
		Target:  g.Target,
	}
}

func (s *Service) emit(ctx context.Context, evts ...events.Event) {
	var pending []events.Event
	for _, e := range evts {
		if e != nil {
			pending = append(pending, e)
		}
	}
	if err := eventbus.EmitAll(ctx, s.bus, pending...); err != nil {
		s.logger.Error("event publish failed", "error", err)
	}
}

func (s *Service) views(
	ctx context.Context,
	reads []*dto.GoalRead,
	requester uuid.UUID,
) ([]*dto.GoalView, error) {
	result := make([]*dto.GoalView, 0, len(reads))
	for _, r := range reads {
		v, err := s.view(ctx, s.uow, r, requester)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func (s *Service) view(
	ctx context.Context,
	uow repository.UnitOfWork,
	read *dto.GoalRead,
	requester uuid.UUID,
) (*dto.GoalView, error) {
	repo, err := repository.Get[goalrepo.Repository](uow)
	if err != nil {
		return nil, err
	}
	users, err := repo.ListUsers(ctx, read.ID)
	if err != nil {
		return nil, err
	}
	g := read.ToDomain()
	return &dto.GoalView{
		GoalRead:           *read,
		ProgressPercentage: g.Progress(),
		RemainingAmount:    g.Remaining(),
		IsOwner:            read.UserID == requester,
		Users:              users,
	}, nil
}
