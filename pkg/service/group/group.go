// Package group manages user groups, invite codes and memberships. Group
// membership is what widens a caller's visibility scope.
package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/amirasaad/finshare/pkg/domain/group"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/eventbus"
	"github.com/amirasaad/finshare/pkg/repository"
	grouprepo "github.com/amirasaad/finshare/pkg/repository/group"
	"github.com/google/uuid"
)

const inviteCodeAttempts = 5

// ErrInviteCodeExhausted is returned when no unused invite code was drawn.
var ErrInviteCodeExhausted = fmt.Errorf("%w: could not allocate a unique invite code", domain.ErrConflict)

// Service manages groups and their members.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a new group Service.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, bus: bus, logger: logger}
}

// CreateGroup creates a group with a fresh invite code and makes the
// creator its owner.
func (s *Service) CreateGroup(
	ctx context.Context,
	userID uuid.UUID,
	name, description string,
) (view *dto.GroupView, err error) {
	log := s.logger.With("userID", userID)
	name = strings.TrimSpace(name)
	if err = group.ValidateName(name); err != nil {
		return nil, err
	}
	if err = group.ValidateDescription(description); err != nil {
		return nil, err
	}
	id := uuid.New()
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[grouprepo.Repository](uow)
		if err != nil {
			return err
		}
		code, err := uniqueInviteCode(ctx, repo)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, dto.GroupCreate{
			ID:          id,
			Name:        name,
			Description: description,
			InviteCode:  code,
			CreatedBy:   userID,
		}); err != nil {
			return err
		}
		if err := repo.AddMember(ctx, id, userID, group.Owner); err != nil {
			return err
		}
		view, err = viewOf(ctx, repo, id, userID)
		return err
	})
	if err != nil {
		log.Error("CreateGroup failed", "error", err)
		return nil, err
	}
	log.Info("CreateGroup successful", "groupID", id)
	return view, nil
}

// Join adds the caller to the group holding inviteCode.
func (s *Service) Join(
	ctx context.Context,
	userID uuid.UUID,
	inviteCode string,
) (view *dto.GroupView, err error) {
	log := s.logger.With("userID", userID)
	code := group.NormalizeInviteCode(inviteCode)
	if !group.ValidInviteCode(code) {
		return nil, group.ErrInvalidInvite
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[grouprepo.Repository](uow)
		if err != nil {
			return err
		}
		g, err := repo.GetByInviteCode(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return group.ErrInvalidInvite
		}
		if err != nil {
			return err
		}
		if _, err := repo.GetMember(ctx, g.ID, userID); err == nil {
			return group.ErrAlreadyMember
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := repo.AddMember(ctx, g.ID, userID, group.Member); err != nil {
			return err
		}
		view, err = viewOf(ctx, repo, g.ID, userID)
		return err
	})
	if err != nil {
		log.Error("Join failed", "error", err)
		return nil, err
	}
	if err := eventbus.EmitAll(ctx, s.bus, events.GroupMemberJoined{
		Meta:    events.NewMeta(userID),
		GroupID: view.ID,
	}); err != nil {
		log.Error("event publish failed", "error", err)
	}
	log.Info("Join successful", "groupID", view.ID)
	return view, nil
}

// Leave removes the caller from a group. The owner cannot leave.
func (s *Service) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[grouprepo.Repository](uow)
		if err != nil {
			return err
		}
		m, err := membership(ctx, repo, groupID, userID)
		if err != nil {
			return err
		}
		if m.Role == group.Owner {
			return group.ErrOwnerCannotLeave
		}
		return repo.RemoveMember(ctx, groupID, userID)
	})
	if err != nil {
		s.logger.Error("Leave failed", "userID", userID, "groupID", groupID, "error", err)
		return err
	}
	s.logger.Info("Leave successful", "userID", userID, "groupID", groupID)
	return nil
}

// RemoveMember removes target from a group. Owner only; the owner itself
// cannot be removed.
func (s *Service) RemoveMember(
	ctx context.Context,
	ownerID, groupID, target uuid.UUID,
) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[grouprepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := requireOwner(ctx, repo, groupID, ownerID); err != nil {
			return err
		}
		m, err := repo.GetMember(ctx, groupID, target)
		if errors.Is(err, domain.ErrNotFound) {
			return group.ErrMemberNotFound
		}
		if err != nil {
			return err
		}
		if m.Role == group.Owner {
			return group.ErrCannotRemoveOwner
		}
		return repo.RemoveMember(ctx, groupID, target)
	})
	if err != nil {
		s.logger.Error("RemoveMember failed", "groupID", groupID, "error", err)
		return err
	}
	s.logger.Info("RemoveMember successful", "groupID", groupID, "target", target)
	return nil
}

// RegenerateInviteCode replaces the invite code. Owner only; the old code
// stops working immediately.
func (s *Service) RegenerateInviteCode(
	ctx context.Context,
	ownerID, groupID uuid.UUID,
) (code string, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[grouprepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := requireOwner(ctx, repo, groupID, ownerID); err != nil {
			return err
		}
		code, err = uniqueInviteCode(ctx, repo)
		if err != nil {
			return err
		}
		return repo.Update(ctx, groupID, dto.GroupUpdate{InviteCode: &code})
	})
	if err != nil {
		s.logger.Error("RegenerateInviteCode failed", "groupID", groupID, "error", err)
		return "", err
	}
	return code, nil
}

// ListGroups lists the caller's groups.
func (s *Service) ListGroups(
	ctx context.Context,
	userID uuid.UUID,
) ([]*dto.GroupView, error) {
	repo, err := repository.Get[grouprepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	groups, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]*dto.GroupView, 0, len(groups))
	for _, g := range groups {
		v, err := viewOf(ctx, repo, g.ID, userID)
		if err != nil {
			return nil, err
		}
		v.Members = nil
		result = append(result, v)
	}
	return result, nil
}

// GetGroup returns a group with its members. Members only.
func (s *Service) GetGroup(
	ctx context.Context,
	userID, groupID uuid.UUID,
) (*dto.GroupView, error) {
	repo, err := repository.Get[grouprepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	if _, err := membership(ctx, repo, groupID, userID); err != nil {
		return nil, err
	}
	return viewOf(ctx, repo, groupID, userID)
}

// UpdateGroup renames or re-describes a group. Owner only.
func (s *Service) UpdateGroup(
	ctx context.Context,
	ownerID, groupID uuid.UUID,
	update dto.GroupUpdate,
) (view *dto.GroupView, err error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if err := group.ValidateName(name); err != nil {
			return nil, err
		}
		update.Name = &name
	}
	if update.Description != nil {
		if err := group.ValidateDescription(*update.Description); err != nil {
			return nil, err
		}
	}
	update.InviteCode = nil
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[grouprepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := requireOwner(ctx, repo, groupID, ownerID); err != nil {
			return err
		}
		if err := repo.Update(ctx, groupID, update); err != nil {
			return err
		}
		view, err = viewOf(ctx, repo, groupID, ownerID)
		return err
	})
	if err != nil {
		s.logger.Error("UpdateGroup failed", "groupID", groupID, "error", err)
		return nil, err
	}
	return view, nil
}

// DeleteGroup soft-deletes a group and its memberships. Owner only.
func (s *Service) DeleteGroup(ctx context.Context, ownerID, groupID uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[grouprepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := requireOwner(ctx, repo, groupID, ownerID); err != nil {
			return err
		}
		return repo.Delete(ctx, groupID)
	})
	if err != nil {
		s.logger.Error("DeleteGroup failed", "groupID", groupID, "error", err)
		return err
	}
	s.logger.Info("DeleteGroup successful", "groupID", groupID)
	return nil
}

// ListMembers lists the live members of a group. Members only.
func (s *Service) ListMembers(
	ctx context.Context,
	userID, groupID uuid.UUID,
) ([]*dto.GroupMemberRead, error) {
	repo, err := repository.Get[grouprepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	if _, err := membership(ctx, repo, groupID, userID); err != nil {
		return nil, err
	}
	return repo.ListMembers(ctx, groupID)
}

func uniqueInviteCode(ctx context.Context, repo grouprepo.Repository) (string, error) {
	for range inviteCodeAttempts {
		code, err := group.NewInviteCode()
		if err != nil {
			return "", err
		}
		taken, err := repo.InviteCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrInviteCodeExhausted
}

// membership loads the caller's live membership. A missing group is
// NotFound, a group the caller is not in is Forbidden.
func membership(
	ctx context.Context,
	repo grouprepo.Repository,
	groupID, userID uuid.UUID,
) (*dto.GroupMemberRead, error) {
	if _, err := repo.Get(ctx, groupID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, group.ErrGroupNotFound
		}
		return nil, err
	}
	m, err := repo.GetMember(ctx, groupID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, group.ErrNotMember
	}
	return m, err
}

func requireOwner(
	ctx context.Context,
	repo grouprepo.Repository,
	groupID, userID uuid.UUID,
) error {
	m, err := membership(ctx, repo, groupID, userID)
	if err != nil {
		return err
	}
	if m.Role != group.Owner {
		return group.ErrNotOwner
	}
	return nil
}

func viewOf(
	ctx context.Context,
	repo grouprepo.Repository,
	groupID, userID uuid.UUID,
) (*dto.GroupView, error) {
	g, err := repo.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	members, err := repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	view := &dto.GroupView{GroupRead: *g, MemberCount: len(members), Members: members}
	for _, m := range members {
		if m.UserID == userID {
			view.Role = m.Role
		}
	}
	return view, nil
}
