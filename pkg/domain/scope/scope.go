// Package scope resolves which users' data a request may read.
//
// A Scope is one of Own, Member or All. Member always carries the target
// user; the "member without an id" case can only arise while parsing wire
// input and is rejected by Parse.
package scope

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/google/uuid"
)

var (
	// ErrMemberRequired is returned when a member scope has no target user.
	ErrMemberRequired = fmt.Errorf("%w: member scope requires a member user id", domain.ErrInvalidArgument)
	// ErrUnknownScope is returned for an unrecognised view context.
	ErrUnknownScope = fmt.Errorf("%w: unknown view context", domain.ErrInvalidArgument)
	// ErrNotGroupMember is returned when requester and target share no live group.
	ErrNotGroupMember = fmt.Errorf("%w: user is not a member of any of your groups", domain.ErrForbidden)
)

// Scope is a sealed union of Own, Member and All.
type Scope interface {
	Name() string
	isScope()
}

// Own restricts results to the requester.
type Own struct{}

// Member restricts results to a single fellow group member.
type Member struct {
	UserID uuid.UUID
}

// All covers the requester and every member of every group they belong to.
type All struct{}

func (Own) Name() string    { return "own" }
func (Member) Name() string { return "member" }
func (All) Name() string    { return "all" }

func (Own) isScope()    {}
func (Member) isScope() {}
func (All) isScope()    {}

// Parse builds a Scope from a view context ("own", "member", "all" in any
// case, or 0, 1, 2) and an optional member id. An empty context means Own.
func Parse(context string, memberID string) (Scope, error) {
	context = strings.TrimSpace(context)
	if n, err := strconv.Atoi(context); err == nil {
		switch n {
		case 0:
			context = "own"
		case 1:
			context = "member"
		case 2:
			context = "all"
		default:
			return nil, ErrUnknownScope
		}
	}
	switch strings.ToLower(context) {
	case "", "own":
		return Own{}, nil
	case "all":
		return All{}, nil
	case "member":
		if strings.TrimSpace(memberID) == "" {
			return nil, ErrMemberRequired
		}
		id, err := uuid.Parse(memberID)
		if err != nil || id == uuid.Nil {
			return nil, ErrMemberRequired
		}
		return Member{UserID: id}, nil
	default:
		return nil, ErrUnknownScope
	}
}

// Directory answers group membership questions for the resolver.
type Directory interface {
	// GroupIDsForUser lists the live groups the user belongs to.
	GroupIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// MemberIDsOfGroups lists the live members of the given groups.
	MemberIDsOfGroups(ctx context.Context, groupIDs []uuid.UUID) ([]uuid.UUID, error)
	// SharesGroup reports whether both users are live members of a common live group.
	SharesGroup(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// Resolve returns the user ids visible to requester under s. It never
// caches: membership changes are visible on the next call.
func Resolve(
	ctx context.Context,
	dir Directory,
	requester uuid.UUID,
	s Scope,
) ([]uuid.UUID, error) {
	switch sc := s.(type) {
	case nil, Own, *Own:
		return []uuid.UUID{requester}, nil
	case Member:
		return resolveMember(ctx, dir, requester, sc.UserID)
	case *Member:
		return resolveMember(ctx, dir, requester, sc.UserID)
	case All, *All:
		return resolveAll(ctx, dir, requester)
	default:
		return nil, ErrUnknownScope
	}
}

func resolveMember(
	ctx context.Context,
	dir Directory,
	requester, target uuid.UUID,
) ([]uuid.UUID, error) {
	if target == uuid.Nil {
		return nil, ErrMemberRequired
	}
	ok, err := dir.SharesGroup(ctx, requester, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotGroupMember
	}
	return []uuid.UUID{target}, nil
}

func resolveAll(
	ctx context.Context,
	dir Directory,
	requester uuid.UUID,
) ([]uuid.UUID, error) {
	groupIDs, err := dir.GroupIDsForUser(ctx, requester)
	if err != nil {
		return nil, err
	}
	if len(groupIDs) == 0 {
		return []uuid.UUID{requester}, nil
	}
	members, err := dir.MemberIDsOfGroups(ctx, groupIDs)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{}, len(members)+1)
	ids := make([]uuid.UUID, 0, len(members)+1)
	for _, id := range append([]uuid.UUID{requester}, members...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
