package group_test

import (
	"context"
	"strings"
	"testing"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/amirasaad/finshare/pkg/domain/group"
	"github.com/amirasaad/finshare/pkg/dto"
	groupsvc "github.com/amirasaad/finshare/pkg/service/group"
	"github.com/amirasaad/finshare/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupLifecycle(t *testing.T) {
	env := testutils.NewEnv(t)
	ctx := context.Background()
	svc := groupsvc.New(env.UoW, env.Bus, env.Logger)
	alice := env.CreateUser(t, "alice")
	bob := env.CreateUser(t, "bob")
	carol := env.CreateUser(t, "carol")

	g, err := svc.CreateGroup(ctx, alice, "Household", "shared costs")
	require.NoError(t, err)
	assert.True(t, group.ValidInviteCode(g.InviteCode))
	assert.Equal(t, group.Owner, g.Role)
	assert.Equal(t, 1, g.MemberCount)

	joined, err := svc.Join(ctx, bob, strings.ToLower(g.InviteCode))
	require.NoError(t, err)
	assert.Equal(t, group.Member, joined.Role)
	assert.Equal(t, 2, joined.MemberCount)

	published := env.Bus.Published()
	require.NotEmpty(t, published)
	evt, ok := published[len(published)-1].(events.GroupMemberJoined)
	require.True(t, ok)
	assert.Equal(t, g.ID, evt.GroupID)

	_, err = svc.Join(ctx, bob, g.InviteCode)
	assert.ErrorIs(t, err, group.ErrAlreadyMember)

	_, err = svc.GetGroup(ctx, carol, g.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	code, err := svc.RegenerateInviteCode(ctx, alice, g.ID)
	require.NoError(t, err)
	assert.NotEqual(t, g.InviteCode, code)
	_, err = svc.Join(ctx, carol, g.InviteCode)
	assert.ErrorIs(t, err, group.ErrInvalidInvite)
	_, err = svc.Join(ctx, carol, code)
	require.NoError(t, err)

	_, err = svc.RegenerateInviteCode(ctx, bob, g.ID)
	assert.ErrorIs(t, err, group.ErrNotOwner)

	assert.ErrorIs(t, svc.Leave(ctx, alice, g.ID), group.ErrOwnerCannotLeave)
	require.NoError(t, svc.Leave(ctx, bob, g.ID))
	_, err = svc.Join(ctx, bob, code)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveMember(ctx, alice, g.ID, alice), group.ErrCannotRemoveOwner)
	assert.ErrorIs(t, svc.RemoveMember(ctx, bob, g.ID, carol), group.ErrNotOwner)
	require.NoError(t, svc.RemoveMember(ctx, alice, g.ID, carol))

	members, err := svc.ListMembers(ctx, alice, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	name := "Flat"
	updated, err := svc.UpdateGroup(ctx, alice, g.ID, dto.GroupUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Flat", updated.Name)
	assert.Equal(t, code, updated.InviteCode)

	groups, err := svc.ListGroups(ctx, bob)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.ErrorIs(t, svc.DeleteGroup(ctx, bob, g.ID), group.ErrNotOwner)
	require.NoError(t, svc.DeleteGroup(ctx, alice, g.ID))
	groups, err = svc.ListGroups(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, groups)
	_, err = svc.GetGroup(ctx, alice, g.ID)
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}

func TestCreateGroupValidation(t *testing.T) {
	env := testutils.NewEnv(t)
	svc := groupsvc.New(env.UoW, env.Bus, env.Logger)
	alice := env.CreateUser(t, "alice")

	_, err := svc.CreateGroup(context.Background(), alice, "  ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Join(context.Background(), alice, "nope")
	assert.ErrorIs(t, err, group.ErrInvalidInvite)
}
