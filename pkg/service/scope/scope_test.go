package scope_test

import (
	"context"
	"testing"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/group"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	scopesvc "github.com/amirasaad/finshare/pkg/service/scope"
	"github.com/amirasaad/finshare/pkg/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	env := testutils.NewEnv(t)
	ctx := context.Background()
	svc := scopesvc.New(env.UoW, env.Logger)

	alice := env.CreateUser(t, "alice")
	bob := env.CreateUser(t, "bob")
	carol := env.CreateUser(t, "carol")
	dave := env.CreateUser(t, "dave")

	g1 := env.CreateGroup(t, alice, "family")
	env.AddMember(t, g1, bob, group.Member)
	g2 := env.CreateGroup(t, carol, "flat")
	env.AddMember(t, g2, alice, group.Member)
	env.AddMember(t, g2, bob, group.Member)

	t.Run("own", func(t *testing.T) {
		ids, err := svc.Resolve(ctx, alice, scope.Own{})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{alice}, ids)
	})

	t.Run("member shares a group", func(t *testing.T) {
		ids, err := svc.Resolve(ctx, alice, scope.Member{UserID: carol})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{carol}, ids)
	})

	t.Run("member without a shared group", func(t *testing.T) {
		_, err := svc.Resolve(ctx, alice, scope.Member{UserID: dave})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("all deduplicates across groups", func(t *testing.T) {
		ids, err := svc.Resolve(ctx, alice, scope.All{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{alice, bob, carol}, ids)
	})

	t.Run("all without groups", func(t *testing.T) {
		ids, err := svc.Resolve(ctx, dave, scope.All{})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{dave}, ids)
	})

	t.Run("left membership is not live", func(t *testing.T) {
		env.RemoveMember(t, g2, bob)
		ok, err := scopesvc.Visible(ctx, env.UoW, bob, carol)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
