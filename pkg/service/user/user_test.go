package user_test

import (
	"context"
	"testing"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/category"
	"github.com/amirasaad/finshare/pkg/domain/user"
	categorysvc "github.com/amirasaad/finshare/pkg/service/category"
	usersvc "github.com/amirasaad/finshare/pkg/service/user"
	"github.com/amirasaad/finshare/pkg/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSeedsDefaultCategories(t *testing.T) {
	env := testutils.NewEnv(t)
	ctx := context.Background()
	svc := usersvc.New(env.UoW, env.Logger)

	u, err := svc.Register(ctx, "alice", "Alice@Example.com", "password123", "Alice A")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "password123", u.HashedPassword)

	categories := categorysvc.New(env.UoW, env.Logger)
	all, err := categories.ListCategories(ctx, u.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(category.Defaults))

	income := category.Income
	incomes, err := categories.ListCategories(ctx, u.ID, &income)
	require.NoError(t, err)
	assert.Len(t, incomes, 4)

	byName, err := svc.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	byEmail, err := svc.GetUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := testutils.NewEnv(t)
	ctx := context.Background()
	svc := usersvc.New(env.UoW, env.Logger)
	_, err := svc.Register(ctx, "alice", "alice@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "other", "alice@example.com", "password123", "")
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = svc.Register(ctx, "alice", "other@example.com", "password123", "")
	assert.ErrorIs(t, err, user.ErrUsernameTaken)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	env := testutils.NewEnv(t)
	svc := usersvc.New(env.UoW, env.Logger)

	_, err := svc.Register(context.Background(), "bob", "not-an-email", "password123", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Register(context.Background(), "bob", "bob@example.com", "123", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetUserNotFound(t *testing.T) {
	env := testutils.NewEnv(t)
	svc := usersvc.New(env.UoW, env.Logger)
	_, err := svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
