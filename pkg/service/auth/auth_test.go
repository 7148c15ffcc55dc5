package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/dto"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	"github.com/amirasaad/finshare/pkg/testutils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var jwtCfg = &config.Jwt{Secret: "test-secret", Expiry: time.Hour}

type mockStrategy struct {
	mock.Mock
}

func (m *mockStrategy) Login(ctx context.Context, identity, password string) (*dto.UserRead, error) {
	args := m.Called(ctx, identity, password)
	u, _ := args.Get(0).(*dto.UserRead)
	return u, args.Error(1)
}

func (m *mockStrategy) GetCurrentUserID(ctx context.Context) (uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockStrategy) GenerateToken(ctx context.Context, u *dto.UserRead) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}

func TestLoginDelegatesToStrategy(t *testing.T) {
	env := testutils.NewEnv(t)
	strategy := new(mockStrategy)
	strategy.On("Login", mock.Anything, "user@example.com", "wrong").
		Return(nil, domain.ErrUnauthorized).Once()

	svc := authsvc.New(env.UoW, strategy, env.Logger)
	u, err := svc.Login(context.Background(), "user@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Nil(t, u)
	strategy.AssertExpectations(t)
}

func TestJWTLoginAndToken(t *testing.T) {
	env := testutils.NewEnv(t)
	ctx := context.Background()
	id := env.CreateUser(t, "alice")
	svc := authsvc.NewWithJWT(env.UoW, jwtCfg, env.Logger)

	for _, identity := range []string{"alice", "alice@example.com", " ALICE@example.com "} {
		u, err := svc.Login(ctx, identity, "password123")
		require.NoError(t, err, identity)
		assert.Equal(t, id, u.ID)
	}

	_, err := svc.Login(ctx, "alice", "nope")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	u, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	signed, err := svc.GenerateToken(ctx, u)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (any, error) {
		return []byte(jwtCfg.Secret), nil
	})
	require.NoError(t, err)
	got, err := svc.GetCurrentUserId(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestJWTGetCurrentUserIdRejectsBadClaims(t *testing.T) {
	env := testutils.NewEnv(t)
	svc := authsvc.NewWithJWT(env.UoW, jwtCfg, env.Logger)

	_, err := svc.GetCurrentUserId(nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "not-a-uuid"})
	_, err = svc.GetCurrentUserId(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestBasicAuthTracksCurrentUser(t *testing.T) {
	env := testutils.NewEnv(t)
	ctx := context.Background()
	id := env.CreateUser(t, "alice")
	strategy := authsvc.NewBasicAuthStrategy(env.UoW, env.Logger)

	_, err := strategy.GetCurrentUserID(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = strategy.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	got, err := strategy.GetCurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	token, err := strategy.GenerateToken(ctx, &dto.UserRead{ID: id})
	require.NoError(t, err)
	assert.Empty(t, token)
}
